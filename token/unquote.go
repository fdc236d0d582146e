package token

import (
	"bytes"
	"errors"
	"unicode/utf16"
	"unicode/utf8"
)

var (
	ErrNotString = errors.New("not a JSON string literal")
	ErrBadEscape = errors.New("invalid escape sequence in JSON string")
)

// Unquote decodes a JSON string literal, including its surrounding quotes.
//
// An escaped high surrogate directly followed by an escaped low surrogate is
// decoded as the supplementary code point they encode.  Any other escaped
// surrogate is kept as the 3-byte generalized UTF-8 form of that code unit
// (not valid UTF-8), so the information that a lone surrogate was there is
// not lost.  Invalid UTF-8 in the literal is kept as is.
func Unquote(lit []byte) (string, error) {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return "", ErrNotString
	}
	lit = lit[1 : len(lit)-1]
	if bytes.IndexByte(lit, '\\') < 0 {
		return string(lit), nil
	}
	out := make([]byte, 0, len(lit))
	for i := 0; i < len(lit); {
		c := lit[i]
		if c != '\\' {
			out = append(out, c)
			i++
			continue
		}
		if i+1 == len(lit) {
			return "", ErrBadEscape
		}
		esc := lit[i+1]
		i += 2
		switch esc {
		case '"', '\\', '/':
			out = append(out, esc)
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			r, ok := hex4(lit[i:])
			if !ok {
				return "", ErrBadEscape
			}
			i += 4
			if !utf16.IsSurrogate(r) {
				out = utf8.AppendRune(out, r)
				break
			}
			if r < 0xDC00 && i+6 <= len(lit) && lit[i] == '\\' && lit[i+1] == 'u' {
				if r2, ok := hex4(lit[i+2:]); ok && r2 >= 0xDC00 && r2 < 0xE000 {
					out = utf8.AppendRune(out, utf16.DecodeRune(r, r2))
					i += 6
					break
				}
			}
			out = AppendSurrogate(out, r)
		default:
			return "", ErrBadEscape
		}
	}
	return string(out), nil
}

// AppendSurrogate appends the 3-byte generalized UTF-8 encoding of the
// surrogate code unit r to b.
func AppendSurrogate(b []byte, r rune) []byte {
	return append(b, 0xE0|byte(r>>12), 0x80|byte(r>>6)&0x3F, 0x80|byte(r)&0x3F)
}

func hex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	var r rune
	for _, c := range b[:4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r |= rune(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return r, true
}
