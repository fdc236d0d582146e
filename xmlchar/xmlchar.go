// Package xmlchar replaces characters which XML does not allow in documents.
//
// Legal characters are those of the XML 1.0 Char production:
//
//	#x9 | #xA | #xD | [#x20-#xD7FF] | [#xE000-#xFFFD] | [#x10000-#x10FFFF]
//
// These are also legal in XML 1.1 documents.  Every other code point is
// replaced with U+FFFD.
package xmlchar

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Replacement is substituted for illegal code points.
const Replacement = '\uFFFD'

// IsLegal reports whether r may appear in an XML document.
func IsLegal(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

// Sanitize returns s with every illegal code point replaced by U+FFFD.
//
// Besides valid UTF-8, s may contain UTF-16 surrogates in their 3-byte
// generalized UTF-8 form (see token.Unquote).  A high surrogate directly
// followed by a low surrogate is read as the code point of the pair, which is
// legal and is written out as UTF-8.  Any other surrogate counts as one
// illegal code point.  Other invalid UTF-8 bytes are replaced one by one.
//
// If s is already legal it is returned as is.
func Sanitize(s string) string {
	i := firstIllegal(s)
	if i == len(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteString(s[:i])
	for i < len(s) {
		if hi, ok := surrogateAt(s, i); ok {
			i += surrogateLen
			if lo, ok := surrogateAt(s, i); ok && hi < 0xDC00 && lo >= 0xDC00 {
				b.WriteRune(utf16.DecodeRune(hi, lo))
				i += surrogateLen
			} else {
				b.WriteRune(Replacement)
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || !IsLegal(r) {
			b.WriteRune(Replacement)
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// SanitizeUTF16 does the same as Sanitize on UTF-16 code units.  A valid
// surrogate pair is kept as both its units.  If u is already legal it is
// returned as is.
func SanitizeUTF16(u []uint16) []uint16 {
	var out []uint16
	for i := 0; i < len(u); i++ {
		c := rune(u[i])
		if c >= 0xD800 && c < 0xDC00 && i+1 < len(u) && u[i+1] >= 0xDC00 && u[i+1] < 0xE000 {
			// A pair always encodes a code point in [0x10000, 0x10FFFF]
			if out != nil {
				out = append(out, u[i], u[i+1])
			}
			i++
			continue
		}
		if IsLegal(c) {
			if out != nil {
				out = append(out, u[i])
			}
			continue
		}
		if out == nil {
			out = make([]uint16, i, len(u))
			copy(out, u[:i])
		}
		out = append(out, Replacement)
	}
	if out == nil {
		return u
	}
	return out
}

// firstIllegal returns the index of the first byte of s which needs
// replacing, or len(s).
func firstIllegal(s string) int {
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c < 0x20 && c != 0x9 && c != 0xA && c != 0xD {
				return i
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || !IsLegal(r) {
			return i
		}
		i += size
	}
	return len(s)
}

const surrogateLen = 3

// surrogateAt decodes the generalized UTF-8 encoding of a surrogate at s[i:].
func surrogateAt(s string, i int) (rune, bool) {
	if i+surrogateLen > len(s) || s[i] != 0xED || s[i+1] < 0xA0 || s[i+1] > 0xBF || s[i+2]&0xC0 != 0x80 {
		return 0, false
	}
	return 0xD000 | rune(s[i+1]&0x3F)<<6 | rune(s[i+2]&0x3F), true
}
