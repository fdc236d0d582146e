package json

import (
	"fmt"
	"io"

	"github.com/arnodel/json2xml/internal/scanner"
	"github.com/arnodel/json2xml/token"
)

// A Decoder reads one JSON value from its input and returns it as a sequence
// of tokens, one per call to Next.  Keys of objects are returned as string
// scalars with the token.KeyMask flag set.
//
// The Decoder does not build the value in memory.  It only keeps a stack
// recording whether each open container is an array or an object.
type Decoder struct {
	scanr  *scanner.Scanner
	closer io.Closer

	// For each open container, whether it is an object
	stack  []bool
	expect expectation

	err    error
	closed bool
}

var _ token.Source = &Decoder{}

// What the decoder expects to find next in the input
type expectation uint8

const (
	expectValue expectation = iota
	expectValueOrEndArray
	expectKeyOrEndObject
	expectKey
	expectColon
	expectCommaOrEnd
	expectEOF
)

// NewDecoder sets up a new Decoder instance to read from the given input.  If
// in is an io.Closer, Close closes it.
func NewDecoder(in io.Reader) *Decoder {
	d := &Decoder{scanr: scanner.NewScanner(in)}
	if c, ok := in.(io.Closer); ok {
		d.closer = c
	}
	return d
}

// Next returns the next token in the input.  It returns io.EOF after the
// value is complete and only whitespace follows it.  Any other error is
// returned again by subsequent calls.
func (d *Decoder) Next() (token.Token, error) {
	if d.closed {
		return nil, token.ErrClosed
	}
	if d.err != nil {
		return nil, d.err
	}
	tok, err := d.next()
	if err != nil {
		d.err = err
	}
	return tok, err
}

// Close releases the input.  It is safe to call more than once.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// Depth is the number of containers currently open.
func (d *Decoder) Depth() int {
	return len(d.stack)
}

func (d *Decoder) next() (token.Token, error) {
	for {
		b, err := d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return nil, err
		}
		switch d.expect {
		case expectValue:
			return d.parseValue(b)
		case expectValueOrEndArray:
			if b == ']' {
				return d.endContainer()
			}
			return d.parseValue(b)
		case expectKeyOrEndObject:
			if b == '}' {
				return d.endContainer()
			}
			return d.parseKey(b)
		case expectKey:
			return d.parseKey(b)
		case expectColon:
			if b != ':' {
				return nil, d.unexpected("expected ':', got")
			}
			d.scanr.Read()
			d.expect = expectValue
		case expectCommaOrEnd:
			inObject := d.stack[len(d.stack)-1]
			switch {
			case b == ',':
				d.scanr.Read()
				if inObject {
					d.expect = expectKey
				} else {
					d.expect = expectValue
				}
			case b == '}' && inObject, b == ']' && !inObject:
				return d.endContainer()
			case inObject:
				return nil, d.unexpected("expected '}' or ',', got")
			default:
				return nil, d.unexpected("expected ']' or ',', got")
			}
		case expectEOF:
			if b == scanner.EOF && d.scanr.Exhausted() {
				return nil, io.EOF
			}
			return nil, d.unexpected("expected end of input, got")
		default:
			panic("invalid decoder state")
		}
	}
}

// parseValue reads the start of a value, which is the whole value for a
// scalar.
func (d *Decoder) parseValue(b byte) (token.Token, error) {
	switch b {
	case '"':
		s, err := ParseString(d.scanr)
		if err != nil {
			return nil, err
		}
		d.endValue()
		return s, nil
	case '[':
		d.scanr.Read()
		d.stack = append(d.stack, false)
		d.expect = expectValueOrEndArray
		return &token.StartArray{}, nil
	case '{':
		d.scanr.Read()
		d.stack = append(d.stack, true)
		d.expect = expectKeyOrEndObject
		return &token.StartObject{}, nil
	case 't':
		return d.parseLiteral(token.TrueScalar)
	case 'f':
		return d.parseLiteral(token.FalseScalar)
	case 'n':
		return d.parseLiteral(token.NullScalar)
	default:
		if b == '-' || scanner.IsDigit(b) {
			n, err := ParseNumber(d.scanr)
			if err != nil {
				return nil, err
			}
			d.endValue()
			return n, nil
		}
		return nil, d.unexpected("expected value, got")
	}
}

func (d *Decoder) parseKey(b byte) (token.Token, error) {
	if b != '"' {
		return nil, d.unexpected("expected string key, got")
	}
	key, err := ParseString(d.scanr)
	if err != nil {
		return nil, err
	}
	key.TypeAndFlags |= token.KeyMask
	d.expect = expectColon
	return key, nil
}

func (d *Decoder) parseLiteral(lit *token.Scalar) (token.Token, error) {
	for _, xb := range lit.Bytes {
		if err := ExpectByte(d.scanr, xb); err != nil {
			return nil, err
		}
	}
	d.endValue()
	return lit, nil
}

func (d *Decoder) endContainer() (token.Token, error) {
	b, err := d.scanr.Read()
	if err != nil {
		return nil, err
	}
	d.stack = d.stack[:len(d.stack)-1]
	d.endValue()
	if b == '}' {
		return &token.EndObject{}, nil
	}
	return &token.EndArray{}, nil
}

func (d *Decoder) endValue() {
	if len(d.stack) == 0 {
		d.expect = expectEOF
	} else {
		d.expect = expectCommaOrEnd
	}
}

func (d *Decoder) unexpected(expected string) error {
	return UnexpectedByte(d.scanr, "%s", expected)
}

// A SyntaxError reports invalid JSON input.  Line and Col are one-based.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at L%d,C%d: %s", e.Line, e.Col, e.Msg)
}

func newSyntaxError(pos scanner.Pos, msg string) *SyntaxError {
	return &SyntaxError{Line: pos.Line + 1, Col: pos.Col + 1, Msg: msg}
}

// ExpectByte reads the next byte and fails if it is not xb.
func ExpectByte(scanr *scanner.Scanner, xb byte) error {
	b, err := scanr.Read()
	if err != nil {
		return err
	}
	if b != xb {
		scanr.Back()
		return UnexpectedByte(scanr, "expected %q, got", xb)
	}
	return nil
}

// UnexpectedByte returns a *SyntaxError about the next byte in the input.
func UnexpectedByte(scanr *scanner.Scanner, expected string, args ...interface{}) error {
	pos := scanr.CurrentPos()
	b, err := scanr.Read()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf(expected, args...)
	if b == scanner.EOF && scanr.Exhausted() {
		return newSyntaxError(pos, msg+": <EOF>")
	}
	return newSyntaxError(pos, fmt.Sprintf("%s: %q", msg, b))
}

// ParseString reads a JSON string literal, checking its escapes.  The
// returned scalar holds the literal, quotes included.
func ParseString(scanr *scanner.Scanner) (*token.Scalar, error) {
	scanr.StartToken()
	if err := ExpectByte(scanr, '"'); err != nil {
		return nil, err
	}
	isUnescaped := true
	for {
		b, err := scanr.Read()
		if err != nil {
			return nil, err
		}
		switch {
		case b == '"':
			scalar := token.NewScalar(token.String, scanr.EndToken())
			if isUnescaped {
				scalar.TypeAndFlags |= token.UnescapedMask
			}
			return scalar, nil
		case b == '\\':
			isUnescaped = false
			x, err := scanr.Read()
			if err != nil {
				return nil, err
			}
			switch x {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
			case 'u':
				for i := 0; i < 4; i++ {
					b, err = scanr.Read()
					if err != nil {
						return nil, err
					}
					if !scanner.IsHex(b) {
						scanr.Back()
						return nil, UnexpectedByte(scanr, "expected hex, got")
					}
				}
			default:
				scanr.Back()
				return nil, UnexpectedByte(scanr, "invalid escape character")
			}
		case b == scanner.EOF && scanr.Exhausted():
			scanr.Back()
			return nil, UnexpectedByte(scanr, "unterminated string")
		case scanner.IsCtrl(b):
			scanr.Back()
			return nil, UnexpectedByte(scanr, "invalid control character in string")
		}
	}
}

// ParseNumber parses a JSON number from the scanner.
func ParseNumber(scanr *scanner.Scanner) (*token.Scalar, error) {
	scanr.StartToken()
	var n int
	b, err := scanr.Read()

	// Sign part
	if b == '-' {
		b, err = scanr.Read()
	}
	if err != nil {
		return nil, err
	}

	// Integer part
	if b == '0' {
		b, err = scanr.Read()
		if err != nil {
			return nil, err
		}
	} else if b >= '1' && b <= '9' {
		b, _, err = ReadDigits(scanr)
		if err != nil {
			return nil, err
		}
	} else {
		scanr.Back()
		return nil, UnexpectedByte(scanr, "expected digit, got")
	}

	// Fraction part
	if b == '.' {
		b, n, err = ReadDigits(scanr)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			scanr.Back()
			return nil, UnexpectedByte(scanr, "expected digit, got")
		}
	}

	// Exponent part
	if b == 'e' || b == 'E' {
		b, err = scanr.Peek()
		if err != nil {
			return nil, err
		}
		if b == '-' || b == '+' {
			scanr.Read()
		}
		_, n, err = ReadDigits(scanr)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			scanr.Back()
			return nil, UnexpectedByte(scanr, "expected digit, got")
		}
	}
	scanr.Back()
	return token.NewScalar(token.Number, scanr.EndToken()), nil
}

// ReadDigits reads decimal digits and the byte following them, returning
// that byte and the number of digits.
func ReadDigits(scanr *scanner.Scanner) (byte, int, error) {
	var n int
	for {
		b, err := scanr.Read()
		if err != nil {
			return 0, n, err
		}
		if !scanner.IsDigit(b) {
			return b, n, nil
		}
		n++
	}
}
