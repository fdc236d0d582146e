package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// A Token is an item in a stream that encodes a JSON value
// For example, the JSON value
//
//	{"id": 123, "tags": ["important", "new"]}
//
// would be represented by the stream of Token (in pseudocode for
// clarity):
//
//	{            -> StartObject
//	"id":        -> Key("id")
//	123,         -> Scalar(123, Number)
//	"tags":      -> Key("tags")
//	[            -> StartArray
//	"important", -> Scalar("important", String)
//	"new"        -> Scalar("new", String)
//	]            -> EndArray
//	}            -> EndObject
//
// A Source yields these one at a time, in document order.
type Token interface {
	fmt.Stringer
}

// StartObject represents the start of a JSON object (introduced by '{').
type StartObject struct{}

func (s *StartObject) String() string {
	return "StartObject"
}

var _ Token = &StartObject{}

// EndObject represents the end of a JSON object (introduced by '}')
type EndObject struct{}

func (e *EndObject) String() string {
	return "EndObject"
}

var _ Token = &EndObject{}

// StartArray represents the start of a JSON array (introduced by '[').
type StartArray struct{}

func (s *StartArray) String() string {
	return "StartArray"
}

var _ Token = &StartArray{}

// EndArray represents the end of a JSON array (introduced by ']')
type EndArray struct{}

func (e *EndArray) String() string {
	return "EndArray"
}

var _ Token = &EndArray{}

// Scalar is the type used to represent all scalar JSON values and object
// keys, i.e.
// - strings
// - numbers
// - booleans (to values)
// - null (a single value)
// - keys (strings with the KeyMask flag set)
//
// The type is encoded in the TypeAndFlags field, while the Bytes fields
// contains the literal representation of the value as found in the input.
type Scalar struct {

	// Literal representation of the value, e.g.
	// - the string "foo" is represented as []byte("\"foo\"")
	// - the number 123.5 is represented as []byte("123.5")
	// - the boolean true is represented as []byte("true")
	Bytes []byte

	// Type of the value
	TypeAndFlags uint8
}

func NewScalar(tp ScalarType, bytes []byte) *Scalar {
	return &Scalar{
		Bytes:        bytes,
		TypeAndFlags: uint8(tp),
	}
}

func NewKey(tp ScalarType, bytes []byte) *Scalar {
	return &Scalar{
		Bytes:        bytes,
		TypeAndFlags: uint8(tp) | KeyMask,
	}
}

func (s *Scalar) Type() ScalarType {
	return ScalarType(s.TypeAndFlags & TypeMask)
}

func (s *Scalar) IsKey() bool {
	return KeyMask&s.TypeAndFlags != 0
}

// IsUnescaped is true for string literals which contain no backslash, so
// their text is the literal without the quotes.
func (s *Scalar) IsUnescaped() bool {
	return UnescapedMask&s.TypeAndFlags != 0
}

func (s *Scalar) String() string {
	if s.IsKey() {
		return fmt.Sprintf("Key(%s)", s.Bytes)
	}
	return fmt.Sprintf("Scalar(%s)", s.Bytes)
}

// Text returns the text the scalar stands for.  For strings and keys it is
// the decoded string literal (see Unquote), for other scalars the literal
// itself.
func (s *Scalar) Text() (string, error) {
	if s.Type() != String {
		return string(s.Bytes), nil
	}
	if s.IsUnescaped() {
		return string(s.Bytes[1 : len(s.Bytes)-1]), nil
	}
	return Unquote(s.Bytes)
}

// Equal reports whether s and t are the same JSON scalar.  Keys are only
// equal to keys.
func (s *Scalar) Equal(t *Scalar) bool {
	if s == nil || t == nil {
		return false
	}
	if s.Type() != t.Type() || s.IsKey() != t.IsKey() {
		return false
	}
	switch s.Type() {
	case Null:
		return true
	case Boolean:
		// The bytes are "true" or "false", so it's enough to compare the first one
		return s.Bytes[0] == t.Bytes[0]
	case Number:
		return bytes.Equal(s.Bytes, t.Bytes)
	case String:
		if bytes.Equal(s.Bytes, t.Bytes) {
			return true
		}
		if s.IsUnescaped() && t.IsUnescaped() {
			return false
		}
		st, err1 := s.Text()
		tt, err2 := t.Text()
		return err1 == nil && err2 == nil && st == tt
	default:
		panic("invalid scalar type")
	}
}

// ScalarType encodes the four possible JSON scalar types.
type ScalarType uint8

const (
	Null    ScalarType = 0x0 // the type of JSON null
	Boolean ScalarType = 0x1 // a JSON boolean
	Number  ScalarType = 0x2 // a JSON number
	String  ScalarType = 0x3 // a JSON string
)

func (t ScalarType) String() string {
	switch t {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return "invalid"
	}
}

const (
	TypeMask      = 0b00011
	KeyMask       = 0b00100
	UnescapedMask = 0b01000
)

var (
	trueBytes  = []byte("true")
	falseBytes = []byte("false")
	nullBytes  = []byte("null")
)

var (
	TrueScalar  = NewScalar(Boolean, trueBytes)
	FalseScalar = NewScalar(Boolean, falseBytes)
	NullScalar  = NewScalar(Null, nullBytes)
)

// StringScalar returns a string scalar for s, JSON-encoded.
func StringScalar(s string) *Scalar {
	return NewScalar(String, quote(s))
}

// KeyScalar returns a key scalar for s, JSON-encoded.
func KeyScalar(s string) *Scalar {
	return NewKey(String, quote(s))
}

// NumberScalar returns a number scalar with the given literal, which is not
// checked.
func NumberScalar(literal string) *Scalar {
	return NewScalar(Number, []byte(literal))
}

func Int64Scalar(n int64) *Scalar {
	return NewScalar(Number, []byte(strconv.FormatInt(n, 10)))
}

func BoolScalar(b bool) *Scalar {
	if b {
		return TrueScalar
	}
	return FalseScalar
}

func quote(s string) []byte {
	var b bytes.Buffer
	encoder := json.NewEncoder(&b)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		panic(err)
	}
	// Remove the new line at the end
	return bytes.TrimSuffix(b.Bytes(), []byte{'\n'})
}
