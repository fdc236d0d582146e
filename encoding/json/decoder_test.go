package json

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/arnodel/json2xml/token"
)

// TestDecoderSimpleValues tests decoding of top-level scalar values
func TestDecoderSimpleValues(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"true", "true", "Scalar(true)"},
		{"false", "false", "Scalar(false)"},
		{"null", "null", "Scalar(null)"},
		{"integer", "42", "Scalar(42)"},
		{"negative integer", "-123", "Scalar(-123)"},
		{"zero", "0", "Scalar(0)"},
		{"float", "3.14", "Scalar(3.14)"},
		{"scientific notation", "1.5e10", "Scalar(1.5e10)"},
		{"exponent with sign", "-1.23E-45", "Scalar(-1.23E-45)"},
		{"simple string", `"hello"`, `Scalar("hello")`},
		{"empty string", `""`, `Scalar("")`},
		{"surrounding whitespace", " \n\t 7 \r\n", "Scalar(7)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecodesTo(t, tt.input, tt.expected)
		})
	}
}

// TestDecoderStrings tests that string literals are kept verbatim
func TestDecoderStrings(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		unescaped bool
	}{
		{"string with spaces", `"hello world"`, true},
		{"string with escaped quotes", `"hello \"world\""`, false},
		{"string with backslash", `"hello\\world"`, false},
		{"string with form feed", `"a\fb"`, false},
		{"string with unicode escape", `"hello\u0041world"`, false},
		{"string with surrogate escapes", `"\ud83d\ude00"`, false},
		{"string with emoji", `"hello 😀 world"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := decodeString(t, tt.input)
			if len(toks) != 1 {
				t.Fatalf("expected 1 token, got %d", len(toks))
			}
			scalar, ok := toks[0].(*token.Scalar)
			if !ok {
				t.Fatalf("expected scalar token, got %T", toks[0])
			}
			if scalar.Type() != token.String {
				t.Errorf("expected String type, got %v", scalar.Type())
			}
			if string(scalar.Bytes) != tt.input {
				t.Errorf("expected %q, got %q", tt.input, string(scalar.Bytes))
			}
			if scalar.IsUnescaped() != tt.unescaped {
				t.Errorf("expected IsUnescaped() = %t", tt.unescaped)
			}
		})
	}
}

// TestDecoderContainers tests arrays and objects
func TestDecoderContainers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty array", "[]", "StartArray EndArray"},
		{"empty object", "{}", "StartObject EndObject"},
		{"empty containers with spaces", "[ { } , [ ] ]", "StartArray StartObject EndObject StartArray EndArray EndArray"},
		{
			"array with mixed types",
			`[1, "x", true, null]`,
			`StartArray Scalar(1) Scalar("x") Scalar(true) Scalar(null) EndArray`,
		},
		{
			"object with one pair",
			`{"a": "c"}`,
			`StartObject Key("a") Scalar("c") EndObject`,
		},
		{
			"object member order is kept",
			`{"z": 1, "a": 2}`,
			`StartObject Key("z") Scalar(1) Key("a") Scalar(2) EndObject`,
		},
		{
			"nested",
			`{"user": {"tags": ["a", []], "n": null}}`,
			`StartObject Key("user") StartObject Key("tags") StartArray Scalar("a") StartArray EndArray EndArray Key("n") Scalar(null) EndObject EndObject`,
		},
		{
			"number before closing bracket",
			`[1,2.5e3]`,
			`StartArray Scalar(1) Scalar(2.5e3) EndArray`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecodesTo(t, tt.input, tt.expected)
		})
	}
}

// TestDecoderErrors tests various error conditions
func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty input", "", `syntax error at L1,C1: expected value, got: <EOF>`},
		{"missing colon", `{"key" "value"}`, `syntax error at L1,C8: expected ':', got: '"'`},
		{"missing comma in array", `[1 2]`, `syntax error at L1,C4: expected ']' or ',', got: '2'`},
		{"missing comma in object", `{"a": 1 "b": 2}`, `syntax error at L1,C9: expected '}' or ',', got: '"'`},
		{"non string key", `{1: 2}`, `syntax error at L1,C2: expected string key, got: '1'`},
		{"trailing comma", `[1,]`, `syntax error at L1,C4: expected value, got: ']'`},
		{"mismatched bracket", `[1}`, `syntax error at L1,C3: expected ']' or ',', got: '}'`},
		{"unclosed array", "[1,\n2", `syntax error at L2,C2: expected ']' or ',', got: <EOF>`},
		{"unterminated string", `"abc`, `syntax error at L1,C5: unterminated string: <EOF>`},
		{"control char in string", "\"hello\x00world\"", `syntax error at L1,C7: invalid control character in string: '\x00'`},
		{"invalid escape", `"\x"`, `syntax error at L1,C3: invalid escape character: 'x'`},
		{"bad unicode escape", `"\u12G4"`, `syntax error at L1,C6: expected hex, got: 'G'`},
		{"bad literal", `tru`, `syntax error at L1,C4: expected 'e', got: <EOF>`},
		{"bad number", `-x`, `syntax error at L1,C2: expected digit, got: 'x'`},
		{"missing fraction digits", `1.e5`, `syntax error at L1,C3: expected digit, got: 'e'`},
		{"trailing data", `{} {}`, `syntax error at L1,C4: expected end of input, got: '{'`},
		{"two values", `42 "hello"`, `syntax error at L1,C4: expected end of input, got: '"'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.Collect(NewDecoder(strings.NewReader(tt.input)))
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("expected syntax error, got %v", err)
			}
			if err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, err.Error())
			}
		})
	}
}

func TestDecoderErrorIsSticky(t *testing.T) {
	decoder := NewDecoder(strings.NewReader(`[1 2]`))
	toks, err := token.Collect(decoder)
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(toks) != 2 {
		t.Errorf("expected 2 tokens before the error, got %d", len(toks))
	}
	if _, err2 := decoder.Next(); err2 != err {
		t.Errorf("expected the same error again, got %v", err2)
	}
}

// TestDecoderStreaming checks that tokens are available before the input is
// complete.
func TestDecoderStreaming(t *testing.T) {
	pr, pw := io.Pipe()
	decoder := NewDecoder(pr)
	go pw.Write([]byte(`[{"a": `))

	expected := []string{"StartArray", "StartObject", `Key("a")`}
	for _, x := range expected {
		tok, err := decoder.Next()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if tok.String() != x {
			t.Fatalf("expected %s, got %s", x, tok)
		}
	}
	go func() {
		pw.Write([]byte(`1}]`))
		pw.Close()
	}()
	toks, err := token.Collect(decoder)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := tokensString(toks); got != "Scalar(1) EndObject EndArray" {
		t.Errorf("unexpected tokens: %s", got)
	}
}

// TestDecoderLargeArray tests handling of large arrays
func TestDecoderLargeArray(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 1000; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(`"a string which is long enough to cross buffer boundaries"`)
	}
	sb.WriteString("]")

	toks := decodeString(t, sb.String())

	// Should have: StartArray + 1000 strings + EndArray = 1002 tokens
	if len(toks) != 1002 {
		t.Errorf("expected %d tokens, got %d", 1002, len(toks))
	}
	for _, tok := range toks[1:1001] {
		s := tok.(*token.Scalar)
		if string(s.Bytes) != `"a string which is long enough to cross buffer boundaries"` {
			t.Fatalf("corrupted token: %s", s)
		}
	}
}

// TestDecoderDeepNesting tests deeply nested structures
func TestDecoderDeepNesting(t *testing.T) {
	depth := 500
	input := strings.Repeat(`{"k":[`, depth) + "42" + strings.Repeat("]}", depth)

	toks := decodeString(t, input)

	// Each level has StartObject, Key, StartArray, EndArray, EndObject
	if expected := depth*5 + 1; len(toks) != expected {
		t.Errorf("expected %d tokens, got %d", expected, len(toks))
	}
}

type closeRecorder struct {
	io.Reader
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

// TestDecoderScalarValues compares decoded scalars with constructed ones
func TestDecoderScalarValues(t *testing.T) {
	toks := decodeString(t, `{"k": [true, false, null, -1.5e3, "a\u0041"], "n": 0}`)
	expected := []*token.Scalar{
		token.KeyScalar("k"),
		token.BoolScalar(true),
		token.BoolScalar(false),
		token.NullScalar,
		token.NumberScalar("-1.5e3"),
		token.StringScalar("aA"),
		token.KeyScalar("n"),
		token.NumberScalar("0"),
	}
	var scalars []*token.Scalar
	for _, tok := range toks {
		if s, ok := tok.(*token.Scalar); ok {
			scalars = append(scalars, s)
		}
	}
	if len(scalars) != len(expected) {
		t.Fatalf("expected %d scalars, got %d", len(expected), len(scalars))
	}
	for i, s := range scalars {
		if !s.Equal(expected[i]) {
			t.Errorf("scalar %d: expected %s, got %s", i, expected[i], s)
		}
	}
	if scalars[0].Equal(token.StringScalar("k")) {
		t.Errorf("key should not equal a string value")
	}
	if scalars[4].Equal(token.NumberScalar("-1500")) {
		t.Errorf("numbers are compared by literal")
	}
}

func TestDecoderClose(t *testing.T) {
	rc := &closeRecorder{Reader: strings.NewReader("[]")}
	decoder := NewDecoder(rc)
	if _, err := decoder.Next(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if decoder.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", decoder.Depth())
	}
	if err := decoder.Close(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := decoder.Close(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if rc.closed != 1 {
		t.Errorf("expected reader to be closed once, got %d", rc.closed)
	}
	if _, err := decoder.Next(); err != token.ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

// Helper functions

// decodeString decodes a JSON string and returns all tokens
func decodeString(t *testing.T, input string) []token.Token {
	t.Helper()
	toks, err := token.Collect(NewDecoder(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return toks
}

func assertDecodesTo(t *testing.T, input string, expected string) {
	t.Helper()
	if got := tokensString(decodeString(t, input)); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func tokensString(toks []token.Token) string {
	parts := make([]string, len(toks))
	for i, tok := range toks {
		parts[i] = tok.String()
	}
	return strings.Join(parts, " ")
}
