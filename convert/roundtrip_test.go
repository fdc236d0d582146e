package convert

import (
	"bytes"
	stdjson "encoding/json"
	"encoding/xml"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// fromXML maps a document produced by Convert back to the value encoding/json
// would decode from the JSON input.
func fromXML(data []byte) (interface{}, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return readValue(dec, start)
		}
	}
}

func readValue(dec *xml.Decoder, start xml.StartElement) (interface{}, error) {
	if start.Name.Space != Namespace {
		return nil, fmt.Errorf("element %q in namespace %q", start.Name.Local, start.Name.Space)
	}
	switch start.Name.Local {
	case MapElement:
		m := map[string]interface{}{}
		err := readChildren(dec, func(child xml.StartElement) error {
			key, ok := keyAttr(child)
			if !ok {
				return fmt.Errorf("map member %q without a key", child.Name.Local)
			}
			v, err := readValue(dec, child)
			m[key] = v
			return err
		})
		return m, err
	case ArrayElement:
		a := []interface{}{}
		err := readChildren(dec, func(child xml.StartElement) error {
			if _, ok := keyAttr(child); ok {
				return fmt.Errorf("array item %q with a key", child.Name.Local)
			}
			v, err := readValue(dec, child)
			a = append(a, v)
			return err
		})
		return a, err
	case StringElement:
		return readText(dec)
	case NumberElement:
		text, err := readText(dec)
		if err != nil {
			return nil, err
		}
		return strconv.ParseFloat(text, 64)
	case BooleanElement:
		text, err := readText(dec)
		return text == "true", err
	case NullElement:
		_, err := readText(dec)
		return nil, err
	default:
		return nil, fmt.Errorf("unexpected element %q", start.Name.Local)
	}
}

func keyAttr(start xml.StartElement) (string, bool) {
	for _, attr := range start.Attr {
		if attr.Name.Space == "" && attr.Name.Local == KeyAttribute {
			return attr.Value, true
		}
	}
	return "", false
}

func readChildren(dec *xml.Decoder, child func(xml.StartElement) error) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := child(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return fmt.Errorf("unexpected text %q", t)
			}
		}
	}
}

func readText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			return b.String(), nil
		case xml.StartElement:
			return "", fmt.Errorf("unexpected element %q", t.Name.Local)
		}
	}
}

func assertRoundTrip(t *testing.T, input string, opts ...Option) {
	t.Helper()
	var expected interface{}
	require.NoError(t, stdjson.Unmarshal([]byte(input), &expected))

	var buf bytes.Buffer
	require.NoError(t, ConvertReader(strings.NewReader(input), &buf, opts...))
	actual, err := fromXML(buf.Bytes())
	require.NoError(t, err, buf.String())
	require.Equal(t, expected, actual, "input: %s\noutput: %s", input, buf.String())
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		`{"a": "c"}`,
		`[1, "x", true, null]`,
		`{}`,
		`[]`,
		`"top"`,
		`-2.5e-3`,
		`{"user": {"name": "Ann <&> \"Q\"", "tags": ["x", [], {}], "age": 42, "ok": false}}`,
		`{"": "", "é ": "😀", "tab": "a\tb", "lf": "line\nbreak"}`,
		`[[[[[["deep"]]]]]]`,
		`{"a": "x\r\ny\rz"}`,
		`["\r", "\r\n", "\n\r"]`,
	}
	for _, input := range inputs {
		assertRoundTrip(t, input)
	}
}

var (
	keyPieces  = []string{"a", "Z", "_", "-", " ", "é", "😀", "<", ">", "&", `"`, "'", "\\", "/", " "}
	textPieces = append([]string{"\t", "\n", "\r", "\r\n", "0"}, keyPieces...)
)

func randomText(rnd *rand.Rand, pieces []string) string {
	var b strings.Builder
	for n := rnd.Intn(6); n > 0; n-- {
		b.WriteString(pieces[rnd.Intn(len(pieces))])
	}
	return b.String()
}

func randomValue(rnd *rand.Rand, depth int) interface{} {
	kind := rnd.Intn(7)
	if depth > 3 {
		kind = rnd.Intn(4)
	}
	switch kind {
	case 0:
		return nil
	case 1:
		return rnd.Intn(2) == 0
	case 2:
		return float64(rnd.Intn(4000)-2000) / 8
	case 3:
		return randomText(rnd, textPieces)
	case 4, 5:
		a := make([]interface{}, rnd.Intn(4))
		for i := range a {
			a[i] = randomValue(rnd, depth+1)
		}
		return a
	default:
		m := map[string]interface{}{}
		for n := rnd.Intn(4); n > 0; n-- {
			m[randomText(rnd, keyPieces)] = randomValue(rnd, depth+1)
		}
		return m
	}
}

func TestRoundTripRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		data, err := stdjson.Marshal(randomValue(rnd, 0))
		require.NoError(t, err)
		assertRoundTrip(t, string(data))
		assertRoundTrip(t, string(data), WithBatchFlush())
	}
}

type testCase struct {
	Name    string `yaml:"name"`
	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	Error   string `yaml:"error"`
	Version string `yaml:"version"`
}

func loadCases(t *testing.T, path string) []testCase {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cases []testCase
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func TestCases(t *testing.T) {
	for _, tc := range loadCases(t, "testdata/cases.yaml") {
		t.Run(tc.Name, func(t *testing.T) {
			version := tc.Version
			if version == "" {
				version = "1.0"
			}
			var buf bytes.Buffer
			err := ConvertReader(strings.NewReader(tc.Input), &buf, WithVersion(version))
			if tc.Error != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.Error)
				return
			}
			require.NoError(t, err)
			decl := `<?xml version="` + version + `" encoding="UTF-8"?>`
			require.Equal(t, decl+tc.Output, buf.String())
		})
	}
}
