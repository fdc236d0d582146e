// Package convert turns a stream of JSON tokens into XML, following the
// representation of JSON used by the XPath 3.1 json-to-xml function.
//
// Objects become map elements and arrays become array elements.  Scalars
// become string, number, boolean and null elements.  Members of an object
// carry their name in a key attribute.  All elements are in the namespace
// http://www.w3.org/2005/xpath-functions, which is the default namespace of
// the document.
//
// Characters which XML does not allow are replaced with U+FFFD in keys and
// string values.
package convert

import (
	"fmt"
	"io"

	"github.com/arnodel/json2xml/encoding/json"
	"github.com/arnodel/json2xml/internal/debug"
	"github.com/arnodel/json2xml/token"
	"github.com/arnodel/json2xml/xmlchar"
	"github.com/arnodel/json2xml/xmlsink"
)

// Namespace of all the elements in the output.
const Namespace = "http://www.w3.org/2005/xpath-functions"

const (
	MapElement     = "map"
	ArrayElement   = "array"
	StringElement  = "string"
	NumberElement  = "number"
	BooleanElement = "boolean"
	NullElement    = "null"
	KeyAttribute   = "key"
)

// Stats counts what a conversion processed.
type Stats struct {
	Events   int
	Elements int
}

// A Converter writes the XML for the JSON tokens of a source to a sink.  It
// can only be used once.
type Converter struct {
	src  token.Source
	sink xmlsink.Sink
	opts Options

	// Sanitized name of the object member whose value comes next
	pendingKey *string

	depth int
	stats Stats
	used  bool
}

// New returns a Converter from src to sink.  The Converter owns src and
// closes it at the end of Convert.
func New(src token.Source, sink xmlsink.Sink, opts ...Option) (*Converter, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Converter{src: src, sink: sink, opts: o}, nil
}

// Convert reads all the tokens from src and writes the XML document to sink.
// src is closed before Convert returns, whatever the outcome.
func Convert(src token.Source, sink xmlsink.Sink, opts ...Option) error {
	c, err := New(src, sink, opts...)
	if err != nil {
		src.Close()
		return err
	}
	return c.Convert()
}

// ConvertReader reads a JSON document from r and writes it as XML to w.  If
// r is an io.Closer it is closed.
func ConvertReader(r io.Reader, w io.Writer, opts ...Option) error {
	decoder := json.NewDecoder(r)
	o, err := buildOptions(opts)
	if err != nil {
		decoder.Close()
		return err
	}
	sink, err := xmlsink.NewWriter(w, xmlsink.Config{Encoding: o.Encoding, Indent: o.Indent})
	if err != nil {
		decoder.Close()
		return err
	}
	return Convert(decoder, sink, opts...)
}

// Stats returns the counts so far.
func (c *Converter) Stats() Stats {
	return c.stats
}

// Convert runs the conversion.  On error the output is left incomplete.
//
// Errors from the source are returned as they are (e.g. *json.SyntaxError).
// Sink errors are wrapped in a *WriteError.  If the source fails to close, a
// *ResourceError is returned even if the document was written successfully.
func (c *Converter) Convert() (err error) {
	if c.used {
		return ErrConverted
	}
	c.used = true
	defer func() {
		if closeErr := c.src.Close(); closeErr != nil && err == nil {
			err = &ResourceError{Err: closeErr}
		}
	}()

	if err := c.check("start document", c.sink.StartDocument(c.opts.Encoding, c.opts.Version)); err != nil {
		return err
	}
	if err := c.check("namespace", c.sink.SetDefaultNamespace(Namespace)); err != nil {
		return err
	}
	for {
		tok, err := c.src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := c.process(tok); err != nil {
			return err
		}
		c.stats.Events++
		if !c.opts.BatchFlush {
			if err := c.check("flush", c.sink.Flush()); err != nil {
				return err
			}
		}
	}
	if err := c.check("end document", c.sink.EndDocument()); err != nil {
		return err
	}
	return c.check("flush", c.sink.Flush())
}

func (c *Converter) process(tok token.Token) error {
	if debug.On {
		debug.Trace("token", "token", tok, "depth", c.depth, "pendingKey", c.pendingKey != nil)
	}
	switch t := tok.(type) {
	case *token.StartObject:
		return c.startContainer(MapElement)
	case *token.StartArray:
		return c.startContainer(ArrayElement)
	case *token.EndObject, *token.EndArray:
		return c.endContainer()
	case *token.Scalar:
		return c.scalar(t)
	default:
		return fmt.Errorf("unexpected token: %s", tok)
	}
}

func (c *Converter) scalar(t *token.Scalar) error {
	text, err := t.Text()
	if err != nil {
		return err
	}
	if t.IsKey() {
		// Overwrites any key left over, which can only come from a broken
		// token stream
		key := xmlchar.Sanitize(text)
		c.pendingKey = &key
		return nil
	}
	switch t.Type() {
	case token.String:
		return c.textElement(StringElement, xmlchar.Sanitize(text))
	case token.Number:
		return c.textElement(NumberElement, text)
	case token.Boolean:
		return c.textElement(BooleanElement, text)
	default:
		if err := c.check("empty element", c.sink.EmptyElement(Namespace, NullElement)); err != nil {
			return err
		}
		c.stats.Elements++
		return c.writeKey()
	}
}

func (c *Converter) startContainer(name string) error {
	if err := c.check("start element", c.sink.StartElement(Namespace, name)); err != nil {
		return err
	}
	c.depth++
	c.stats.Elements++
	return c.writeKey()
}

func (c *Converter) endContainer() error {
	if c.depth == 0 {
		return ErrUnbalanced
	}
	c.depth--
	return c.check("end element", c.sink.EndElement())
}

func (c *Converter) textElement(name, text string) error {
	if err := c.check("start element", c.sink.StartElement(Namespace, name)); err != nil {
		return err
	}
	c.stats.Elements++
	if err := c.writeKey(); err != nil {
		return err
	}
	if err := c.check("characters", c.sink.Characters(text)); err != nil {
		return err
	}
	return c.check("end element", c.sink.EndElement())
}

// writeKey writes the pending key, if any, as the key attribute of the
// element just opened.
func (c *Converter) writeKey() error {
	if c.pendingKey == nil {
		return nil
	}
	key := *c.pendingKey
	c.pendingKey = nil
	return c.check("attribute", c.sink.Attribute(KeyAttribute, key))
}

func (c *Converter) check(op string, err error) error {
	if err != nil {
		return &WriteError{Op: op, Err: err}
	}
	return nil
}
