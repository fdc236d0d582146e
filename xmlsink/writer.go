package xmlsink

import (
	"errors"
	"fmt"
	"io"
	"strings"

	xw "github.com/shabbyrobe/xmlwriter"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Config holds the settings of a Writer.
type Config struct {
	// IANA name of the output encoding.  Empty means UTF-8.
	Encoding string

	// Indent the output, one element per line.
	Indent bool
}

var (
	ErrNoOpenElement       = errors.New("no open element")
	ErrMisplacedAttribute  = errors.New("attribute must follow the start of an element")
	ErrDocumentStarted     = errors.New("document already started")
	ErrUnboundNamespace    = errors.New("namespace is not the default namespace")
	ErrEncodingMismatch    = errors.New("declared encoding differs from the output encoding")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// Writer is a Sink writing XML text to an io.Writer.
//
// Only the default namespace is supported: elements are written without a
// prefix and an xmlns attribute is added to an element whenever its
// namespace differs from its parent's.
//
// Output is buffered; call Flush to push it to the underlying writer.
type Writer struct {
	xw       *xw.Writer
	encoding encoding.Encoding
	encName  string

	defaultNS string

	// Namespace of each open element
	scopes []string

	// The last element was opened by EmptyElement and is still open for
	// attributes
	inEmpty bool

	// Attributes can be written
	attrOK bool

	started bool
}

var _ Sink = &Writer{}

// NewWriter returns a Writer sending its output to w.  Characters which the
// encoding cannot represent are written as character references.
func NewWriter(w io.Writer, cfg Config) (*Writer, error) {
	var opts []xw.Option
	if cfg.Indent {
		opts = append(opts, xw.WithIndent())
	}
	enc, name, err := LookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	sw := &Writer{encoding: enc, encName: name}
	if enc == unicode.UTF8 {
		sw.xw = xw.Open(w, opts...)
	} else {
		sw.xw = xw.OpenEncoding(w, name, encoding.HTMLEscapeUnsupported(enc.NewEncoder()), opts...)
	}
	return sw, nil
}

// LookupEncoding finds an encoding by its IANA name or alias, returning it
// with its preferred name.  An empty name means UTF-8.
func LookupEncoding(name string) (encoding.Encoding, string, error) {
	if name == "" {
		return unicode.UTF8, "UTF-8", nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
	// Prefer the MIME name, which is what XML declarations use
	canonical, err := ianaindex.MIME.Name(enc)
	if err != nil {
		if canonical, err = ianaindex.IANA.Name(enc); err != nil {
			canonical = strings.ToUpper(name)
		}
	}
	return enc, canonical, nil
}

// Encoding returns the canonical name of the output encoding.
func (w *Writer) Encoding() string {
	return w.encName
}

// StartDocument writes the XML declaration.  The encoding must name the
// encoding the Writer was configured with, possibly by an alias.  The
// declaration always uses the preferred name.
func (w *Writer) StartDocument(encodingName, version string) error {
	if w.started {
		return ErrDocumentStarted
	}
	enc, _, err := LookupEncoding(encodingName)
	if err != nil {
		return err
	}
	if enc != w.encoding {
		return fmt.Errorf("%w: %s vs %s", ErrEncodingMismatch, encodingName, w.encName)
	}
	w.started = true
	decl := fmt.Sprintf(`<?xml version="%s" encoding="%s"?>`, version, w.encName)
	return w.xw.Write(xw.Raw(decl))
}

// SetDefaultNamespace sets the namespace of the elements which are written
// without a prefix.
func (w *Writer) SetDefaultNamespace(uri string) error {
	w.defaultNS = uri
	return nil
}

func (w *Writer) StartElement(namespace, localName string) error {
	if err := w.closeEmpty(); err != nil {
		return err
	}
	return w.openElement(namespace, localName)
}

func (w *Writer) EmptyElement(namespace, localName string) error {
	if err := w.closeEmpty(); err != nil {
		return err
	}
	if err := w.openElement(namespace, localName); err != nil {
		return err
	}
	w.inEmpty = true
	return nil
}

func (w *Writer) openElement(namespace, localName string) error {
	if namespace != "" && namespace != w.defaultNS {
		return fmt.Errorf("%w: %s", ErrUnboundNamespace, namespace)
	}
	if err := w.xw.Start(xw.Elem{Name: localName}); err != nil {
		return err
	}
	var parentNS string
	if len(w.scopes) > 0 {
		parentNS = w.scopes[len(w.scopes)-1]
	}
	w.scopes = append(w.scopes, namespace)
	w.attrOK = true
	if namespace != parentNS {
		return w.xw.Write(xw.Attr{Name: "xmlns", Value: namespace})
	}
	return nil
}

func (w *Writer) EndElement() error {
	if err := w.closeEmpty(); err != nil {
		return err
	}
	return w.endElement()
}

func (w *Writer) endElement() error {
	if len(w.scopes) == 0 {
		return ErrNoOpenElement
	}
	w.scopes = w.scopes[:len(w.scopes)-1]
	w.attrOK = false
	return w.xw.End(xw.ElemNode)
}

func (w *Writer) closeEmpty() error {
	if !w.inEmpty {
		return nil
	}
	w.inEmpty = false
	return w.endElement()
}

func (w *Writer) Attribute(localName, value string) error {
	if !w.attrOK {
		return ErrMisplacedAttribute
	}
	return w.xw.Write(xw.Attr{Name: localName, Value: value})
}

// Characters writes text content, escaped as needed.  Nothing is written for
// an empty text.
//
// Carriage returns are written as character references, otherwise parsers
// would read them back as line feeds.
func (w *Writer) Characters(text string) error {
	if err := w.closeEmpty(); err != nil {
		return err
	}
	if len(w.scopes) == 0 {
		return ErrNoOpenElement
	}
	if text == "" {
		return nil
	}
	w.attrOK = false
	if !strings.ContainsRune(text, '\r') {
		return w.xw.Write(xw.Text(text))
	}
	// Raw content goes inside the start tag until the element is opened
	if err := w.xw.Next(); err != nil {
		return err
	}
	for i, line := range strings.Split(text, "\r") {
		if i > 0 {
			if err := w.xw.Write(xw.Raw(crRef)); err != nil {
				return err
			}
		}
		if line != "" {
			if err := w.xw.Write(xw.Text(line)); err != nil {
				return err
			}
		}
	}
	return nil
}

const crRef = "&#xD;"

// EndDocument closes all open elements.
func (w *Writer) EndDocument() error {
	if err := w.closeEmpty(); err != nil {
		return err
	}
	w.scopes = w.scopes[:0]
	w.attrOK = false
	return w.xw.EndAll()
}

func (w *Writer) Flush() error {
	return w.xw.Flush()
}
