// Package xmlsink defines the streaming XML output used by the converter, and
// implements it on top of github.com/shabbyrobe/xmlwriter.
package xmlsink

// A Sink receives an XML document as a sequence of calls, in document order.
//
// Attribute applies to the element most recently opened with StartElement or
// EmptyElement, and must be called before any content is written to it.  An
// element opened with EmptyElement has no content and needs no EndElement.
type Sink interface {
	StartDocument(encoding, version string) error
	SetDefaultNamespace(uri string) error
	StartElement(namespace, localName string) error
	EmptyElement(namespace, localName string) error
	EndElement() error
	Attribute(localName, value string) error
	Characters(text string) error
	EndDocument() error
	Flush() error
}
