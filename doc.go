// Package json2xml converts JSON to XML in a stream.
//
// The XML uses the representation of JSON defined for the XPath 3.1
// json-to-xml function:
//
//	{"a": [1, "x", true, null]}
//
// becomes
//
//	<map xmlns="http://www.w3.org/2005/xpath-functions">
//	  <array key="a">
//	    <number>1</number>
//	    <string>x</string>
//	    <boolean>true</boolean>
//	    <null/>
//	  </array>
//	</map>
//
// The package is organized into several sub-packages:
//
// - encoding/json: pull-based JSON decoder producing tokens
// - token: the tokens and the Source interface
// - xmlchar: replacement of the characters XML does not allow
// - xmlsink: streaming XML output, with a writer based on xmlwriter
// - convert: the conversion from tokens to XML
//
// Tokens are converted as soon as they are decoded, so output is available
// straight away and memory usage does not grow with the size of the input.
//
// The CLI utility is in the directory cmd/json2xml. You can install it with:
//
//	go install github.com/arnodel/json2xml/cmd/json2xml
package json2xml
