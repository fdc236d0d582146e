package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/arnodel/json2xml/convert"
	"github.com/arnodel/json2xml/encoding/json"
	"github.com/arnodel/json2xml/xmlsink"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

var (
	stderr      io.Writer = os.Stderr
	colorErrors bool
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling at the bottom of main).
	signal.Ignore(syscall.SIGPIPE)

	defer exitOnPanic()

	var encoding string
	var xmlVersion string
	var indent bool
	var flushMode string
	var verbose bool

	flag.Usage = printUsage
	flag.StringVar(&encoding, "encoding", "UTF-8", "output encoding (IANA name)")
	flag.StringVar(&xmlVersion, "xml-version", "1.0", "XML version in the declaration: 1.0 or 1.1")
	flag.BoolVar(&indent, "indent", false, "indent the XML output")
	flag.StringVar(&flushMode, "flush", "auto", "flush after each JSON token: auto, always, never")
	flag.BoolVar(&verbose, "v", false, "log conversion statistics to stderr")
	flag.Parse()

	if isatty.IsTerminal(os.Stderr.Fd()) {
		stderr = colorable.NewColorableStderr()
		colorErrors = true
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() > 0 {
		printUsage()
		os.Exit(1)
	}

	// The JSON document must come from a file or a pipe
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		printUsage()
		os.Exit(1)
	}
	input := bufio.NewReader(os.Stdin)
	if _, err := input.Peek(1); err == io.EOF {
		printUsage()
		os.Exit(1)
	} else if err != nil {
		fatalError(errors.Wrap(err, "cannot read input"))
	}

	// If we are writing to a terminal, flush after each token so user gets feedback early.
	var flushEachToken bool
	switch flushMode {
	case "always":
		flushEachToken = true
	case "never":
		flushEachToken = false
	case "auto":
		flushEachToken = isatty.IsTerminal(os.Stdout.Fd())
	default:
		fatalError(errors.Errorf("invalid -flush value: %q (use auto, always, or never)", flushMode))
	}

	sink, err := xmlsink.NewWriter(os.Stdout, xmlsink.Config{Encoding: encoding, Indent: indent})
	if err != nil {
		fatalError(errors.Wrap(err, "cannot set up output"))
	}
	opts := []convert.Option{
		convert.WithEncoding(sink.Encoding()),
		convert.WithVersion(xmlVersion),
	}
	if !flushEachToken {
		opts = append(opts, convert.WithBatchFlush())
	}
	converter, err := convert.New(json.NewDecoder(input), sink, opts...)
	if err != nil {
		fatalError(err)
	}

	start := time.Now()
	err = converter.Convert()
	stats := converter.Stats()
	logger.Info("conversion done",
		"encoding", sink.Encoding(),
		"events", stats.Events,
		"elements", stats.Elements,
		"duration", time.Since(start),
		"ok", err == nil)
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			// In this case we don't want to complain.
			return
		}
		fatalError(err)
	}
}

// exitOnPanic displays the stack trace of a panic and exits with status 1.
// It must be deferred.
func exitOnPanic() {
	if e := recover(); e != nil {
		fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
		os.Exit(1)
	}
}

func fatalError(err error) {
	if colorErrors {
		fmt.Fprintf(stderr, "%serror: %s%s\n", red, err, reset)
	} else {
		fmt.Fprintf(stderr, "error: %s\n", err)
	}
	os.Exit(1)
}

const (
	reset = "\033[0m"
	red   = "\033[31m"
)

func printUsage() {
	fmt.Fprint(os.Stderr, `json2xml - convert JSON to XML

USAGE:
  json2xml [options] < input.json > output.xml

DESCRIPTION:
  json2xml reads one JSON document from stdin and writes it to stdout as XML,
  using the representation of JSON defined for the XPath 3.1 json-to-xml
  function.  Objects become <map>, arrays become <array>, and scalars become
  <string>, <number>, <boolean> and <null>.  Members of an object have a key
  attribute.  All elements are in the http://www.w3.org/2005/xpath-functions
  namespace.

  Characters which are not allowed in XML are replaced with U+FFFD.

  The input is converted as it is read, so large documents use little memory.

OPTIONS:
`)
	flag.PrintDefaults()
	fmt.Fprint(os.Stderr, `
EXAMPLES:
  echo '{"a": [1, true]}' | json2xml
  json2xml -encoding ISO-8859-1 -indent < data.json
`)
}
