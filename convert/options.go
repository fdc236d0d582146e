package convert

import (
	"github.com/go-playground/validator/v10"
)

// Options control a conversion.  Use the Option functions to change the
// defaults.
type Options struct {
	// Encoding named in the XML declaration
	Encoding string `validate:"required"`

	// XML version named in the XML declaration
	Version string `validate:"oneof=1.0 1.1"`

	// Flush the sink once at the end rather than after every event
	BatchFlush bool

	// Indent the output.  Only used by ConvertReader, which creates the sink.
	Indent bool
}

// An Option changes one of the Options.
type Option func(*Options)

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Encoding: "UTF-8",
		Version:  "1.0",
	}
}

// WithEncoding sets the encoding of the XML document.
func WithEncoding(name string) Option {
	return func(o *Options) {
		o.Encoding = name
	}
}

// WithVersion sets the XML version ("1.0" or "1.1").
func WithVersion(version string) Option {
	return func(o *Options) {
		o.Version = version
	}
}

// WithBatchFlush turns off flushing after each event.  The output is the same
// but is only guaranteed to reach the underlying writer when the conversion
// returns.
func WithBatchFlush() Option {
	return func(o *Options) {
		o.BatchFlush = true
	}
}

// WithIndent makes ConvertReader indent its output.
func WithIndent() Option {
	return func(o *Options) {
		o.Indent = true
	}
}

var validate = validator.New()

// Validate reports invalid options.
func (o Options) Validate() error {
	return validate.Struct(o)
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return o, &OptionsError{Err: err}
	}
	return o, nil
}
