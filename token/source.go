package token

import (
	"errors"
	"io"
)

// A Source produces the tokens of a JSON document one at a time.  Next
// returns io.EOF once the document is complete.  Close releases the
// underlying input; it must be called even when Next failed.
type Source interface {
	Next() (Token, error)
	Close() error
}

// ErrClosed is returned by Next after a source has been closed.
var ErrClosed = errors.New("token source closed")

// SliceSource is a Source replaying a fixed list of tokens.
type SliceSource struct {
	toks   []Token
	closed bool
}

var _ Source = &SliceSource{}

func NewSliceSource(toks []Token) *SliceSource {
	return &SliceSource{toks: toks}
}

func (r *SliceSource) Next() (tok Token, err error) {
	if r.closed {
		return nil, ErrClosed
	}
	if len(r.toks) == 0 {
		return nil, io.EOF
	}
	tok = r.toks[0]
	r.toks = r.toks[1:]
	return tok, nil
}

func (r *SliceSource) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (r *SliceSource) Closed() bool {
	return r.closed
}

// Collect drains src into a slice.  It stops at the first error, returning
// the tokens read so far; io.EOF is not reported as an error.
func Collect(src Source) ([]Token, error) {
	var toks []Token
	for {
		tok, err := src.Next()
		if err == io.EOF {
			return toks, nil
		}
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
}
