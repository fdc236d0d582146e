package scanner

import (
	"fmt"
	"io"
)

// Pos is a position in the input.  Line and Col are zero-based and Col counts
// code points rather than bytes.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("L%d,C%d", p.Line+1, p.Col+1)
}

// A Scanner reads bytes from an io.Reader through a buffer.  It allows
// looking one byte ahead, going back one byte and recording the bytes of a
// token even when the token is larger than the buffer.
type Scanner struct {
	reader io.Reader
	buf    []byte

	// 0 <= cur <= fill <= len(buf)
	fill int
	cur  int

	pos, prevPos Pos

	// Start of the token being recorded in buf, or -1.
	mark int

	// Bytes of the recorded token which were shifted out of buf.
	spill []byte

	err error

	// Number of EOFs returned by Read, so that Back() works after EOF.
	eofReads int
}

func NewScanner(reader io.Reader) *Scanner {
	return NewScannerSize(reader, defaultBufSize)
}

func NewScannerSize(reader io.Reader, size int) *Scanner {
	if size < minBufSize {
		size = minBufSize
	}
	return &Scanner{
		reader:  reader,
		buf:     make([]byte, size),
		mark:    -1,
		prevPos: Pos{Line: -1},
	}
}

// makeRoom shifts the buffer left, keeping the lookback byte and moving the
// already scanned part of a recorded token to spill.
func (s *Scanner) makeRoom() {
	base := s.cur - lookBackSize
	if base <= 0 {
		return
	}
	if s.mark >= 0 {
		if s.mark < base {
			s.spill = append(s.spill, s.buf[s.mark:base]...)
			s.mark = base
		} else {
			base = s.mark
		}
		s.mark -= base
	}
	copy(s.buf, s.buf[base:s.fill])
	s.fill -= base
	s.cur -= base
}

// fillBuf reads more input into the buffer.  It returns false if no byte
// could be read, in which case s.err is set.
func (s *Scanner) fillBuf() bool {
	if s.err != nil {
		return false
	}
	if s.fill == len(s.buf) {
		s.makeRoom()
	}
	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		n, err := s.reader.Read(s.buf[s.fill:])
		s.fill += n
		if err != nil {
			s.err = err
			return n > 0
		}
		if n > 0 {
			return true
		}
	}
	s.err = io.ErrNoProgress
	return false
}

// Read returns the next byte, or EOF with a nil error at the end of the
// input.
func (s *Scanner) Read() (byte, error) {
	if s.cur >= s.fill && !s.fillBuf() {
		b, err := s.errOrEOF()
		if err == nil {
			s.eofReads++
		}
		return b, err
	}
	b := s.buf[s.cur]
	s.prevPos = s.pos
	if b == '\n' {
		s.pos.Line++
		s.pos.Col = 0
	} else if b&0xC0 != 0x80 {
		// Continuation bytes do not start a new code point
		s.pos.Col++
	}
	s.cur++
	return b, nil
}

// Peek returns the next byte without consuming it.
func (s *Scanner) Peek() (byte, error) {
	if s.cur >= s.fill && !s.fillBuf() {
		return s.errOrEOF()
	}
	return s.buf[s.cur], nil
}

// Back undoes the last Read.  It cannot be called twice in a row.
func (s *Scanner) Back() {
	if s.eofReads > 0 {
		s.eofReads--
		return
	}
	if s.cur <= 0 || s.cur <= s.mark {
		panic("cannot go back from start")
	}
	if s.prevPos.Line < 0 {
		panic("cannot go back twice")
	}
	s.cur--
	s.pos = s.prevPos
	s.prevPos.Line = -1
}

// Exhausted reports whether all the input has been consumed.  It tells the
// EOF marker apart from an 0xFF byte in the input.
func (s *Scanner) Exhausted() bool {
	return s.cur >= s.fill && s.err == io.EOF
}

func (s *Scanner) CurrentPos() Pos {
	return s.pos
}

// StartToken starts recording the bytes read until EndToken is called.
func (s *Scanner) StartToken() Pos {
	if s.mark >= 0 {
		panic("already in record mode")
	}
	s.mark = s.cur
	return s.pos
}

// EndToken returns the bytes read since StartToken.  The returned slice is
// not shared with the scanner.
func (s *Scanner) EndToken() []byte {
	if s.mark < 0 {
		panic("not in record mode")
	}
	tok := make([]byte, 0, len(s.spill)+s.cur-s.mark)
	tok = append(tok, s.spill...)
	tok = append(tok, s.buf[s.mark:s.cur]...)
	s.mark = -1
	s.spill = s.spill[:0]
	return tok
}

// SkipSpaceAndPeek consumes JSON whitespace and returns the next byte
// without consuming it.
func (s *Scanner) SkipSpaceAndPeek() (byte, error) {
	for {
		for i, b := range s.buf[s.cur:s.fill] {
			switch b {
			case '\n':
				s.pos.Line++
				s.pos.Col = 0
			case ' ', '\t', '\r':
				s.pos.Col++
			default:
				s.cur += i
				return b, nil
			}
		}
		s.cur = s.fill
		if !s.fillBuf() {
			return s.errOrEOF()
		}
	}
}

func (s *Scanner) errOrEOF() (byte, error) {
	if s.err == io.EOF {
		return EOF, nil
	}
	return 0, s.err
}

const (
	lookBackSize             = 1
	maxConsecutiveEmptyReads = 100
	defaultBufSize           = 8192
	minBufSize               = 16
)

// 0xFF is a byte that should not appear in a UTF-8 encoded stream of bytes.
const EOF byte = 0xFF
