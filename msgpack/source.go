package msgpack

import (
	"errors"
	"fmt"
	"io"
)

// byteSource feeds the decoder. take makes n bytes available and
// consumes them; the returned slice is only valid until the next call.
// offset counts bytes consumed since the start of the input.
type byteSource interface {
	take(n int) ([]byte, error)
	offset() int
}

// ============================================================
// Bounded source
// ============================================================

// bufferSource decodes from a single in-memory buffer. Underflow is
// always fatal; there is nowhere to refill from.
type bufferSource struct {
	data []byte
	pos  int
}

func (s *bufferSource) take(n int) ([]byte, error) {
	if n > len(s.data)-s.pos {
		return nil, fmt.Errorf("%w (need %d at offset %d, have %d)",
			ErrMissingBytes, n, s.pos, len(s.data)-s.pos)
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *bufferSource) offset() int {
	return s.pos
}

// rest returns the count of unconsumed bytes.
func (s *bufferSource) rest() int {
	return len(s.data) - s.pos
}

// ============================================================
// Streaming source
// ============================================================

const defaultChunkSize = 4096

// streamSource decodes from an io.Reader, buffering as little as the
// values require. On underflow it drops the consumed prefix, then
// reads until the requirement is met; EOF before that is a missing-
// bytes failure.
type streamSource struct {
	r     io.Reader
	buf   []byte
	pos   int // consumed prefix within buf
	base  int // bytes discarded before buf[0]
	chunk int // minimum read capacity
}

func newStreamSource(r io.Reader, chunk int) *streamSource {
	if chunk <= 0 {
		chunk = defaultChunkSize
	}
	return &streamSource{
		r:     r,
		buf:   make([]byte, 0, chunk),
		chunk: chunk,
	}
}

func (s *streamSource) take(n int) ([]byte, error) {
	if err := s.require(n); err != nil {
		return nil, err
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *streamSource) offset() int {
	return s.base + s.pos
}

// require blocks until n unconsumed bytes are buffered.
func (s *streamSource) require(n int) error {
	if len(s.buf)-s.pos >= n {
		return nil
	}

	// Drop the consumed prefix before growing.
	if s.pos > 0 {
		copy(s.buf, s.buf[s.pos:])
		s.buf = s.buf[:len(s.buf)-s.pos]
		s.base += s.pos
		s.pos = 0
	}

	emptyReads := 0
	for len(s.buf) < n {
		if len(s.buf) == cap(s.buf) {
			// Grow geometrically rather than jumping to n, so a
			// corrupt length field cannot force a giant allocation.
			need := cap(s.buf) * 2
			if need < s.chunk {
				need = s.chunk
			}
			nb := make([]byte, len(s.buf), need)
			copy(nb, s.buf)
			s.buf = nb
		}

		r, err := s.r.Read(s.buf[len(s.buf):cap(s.buf)])
		s.buf = s.buf[:len(s.buf)+r]
		if r == 0 {
			if err == nil {
				emptyReads++
				if emptyReads >= 100 {
					return io.ErrNoProgress
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w (need %d more at offset %d)",
					ErrMissingBytes, n-len(s.buf), s.base+len(s.buf))
			}
			return fmt.Errorf("msgpack: read: %w", err)
		}
		emptyReads = 0
		if err != nil && len(s.buf) < n {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w (need %d more at offset %d)",
					ErrMissingBytes, n-len(s.buf), s.base+len(s.buf))
			}
			return fmt.Errorf("msgpack: read: %w", err)
		}
	}
	return nil
}
