package msgpack

import (
	"errors"
	"io"
)

// Unpacker iterates over a sequence of concatenated values, either
// from an in-memory buffer or from an io.Reader. It is forward-only
// and not restartable.
type Unpacker struct {
	dec     decoder
	opts    Options
	bufSize int
	err     error
}

// UnpackerOption configures an Unpacker.
type UnpackerOption func(*Unpacker)

// WithOptions sets the decode options (default: DefaultOptions).
func WithOptions(opts Options) UnpackerOption {
	return func(u *Unpacker) {
		u.opts = opts
	}
}

// WithBufferSize sets the read-ahead buffer size for stream unpackers
// (default: 4096). Buffer unpackers ignore it.
func WithBufferSize(n int) UnpackerOption {
	return func(u *Unpacker) {
		u.bufSize = n
	}
}

// NewUnpacker iterates over the values concatenated in data.
func NewUnpacker(data []byte, opts ...UnpackerOption) *Unpacker {
	u := &Unpacker{opts: DefaultOptions()}
	for _, opt := range opts {
		opt(u)
	}
	u.dec = decoder{src: &bufferSource{data: data}, opts: u.opts}
	return u
}

// NewStreamUnpacker iterates over the values read from r, pulling
// more input on demand. Reads may block; a read that ends inside a
// value fails with ErrMissingBytes.
func NewStreamUnpacker(r io.Reader, opts ...UnpackerOption) *Unpacker {
	u := &Unpacker{opts: DefaultOptions(), bufSize: defaultChunkSize}
	for _, opt := range opts {
		opt(u)
	}
	u.dec = decoder{src: newStreamSource(r, u.bufSize), opts: u.opts}
	return u
}

// Next decodes and returns the next value along with the offset of
// the first byte after it, counted from the start of the input.
// It returns io.EOF once the input is exhausted at a value boundary;
// exhaustion inside a value is ErrMissingBytes. After any error the
// unpacker is spent and Next keeps returning the same error.
func (u *Unpacker) Next() (end int, v *Value, err error) {
	if u.err != nil {
		return u.dec.src.offset(), nil, u.err
	}

	start := u.dec.src.offset()
	v, err = u.dec.value()
	if err != nil {
		// Running dry before the first byte of a value is the clean
		// end of the sequence, not a truncation.
		if errors.Is(err, ErrMissingBytes) && u.dec.src.offset() == start {
			err = io.EOF
		}
		u.err = err
		return u.dec.src.offset(), nil, err
	}
	return u.dec.src.offset(), v, nil
}

// All decodes the remaining values until the input runs out.
func (u *Unpacker) All() ([]*Value, error) {
	var vals []*Value
	for {
		_, v, err := u.Next()
		if err == io.EOF {
			return vals, nil
		}
		if err != nil {
			return vals, err
		}
		vals = append(vals, v)
	}
}
