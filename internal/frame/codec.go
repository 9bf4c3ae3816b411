package frame

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"lococlient/internal/pool"
)

// Codec reads and writes frames on a duplex byte stream.
//
// Codec does not synchronize concurrent use; callers that share one Codec
// across goroutines (as internal/session does) must serialize reads and
// writes themselves.
type Codec struct {
	rw          io.ReadWriter
	maxBodySize uint32
	bufs        *pool.BytePool
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(n uint32) Option {
	return func(c *Codec) { c.maxBodySize = n }
}

// WithBufferPool supplies a pooled allocator for body buffers. Read never
// puts a buffer back into the pool itself — the caller owns the returned
// Frame's Body and may release it back to the pool once done via
// ReleaseBody.
func WithBufferPool(p *pool.BytePool) Option {
	return func(c *Codec) { c.bufs = p }
}

// New wraps rw with the Loco frame codec.
func New(rw io.ReadWriter, opts ...Option) *Codec {
	c := &Codec{rw: rw, maxBodySize: DefaultMaxBodySize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Write serializes and writes a full frame. Writes are looped internally so
// that a short underlying write never corrupts framing.
func (c *Codec) Write(f Frame) error {
	method, err := encodeMethod(f.Method)
	if err != nil {
		return err
	}

	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], uint32(f.ID))
	binary.LittleEndian.PutUint16(header[4:6], uint16(f.Status))
	copy(header[6:6+MethodSize], method)
	header[17] = byte(f.DataType)
	binary.LittleEndian.PutUint32(header[18:22], uint32(len(f.Body)))

	if err := writeAll(c.rw, header); err != nil {
		return err
	}
	if len(f.Body) > 0 {
		if err := writeAll(c.rw, f.Body); err != nil {
			return err
		}
	}
	return nil
}

// Read reads and decodes the next full frame. It never returns a partial
// frame: either a complete Frame is returned, or an error is.
func (c *Codec) Read() (Frame, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(c.rw, header); err != nil {
		return Frame{}, err
	}

	id := int32(binary.LittleEndian.Uint32(header[0:4]))
	status := int16(binary.LittleEndian.Uint16(header[4:6]))
	methodRaw := header[6 : 6+MethodSize]
	dataType := int8(header[17])
	dataLength := binary.LittleEndian.Uint32(header[18:22])

	if dataLength > c.maxBodySize {
		return Frame{}, &OversizedBodyError{Declared: dataLength, Max: c.maxBodySize}
	}

	body := c.bodyBuffer(dataLength)
	if dataLength > 0 {
		if _, err := io.ReadFull(c.rw, body); err != nil {
			return Frame{}, err
		}
	}

	// The body is consumed before the method is validated, so a frame with
	// an invalid method does not leave its body in the stream.
	method, err := decodeMethod(methodRaw)
	if err != nil {
		return Frame{}, err
	}

	return Frame{ID: id, Status: status, Method: method, DataType: dataType, Body: body}, nil
}

// ReleaseBody returns a frame body buffer to the codec's buffer pool, if
// one was configured; without a pool it is a no-op. The pool keeps any
// buffer whose capacity is at least its buffer size, whether or not it came
// from this codec, and drops smaller ones.
func (c *Codec) ReleaseBody(body []byte) {
	if c.bufs == nil {
		return
	}
	c.bufs.Put(body)
}

func (c *Codec) bodyBuffer(n uint32) []byte {
	if c.bufs == nil || int(n) > c.bufs.Size() {
		return make([]byte, n)
	}
	return c.bufs.Get()[:n]
}

func encodeMethod(method string) ([]byte, error) {
	if len(method) > MethodSize {
		return nil, &InvalidMethodError{Reason: fmt.Sprintf("method %q exceeds %d bytes", method, MethodSize)}
	}
	buf := make([]byte, MethodSize)
	copy(buf, method)
	return buf, nil
}

func decodeMethod(raw []byte) (string, error) {
	trimmed := raw
	if i := indexZero(raw); i >= 0 {
		trimmed = raw[:i]
	}
	if !isValidUTF8(trimmed) {
		return "", &InvalidMethodError{Reason: "method bytes are not valid UTF-8"}
	}
	return string(trimmed), nil
}

func indexZero(b []byte) int {
	for i, v := range b {
		if v == 0 {
			return i
		}
	}
	return -1
}

func isValidUTF8(b []byte) bool {
	return strings.ToValidUTF8(string(b), "�") == string(b)
}

func writeAll(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}
