// Package frame implements the Loco wire frame: a fixed 22-byte header
// followed by a length-prefixed body. Framing is payload-agnostic — the
// body is handed up as opaque bytes.
package frame

import "fmt"

// HeaderSize is the fixed size, in bytes, of a frame header.
const HeaderSize = 22

// MethodSize is the fixed width of the zero-padded method field.
const MethodSize = 11

// DefaultMaxBodySize caps the body length accepted by Read, guarding against
// a corrupt or hostile length prefix forcing an unbounded allocation.
const DefaultMaxBodySize = 16 * 1024 * 1024

// Frame is a single on-wire command frame.
type Frame struct {
	ID       int32
	Status   int16
	Method   string
	DataType int8
	Body     []byte
}

// OversizedBodyError is returned by Read when a frame's declared body length
// exceeds the configured cap.
type OversizedBodyError struct {
	Declared uint32
	Max      uint32
}

func (e *OversizedBodyError) Error() string {
	return fmt.Sprintf("frame: declared body size %d exceeds max %d", e.Declared, e.Max)
}

// InvalidMethodError is returned when the method field is not valid UTF-8,
// or when an outgoing method string is too long to encode.
type InvalidMethodError struct {
	Reason string
}

func (e *InvalidMethodError) Error() string {
	return "frame: invalid method: " + e.Reason
}
