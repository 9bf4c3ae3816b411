// Package command implements the Loco command manager: request-id
// assignment and BSON encoding/decoding layered on top of internal/frame.
package command

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"lococlient/internal/frame"
)

// Command is the parametric decoded-command shape. T is instantiated as
// []byte for raw bodies, bson.M for untyped documents, or a concrete struct
// for typed facade responses.
type Command[T any] struct {
	Method   string
	DataType int8
	Data     T
}

// Raw is a command whose body has not yet been interpreted as a document.
type Raw = Command[[]byte]

// Doc is a command whose body has been decoded into an untyped BSON
// document tree.
type Doc = Command[bson.M]

// WriteError is returned by Manager.Write.
type WriteError struct {
	Kind WriteErrorKind
	Err  error
}

// WriteErrorKind discriminates the cause of a WriteError.
type WriteErrorKind int

const (
	// WriteTransportIo indicates the underlying transport write failed.
	WriteTransportIo WriteErrorKind = iota
	// WriteEncodeFailure indicates the payload could not be serialized.
	WriteEncodeFailure
)

func (e *WriteError) Error() string {
	switch e.Kind {
	case WriteEncodeFailure:
		return fmt.Sprintf("command: encode failure: %v", e.Err)
	default:
		return fmt.Sprintf("command: write: %v", e.Err)
	}
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError is returned by Manager.Read.
type ReadError struct {
	Kind  ReadErrorKind
	Err   error
	Frame *frame.Frame
}

// ReadErrorKind discriminates the cause of a ReadError.
type ReadErrorKind int

const (
	// ReadTransportIo is fatal to the whole session.
	ReadTransportIo ReadErrorKind = iota
	// ReadCorrupted indicates a frame arrived with non-zero status.
	ReadCorrupted
	// ReadInvalidMethod indicates the method bytes were not valid UTF-8.
	ReadInvalidMethod
	// ReadDecodeFailure indicates the body was not a well-formed document.
	ReadDecodeFailure
)

func (e *ReadError) Error() string {
	switch e.Kind {
	case ReadCorrupted:
		return fmt.Sprintf("command: corrupted response (status %d, method %q)", e.Frame.Status, e.Frame.Method)
	case ReadInvalidMethod:
		return fmt.Sprintf("command: invalid method: %v", e.Err)
	case ReadDecodeFailure:
		return fmt.Sprintf("command: decode failure: %v", e.Err)
	default:
		return fmt.Sprintf("command: read: %v", e.Err)
	}
}

func (e *ReadError) Unwrap() error { return e.Err }

// DecodeTypedError is returned when a well-formed document does not match
// the caller's expected typed schema.
type DecodeTypedError struct {
	Err error
}

func (e *DecodeTypedError) Error() string { return fmt.Sprintf("command: typed decode failure: %v", e.Err) }
func (e *DecodeTypedError) Unwrap() error { return e.Err }

// DecodeTyped deserializes an untyped document command's data into T.
func DecodeTyped[T any](d Doc) (Command[T], error) {
	var out T
	raw, err := bson.Marshal(d.Data)
	if err != nil {
		return Command[T]{}, &DecodeTypedError{Err: err}
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return Command[T]{}, &DecodeTypedError{Err: err}
	}
	return Command[T]{Method: d.Method, DataType: d.DataType, Data: out}, nil
}
