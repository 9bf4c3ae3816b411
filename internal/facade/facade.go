// Package facade provides the typed command facade: a thin layer over
// internal/session that serializes a request record, awaits the matching
// response, and decodes it into a typed response record. It is the only
// layer that knows method names.
package facade

import (
	"context"
	"fmt"

	"lococlient/internal/command"
	"lococlient/internal/session"
)

// RequestError is the tagged error union surfaced by Call.
type RequestError struct {
	Kind RequestErrorKind
	Err  error
}

// RequestErrorKind discriminates the cause of a RequestError.
type RequestErrorKind int

const (
	// ErrWrite indicates the request could not be written.
	ErrWrite RequestErrorKind = iota
	// ErrRead indicates the response could not be read.
	ErrRead
	// ErrDeserialize indicates the response body did not match the
	// expected typed schema.
	ErrDeserialize
)

func (e *RequestError) Error() string {
	switch e.Kind {
	case ErrWrite:
		return fmt.Sprintf("facade: write failed: %v", e.Err)
	case ErrRead:
		return fmt.Sprintf("facade: read failed: %v", e.Err)
	default:
		return fmt.Sprintf("facade: deserialize failed: %v", e.Err)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Call issues a request for method with dataType and req as the request
// record, awaits the response, and decodes its body into Resp.
func Call[Req, Resp any](ctx context.Context, s *session.Session, method string, dataType int8, req Req) (Resp, error) {
	var zero Resp

	ticket, err := s.Request(ctx, method, dataType, req)
	if err != nil {
		return zero, &RequestError{Kind: ErrWrite, Err: err}
	}

	doc, err := s.Await(ctx, ticket)
	if err != nil {
		return zero, &RequestError{Kind: ErrRead, Err: err}
	}

	typed, err := command.DecodeTyped[Resp](doc)
	if err != nil {
		return zero, &RequestError{Kind: ErrDeserialize, Err: err}
	}
	return typed.Data, nil
}
