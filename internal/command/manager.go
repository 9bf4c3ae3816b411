package command

import (
	"go.mongodb.org/mongo-driver/bson"

	"lococlient/internal/frame"
)

// Manager assigns request ids and serializes/deserializes command payloads
// over a frame codec. It does not synchronize concurrent use; internal/session
// serializes calls into it.
type Manager struct {
	codec     *frame.Codec
	currentID int32
}

// NewManager wraps a frame codec with request-id bookkeeping.
func NewManager(codec *frame.Codec) *Manager {
	return &Manager{codec: codec}
}

// Write serializes cmd's data to BSON, writes the frame with status 0, and
// returns the assigned request id. The id counter is only advanced on a
// successful write.
func (m *Manager) Write(cmd Command[any]) (int32, error) {
	body, err := bson.Marshal(cmd.Data)
	if err != nil {
		return 0, &WriteError{Kind: WriteEncodeFailure, Err: err}
	}

	id := m.currentID
	f := frame.Frame{
		ID:       id,
		Status:   0,
		Method:   cmd.Method,
		DataType: cmd.DataType,
		Body:     body,
	}
	if err := m.codec.Write(f); err != nil {
		if _, ok := err.(*frame.InvalidMethodError); ok {
			return 0, &WriteError{Kind: WriteEncodeFailure, Err: err}
		}
		return 0, &WriteError{Kind: WriteTransportIo, Err: err}
	}
	m.currentID++
	return id, nil
}

// Read reads the next frame and decodes its body into an untyped document.
// A non-zero status yields a ReadCorrupted error without consuming the
// pending table or broadcast queue (those live one layer up, in
// internal/session).
func (m *Manager) Read() (int32, Doc, error) {
	f, err := m.codec.Read()
	if err != nil {
		if ime, ok := err.(*frame.InvalidMethodError); ok {
			return 0, Doc{}, &ReadError{Kind: ReadInvalidMethod, Err: ime}
		}
		return 0, Doc{}, &ReadError{Kind: ReadTransportIo, Err: err}
	}

	if f.Status != 0 {
		return f.ID, Doc{}, &ReadError{Kind: ReadCorrupted, Frame: &f}
	}

	var doc bson.M
	if len(f.Body) > 0 {
		if err := bson.Unmarshal(f.Body, &doc); err != nil {
			return f.ID, Doc{}, &ReadError{Kind: ReadDecodeFailure, Err: err}
		}
	}

	return f.ID, Doc{Method: f.Method, DataType: f.DataType, Data: doc}, nil
}
