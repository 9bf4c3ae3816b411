package command

import (
	"bytes"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"lococlient/internal/frame"
)

func TestManagerWriteAssignsMonotonicIDs(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(frame.New(&buf))

	want := []int32{0, 1, 2}
	for i, w := range want {
		id, err := m.Write(Command[any]{Method: "CHECKIN", Data: bson.M{"n": i}})
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if id != w {
			t.Fatalf("write %d: got id %d, want %d", i, id, w)
		}
	}
}

func TestManagerWriteRejectsOversizedMethod(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(frame.New(&buf))

	_, err := m.Write(Command[any]{Method: "WAY_TOO_LONG_METHOD", Data: bson.M{}})
	if err == nil {
		t.Fatalf("expected error")
	}
	we, ok := err.(*WriteError)
	if !ok {
		t.Fatalf("expected *WriteError, got %T", err)
	}
	if we.Kind != WriteEncodeFailure {
		t.Fatalf("expected WriteEncodeFailure, got %v", we.Kind)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %d bytes", buf.Len())
	}
}

func TestManagerReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(frame.New(&buf))

	if _, err := m.Write(Command[any]{Method: "CHECKIN", DataType: 0, Data: bson.M{"userId": int32(1)}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	id, doc, err := m.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected id 0, got %d", id)
	}
	if doc.Method != "CHECKIN" {
		t.Fatalf("expected method CHECKIN, got %q", doc.Method)
	}
	if doc.Data["userId"] != int32(1) {
		t.Fatalf("expected userId 1, got %v", doc.Data["userId"])
	}
}

func TestManagerReadSurfacesCorruptedStatus(t *testing.T) {
	var buf bytes.Buffer
	codec := frame.New(&buf)
	if err := codec.Write(frame.Frame{ID: 5, Status: 1, Method: "CHECKIN"}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	m := NewManager(frame.New(&buf))

	id, _, err := m.Read()
	if id != 5 {
		t.Fatalf("expected id 5, got %d", id)
	}
	re, ok := err.(*ReadError)
	if !ok {
		t.Fatalf("expected *ReadError, got %T", err)
	}
	if re.Kind != ReadCorrupted {
		t.Fatalf("expected ReadCorrupted, got %v", re.Kind)
	}
}

func TestDecodeTyped(t *testing.T) {
	type checkinResponse struct {
		Host string `bson:"host"`
		Port int32  `bson:"port"`
	}

	doc := Doc{Method: "CHECKIN", Data: bson.M{"host": "a.example", "port": int32(443)}}
	typed, err := DecodeTyped[checkinResponse](doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if typed.Data.Host != "a.example" || typed.Data.Port != 443 {
		t.Fatalf("unexpected decode result: %+v", typed.Data)
	}
}
