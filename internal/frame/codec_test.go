package frame

import (
	"bytes"
	"io"
	"testing"

	"lococlient/internal/pool"
)

func TestWriteReadRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		f    Frame
	}{
		{"simple", Frame{ID: 0, Status: 0, Method: "CHECKIN", DataType: 0, Body: []byte("hello")}},
		{"empty body", Frame{ID: 1, Status: 0, Method: "LEAVE", DataType: 0, Body: nil}},
		{"max method", Frame{ID: 2, Status: 0, Method: "ABCDEFGHIJK", DataType: 3, Body: []byte{1, 2, 3}}},
		{"nonzero status", Frame{ID: 3, Status: 1, Method: "WRITE", DataType: 0, Body: []byte("x")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(&buf)
			if err := c.Write(tc.f); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := c.Read()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if got.ID != tc.f.ID || got.Status != tc.f.Status || got.Method != tc.f.Method || got.DataType != tc.f.DataType {
				t.Fatalf("header mismatch: got %+v, want %+v", got, tc.f)
			}
			if !bytes.Equal(got.Body, tc.f.Body) {
				t.Fatalf("body mismatch: got %v, want %v", got.Body, tc.f.Body)
			}
		})
	}
}

func TestWriteRejectsOversizedMethod(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	err := c.Write(Frame{ID: 0, Method: "THIS_IS_TOO_LONG", Body: []byte("x")})
	if err == nil {
		t.Fatalf("expected error for oversized method")
	}
	if _, ok := err.(*InvalidMethodError); !ok {
		t.Fatalf("expected *InvalidMethodError, got %T: %v", err, err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes written on rejected method, got %d", buf.Len())
	}
}

func TestReadRejectsOversizedBody(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, WithMaxBodySize(4))
	if err := c.Write(Frame{ID: 0, Method: "X", Body: []byte("12345")}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := c.Read()
	if err == nil {
		t.Fatalf("expected oversized body error")
	}
	if _, ok := err.(*OversizedBodyError); !ok {
		t.Fatalf("expected *OversizedBodyError, got %T: %v", err, err)
	}
}

func TestReadRejectsInvalidUTF8Method(t *testing.T) {
	var buf bytes.Buffer
	header := make([]byte, HeaderSize)
	header[6] = 0xFF // invalid UTF-8 lead byte, no trailing zero before it
	header[7] = 0xFE
	buf.Write(header)
	c := New(&buf)
	_, err := c.Read()
	if err == nil {
		t.Fatalf("expected invalid method error")
	}
	if _, ok := err.(*InvalidMethodError); !ok {
		t.Fatalf("expected *InvalidMethodError, got %T: %v", err, err)
	}
}

func TestMethodTrimmedAtFirstZero(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	if err := c.Write(Frame{ID: 0, Method: "AB", Body: nil}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := c.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Method != "AB" {
		t.Fatalf("expected method %q, got %q", "AB", got.Method)
	}
}

func TestReadSurfacesUnderlyingIoError(t *testing.T) {
	c := New(&shortReader{})
	_, err := c.Read()
	if err == nil {
		t.Fatalf("expected io error")
	}
}

func TestCodecUsesBufferPool(t *testing.T) {
	var buf bytes.Buffer
	p := pool.New(64)
	c := New(&buf, WithBufferPool(p))
	if err := c.Write(Frame{ID: 0, Method: "A", Body: []byte("payload")}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := c.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got.Body) != "payload" {
		t.Fatalf("unexpected body %q", got.Body)
	}
	c.ReleaseBody(got.Body)
}

type shortReader struct{}

func (shortReader) Read(p []byte) (int, error) { return 0, io.ErrUnexpectedEOF }
func (shortReader) Write(p []byte) (int, error) { return len(p), nil }
