package middleware

import (
	"bytes"
	"net/http"
	"testing"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Set("X-Custom", "v")
	body := []byte(`{"success":true,"settings":{}}`)

	enc, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(enc)
	if !ok {
		t.Fatal("decodePayload rejected its own encoding")
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" || gotHdr.Get("X-Custom") != "v" {
		t.Errorf("headers lost: %v", gotHdr)
	}
	if !bytes.Equal(gotBody, body) {
		t.Errorf("body = %q, want %q", gotBody, body)
	}
}

func TestPayloadEmptyBody(t *testing.T) {
	enc, err := encodePayload(http.StatusNoContent, http.Header{}, nil)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, _, body, ok := decodePayload(enc)
	if !ok || status != http.StatusNoContent || len(body) != 0 {
		t.Errorf("ok=%v status=%d body=%q", ok, status, body)
	}
}

func TestDecodeGarbage(t *testing.T) {
	for _, bs := range [][]byte{nil, {}, {1, 2, 3}, []byte("not a payload")} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Errorf("decodePayload accepted %q", bs)
		}
	}
	// Header length pointing past the buffer.
	enc, _ := encodePayload(200, http.Header{}, []byte("x"))
	enc[7] = 0xFF
	if _, _, _, ok := decodePayload(enc); ok {
		t.Error("decodePayload accepted oversized header length")
	}
}
