package types

import (
	"testing"
)

func TestFormat(t *testing.T) {
	format := Format{
		Itag:     251,
		URL:      "https://rr1---sn.googlevideo.com/videoplayback?itag=251",
		MimeType: "audio/webm; codecs=\"opus\"",
	}

	if format.HasSignature() {
		t.Error("Expected no signature")
	}
	if format.SignatureKey() != DefaultSignatureParam {
		t.Errorf("Expected default signature key, got '%s'", format.SignatureKey())
	}
}

func TestFormatSignatureKey(t *testing.T) {
	format := Format{
		URL:            "https://rr1---sn.googlevideo.com/videoplayback",
		Signature:      "AOq0QJ8wRQIhAL",
		SignatureParam: "sig",
	}

	if !format.HasSignature() {
		t.Error("Expected signature")
	}
	if format.SignatureKey() != "sig" {
		t.Errorf("Expected signature key 'sig', got '%s'", format.SignatureKey())
	}
}
