package envelope

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := newParty(t, "0xRecipient")
	env, err := Seal([]byte("wire format payload"), []RecipientKey{{ID: p.id, PublicKey: p.pub}})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	b, err := Encode(env)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got, err := Open(decoded, p.id, p.priv)
	if err != nil {
		t.Fatalf("Open after decode: %v", err)
	}
	if !bytes.Equal(got, []byte("wire format payload")) {
		t.Fatalf("payload mismatch after wire round trip")
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":         "{nope",
		"empty object":     "{}",
		"wrong version":    `{"v":99,"iv":"AAAAAAAAAAAAAAAA","authTag":"AAAAAAAAAAAAAAAAAAAAAA==","ciphertext":"AA==","recipients":[{"recipientId":"a","wrappedKey":"AA=="}]}`,
		"short iv":         `{"v":1,"iv":"AAAA","authTag":"AAAAAAAAAAAAAAAAAAAAAA==","ciphertext":"AA==","recipients":[{"recipientId":"a","wrappedKey":"AA=="}]}`,
		"no recipients":    `{"v":1,"iv":"AAAAAAAAAAAAAAAA","authTag":"AAAAAAAAAAAAAAAAAAAAAA==","ciphertext":"AA==","recipients":[]}`,
		"empty recipient":  `{"v":1,"iv":"AAAAAAAAAAAAAAAA","authTag":"AAAAAAAAAAAAAAAAAAAAAA==","ciphertext":"AA==","recipients":[{"recipientId":"","wrappedKey":"AA=="}]}`,
		"no wrapped key":   `{"v":1,"iv":"AAAAAAAAAAAAAAAA","authTag":"AAAAAAAAAAAAAAAAAAAAAA==","ciphertext":"AA==","recipients":[{"recipientId":"a"}]}`,
	}
	for name, raw := range cases {
		if _, err := Decode([]byte(raw)); !IsKind(err, KindMalformed) {
			t.Fatalf("%s: expected Malformed error, got %v", name, err)
		}
	}
}

func TestEncodeNil(t *testing.T) {
	if _, err := Encode(nil); !IsKind(err, KindMalformed) {
		t.Fatalf("expected Malformed error, got %v", err)
	}
}
