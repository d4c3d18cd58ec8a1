package keys

import (
	"strings"
	"testing"
)

func testSeed(fill byte) []byte {
	seed := make([]byte, Scheme().SeedSize())
	for i := range seed {
		seed[i] = fill
	}
	return seed
}

func TestDeriveKeyPairDeterministic(t *testing.T) {
	a, _, err := DeriveKeyPair(testSeed(0x01))
	if err != nil {
		t.Fatalf("DeriveKeyPair: %v", err)
	}
	b, _, err := DeriveKeyPair(testSeed(0x01))
	if err != nil {
		t.Fatalf("DeriveKeyPair: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, _, err := DeriveKeyPair(testSeed(0x02))
	if err != nil {
		t.Fatalf("DeriveKeyPair: %v", err)
	}
	if a.Equal(c) {
		t.Fatalf("expected different seeds to derive different keys")
	}
}

func TestDeriveKeyPairRejectsShortSeed(t *testing.T) {
	if _, _, err := DeriveKeyPair([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for short seed")
	}
}

func TestEncodeParsePublicKeyRoundTrip(t *testing.T) {
	pub, _, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	enc, err := EncodePublicKey(pub)
	if err != nil {
		t.Fatalf("EncodePublicKey: %v", err)
	}
	if !strings.HasPrefix(enc, Algorithm+":") {
		t.Fatalf("expected %s prefix, got %q", Algorithm, enc)
	}
	parsed, err := ParsePublicKey(enc)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if !parsed.Equal(pub) {
		t.Fatalf("round trip produced a different key")
	}
}

func TestParsePublicKeyRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"x25519",
		"ed25519:AAAA",
		"x25519:!!!not-base64!!!",
		"x25519:AAAA", // wrong length
	} {
		if _, err := ParsePublicKey(s); err == nil {
			t.Fatalf("ParsePublicKey(%q) succeeded, want error", s)
		}
	}
}

func TestParseSeedHex(t *testing.T) {
	seed := testSeed(0x42)
	hexStr := "4242424242424242424242424242424242424242424242424242424242424242"

	got, err := ParseSeedHex(hexStr)
	if err != nil {
		t.Fatalf("ParseSeedHex: %v", err)
	}
	if string(got) != string(seed) {
		t.Fatalf("seed mismatch")
	}

	if _, err := ParseSeedHex("0x" + hexStr); err != nil {
		t.Fatalf("ParseSeedHex with 0x prefix: %v", err)
	}
	if _, err := ParseSeedHex("abcd"); err == nil {
		t.Fatalf("expected error for short seed hex")
	}
}
