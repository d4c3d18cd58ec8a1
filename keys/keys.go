package keys

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/hpke"
	"github.com/cloudflare/circl/kem"
)

// Algorithm is the key encoding prefix for recipient public keys.
const Algorithm = "x25519"

// KEM is the key-encapsulation mechanism every recipient key belongs to.
const KEM = hpke.KEM_X25519_HKDF_SHA256

// Scheme returns the KEM scheme for recipient keys.
func Scheme() kem.Scheme {
	return KEM.Scheme()
}

// Generate returns a fresh recipient keypair.
func Generate() (kem.PublicKey, kem.PrivateKey, error) {
	return Scheme().GenerateKeyPair()
}

// DeriveKeyPair deterministically derives a recipient keypair from a seed.
// The seed must be exactly Scheme().SeedSize() bytes (32 for X25519).
func DeriveKeyPair(seed []byte) (kem.PublicKey, kem.PrivateKey, error) {
	scheme := Scheme()
	if len(seed) != scheme.SeedSize() {
		return nil, nil, fmt.Errorf("seed must be %d bytes, got %d", scheme.SeedSize(), len(seed))
	}
	pub, priv := scheme.DeriveKeyPair(seed)
	return pub, priv, nil
}

// EncodePublicKey renders a public key as "x25519:" + base64.
func EncodePublicKey(pub kem.PublicKey) (string, error) {
	if pub == nil {
		return "", errors.New("nil public key")
	}
	raw, err := pub.MarshalBinary()
	if err != nil {
		return "", err
	}
	return Algorithm + ":" + base64.StdEncoding.EncodeToString(raw), nil
}

// ParsePublicKey decodes a "x25519:<base64>" public key string.
func ParsePublicKey(s string) (kem.PublicKey, error) {
	alg, enc, ok := strings.Cut(s, ":")
	if !ok {
		return nil, errors.New("invalid public key encoding")
	}
	if alg != Algorithm {
		return nil, fmt.Errorf("unsupported public key algorithm %q", alg)
	}
	raw, err := decodeBase64(enc)
	if err != nil {
		return nil, fmt.Errorf("invalid public key base64: %w", err)
	}
	pub, err := Scheme().UnmarshalBinaryPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s public key: %w", Algorithm, err)
	}
	return pub, nil
}

// PublicKeyFromSeed returns the encoded public key string for a seed.
func PublicKeyFromSeed(seed []byte) (string, error) {
	pub, _, err := DeriveKeyPair(seed)
	if err != nil {
		return "", err
	}
	return EncodePublicKey(pub)
}

func decodeBase64(s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
