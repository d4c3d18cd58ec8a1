package grade

import (
	"context"
	"errors"

	"github.com/gradevault/gradevault/identity"
)

// ErrNoPublicKey is returned by a KeyResolver when an identity has no
// registered encryption key.
var ErrNoPublicKey = errors.New("grade: no registered public key")

// KeyResolver supplies published recipient public keys. It is implemented
// by the surrounding registration subsystem; the core never stores keys.
type KeyResolver interface {
	// PublicKey returns the encoded public key ("x25519:<base64>") for an
	// identity, or ErrNoPublicKey.
	PublicKey(ctx context.Context, id string) (string, error)
}

// StaticKeys is a fixed in-memory KeyResolver, keyed by normalized
// identity. Useful for tests and local CLI workflows.
type StaticKeys map[string]string

var _ KeyResolver = StaticKeys{}

func (s StaticKeys) PublicKey(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pub, ok := s[identity.Normalize(id)]
	if !ok {
		return "", ErrNoPublicKey
	}
	return pub, nil
}

// Register adds a key under the normalized identity.
func (s StaticKeys) Register(id, publicKey string) {
	s[identity.Normalize(id)] = publicKey
}
