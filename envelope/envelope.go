// Package envelope builds and opens the encrypted grade envelopes stored in
// the blob layer.
//
// A payload is encrypted exactly once with a fresh content key; that key is
// then wrapped independently for every authorized recipient, so the bytes
// can be stored a single time yet be opened by each party with their own
// private key. Envelopes are immutable: correcting a grade means sealing a
// whole new envelope, never patching recipients of an existing one.
package envelope

import (
	"encoding/json"

	"golang.org/x/crypto/chacha20poly1305"
)

// FormatVersion is the current envelope wire schema version.
const FormatVersion = 1

// Recipient binds a wrapped content key to one authorized party.
//
// WrappedKey is the HPKE encapsulation followed by the sealed content key.
type Recipient struct {
	RecipientID string `json:"recipientId"`
	WrappedKey  []byte `json:"wrappedKey"`
}

// Envelope is the encrypted representation of a payload.
//
// The recipients set is fixed at creation time; entries are kept in the
// order they were supplied to Seal and are never added or removed after.
type Envelope struct {
	Version    int         `json:"v"`
	IV         []byte      `json:"iv"`
	AuthTag    []byte      `json:"authTag"`
	Ciphertext []byte      `json:"ciphertext"`
	Recipients []Recipient `json:"recipients"`
}

// Encode renders the envelope in its JSON wire form.
func Encode(env *Envelope) ([]byte, error) {
	if env == nil {
		return nil, newError(KindMalformed, "GV-ENV-001", "nil envelope")
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, wrapError(KindMalformed, "GV-ENV-002", "envelope marshal failed", err)
	}
	return b, nil
}

// Decode parses and structurally validates envelope wire bytes.
func Decode(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, wrapError(KindMalformed, "GV-ENV-011", "envelope unmarshal failed", err)
	}
	if err := validate(&env); err != nil {
		return nil, err
	}
	return &env, nil
}

func validate(env *Envelope) error {
	if env.Version != FormatVersion {
		return newError(KindMalformed, "GV-ENV-012", "unsupported envelope version")
	}
	if len(env.IV) != chacha20poly1305.NonceSize {
		return newError(KindMalformed, "GV-ENV-013", "invalid iv length")
	}
	if len(env.AuthTag) != chacha20poly1305.Overhead {
		return newError(KindMalformed, "GV-ENV-014", "invalid auth tag length")
	}
	if len(env.Recipients) == 0 {
		return newError(KindMalformed, "GV-ENV-015", "envelope has no recipients")
	}
	for _, r := range env.Recipients {
		if r.RecipientID == "" {
			return newError(KindMalformed, "GV-ENV-016", "recipient entry missing id")
		}
		if len(r.WrappedKey) == 0 {
			return newError(KindMalformed, "GV-ENV-017", "recipient entry missing wrapped key")
		}
	}
	return nil
}
