package envelope

import (
	"crypto/rand"

	"github.com/cloudflare/circl/hpke"
	"github.com/cloudflare/circl/kem"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/gradevault/gradevault/identity"
	"github.com/gradevault/gradevault/keys"
)

// RecipientKey names one authorized party and their published public key.
type RecipientKey struct {
	ID        string
	PublicKey string
}

// wrapInfo binds the HPKE context to this protocol so wrapped keys cannot
// be replayed into a different application of the same suite.
var wrapInfo = []byte("gradevault-envelope-v1")

const contentKeySize = chacha20poly1305.KeySize

func suite() hpke.Suite {
	return hpke.NewSuite(keys.KEM, hpke.KDF_HKDF_SHA256, hpke.AEAD_ChaCha20Poly1305)
}

// Seal encrypts payload once and wraps the content key for every recipient,
// preserving input order in the recipients set.
func Seal(payload []byte, recipients []RecipientKey) (*Envelope, error) {
	if len(recipients) == 0 {
		return nil, newError(KindSeal, "GV-ENV-101", "at least one recipient is required")
	}

	cek := make([]byte, contentKeySize)
	if _, err := rand.Read(cek); err != nil {
		return nil, wrapError(KindSeal, "GV-ENV-102", "content key generation failed", err)
	}
	iv := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, wrapError(KindSeal, "GV-ENV-103", "iv generation failed", err)
	}

	aead, err := chacha20poly1305.New(cek)
	if err != nil {
		return nil, wrapError(KindSeal, "GV-ENV-104", "cipher construction failed", err)
	}
	sealed := aead.Seal(nil, iv, payload, nil)
	split := len(sealed) - aead.Overhead()

	env := &Envelope{
		Version:    FormatVersion,
		IV:         iv,
		AuthTag:    sealed[split:],
		Ciphertext: sealed[:split],
		Recipients: make([]Recipient, 0, len(recipients)),
	}

	for _, r := range recipients {
		if identity.IsZero(r.ID) {
			return nil, newError(KindSeal, "GV-ENV-105", "recipient with empty id")
		}
		pub, err := keys.ParsePublicKey(r.PublicKey)
		if err != nil {
			return nil, wrapError(KindSeal, "GV-ENV-106", "malformed public key for recipient "+r.ID, err)
		}
		wrapped, err := wrapContentKey(cek, pub)
		if err != nil {
			return nil, wrapError(KindSeal, "GV-ENV-107", "key wrap failed for recipient "+r.ID, err)
		}
		env.Recipients = append(env.Recipients, Recipient{RecipientID: r.ID, WrappedKey: wrapped})
	}
	return env, nil
}

// Open locates the recipient entry matching recipientID (normalized
// comparison), unwraps the content key with priv and decrypts the payload.
func Open(env *Envelope, recipientID string, priv kem.PrivateKey) ([]byte, error) {
	if env == nil {
		return nil, newError(KindMalformed, "GV-ENV-001", "nil envelope")
	}
	if err := validate(env); err != nil {
		return nil, err
	}

	for _, r := range env.Recipients {
		if identity.Equal(r.RecipientID, recipientID) {
			return openWith(env, r.WrappedKey, priv)
		}
	}
	return nil, newError(KindRecipient, "GV-ENV-201", "no recipient entry matches "+identity.Normalize(recipientID))
}

// OpenAny tries every recipient entry in order until one wrapped key
// decrypts, ignoring the declared recipient ids.
//
// This tolerates identity-format mismatches between callers and stored
// entries, but it makes the identity binding advisory: success depends only
// on possessing a matching private key. Whether strict id matching should
// be required instead is an open product decision; do not rely on OpenAny
// for authorization.
func OpenAny(env *Envelope, priv kem.PrivateKey) ([]byte, error) {
	if env == nil {
		return nil, newError(KindMalformed, "GV-ENV-001", "nil envelope")
	}
	if err := validate(env); err != nil {
		return nil, err
	}

	var lastErr error
	for _, r := range env.Recipients {
		payload, err := openWith(env, r.WrappedKey, priv)
		if err == nil {
			return payload, nil
		}
		lastErr = err
	}
	return nil, wrapError(KindDecrypt, "GV-ENV-301", "no wrapped key decrypts with the supplied private key", lastErr)
}

func wrapContentKey(cek []byte, pub kem.PublicKey) ([]byte, error) {
	sender, err := suite().NewSender(pub, wrapInfo)
	if err != nil {
		return nil, err
	}
	enc, sealer, err := sender.Setup(rand.Reader)
	if err != nil {
		return nil, err
	}
	sealed, err := sealer.Seal(cek, nil)
	if err != nil {
		return nil, err
	}
	return append(enc, sealed...), nil
}

func openWith(env *Envelope, wrapped []byte, priv kem.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, newError(KindDecrypt, "GV-ENV-302", "missing private key")
	}
	encSize := keys.Scheme().CiphertextSize()
	if len(wrapped) <= encSize {
		return nil, newError(KindMalformed, "GV-ENV-018", "wrapped key too short")
	}

	receiver, err := suite().NewReceiver(priv, wrapInfo)
	if err != nil {
		return nil, wrapError(KindDecrypt, "GV-ENV-303", "receiver construction failed", err)
	}
	opener, err := receiver.Setup(wrapped[:encSize])
	if err != nil {
		return nil, wrapError(KindDecrypt, "GV-ENV-304", "key unwrap setup failed", err)
	}
	cek, err := opener.Open(wrapped[encSize:], nil)
	if err != nil {
		return nil, wrapError(KindDecrypt, "GV-ENV-305", "key unwrap failed", err)
	}
	if len(cek) != contentKeySize {
		return nil, newError(KindDecrypt, "GV-ENV-306", "unwrapped content key has wrong length")
	}

	aead, err := chacha20poly1305.New(cek)
	if err != nil {
		return nil, wrapError(KindDecrypt, "GV-ENV-307", "cipher construction failed", err)
	}
	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.AuthTag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.AuthTag...)
	payload, err := aead.Open(nil, env.IV, sealed, nil)
	if err != nil {
		return nil, wrapError(KindDecrypt, "GV-ENV-308", "authenticated decryption failed", err)
	}
	return payload, nil
}
