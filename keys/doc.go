// Package keys manages the recipient key material used by the envelope
// layer.
//
// Recipients hold X25519 keypairs for HPKE key wrapping. Public keys travel
// as strings of the form "x25519:" + base64(raw key), mirroring how the
// surrounding registration subsystem publishes them. Private keys are
// represented by their 32-byte seeds and never leave the caller's side.
//
// The filesystem KeyStore is a local-first convenience for the CLI; it is
// not part of the core protocol contract.
package keys
