package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cloudflare/circl/kem"
)

// KeyStore is a simple local-first key storage for CLI-held identities.
//
// Features:
// - Supports X25519 recipient keys only
// - Stores 32-byte seeds hex-encoded on the local filesystem (0600)
// - One key per named identity
//
// This store is designed to be straightforward and explicit.
type KeyStore struct {
	Directory string
}

type KeyEntry struct {
	Name      string
	PublicKey string
}

func GetDefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".gradevault", "keys"), nil
}

func CreateKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = GetDefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) keyFilePath(name string) string {
	return filepath.Join(ks.Directory, name+".key")
}

func CheckKeyName(name string) error {
	if name == "" {
		return errors.New("key name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' || char == '.' || char == '@' {
			continue
		}
		return fmt.Errorf("invalid character %q in key name", char)
	}
	return nil
}

// ParseSeedHex decodes a 64-hex-char (32-byte) seed, tolerating an 0x prefix.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if want := Scheme().SeedSize(); len(data) != want {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", want, len(data))
	}
	return data, nil
}

func (ks *KeyStore) saveSeedToFile(filePath string, seed []byte, overwrite bool) error {
	if len(seed) != Scheme().SeedSize() {
		return fmt.Errorf("expected seed length of %d bytes", Scheme().SeedSize())
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (ks *KeyStore) loadSeedFromFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// Initialize stores a seed under name and returns the encoded public key.
func (ks *KeyStore) Initialize(name string, seed []byte, overwrite bool) (publicKey string, filePath string, err error) {
	if err := CheckKeyName(name); err != nil {
		return "", "", err
	}
	filePath = ks.keyFilePath(name)
	if err := ks.saveSeedToFile(filePath, seed, overwrite); err != nil {
		return "", "", err
	}
	publicKey, err = PublicKeyFromSeed(seed)
	if err != nil {
		return "", "", err
	}
	return publicKey, filePath, nil
}

// Export returns the encoded public key for a stored identity.
func (ks *KeyStore) Export(name string) (string, error) {
	if err := CheckKeyName(name); err != nil {
		return "", err
	}
	seed, err := ks.loadSeedFromFile(ks.keyFilePath(name))
	if err != nil {
		return "", err
	}
	return PublicKeyFromSeed(seed)
}

// LoadKeyPair loads the keypair for a stored identity.
func (ks *KeyStore) LoadKeyPair(name string) (kem.PublicKey, kem.PrivateKey, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, nil, err
	}
	seed, err := ks.loadSeedFromFile(ks.keyFilePath(name))
	if err != nil {
		return nil, nil, err
	}
	return DeriveKeyPair(seed)
}

// LoadSeed resolves a seed from an explicit hex string, a key file path, or
// a stored name, in that precedence order.
func (ks *KeyStore) LoadSeed(seedHex, name, keyFile string) ([]byte, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if keyFile != "" {
		return ks.loadSeedFromFile(keyFile)
	}
	if name != "" {
		if err := CheckKeyName(name); err != nil {
			return nil, err
		}
		return ks.loadSeedFromFile(ks.keyFilePath(name))
	}
	return nil, errors.New("no key provided")
}

// List returns stored identities with their public keys, sorted by name.
func (ks *KeyStore) List() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".key") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".key"))
		}
	}
	sort.Strings(names)

	var result []KeyEntry
	for _, name := range names {
		pub, err := ks.Export(name)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", name, err)
		}
		result = append(result, KeyEntry{Name: name, PublicKey: pub})
	}
	return result, nil
}
