package keys

import (
	"os"
	"strings"
	"testing"
)

func TestKeyStoreInitializeExport(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	seed := testSeed(0x11)

	pub, path, err := ks.Initialize("teacher-1", seed, false)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !strings.HasPrefix(pub, Algorithm+":") {
		t.Fatalf("unexpected public key %q", pub)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("key file permissions: got %o want 600", perm)
	}

	exported, err := ks.Export("teacher-1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exported != pub {
		t.Fatalf("Export mismatch: %q vs %q", exported, pub)
	}
}

func TestKeyStoreRefusesOverwrite(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	if _, _, err := ks.Initialize("s", testSeed(1), false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, _, err := ks.Initialize("s", testSeed(2), false); err == nil {
		t.Fatalf("expected error overwriting existing key without force")
	}
	if _, _, err := ks.Initialize("s", testSeed(2), true); err != nil {
		t.Fatalf("Initialize with overwrite: %v", err)
	}
}

func TestKeyStoreLoadKeyPair(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	seed := testSeed(0x33)
	if _, _, err := ks.Initialize("student", seed, false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	pub, _, err := ks.LoadKeyPair("student")
	if err != nil {
		t.Fatalf("LoadKeyPair: %v", err)
	}
	want, _, err := DeriveKeyPair(seed)
	if err != nil {
		t.Fatalf("DeriveKeyPair: %v", err)
	}
	if !pub.Equal(want) {
		t.Fatalf("loaded keypair differs from derived")
	}
}

func TestKeyStoreList(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	for i, name := range []string{"b-key", "a-key"} {
		if _, _, err := ks.Initialize(name, testSeed(byte(i+1)), false); err != nil {
			t.Fatalf("Initialize %s: %v", name, err)
		}
	}

	entries, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "a-key" || entries[1].Name != "b-key" {
		t.Fatalf("unexpected listing: %+v", entries)
	}
}

func TestCheckKeyName(t *testing.T) {
	if err := CheckKeyName("ok-name_1.x@y"); err != nil {
		t.Fatalf("CheckKeyName: %v", err)
	}
	if err := CheckKeyName(""); err == nil {
		t.Fatalf("empty name accepted")
	}
	if err := CheckKeyName("bad/name"); err == nil {
		t.Fatalf("slash in name accepted")
	}
}
