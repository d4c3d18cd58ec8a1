package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gradevault/gradevault/grade"
	"github.com/gradevault/gradevault/keys"
	"github.com/gradevault/gradevault/ledger"
	"github.com/gradevault/gradevault/ledger/sqlite"
	"github.com/gradevault/gradevault/storage"
	"github.com/gradevault/gradevault/storage/grpcblob"
	"github.com/gradevault/gradevault/storage/localfs"
)

// buildService assembles a grade.Service from config. The returned cleanup
// closes whatever backends hold resources; it is safe to call on a nil-error
// return only.
func buildService(cfg Config) (*grade.Service, func() error, error) {
	closers := []func() error{}
	closeAll := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	ld, closer, err := openLedger(cfg.Ledger)
	if err != nil {
		return nil, nil, err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	blobs, blobClosers, err := openBlobs(cfg.Blobs)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	closers = append(closers, blobClosers...)

	registry, err := LoadRegistry(cfg.Keys.Registry)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	resolver := grade.StaticKeys{}
	for id, pub := range registry {
		resolver.Register(id, pub)
	}

	svc := &grade.Service{Ledger: ld, Blobs: blobs, Keys: resolver}
	return svc, closeAll, nil
}

func openLedger(cfg LedgerConfig) (ledger.Ledger, func() error, error) {
	switch cfg.Backend {
	case "memory":
		return ledger.NewMemory(), nil, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create ledger directory: %w", err)
		}
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open ledger %s: %w", cfg.Path, err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}

func openBlobs(cfg BlobsConfig) (storage.BlobStore, []func() error, error) {
	var closers []func() error

	backends := make([]storage.NamedStore, 0, len(cfg.Backends))
	for i, b := range cfg.Backends {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", b.Kind, i)
		}
		store, closer, err := openBlobBackend(b)
		if err != nil {
			for _, c := range closers {
				_ = c()
			}
			return nil, nil, err
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		backends = append(backends, storage.NamedStore{Name: name, Store: store})
	}

	if len(backends) == 1 {
		return backends[0].Store, closers, nil
	}
	return storage.Replicating{Backends: backends}, closers, nil
}

func openBlobBackend(b BlobBackend) (storage.BlobStore, func() error, error) {
	switch b.Kind {
	case "memory":
		return storage.NewMemory(), nil, nil
	case "localfs":
		store, err := localfs.New(b.Root)
		if err != nil {
			return nil, nil, fmt.Errorf("open localfs blobs at %s: %w", b.Root, err)
		}
		return store, nil, nil
	case "grpc":
		client, err := grpcblob.Dial(b.Address, grpcblob.DialOptions{})
		if err != nil {
			return nil, nil, fmt.Errorf("dial blob server %s: %w", b.Address, err)
		}
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown blob backend kind %q", b.Kind)
	}
}

// openKeyStore picks the configured seed directory, falling back to the
// default location.
func openKeyStore(cfg Config) (*keys.KeyStore, error) {
	return keys.CreateKeyStore(cfg.Keys.Directory)
}
