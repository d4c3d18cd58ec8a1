package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk CLI configuration.
type Config struct {
	Ledger LedgerConfig `yaml:"ledger"`
	Blobs  BlobsConfig  `yaml:"blobs"`
	Keys   KeysConfig   `yaml:"keys"`
}

// LedgerConfig selects the series ledger backend.
type LedgerConfig struct {
	Backend string `yaml:"backend"` // "sqlite" | "memory"
	Path    string `yaml:"path"`    // sqlite database file
}

// BlobsConfig selects the envelope blob backends. More than one entry
// makes writes replicate to all of them, reading back in listed order.
type BlobsConfig struct {
	Backends []BlobBackend `yaml:"backends"`
}

// BlobBackend configures one blob store.
type BlobBackend struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`    // "localfs" | "grpc" | "memory"
	Root    string `yaml:"root"`    // localfs directory
	Address string `yaml:"address"` // grpc target
}

// KeysConfig locates private seeds and the public key registry.
type KeysConfig struct {
	Directory string `yaml:"directory"`
	Registry  string `yaml:"registry"`
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gradevault"
	}
	return filepath.Join(home, ".gradevault")
}

// DefaultConfig is what a fresh install runs with when no config file exists.
func DefaultConfig() Config {
	dir := defaultConfigDir()
	return Config{
		Ledger: LedgerConfig{Backend: "sqlite", Path: filepath.Join(dir, "ledger.db")},
		Blobs: BlobsConfig{
			Backends: []BlobBackend{{Name: "local", Kind: "localfs", Root: filepath.Join(dir, "blobs")}},
		},
		Keys: KeysConfig{
			Directory: filepath.Join(dir, "keys"),
			Registry:  filepath.Join(dir, "registry.yaml"),
		},
	}
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if path == "" {
		path = filepath.Join(defaultConfigDir(), "config.yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Ledger.Backend {
	case "sqlite":
		if c.Ledger.Path == "" {
			return fmt.Errorf("ledger: sqlite backend requires a path")
		}
	case "memory":
	default:
		return fmt.Errorf("ledger: unknown backend %q", c.Ledger.Backend)
	}

	if len(c.Blobs.Backends) == 0 {
		return fmt.Errorf("blobs: at least one backend is required")
	}
	for i, b := range c.Blobs.Backends {
		switch b.Kind {
		case "localfs":
			if b.Root == "" {
				return fmt.Errorf("blobs[%d]: localfs backend requires a root", i)
			}
		case "grpc":
			if b.Address == "" {
				return fmt.Errorf("blobs[%d]: grpc backend requires an address", i)
			}
		case "memory":
		default:
			return fmt.Errorf("blobs[%d]: unknown kind %q", i, b.Kind)
		}
	}
	return nil
}

// LoadRegistry reads the identity-to-public-key registry. The file is a
// flat YAML mapping; identities are matched case-insensitively elsewhere,
// so the registry keeps them as written.
func LoadRegistry(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	var reg map[string]string
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	if reg == nil {
		reg = map[string]string{}
	}
	return reg, nil
}

// SaveRegistry writes the registry back, creating parent directories.
func SaveRegistry(path string, reg map[string]string) error {
	data, err := yaml.Marshal(reg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
