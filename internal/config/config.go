// Package config loads the optional .sigtrack.toml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/morozRed/sigtrack/internal/registry"
	"github.com/morozRed/sigtrack/internal/signature"
)

const (
	FileName       = ".sigtrack.toml"
	IgnoreFileName = ".sigtrackignore"
)

// Config is the on-disk project configuration.
type Config struct {
	Signature SignatureConfig `toml:"signature"`
	Registry  RegistryConfig  `toml:"registry"`
	Log       LogConfig       `toml:"log"`

	// Ignore holds extra ignore rules, applied after .sigtrackignore.
	Ignore []string `toml:"ignore,omitempty"`
}

type SignatureConfig struct {
	// Policy is one of exact, lcs, edit.
	Policy    string  `toml:"policy"`
	Threshold float64 `toml:"threshold"`
}

type RegistryConfig struct {
	PendingLimit int  `toml:"pending_limit"`
	EvictOnBind  bool `toml:"evict_on_bind"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() *Config {
	return &Config{
		Signature: SignatureConfig{
			Policy:    signature.ModeLCS.String(),
			Threshold: signature.DefaultThreshold,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load reads FileName from dir. A missing file yields Default.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a TOML config file, which must exist. Keys absent from the
// file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Policy converts the signature section.
func (c *Config) Policy() (signature.Policy, error) {
	mode, err := signature.ParseMode(c.Signature.Policy)
	if err != nil {
		return signature.Policy{}, err
	}
	policy := signature.Policy{Mode: mode, Threshold: c.Signature.Threshold}
	if mode == signature.ModeExact && policy.Threshold == 0 {
		policy.Threshold = 1
	}
	return policy, policy.Validate()
}

// RegistryOptions converts the registry section, together with the policy.
func (c *Config) RegistryOptions() ([]registry.Option, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, err
	}
	return []registry.Option{
		registry.WithPolicy(policy),
		registry.WithPendingLimit(c.Registry.PendingLimit),
		registry.WithEvictOnBind(c.Registry.EvictOnBind),
	}, nil
}

func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Registry.PendingLimit < 0 {
		return fmt.Errorf("registry.pending_limit must not be negative, got %d", c.Registry.PendingLimit)
	}
	return nil
}

// Save writes the config as TOML.
func (c *Config) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	return toml.NewEncoder(f).Encode(c)
}
