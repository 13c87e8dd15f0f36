package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"straptledger/native/fees"
	"straptledger/native/transfer"
)

// AssetConfig declares an asset seeded onto the allow-list at first start.
type AssetConfig struct {
	Symbol   string `toml:"Symbol"`
	Name     string `toml:"Name"`
	Decimals uint8  `toml:"Decimals"`
}

// Config carries the ledger-wide settings loaded at startup.
type Config struct {
	DataDir              string        `toml:"DataDir"`
	Env                  string        `toml:"Env"`
	LogFile              string        `toml:"LogFile"`
	Admin                string        `toml:"Admin"`
	FeeRateBps           uint32        `toml:"FeeRateBps"`
	FeeCollector         string        `toml:"FeeCollector"`
	DefaultExpirySeconds int64         `toml:"DefaultExpirySeconds"`
	MaxExpirySeconds     int64         `toml:"MaxExpirySeconds"`
	Assets               []AssetConfig `toml:"Assets"`
}

// Load loads the configuration from the given path, creating a commented
// default file when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./strapt-data"
	}
	if strings.TrimSpace(c.Env) == "" {
		c.Env = "local"
	}
	if c.DefaultExpirySeconds == 0 {
		c.DefaultExpirySeconds = transfer.DefaultExpiryWindow
	}
	if c.MaxExpirySeconds == 0 {
		c.MaxExpirySeconds = transfer.MaxExpiryWindow
	}
}

// Validate checks the configuration invariants that would otherwise surface
// as engine failures at runtime.
func (c *Config) Validate() error {
	if c.FeeRateBps > fees.MaxRateBps {
		return fmt.Errorf("config: FeeRateBps %d exceeds maximum %d", c.FeeRateBps, fees.MaxRateBps)
	}
	if c.FeeRateBps > 0 {
		if _, err := ParseAddress(c.FeeCollector); err != nil {
			return fmt.Errorf("config: FeeCollector: %w", err)
		}
	}
	if strings.TrimSpace(c.Admin) != "" {
		if _, err := ParseAddress(c.Admin); err != nil {
			return fmt.Errorf("config: Admin: %w", err)
		}
	}
	if c.DefaultExpirySeconds <= 0 || c.MaxExpirySeconds <= 0 {
		return fmt.Errorf("config: expiry windows must be positive")
	}
	if c.DefaultExpirySeconds > c.MaxExpirySeconds {
		return fmt.Errorf("config: DefaultExpirySeconds exceeds MaxExpirySeconds")
	}
	for _, asset := range c.Assets {
		if strings.TrimSpace(asset.Symbol) == "" {
			return fmt.Errorf("config: asset symbol must not be empty")
		}
	}
	return nil
}

// ParseAddress decodes a 20-byte hex address, with or without an 0x prefix.
func ParseAddress(value string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid hex address %q", value)
	}
	if len(decoded) != len(addr) {
		return addr, fmt.Errorf("address must be %d bytes, got %d", len(addr), len(decoded))
	}
	copy(addr[:], decoded)
	return addr, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:              "./strapt-data",
		Env:                  "local",
		FeeRateBps:           0,
		DefaultExpirySeconds: transfer.DefaultExpiryWindow,
		MaxExpirySeconds:     transfer.MaxExpiryWindow,
		Assets: []AssetConfig{
			{Symbol: "IDRX", Name: "IDRX Stable", Decimals: 2},
			{Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		},
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
