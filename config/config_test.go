package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strapt.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, "./strapt-data", cfg.DataDir)
	require.NotEmpty(t, cfg.Assets)
	require.Positive(t, cfg.DefaultExpirySeconds)
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strapt.toml")
	contents := `
FeeRateBps = 100
FeeCollector = "0x0102030405060708090a0b0c0d0e0f1011121314"

[[Assets]]
Symbol = "IDRX"
Name = "IDRX Stable"
Decimals = 2
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint32(100), cfg.FeeRateBps)
	require.Equal(t, "local", cfg.Env)
	require.Positive(t, cfg.MaxExpirySeconds)
}

func TestLoadRejectsExcessiveFeeRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strapt.toml")
	require.NoError(t, os.WriteFile(path, []byte("FeeRateBps = 2000\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsFeeRateWithoutCollector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strapt.toml")
	require.NoError(t, os.WriteFile(path, []byte("FeeRateBps = 100\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, err)
	require.Equal(t, byte(0x01), addr[0])
	require.Equal(t, byte(0x14), addr[19])

	_, err = ParseAddress("0x1234")
	require.Error(t, err)
	_, err = ParseAddress("not-hex")
	require.Error(t, err)
}
