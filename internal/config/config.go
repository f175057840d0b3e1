package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/walletlock/internal/autolock"
	"github.com/dmitrijs2005/walletlock/internal/pinhash"
)

// Config holds runtime settings for the walletlock terminal client.
//
// WorkFactor 0 means the default of the selected KDF.
type Config struct {
	DatabaseDSN       string
	DeviceKeyFile     string
	LockTimeout       time.Duration
	WorkFactor        int
	KDF               string
	BiometricsEnabled bool
	LogLevel          string
	LogFormat         string
}

// LoadDefaults populates c with defaults. Files live under the user's
// config directory, or ./.walletlock when it cannot be determined.
func (c *Config) LoadDefaults() {
	dir := ".walletlock"
	if base, err := os.UserConfigDir(); err == nil {
		dir = filepath.Join(base, "walletlock")
	}

	c.DatabaseDSN = filepath.Join(dir, "wallet.db")
	c.DeviceKeyFile = filepath.Join(dir, "device.key")
	c.LockTimeout = autolock.DefaultTimeout
	c.WorkFactor = 0
	c.KDF = pinhash.AlgPBKDF2
	c.BiometricsEnabled = true
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
