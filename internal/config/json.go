package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/walletlock/internal/flagx"
	"github.com/dmitrijs2005/walletlock/internal/timex"
	"gopkg.in/yaml.v3"
)

// JsonConfig is a DTO used exclusively for config file unmarshalling.
// Pointer fields tell an absent key apart from a zero value.
type JsonConfig struct {
	DatabaseDSN       *string         `json:"database_dsn" yaml:"database_dsn"`
	DeviceKeyFile     *string         `json:"device_key_file" yaml:"device_key_file"`
	LockTimeout       *timex.Duration `json:"lock_timeout" yaml:"lock_timeout"`
	WorkFactor        *int            `json:"work_factor" yaml:"work_factor"`
	KDF               *string         `json:"kdf" yaml:"kdf"`
	BiometricsEnabled *bool           `json:"biometrics_enabled" yaml:"biometrics_enabled"`
	LogLevel          *string         `json:"log_level" yaml:"log_level"`
	LogFormat         *string         `json:"log_format" yaml:"log_format"`
}

// parseJson overlays Config with values loaded from the file named by -c
// or -config. Files ending in .yaml or .yml are read as YAML, anything else
// as JSON. Without either flag nothing happens. Read or unmarshal errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	switch strings.ToLower(filepath.Ext(jsonConfigFile)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &jc)
	default:
		err = json.Unmarshal(data, &jc)
	}
	if err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.DeviceKeyFile != nil {
		cfg.DeviceKeyFile = *jc.DeviceKeyFile
	}
	if jc.LockTimeout != nil {
		cfg.LockTimeout = jc.LockTimeout.Duration
	}
	if jc.WorkFactor != nil {
		cfg.WorkFactor = *jc.WorkFactor
	}
	if jc.KDF != nil {
		cfg.KDF = *jc.KDF
	}
	if jc.BiometricsEnabled != nil {
		cfg.BiometricsEnabled = *jc.BiometricsEnabled
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFormat != nil {
		cfg.LogFormat = *jc.LogFormat
	}
}
