// Package config loads runtime configuration for the walletlock client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file (see parseJson) selected via flags: -c or
//     -config. A .yaml or .yml extension selects YAML with the same keys.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path of the SQLite database
//	-k string   path of the device key file
//	-t int      auto-lock timeout (minutes)
//	-w int      KDF work factor (0 selects the KDF default)
//	-b bool     use biometrics when available (-b=false disables)
//
// # JSON schema
//
// Every key is optional; absent keys keep the default. The lock timeout
// uses timex.Duration, so it can be a string like "5m" or integer
// nanoseconds:
//
//	{
//	  "database_dsn": "/home/me/.config/walletlock/wallet.db",
//	  "device_key_file": "/home/me/.config/walletlock/device.key",
//	  "lock_timeout": "5m",
//	  "work_factor": 10000,
//	  "kdf": "pbkdf2-sha256",
//	  "biometrics_enabled": true,
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
