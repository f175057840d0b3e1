package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/walletlock/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags it knows are passed to the flag set (see
// flagx.FilterArgs), so -c from parseJson does not trip it up. Parse errors
// panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-k", "-t", "-w"}, "-b")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "path of the SQLite database")
	fs.StringVar(&cfg.DeviceKeyFile, "k", cfg.DeviceKeyFile, "path of the device key file")
	lockTimeout := fs.Int("t", int(cfg.LockTimeout.Minutes()), "auto-lock timeout (in minutes)")
	fs.IntVar(&cfg.WorkFactor, "w", cfg.WorkFactor, "KDF work factor, 0 for the default")
	fs.BoolVar(&cfg.BiometricsEnabled, "b", cfg.BiometricsEnabled, "use biometrics when available")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t only counts when given, so a sub-minute timeout from JSON survives.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.LockTimeout = time.Duration(*lockTimeout) * time.Minute
		}
	})
}
