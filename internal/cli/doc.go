// Package cli is the walletlock terminal client.
//
// It wires configuration, the on-device stores, the auth gate and the
// auto-lock monitor behind a small REPL. The wallet starts locked; once the
// gate lets the user through, the client routes to onboarding or home
// depending on a flag in the settings store, and the monitor locks the
// wallet again after the configured timeout or a long suspension (Ctrl-Z).
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
