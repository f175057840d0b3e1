package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"sync"
	"time"

	"github.com/dmitrijs2005/walletlock/internal/authgate"
	"github.com/dmitrijs2005/walletlock/internal/autolock"
	"github.com/dmitrijs2005/walletlock/internal/biometric"
	"github.com/dmitrijs2005/walletlock/internal/config"
	"github.com/dmitrijs2005/walletlock/internal/logging"
	"github.com/dmitrijs2005/walletlock/internal/pinhash"
	"github.com/dmitrijs2005/walletlock/internal/securestore"
)

// Screen is where the client routes the user.
type Screen string

const (
	ScreenLock       Screen = "lock"
	ScreenOnboarding Screen = "onboarding"
	ScreenHome       Screen = "home"
)

// KeyOnboardingComplete is the settings key that decides between the
// onboarding and home screens after unlocking.
const KeyOnboardingComplete = "onboarding_complete"

type App struct {
	config   *config.Config
	stores   io.Closer
	settings securestore.Store
	gate     authgate.Authenticator
	flow     *authgate.Flow
	monitor  *autolock.Monitor
	log      logging.Logger
	out      io.Writer

	mu     sync.Mutex
	screen Screen
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, err := logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	hasher, err := pinhash.New(c.KDF)
	if err != nil {
		return nil, err
	}
	if c.WorkFactor > 0 {
		if err := pinhash.CheckWorkFactor(hasher, c.WorkFactor); err != nil {
			return nil, fmt.Errorf("invalid work factor: %w", err)
		}
	}

	stores, err := securestore.Open(ctx, c.DatabaseDSN, c.DeviceKeyFile)
	if err != nil {
		log.Error(ctx, "error opening wallet storage", "error", err)
		return nil, err
	}

	var opts []authgate.Option
	if c.WorkFactor > 0 {
		opts = append(opts, authgate.WithWorkFactor(c.WorkFactor))
	}
	gate := authgate.New(stores.Secrets, hasher, newProbe(c, os.Stdout), log, opts...)

	a := newApp(gate, stores.Settings, log, os.Stdout, c.LockTimeout)
	a.config = c
	a.stores = stores
	return a, nil
}

func newApp(gate authgate.Authenticator, settings securestore.Store, log logging.Logger, out io.Writer,
	timeout time.Duration, monitorOpts ...autolock.Option) *App {
	a := &App{
		settings: settings,
		gate:     gate,
		log:      log,
		out:      out,
		screen:   ScreenLock,
	}
	a.flow = authgate.NewFlow(gate, log, authgate.WithResetHandler(a.wipeWallet))
	opts := append([]autolock.Option{autolock.WithLogger(log)}, monitorOpts...)
	a.monitor = autolock.New(timeout, a.onAutoLock, opts...)
	return a
}

func newProbe(c *config.Config, out io.Writer) biometric.Probe {
	if !c.BiometricsEnabled {
		return biometric.Unavailable()
	}
	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return biometric.NewFprintdProbe(name, out)
}

// Run shows the lock screen and serves commands from stdin until the user
// exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.println("Welcome to walletlock (type 'help' for commands)")
	a.monitor.WatchSignals(ctx)
	a.showLockScreen(ctx)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) Close() error {
	a.monitor.Stop()
	if a.stores != nil {
		return a.stores.Close()
	}
	return nil
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) currentScreen() Screen {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.screen
}

func (a *App) setScreen(s Screen) {
	a.mu.Lock()
	a.screen = s
	a.mu.Unlock()
}

func (a *App) getStatus() string {
	if s := a.currentScreen(); s != ScreenLock {
		return fmt.Sprintf("(%s)", s)
	}
	return fmt.Sprintf("(locked %s)", a.flow.State())
}

func (a *App) isUnlocked() bool {
	return a.flow.Unlocked()
}

// onAutoLock runs on the monitor's timer goroutine.
func (a *App) onAutoLock() {
	a.flow.Lock()
	a.setScreen(ScreenLock)
	a.println("Wallet locked after inactivity. Type 'unlock' or 'pin'.")
}

// wipeWallet forgets everything the PIN protected. It runs before a
// forgotten PIN is replaced and on logout.
func (a *App) wipeWallet(ctx context.Context) error {
	if err := a.settings.DeleteMany(ctx, KeyOnboardingComplete); err != nil {
		a.log.Error(ctx, "error wiping wallet state", "error", err)
		return err
	}
	return nil
}
