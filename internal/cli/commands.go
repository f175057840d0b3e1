package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletlock/internal/authgate"
	"github.com/dmitrijs2005/walletlock/internal/common"
)

var (
	ErrAlreadyUnlocked = errors.New("wallet already unlocked")
	ErrLocked          = errors.New("wallet is locked")
	ErrNoBiometrics    = errors.New("biometrics unavailable")
	ErrClearFailed     = errors.New("failed to clear credentials")
)

func (a *App) showLockScreen(ctx context.Context) {
	st, err := a.flow.Start(ctx)
	if err != nil {
		a.println("Error:", err)
		return
	}
	a.describe(st)
}

// ensureStarted runs the gate check when the flow was locked since the
// last command.
func (a *App) ensureStarted(ctx context.Context) (authgate.State, error) {
	if st := a.flow.State(); st != authgate.Checking {
		return st, nil
	}
	return a.flow.Start(ctx)
}

func (a *App) describe(st authgate.State) {
	switch st {
	case authgate.AwaitingBiometric:
		a.println("Use 'unlock' for biometrics or 'pin' to enter your PIN.")
	case authgate.AwaitingPINEnter:
		if a.flow.Mode() == authgate.ModeCreate {
			a.println("Create a PIN with 'pin'.")
		} else {
			a.println("Enter your PIN with 'pin'.")
		}
	case authgate.AwaitingPINConfirm:
		a.println("Confirm your PIN with 'pin'.")
	}
}

func (a *App) pinPrompt(st authgate.State) string {
	switch {
	case st == authgate.AwaitingPINConfirm:
		return "Confirm PIN"
	case a.flow.Mode() == authgate.ModeCreate:
		return "Create PIN (4-8 digits)"
	default:
		return "Enter PIN"
	}
}

// Unlock runs the biometric challenge.
func (a *App) Unlock(ctx context.Context) error {
	if a.isUnlocked() {
		a.println("Already unlocked")
		return ErrAlreadyUnlocked
	}

	st, err := a.ensureStarted(ctx)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	if st != authgate.AwaitingBiometric {
		a.println("Biometrics unavailable, use 'pin'.")
		return ErrNoBiometrics
	}

	st, err = a.flow.UseBiometric(ctx)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	if msg := a.flow.Message(); msg != "" {
		a.println(msg)
	}
	return a.after(ctx, st)
}

// EnterPIN reads PINs until the flow unlocks or has something to say.
// In create mode the confirmation is asked right after the first entry.
func (a *App) EnterPIN(ctx context.Context) error {
	if a.isUnlocked() {
		a.println("Already unlocked")
		return ErrAlreadyUnlocked
	}

	st, err := a.ensureStarted(ctx)
	if err == nil && st == authgate.AwaitingBiometric {
		st, err = a.flow.UsePIN(ctx)
	}
	if err != nil {
		a.println("Error:", err)
		return err
	}

	for st == authgate.AwaitingPINEnter || st == authgate.AwaitingPINConfirm {
		pin, err := getPIN(a.out, a.pinPrompt(st))
		if err != nil {
			a.println("Error reading PIN:", err)
			return err
		}

		st, err = a.flow.SubmitPIN(ctx, pin)
		common.WipeByteArray(pin)
		if err != nil {
			a.println("Error:", err)
			return err
		}
		if msg := a.flow.Message(); msg != "" {
			a.println(msg)
			break
		}
	}
	return a.after(ctx, st)
}

func (a *App) after(ctx context.Context, st authgate.State) error {
	if st != authgate.Unlocked {
		return nil
	}

	a.monitor.Start()

	v, err := a.settings.Get(ctx, KeyOnboardingComplete)
	if err != nil {
		a.log.Error(ctx, "error reading onboarding flag", "error", err)
	}
	if string(v) == "true" {
		a.setScreen(ScreenHome)
		a.println("Unlocked. Welcome back!")
		return nil
	}
	a.setScreen(ScreenOnboarding)
	a.println("Unlocked. Finish setting up your wallet with 'onboard'.")
	return nil
}

// Back leaves PIN confirmation, or PIN entry for the biometric prompt.
func (a *App) Back(ctx context.Context) error {
	st, handled := a.flow.Back()
	if !handled {
		a.println("Nothing to go back to")
		return nil
	}
	a.describe(st)
	return nil
}

// ResetPIN is "Forgot PIN?". The wallet state goes with the old PIN.
func (a *App) ResetPIN(ctx context.Context) error {
	if a.isUnlocked() {
		a.println("Already unlocked")
		return ErrAlreadyUnlocked
	}

	st, err := a.ensureStarted(ctx)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	if st == authgate.AwaitingBiometric {
		if st, err = a.flow.UsePIN(ctx); err != nil {
			a.println("Error:", err)
			return err
		}
	}

	st, err = a.flow.ResetPIN(ctx)
	if msg := a.flow.Message(); msg != "" {
		a.println(msg)
		return err
	}
	if err != nil {
		a.println("PIN reset is only possible while entering an existing PIN")
		return err
	}
	a.println("Wallet reset.")
	a.describe(st)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	a.println(fmt.Sprintf("Screen: %s", a.currentScreen()))
	a.println(fmt.Sprintf("Gate: %s", a.flow.State()))
	a.println(fmt.Sprintf("Auto-lock after: %s", a.monitor.Timeout()))
	if n := a.flow.FailedAttempts(); n > 0 {
		a.println(fmt.Sprintf("Failed attempts: %d", n))
	}
	return nil
}

// Lock locks the wallet now.
func (a *App) Lock(ctx context.Context) error {
	if !a.isUnlocked() {
		a.println("Already locked")
		return ErrLocked
	}
	a.lockNow(ctx)
	a.println("Locked")
	return nil
}

func (a *App) lockNow(ctx context.Context) {
	a.monitor.Stop()
	a.flow.Lock()
	a.setScreen(ScreenLock)
}

// Onboard marks onboarding complete.
func (a *App) Onboard(ctx context.Context) error {
	if !a.isUnlocked() {
		a.println("Unlock the wallet first")
		return ErrLocked
	}
	if err := a.settings.Set(ctx, KeyOnboardingComplete, []byte("true")); err != nil {
		a.log.Error(ctx, "error saving onboarding flag", "error", err)
		a.println("Could not save, please try again.")
		return err
	}
	a.setScreen(ScreenHome)
	a.println("Onboarding complete.")
	return nil
}

// Logout forgets the PIN and the wallet state and locks.
func (a *App) Logout(ctx context.Context) error {
	if !a.isUnlocked() {
		a.println("Unlock the wallet first")
		return ErrLocked
	}
	if !a.gate.ClearCredentials(ctx) {
		a.println("Could not clear credentials, please try again.")
		return ErrClearFailed
	}
	if err := a.wipeWallet(ctx); err != nil {
		a.println("Could not clear wallet state, please try again.")
		return err
	}
	a.lockNow(ctx)
	a.println("Logged out")
	return nil
}
