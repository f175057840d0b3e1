// Package biometric queries the device for biometric capability and runs
// the platform's biometric challenge. Probes never return biometric data,
// only an outcome.
package biometric

import "context"

// Result is the outcome of a challenge. Only Success unlocks; every other
// value is a failure, and callers that do not care about the reason can
// treat them alike.
type Result int

const (
	Failed Result = iota
	Success
	UserCancelled
	HardwareError
	NotEnrolled
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case UserCancelled:
		return "user_cancelled"
	case HardwareError:
		return "hardware_error"
	case NotEnrolled:
		return "not_enrolled"
	default:
		return "failed"
	}
}

// Prompt carries the parameters shown by the platform's challenge UI.
type Prompt struct {
	Message       string
	CancelLabel   string
	FallbackLabel string
	// AllowDeviceFallback lets the OS offer its own system credential UI.
	AllowDeviceFallback bool
	// RequireConfirmation asks for an explicit confirmation after a match.
	RequireConfirmation bool
}

const DefaultReason = "Access your identity wallet"

// DefaultPrompt returns the prompt used by the wallet for reason.
func DefaultPrompt(reason string) Prompt {
	if reason == "" {
		reason = DefaultReason
	}
	return Prompt{
		Message:             reason,
		CancelLabel:         "Cancel",
		FallbackLabel:       "Use PIN",
		AllowDeviceFallback: true,
		RequireConfirmation: true,
	}
}

// Probe is implemented by platform adapters.
type Probe interface {
	// IsAvailable reports whether hardware is present and at least one
	// biometric is enrolled.
	IsAvailable(ctx context.Context) (bool, error)
	// Challenge blocks until the user completes or cancels the challenge,
	// the OS times it out, or ctx is done.
	Challenge(ctx context.Context, p Prompt) (Result, error)
}
