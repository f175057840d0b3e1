package authgate

import (
	"errors"
	"fmt"
)

// User-facing messages. Internal error detail never reaches these.
const (
	MsgPINMismatch   = "PINs do not match"
	MsgInvalidPIN    = "Invalid PIN"
	MsgPINNotDigits  = "PIN must contain only digits"
	MsgTryAgain      = "Authentication failed. Please try again."
	MsgSetupFailed   = "Authentication setup failed"
	MsgResetRejected = "PIN reset is not available"
)

func msgTooShort(min int) string { return fmt.Sprintf("PIN must be at least %d digits", min) }
func msgTooLong(max int) string  { return fmt.Sprintf("PIN must be at most %d digits", max) }

// validationMessage maps a ValidatePIN error to its message.
func validationMessage(err error, min, max int) string {
	switch {
	case errors.Is(err, ErrPINTooShort):
		return msgTooShort(min)
	case errors.Is(err, ErrPINTooLong):
		return msgTooLong(max)
	case errors.Is(err, ErrPINNotDigits):
		return MsgPINNotDigits
	default:
		return MsgTryAgain
	}
}
