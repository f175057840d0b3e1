package authgate

import "errors"

var (
	ErrPINTooShort  = errors.New("pin too short")
	ErrPINTooLong   = errors.New("pin too long")
	ErrPINNotDigits = errors.New("pin must contain only digits")

	// ErrSaveFailed wraps any failure to persist a new PIN record.
	ErrSaveFailed = errors.New("failed to save pin")

	ErrAttemptInProgress = errors.New("authentication attempt already in progress")
	ErrWrongState        = errors.New("operation not allowed in current state")
	ErrResetNotAllowed   = errors.New("pin reset not allowed")
)
