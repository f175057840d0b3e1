// Package common defines shared sentinel errors and byte helpers used across
// walletlock components. Callers should use errors.Is to match the sentinels.
package common

import "errors"

var (
	// Storage-level errors. ErrStorageFault is never returned for a key
	// that is simply absent.
	ErrStorageFault = errors.New("storage fault")

	// Integrity errors for persisted credential material.
	ErrCorruptRecord = errors.New("corrupt credential record")

	// Platform errors.
	ErrPlatformUnavailable = errors.New("platform facility unavailable")
)
