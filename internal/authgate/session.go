package authgate

import (
	"github.com/google/uuid"

	"github.com/dmitrijs2005/walletlock/internal/common"
	"github.com/dmitrijs2005/walletlock/internal/pinhash"
)

// Mode tells whether the PIN path checks an existing PIN or creates one.
type Mode string

const (
	ModeVerify Mode = "verify"
	ModeCreate Mode = "create"
)

// Step is the PIN sub-state. Only create mode has a confirm step.
type Step string

const (
	StepEnter   Step = "enter"
	StepConfirm Step = "confirm"
)

// Session holds the PIN buffers of one pass through the lock screen.
// Buffers are owned copies and are zeroed when replaced or closed.
type Session struct {
	ID             string
	Mode           Mode
	Step           Step
	FailedAttempts int

	pin     []byte
	confirm []byte
}

func NewSession(mode Mode) *Session {
	return &Session{
		ID:   uuid.NewString(),
		Mode: mode,
		Step: StepEnter,
	}
}

// Input returns the buffer for the current step.
func (s *Session) Input() []byte {
	if s.Step == StepConfirm {
		return s.confirm
	}
	return s.pin
}

func (s *Session) SetInput(b []byte) {
	v := common.CloneBytes(b)
	if s.Step == StepConfirm {
		common.WipeByteArray(s.confirm)
		s.confirm = v
		return
	}
	common.WipeByteArray(s.pin)
	s.pin = v
}

// ClearInput zeroes the current step's buffer only.
func (s *Session) ClearInput() {
	s.SetInput(nil)
}

// Advance moves a create session from enter to confirm.
func (s *Session) Advance() bool {
	if s.Mode != ModeCreate || s.Step != StepEnter {
		return false
	}
	s.Step = StepConfirm
	return true
}

// Matches reports whether the confirm buffer equals the entered PIN.
func (s *Session) Matches() bool {
	if len(s.pin) == 0 {
		return false
	}
	return pinhash.Equal(s.pin, s.confirm)
}

// Back steps from confirm to enter and reports whether it did. Anywhere
// else the caller should leave the PIN screen.
func (s *Session) Back() bool {
	if s.Step != StepConfirm {
		return false
	}
	common.WipeByteArray(s.confirm)
	s.confirm = nil
	s.Step = StepEnter
	return true
}

// Reset switches to create mode from the start.
func (s *Session) Reset() {
	s.wipe()
	s.Mode = ModeCreate
	s.Step = StepEnter
}

func (s *Session) Close() {
	s.wipe()
}

func (s *Session) wipe() {
	common.WipeByteArray(s.pin)
	common.WipeByteArray(s.confirm)
	s.pin, s.confirm = nil, nil
}
