package authgate

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/walletlock/internal/biometric"
	"github.com/dmitrijs2005/walletlock/internal/common"
	"github.com/dmitrijs2005/walletlock/internal/logging"
)

type State int

const (
	Checking State = iota
	AwaitingBiometric
	AwaitingPINEnter
	AwaitingPINConfirm
	Unlocked
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case AwaitingBiometric:
		return "awaiting-biometric"
	case AwaitingPINEnter:
		return "awaiting-pin:enter"
	case AwaitingPINConfirm:
		return "awaiting-pin:confirm"
	case Unlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// ResetFunc runs before a forgotten PIN is replaced. It should destroy
// whatever the old PIN protected; a non-nil error aborts the reset.
type ResetFunc func(ctx context.Context) error

type FlowOption func(*Flow)

func WithReason(reason string) FlowOption {
	return func(f *Flow) { f.reason = reason }
}

// WithResetHandler enables ResetPIN. Without a handler ResetPIN is refused.
func WithResetHandler(fn ResetFunc) FlowOption {
	return func(f *Flow) { f.onReset = fn }
}

// Flow is the lock screen. It is safe for concurrent use; at most one
// authentication attempt runs at a time and overlapping calls fail with
// ErrAttemptInProgress.
type Flow struct {
	gate    Authenticator
	log     logging.Logger
	reason  string
	onReset ResetFunc

	mu           sync.Mutex
	state        State
	session      *Session
	message      string
	inFlight     bool
	bioAvailable bool
	// epoch changes on Lock so results of an attempt that was running
	// at the time are discarded.
	epoch uint64
}

func NewFlow(gate Authenticator, log logging.Logger, opts ...FlowOption) *Flow {
	f := &Flow{
		gate:   gate,
		log:    log,
		reason: biometric.DefaultReason,
		state:  Checking,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message is the last user-facing message, empty when there is none.
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Mode returns the PIN mode of the current session, empty outside the PIN
// path.
func (f *Flow) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return ""
	}
	return f.session.Mode
}

func (f *Flow) FailedAttempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return 0
	}
	return f.session.FailedAttempts
}

func (f *Flow) Unlocked() bool {
	return f.State() == Unlocked
}

// begin claims the in-flight slot when the flow is in one of the allowed
// states and returns the current epoch. The caller must call end.
func (f *Flow) begin(allowed ...State) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight {
		return 0, ErrAttemptInProgress
	}
	ok := len(allowed) == 0
	for _, s := range allowed {
		if f.state == s {
			ok = true
			break
		}
	}
	if !ok {
		return 0, ErrWrongState
	}
	f.inFlight = true
	return f.epoch, nil
}

// stale reports whether Lock ran since epoch. Callers hold mu.
func (f *Flow) stale(epoch uint64) bool {
	return f.epoch != epoch
}

func (f *Flow) end() {
	f.mu.Lock()
	f.inFlight = false
	f.mu.Unlock()
}

// Start runs the availability check and settles on the biometric prompt
// or the PIN path.
func (f *Flow) Start(ctx context.Context) (State, error) {
	epoch, err := f.begin()
	if err != nil {
		return f.State(), err
	}
	defer f.end()

	f.mu.Lock()
	f.closeSession()
	f.state = Checking
	f.message = ""
	f.mu.Unlock()

	avail := f.gate.IsAvailable(ctx)

	f.mu.Lock()
	if f.stale(epoch) {
		defer f.mu.Unlock()
		return f.state, nil
	}
	f.bioAvailable = avail
	if avail {
		defer f.mu.Unlock()
		f.state = AwaitingBiometric
		return f.state, nil
	}
	f.mu.Unlock()
	return f.enterPINPath(ctx, epoch), nil
}

// UseBiometric runs the biometric challenge.
func (f *Flow) UseBiometric(ctx context.Context) (State, error) {
	epoch, err := f.begin(AwaitingBiometric)
	if err != nil {
		return f.State(), err
	}
	defer f.end()

	ok := f.gate.Authenticate(ctx, f.reason)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale(epoch) {
		return f.state, nil
	}
	if ok {
		f.state = Unlocked
		f.message = ""
		f.log.Info(ctx, "unlocked", "method", "biometric")
	} else {
		f.message = MsgTryAgain
	}
	return f.state, nil
}

// UsePIN is the "Use PIN instead" fallback from the biometric prompt.
func (f *Flow) UsePIN(ctx context.Context) (State, error) {
	epoch, err := f.begin(AwaitingBiometric)
	if err != nil {
		return f.State(), err
	}
	defer f.end()
	return f.enterPINPath(ctx, epoch), nil
}

func (f *Flow) enterPINPath(ctx context.Context, epoch uint64) State {
	mode := ModeVerify
	if !f.gate.HasPIN(ctx) {
		mode = ModeCreate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale(epoch) {
		return f.state
	}
	f.closeSession()
	f.session = NewSession(mode)
	f.state = AwaitingPINEnter
	f.message = ""
	f.log.Debug(ctx, "pin entry started", "session", f.session.ID, "mode", string(mode))
	return f.state
}

// SubmitPIN consumes pin for the current PIN step. Input problems are
// reported through Message, not as errors. pin is copied; the caller may
// wipe it afterwards.
func (f *Flow) SubmitPIN(ctx context.Context, pin []byte) (State, error) {
	epoch, err := f.begin(AwaitingPINEnter, AwaitingPINConfirm)
	if err != nil {
		return f.State(), err
	}
	defer f.end()

	if err := f.gate.ValidatePIN(pin); err != nil {
		min, max := f.gate.PINLength()
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.stale(epoch) {
			f.message = validationMessage(err, min, max)
		}
		return f.state, nil
	}

	f.mu.Lock()
	if f.stale(epoch) {
		defer f.mu.Unlock()
		return f.state, nil
	}
	s := f.session
	s.SetInput(pin)
	switch {
	case s.Mode == ModeVerify:
		pin := common.CloneBytes(s.Input())
		f.mu.Unlock()
		defer common.WipeByteArray(pin)
		return f.verify(ctx, s, pin, epoch), nil
	case s.Step == StepEnter:
		defer f.mu.Unlock()
		s.Advance()
		f.state = AwaitingPINConfirm
		f.message = ""
		return f.state, nil
	case !s.Matches():
		defer f.mu.Unlock()
		s.ClearInput()
		f.message = MsgPINMismatch
		return f.state, nil
	default:
		pin := common.CloneBytes(s.pin)
		f.mu.Unlock()
		defer common.WipeByteArray(pin)
		return f.create(ctx, s, pin, epoch), nil
	}
}

// verify and create run the gate call without holding f.mu. The result is
// dropped when a Lock happened meanwhile.
func (f *Flow) verify(ctx context.Context, s *Session, pin []byte, epoch uint64) State {
	ok := f.gate.VerifyPIN(ctx, pin)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale(epoch) {
		return f.state
	}
	if ok {
		f.log.Info(ctx, "unlocked", "method", "pin", "session", s.ID)
		f.unlock()
		return f.state
	}
	s.ClearInput()
	s.FailedAttempts++
	f.message = MsgInvalidPIN
	f.log.Warn(ctx, "pin verification failed", "session", s.ID, "attempts", s.FailedAttempts)
	return f.state
}

func (f *Flow) create(ctx context.Context, s *Session, pin []byte, epoch uint64) State {
	err := f.gate.SetPIN(ctx, pin)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale(epoch) {
		return f.state
	}
	if err != nil {
		f.message = MsgSetupFailed
		return f.state
	}
	f.log.Info(ctx, "pin created", "session", s.ID)
	f.unlock()
	return f.state
}

// Back handles the back gesture. It reports true when the flow consumed
// it; false means the caller should leave the lock screen.
func (f *Flow) Back() (State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight {
		return f.state, false
	}

	switch f.state {
	case AwaitingPINConfirm:
		f.session.Back()
		f.state = AwaitingPINEnter
		f.message = ""
		return f.state, true
	case AwaitingPINEnter:
		if f.bioAvailable {
			f.closeSession()
			f.state = AwaitingBiometric
			f.message = ""
			return f.state, true
		}
	}
	return f.state, false
}

// ResetPIN is "Forgot PIN?": the reset handler runs, the stored record is
// cleared and the flow moves to PIN creation.
func (f *Flow) ResetPIN(ctx context.Context) (State, error) {
	epoch, err := f.begin(AwaitingPINEnter)
	if err != nil {
		return f.State(), err
	}
	defer f.end()

	f.mu.Lock()
	verifying := !f.stale(epoch) && f.session.Mode == ModeVerify
	f.mu.Unlock()
	if !verifying {
		return f.State(), ErrWrongState
	}

	if f.onReset == nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.message = MsgResetRejected
		return f.state, ErrResetNotAllowed
	}
	if err := f.onReset(ctx); err != nil {
		f.log.Error(ctx, "pin reset handler failed", "error", err)
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.stale(epoch) {
			f.message = MsgTryAgain
		}
		return f.state, nil
	}
	if !f.gate.ClearCredentials(ctx) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.stale(epoch) {
			f.message = MsgTryAgain
		}
		return f.state, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale(epoch) {
		return f.state, nil
	}
	f.session.Reset()
	f.message = ""
	f.log.Info(ctx, "pin reset requested", "session", f.session.ID)
	return f.state, nil
}

// Lock returns the flow to Checking. The caller runs Start again to show
// the lock screen.
func (f *Flow) Lock() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeSession()
	f.state = Checking
	f.message = ""
	f.epoch++
}

func (f *Flow) unlock() {
	f.closeSession()
	f.state = Unlocked
	f.message = ""
}

func (f *Flow) closeSession() {
	if f.session != nil {
		f.session.Close()
		f.session = nil
	}
}
