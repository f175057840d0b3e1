// Package authgate decides whether the wallet may proceed past its lock
// screen. Gate combines the biometric probe with a salted, hashed PIN kept
// in the secret store; Flow drives the lock screen's states on top of it.
//
// Every failure below the gate is logged and turned into a boolean or a
// short user-facing message. Nothing here is fatal to the process.
package authgate

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletlock/internal/biometric"
	"github.com/dmitrijs2005/walletlock/internal/common"
	"github.com/dmitrijs2005/walletlock/internal/logging"
	"github.com/dmitrijs2005/walletlock/internal/pinhash"
	"github.com/dmitrijs2005/walletlock/internal/securestore"
)

// Secret store keys of the PIN record. The three keys are always written
// and deleted together in one batch.
const (
	KeyPINHash   = "user_pin"
	KeyPINSalt   = "pin_salt"
	KeyPINParams = "pin_kdf"
)

const (
	DefaultMinPINLength = 4
	DefaultMaxPINLength = 8
)

var recordKeys = []string{KeyPINHash, KeyPINSalt, KeyPINParams}

var errNoRecord = errors.New("no pin record")

// Authenticator is the gate contract used by Flow and by callers.
type Authenticator interface {
	IsAvailable(ctx context.Context) bool
	Authenticate(ctx context.Context, reason string) bool
	HasPIN(ctx context.Context) bool
	SetPIN(ctx context.Context, pin []byte) error
	VerifyPIN(ctx context.Context, pin []byte) bool
	ClearCredentials(ctx context.Context) bool
	ValidatePIN(pin []byte) error
	PINLength() (min, max int)
}

type Gate struct {
	store      securestore.Store
	hasher     pinhash.Hasher
	workFactor int
	probe      biometric.Probe
	log        logging.Logger
	minLen     int
	maxLen     int
}

type Option func(*Gate)

// WithWorkFactor overrides the hasher's default work factor. Records created
// under another work factor no longer verify.
func WithWorkFactor(n int) Option {
	return func(g *Gate) { g.workFactor = n }
}

func WithPINLength(min, max int) Option {
	return func(g *Gate) { g.minLen, g.maxLen = min, max }
}

func New(store securestore.Store, hasher pinhash.Hasher, probe biometric.Probe, log logging.Logger, opts ...Option) *Gate {
	g := &Gate{
		store:      store,
		hasher:     hasher,
		workFactor: hasher.DefaultWorkFactor(),
		probe:      probe,
		log:        log,
		minLen:     DefaultMinPINLength,
		maxLen:     DefaultMaxPINLength,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Gate) params() pinhash.Params {
	return pinhash.Params{Algorithm: g.hasher.Algorithm(), WorkFactor: g.workFactor}
}

// IsAvailable reports whether biometric hardware is present and enrolled.
// Probe errors degrade to false.
func (g *Gate) IsAvailable(ctx context.Context) bool {
	ok, err := g.probe.IsAvailable(ctx)
	if err != nil {
		g.log.Error(ctx, "error checking biometric availability", "error", err)
		return false
	}
	return ok
}

// Authenticate runs the biometric challenge and reports success.
func (g *Gate) Authenticate(ctx context.Context, reason string) bool {
	return g.AuthenticateResult(ctx, reason) == biometric.Success
}

// AuthenticateResult is Authenticate with the reason for a failure kept.
// A probe error is reported as HardwareError.
func (g *Gate) AuthenticateResult(ctx context.Context, reason string) biometric.Result {
	res, err := g.probe.Challenge(ctx, biometric.DefaultPrompt(reason))
	if err != nil {
		g.log.Error(ctx, "biometric challenge error", "error", err)
		return biometric.HardwareError
	}
	if res != biometric.Success {
		g.log.Warn(ctx, "biometric authentication failed", "result", res.String())
	}
	return res
}

// PINLength returns the accepted PIN length range.
func (g *Gate) PINLength() (min, max int) {
	return g.minLen, g.maxLen
}

// ValidatePIN checks length and character set without touching the store.
func (g *Gate) ValidatePIN(pin []byte) error {
	switch {
	case len(pin) < g.minLen:
		return fmt.Errorf("%w: need %d digits", ErrPINTooShort, g.minLen)
	case len(pin) > g.maxLen:
		return fmt.Errorf("%w: at most %d digits", ErrPINTooLong, g.maxLen)
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return ErrPINNotDigits
		}
	}
	return nil
}

// HasPIN reports whether a PIN hash is stored. Storage faults count as "no
// PIN", which sends the user to enrollment rather than past the gate.
func (g *Gate) HasPIN(ctx context.Context) bool {
	v, err := g.store.Get(ctx, KeyPINHash)
	if err != nil {
		g.log.Error(ctx, "error checking pin", "error", err)
		return false
	}
	return v != nil
}

// SetPIN replaces the PIN record with one derived from pin under a fresh
// salt. Hash, salt and parameters are written in one batch, so a failure
// leaves the previous record (or none) in place.
func (g *Gate) SetPIN(ctx context.Context, pin []byte) error {
	if err := g.ValidatePIN(pin); err != nil {
		return err
	}

	salt, err := pinhash.NewSalt()
	if err != nil {
		g.log.Error(ctx, "error generating salt", "error", err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	digest, err := g.hasher.Derive(pin, salt, g.workFactor)
	if err != nil {
		g.log.Error(ctx, "error deriving pin digest", "error", err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	defer common.WipeByteArray(digest)

	err = g.store.SetMany(ctx, map[string][]byte{
		KeyPINHash:   []byte(hex.EncodeToString(digest)),
		KeyPINSalt:   []byte(hex.EncodeToString(salt)),
		KeyPINParams: []byte(g.params().String()),
	})
	if err != nil {
		g.log.Error(ctx, "error setting pin", "error", err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	g.log.Info(ctx, "pin record replaced", "kdf", g.params().String())
	return nil
}

// VerifyPIN reports whether pin matches the stored record. An absent or
// partial record, a storage fault and a work factor other than the gate's
// all yield false.
func (g *Gate) VerifyPIN(ctx context.Context, pin []byte) bool {
	if err := g.ValidatePIN(pin); err != nil {
		return false
	}

	rec, err := g.loadRecord(ctx)
	if err != nil {
		if errors.Is(err, errNoRecord) {
			g.log.Debug(ctx, "no pin record to verify against")
		} else {
			g.log.Error(ctx, "error verifying pin", "error", err)
		}
		return false
	}
	defer common.WipeByteArray(rec.hash)

	if rec.params != g.params() {
		g.log.Warn(ctx, "pin record parameters do not match gate", "stored", rec.params.String(), "want", g.params().String())
		return false
	}

	candidate, err := g.hasher.Derive(pin, rec.salt, rec.params.WorkFactor)
	if err != nil {
		g.log.Error(ctx, "error deriving pin digest", "error", err)
		return false
	}
	defer common.WipeByteArray(candidate)

	return pinhash.Equal(candidate, rec.hash)
}

// ClearCredentials deletes the PIN record. If the batch delete fails the
// hash alone is removed as a fallback, which is enough to make VerifyPIN
// fail; the result is still false.
func (g *Gate) ClearCredentials(ctx context.Context) bool {
	if err := g.store.DeleteMany(ctx, recordKeys...); err != nil {
		g.log.Error(ctx, "error clearing credentials", "error", err)
		if err := g.store.Delete(ctx, KeyPINHash); err != nil {
			g.log.Error(ctx, "error deleting pin hash", "error", err)
		}
		return false
	}
	g.log.Info(ctx, "credentials cleared")
	return true
}

type pinRecord struct {
	hash   []byte
	salt   []byte
	params pinhash.Params
}

func (g *Gate) loadRecord(ctx context.Context) (*pinRecord, error) {
	raw := make(map[string][]byte, len(recordKeys))
	for _, k := range recordKeys {
		v, err := g.store.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		raw[k] = v
	}

	if raw[KeyPINHash] == nil {
		return nil, errNoRecord
	}
	if raw[KeyPINSalt] == nil || raw[KeyPINParams] == nil {
		return nil, fmt.Errorf("%w: incomplete record", common.ErrCorruptRecord)
	}

	hash, err := hex.DecodeString(string(raw[KeyPINHash]))
	if err != nil {
		return nil, fmt.Errorf("%w: hash: %w", common.ErrCorruptRecord, err)
	}
	salt, err := hex.DecodeString(string(raw[KeyPINSalt]))
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: salt", common.ErrCorruptRecord)
	}
	params, err := pinhash.ParseParams(string(raw[KeyPINParams]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCorruptRecord, err)
	}

	return &pinRecord{hash: hash, salt: salt, params: params}, nil
}
