// Package pinhash derives fixed-length digests from a PIN and a salt with a
// tunable work factor. Two key-derivation functions are provided: PBKDF2 with
// HMAC-SHA256, which matches digests created by the original wallet app, and
// Argon2id, which is memory hard.
package pinhash

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/walletlock/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	AlgPBKDF2   = "pbkdf2-sha256"
	AlgArgon2id = "argon2id"

	// KeyLen is the digest length in bytes.
	KeyLen = 32
	// SaltLen is the length of salts produced by NewSalt.
	SaltLen = 16

	DefaultPBKDF2Iterations = 10000
	MinPBKDF2Iterations     = 10000

	DefaultArgon2Time = 3
	MinArgon2Time     = 1
	argon2Memory      = 64 * 1024
	argon2Threads     = 4
)

var (
	ErrUnknownAlgorithm = errors.New("unknown key derivation algorithm")
	ErrWeakWorkFactor   = errors.New("work factor below minimum")
	ErrEmptySalt        = errors.New("empty salt")
	ErrInvalidParams    = errors.New("invalid key derivation parameters")
)

// Hasher derives a digest from (pin, salt, workFactor). Implementations are
// deterministic and safe for concurrent use.
type Hasher interface {
	Algorithm() string
	DefaultWorkFactor() int
	MinWorkFactor() int
	Derive(pin, salt []byte, workFactor int) ([]byte, error)
}

// Params identifies how a stored digest was produced.
type Params struct {
	Algorithm  string
	WorkFactor int
}

func (p Params) String() string {
	return p.Algorithm + ":" + strconv.Itoa(p.WorkFactor)
}

// ParseParams is the inverse of Params.String.
func ParseParams(s string) (Params, error) {
	alg, wf, ok := strings.Cut(s, ":")
	if !ok || alg == "" {
		return Params{}, fmt.Errorf("%w: %q", ErrInvalidParams, s)
	}
	n, err := strconv.Atoi(wf)
	if err != nil || n <= 0 {
		return Params{}, fmt.Errorf("%w: %q", ErrInvalidParams, s)
	}
	return Params{Algorithm: alg, WorkFactor: n}, nil
}

// New returns the Hasher registered under alg.
func New(alg string) (Hasher, error) {
	switch alg {
	case AlgPBKDF2:
		return PBKDF2{}, nil
	case AlgArgon2id:
		return Argon2id{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// NewSalt returns SaltLen fresh random bytes.
func NewSalt() ([]byte, error) {
	return common.GenerateRandByteArray(SaltLen)
}

// CheckWorkFactor reports ErrWeakWorkFactor when n is below h's minimum.
func CheckWorkFactor(h Hasher, n int) error {
	if n < h.MinWorkFactor() {
		return fmt.Errorf("%w: %s %d < %d", ErrWeakWorkFactor, h.Algorithm(), n, h.MinWorkFactor())
	}
	return nil
}

// Equal compares two digests in constant time.
func Equal(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}

// PBKDF2 is PBKDF2-HMAC-SHA256; the work factor is the iteration count.
type PBKDF2 struct{}

func (PBKDF2) Algorithm() string      { return AlgPBKDF2 }
func (PBKDF2) DefaultWorkFactor() int { return DefaultPBKDF2Iterations }
func (PBKDF2) MinWorkFactor() int     { return MinPBKDF2Iterations }

func (h PBKDF2) Derive(pin, salt []byte, workFactor int) ([]byte, error) {
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}
	if err := CheckWorkFactor(h, workFactor); err != nil {
		return nil, err
	}
	return pbkdf2.Key(pin, salt, workFactor, KeyLen, sha256.New), nil
}

// Argon2id uses the work factor as the time cost with 64 MiB of memory.
type Argon2id struct{}

func (Argon2id) Algorithm() string      { return AlgArgon2id }
func (Argon2id) DefaultWorkFactor() int { return DefaultArgon2Time }
func (Argon2id) MinWorkFactor() int     { return MinArgon2Time }

func (h Argon2id) Derive(pin, salt []byte, workFactor int) ([]byte, error) {
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}
	if err := CheckWorkFactor(h, workFactor); err != nil {
		return nil, err
	}
	return argon2.IDKey(pin, salt, uint32(workFactor), argon2Memory, argon2Threads, KeyLen), nil
}
