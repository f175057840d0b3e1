package authgate

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/walletlock/internal/biometric"
	"github.com/dmitrijs2005/walletlock/internal/common"
	"github.com/dmitrijs2005/walletlock/internal/logging"
	"github.com/dmitrijs2005/walletlock/internal/pinhash"
	"github.com/dmitrijs2005/walletlock/internal/securestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(store securestore.Store, opts ...Option) *Gate {
	return New(store, pinhash.PBKDF2{}, biometric.Unavailable(), logging.Discard(), opts...)
}

func TestGate_SetThenVerify(t *testing.T) {
	ctx := context.Background()
	g := newTestGate(securestore.NewMemoryStore())

	require.NoError(t, g.SetPIN(ctx, []byte("1234")))

	assert.True(t, g.HasPIN(ctx))
	assert.True(t, g.VerifyPIN(ctx, []byte("1234")))
	assert.False(t, g.VerifyPIN(ctx, []byte("1235")))
	assert.False(t, g.VerifyPIN(ctx, []byte("12345")))
	assert.False(t, g.VerifyPIN(ctx, []byte("4321")))
}

func TestGate_SetPIN_WritesCompleteRecord(t *testing.T) {
	ctx := context.Background()
	store := securestore.NewMemoryStore()
	g := newTestGate(store)

	require.NoError(t, g.SetPIN(ctx, []byte("908172")))
	require.Equal(t, 3, store.Len())

	hash, err := store.Get(ctx, KeyPINHash)
	require.NoError(t, err)
	assert.Len(t, hash, 2*pinhash.KeyLen)
	assert.NotContains(t, string(hash), "908172")

	salt, err := store.Get(ctx, KeyPINSalt)
	require.NoError(t, err)
	assert.Len(t, salt, 2*pinhash.SaltLen)

	params, err := store.Get(ctx, KeyPINParams)
	require.NoError(t, err)
	assert.Equal(t, "pbkdf2-sha256:10000", string(params))
}

func TestGate_SetPINTwice_OnlySecondVerifies(t *testing.T) {
	ctx := context.Background()
	store := securestore.NewMemoryStore()
	g := newTestGate(store)

	require.NoError(t, g.SetPIN(ctx, []byte("1111")))
	salt1, _ := store.Get(ctx, KeyPINSalt)

	require.NoError(t, g.SetPIN(ctx, []byte("2222")))
	salt2, _ := store.Get(ctx, KeyPINSalt)

	assert.NotEqual(t, salt1, salt2)
	assert.False(t, g.VerifyPIN(ctx, []byte("1111")))
	assert.True(t, g.VerifyPIN(ctx, []byte("2222")))
}

func TestGate_VerifyWithoutRecord_ReturnsFalse(t *testing.T) {
	ctx := context.Background()
	g := newTestGate(securestore.NewMemoryStore())

	assert.False(t, g.HasPIN(ctx))
	assert.False(t, g.VerifyPIN(ctx, []byte("1234")))
	assert.False(t, g.VerifyPIN(ctx, []byte("00000000")))
}

func TestGate_ClearCredentials(t *testing.T) {
	ctx := context.Background()
	store := securestore.NewMemoryStore()
	g := newTestGate(store)
	require.NoError(t, g.SetPIN(ctx, []byte("1234")))

	require.True(t, g.ClearCredentials(ctx))

	assert.False(t, g.HasPIN(ctx))
	assert.False(t, g.VerifyPIN(ctx, []byte("1234")))
	assert.Zero(t, store.Len())

	// nothing left to delete is still a success
	assert.True(t, g.ClearCredentials(ctx))
}

func TestGate_ValidatePIN(t *testing.T) {
	g := newTestGate(securestore.NewMemoryStore())

	tests := []struct {
		pin     string
		wantErr error
	}{
		{"", ErrPINTooShort},
		{"123", ErrPINTooShort},
		{"1234", nil},
		{"12345678", nil},
		{"123456789", ErrPINTooLong},
		{"12a4", ErrPINNotDigits},
		{"12 34", ErrPINNotDigits},
		{"١٢٣٤", ErrPINNotDigits},
	}
	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			err := g.ValidatePIN([]byte(tt.pin))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGate_CustomPINLength(t *testing.T) {
	g := newTestGate(securestore.NewMemoryStore(), WithPINLength(6, 6))

	assert.ErrorIs(t, g.ValidatePIN([]byte("12345")), ErrPINTooShort)
	assert.NoError(t, g.ValidatePIN([]byte("123456")))
	assert.ErrorIs(t, g.ValidatePIN([]byte("1234567")), ErrPINTooLong)

	min, max := g.PINLength()
	assert.Equal(t, 6, min)
	assert.Equal(t, 6, max)
}

func TestGate_InvalidPIN_NeverTouchesStore(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	g := newTestGate(store)

	err := g.SetPIN(ctx, []byte("123"))
	require.ErrorIs(t, err, ErrPINTooShort)
	assert.False(t, g.VerifyPIN(ctx, []byte("123")))
	assert.False(t, g.VerifyPIN(ctx, []byte("12ab")))

	assert.Zero(t, store.count())
}

func TestGate_StorageFault_FailsClosed(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	g := newTestGate(store)
	require.NoError(t, g.SetPIN(ctx, []byte("1234")))

	store.getErr = fault("get")

	assert.False(t, g.HasPIN(ctx))
	assert.False(t, g.VerifyPIN(ctx, []byte("1234")))
}

func TestGate_SetPIN_SaveFault(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	g := newTestGate(store)
	require.NoError(t, g.SetPIN(ctx, []byte("1234")))

	store.setManyErr = fault("set")
	err := g.SetPIN(ctx, []byte("5678"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.ErrorIs(t, err, common.ErrStorageFault)

	// the old record is untouched
	assert.True(t, g.VerifyPIN(ctx, []byte("1234")))
	assert.False(t, g.VerifyPIN(ctx, []byte("5678")))
}

func TestGate_ClearCredentials_FaultFallsBackToHash(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	g := newTestGate(store)
	require.NoError(t, g.SetPIN(ctx, []byte("1234")))

	store.deleteManyErr = fault("delete")

	assert.False(t, g.ClearCredentials(ctx))
	assert.Equal(t, []string{KeyPINHash}, store.deleted)
	assert.False(t, g.HasPIN(ctx))
	assert.False(t, g.VerifyPIN(ctx, []byte("1234")))
}

func TestGate_ClearCredentials_TotalFault(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	g := newTestGate(store)

	store.deleteManyErr = fault("delete")
	store.deleteErr = fault("delete")

	assert.False(t, g.ClearCredentials(ctx))
}

func TestGate_PartialRecord_FailsClosed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		drop string
	}{
		{"no salt", KeyPINSalt},
		{"no params", KeyPINParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := securestore.NewMemoryStore()
			g := newTestGate(store)
			require.NoError(t, g.SetPIN(ctx, []byte("1234")))
			require.NoError(t, store.Delete(ctx, tt.drop))

			assert.True(t, g.HasPIN(ctx))
			assert.False(t, g.VerifyPIN(ctx, []byte("1234")))
		})
	}
}

func TestGate_CorruptRecord_FailsClosed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"hash not hex", KeyPINHash, "zz"},
		{"salt not hex", KeyPINSalt, "not-hex"},
		{"empty salt", KeyPINSalt, ""},
		{"params garbage", KeyPINParams, "pbkdf2-sha256"},
		{"unknown algorithm", KeyPINParams, "md5:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := securestore.NewMemoryStore()
			g := newTestGate(store)
			require.NoError(t, g.SetPIN(ctx, []byte("1234")))
			require.NoError(t, store.Set(ctx, tt.key, []byte(tt.value)))

			assert.False(t, g.VerifyPIN(ctx, []byte("1234")))
		})
	}
}

func TestGate_WorkFactorMismatch_FailsClosed(t *testing.T) {
	ctx := context.Background()
	store := securestore.NewMemoryStore()

	old := newTestGate(store)
	require.NoError(t, old.SetPIN(ctx, []byte("1234")))

	stronger := newTestGate(store, WithWorkFactor(20000))
	assert.False(t, stronger.VerifyPIN(ctx, []byte("1234")))

	argon := New(store, pinhash.Argon2id{}, biometric.Unavailable(), logging.Discard())
	assert.False(t, argon.VerifyPIN(ctx, []byte("1234")))

	assert.True(t, old.VerifyPIN(ctx, []byte("1234")))
}

func TestGate_WeakWorkFactor_RefusesToSave(t *testing.T) {
	ctx := context.Background()
	store := securestore.NewMemoryStore()
	g := newTestGate(store, WithWorkFactor(1000))

	err := g.SetPIN(ctx, []byte("1234"))
	require.ErrorIs(t, err, ErrSaveFailed)
	assert.ErrorIs(t, err, pinhash.ErrWeakWorkFactor)
	assert.Zero(t, store.Len())
}

func TestGate_Argon2id_RoundTrip(t *testing.T) {
	ctx := context.Background()
	g := New(securestore.NewMemoryStore(), pinhash.Argon2id{}, biometric.Unavailable(), logging.Discard())

	require.NoError(t, g.SetPIN(ctx, []byte("24680")))
	assert.True(t, g.VerifyPIN(ctx, []byte("24680")))
	assert.False(t, g.VerifyPIN(ctx, []byte("24681")))
}

func TestGate_SealedSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	stores, err := securestore.Open(ctx, dir+"/wallet.db", dir+"/device.key")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	g := newTestGate(stores.Secrets)
	require.NoError(t, g.SetPIN(ctx, []byte("1234")))
	assert.True(t, g.VerifyPIN(ctx, []byte("1234")))
	assert.False(t, g.VerifyPIN(ctx, []byte("4321")))

	require.True(t, g.ClearCredentials(ctx))
	assert.False(t, g.HasPIN(ctx))
}

func TestGate_Biometrics(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		probe     *biometric.StaticProbe
		wantAvail bool
		wantAuth  bool
		wantRes   biometric.Result
	}{
		{
			name:      "enrolled success",
			probe:     &biometric.StaticProbe{Available: true, Outcome: biometric.Success},
			wantAvail: true,
			wantAuth:  true,
			wantRes:   biometric.Success,
		},
		{
			name:      "user cancelled",
			probe:     &biometric.StaticProbe{Available: true, Outcome: biometric.UserCancelled},
			wantAvail: true,
			wantRes:   biometric.UserCancelled,
		},
		{
			name:    "not enrolled",
			probe:   biometric.Unavailable(),
			wantRes: biometric.NotEnrolled,
		},
		{
			name: "probe errors",
			probe: &biometric.StaticProbe{
				AvailableErr: errors.New("daemon gone"),
				ChallengeErr: errors.New("daemon gone"),
				Outcome:      biometric.Success,
			},
			wantRes: biometric.HardwareError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(securestore.NewMemoryStore(), pinhash.PBKDF2{}, tt.probe, logging.Discard())

			assert.Equal(t, tt.wantAvail, g.IsAvailable(ctx))
			assert.Equal(t, tt.wantAuth, g.Authenticate(ctx, "Unlock"))
			assert.Equal(t, tt.wantRes, g.AuthenticateResult(ctx, "Unlock"))
		})
	}
}

func TestGate_Authenticate_PassesPrompt(t *testing.T) {
	probe := &biometric.StaticProbe{Available: true, Outcome: biometric.Success}
	g := New(securestore.NewMemoryStore(), pinhash.PBKDF2{}, probe, logging.Discard())

	require.True(t, g.Authenticate(context.Background(), "Open wallet"))
	require.Len(t, probe.Prompts, 1)
	assert.Equal(t, biometric.DefaultPrompt("Open wallet"), probe.Prompts[0])
}
