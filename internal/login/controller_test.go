package login

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adalbertofjr/desafio-login-lockout/ajun/middleware/lockout"
)

const (
	testAccount  = "1234567"
	testPassword = "correct-horse"
)

type stubVerifier struct {
	calls int
	err   error
}

func (v *stubVerifier) Verify(_ context.Context, accountNumber string, password string) (bool, error) {
	v.calls++
	if v.err != nil {
		return false, v.err
	}
	return accountNumber == testAccount && password == testPassword, nil
}

type stubSessions struct {
	created []string
}

func (s *stubSessions) CreateSession(_ context.Context, accountNumber string) error {
	s.created = append(s.created, accountNumber)
	return nil
}

type testEnv struct {
	controller *Controller
	tracker    *lockout.Tracker
	verifier   *stubVerifier
	sessions   *stubSessions
	now        time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		verifier: &stubVerifier{},
		sessions: &stubSessions{},
		now:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	env.tracker = lockout.NewTracker(
		lockout.NewMemoryBackend(),
		lockout.NewConfig(5, 900*time.Second, 0, 0),
		lockout.WithClock(func() time.Time { return env.now }),
	)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.controller = New(log, env.tracker, env.verifier, env.sessions)
	return env
}

func TestSubmit_Success(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.controller.Submit(ctx, Credentials{AccountNumber: testAccount, Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	outcome, err := env.controller.Submit(ctx, Credentials{AccountNumber: testAccount, Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, outcome.State)
	assert.Equal(t, []string{testAccount}, env.sessions.created)

	remaining, err := env.controller.RemainingAttempts(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
}

func TestSubmit_FailureReportsRemainingAttempts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for want := 4; want >= 1; want-- {
		outcome, err := env.controller.Submit(ctx, Credentials{AccountNumber: testAccount, Password: "wrong-password"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, StateFailed, outcome.State)
		assert.Equal(t, want, outcome.RemainingAttempts)
	}
	assert.Empty(t, env.sessions.created)
}

func TestSubmit_LocksAfterThreshold(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	var (
		outcome Outcome
		err     error
	)
	for i := 0; i < 5; i++ {
		outcome, err = env.controller.Submit(ctx, Credentials{AccountNumber: testAccount, Password: "wrong-password"})
	}
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorIs(t, err, ErrAccountLocked)
	assert.Equal(t, StateLocked, outcome.State)
	assert.Equal(t, 900, outcome.LockSeconds)

	// correct credentials are still rejected while locked, without verification
	calls := env.verifier.calls
	env.now = env.now.Add(60 * time.Second)
	outcome, err = env.controller.Submit(ctx, Credentials{AccountNumber: testAccount, Password: testPassword})

	var lockErr *LockoutError
	require.ErrorAs(t, err, &lockErr)
	assert.Equal(t, 840, lockErr.RemainingSeconds)
	assert.Equal(t, StateLocked, outcome.State)
	assert.Equal(t, calls, env.verifier.calls)

	env.now = env.now.Add(840 * time.Second)
	outcome, err = env.controller.Submit(ctx, Credentials{AccountNumber: testAccount, Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, outcome.State)
}

func TestSubmit_ValidationDoesNotCountAttempts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		creds  Credentials
		fields []string
	}{
		{name: "empty form", creds: Credentials{}, fields: []string{"account_number", "password"}},
		{name: "short account", creds: Credentials{AccountNumber: "123", Password: testPassword}, fields: []string{"account_number"}},
		{name: "non digit account", creds: Credentials{AccountNumber: "12345a7", Password: testPassword}, fields: []string{"account_number"}},
		{name: "short password", creds: Credentials{AccountNumber: testAccount, Password: "short"}, fields: []string{"password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			outcome, err := env.controller.Submit(ctx, tt.creds)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, StateIdle, outcome.State)
			for _, field := range tt.fields {
				assert.Contains(t, outcome.FieldErrors, field)
			}
			assert.Len(t, outcome.FieldErrors, len(tt.fields))
			assert.Zero(t, env.verifier.calls)

			remaining, err := env.tracker.GetRemainingAttempts(ctx, testAccount)
			require.NoError(t, err)
			assert.Equal(t, 5, remaining)
		})
	}
}

func TestSubmit_VerifierErrorDoesNotCountAttempt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.verifier.err = errors.New("account store unavailable")

	outcome, err := env.controller.Submit(ctx, Credentials{AccountNumber: testAccount, Password: testPassword})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, StateIdle, outcome.State)

	remaining, err := env.controller.RemainingAttempts(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"password": "required", "account_number": "required"}}

	assert.Equal(t, "validation failed: account_number: required; password: required", err.Error())
}
