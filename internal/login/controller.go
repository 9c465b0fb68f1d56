package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"adalbertofjr/desafio-login-lockout/ajun/middleware/lockout"
	"adalbertofjr/desafio-login-lockout/ajun/middleware/sanitizer"
	"adalbertofjr/desafio-login-lockout/internal/lib/logger/sl"
)

const (
	MinAccountNumberLength = 7
	MinPasswordLength      = 8
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateLocked     State = "locked"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

type AttemptTracker interface {
	RecordFailedLogin(ctx context.Context, identifier string) error
	ResetLoginAttempts(ctx context.Context, identifier string) error
	IsAccountLocked(ctx context.Context, identifier string) (lockout.LockStatus, error)
	GetRemainingAttempts(ctx context.Context, identifier string) (int, error)
}

// Verifier checks credentials against the real account store.
type Verifier interface {
	Verify(ctx context.Context, accountNumber string, password string) (bool, error)
}

type SessionCreator interface {
	CreateSession(ctx context.Context, accountNumber string) error
}

type Credentials struct {
	AccountNumber string
	Password      string
}

type Outcome struct {
	State             State
	RemainingAttempts int
	LockSeconds       int
	FieldErrors       map[string]string
}

type Controller struct {
	log      *slog.Logger
	tracker  AttemptTracker
	verifier Verifier
	sessions SessionCreator
}

// New returns a login controller. sessions may be nil.
func New(log *slog.Logger, tracker AttemptTracker, verifier Verifier, sessions SessionCreator) *Controller {
	return &Controller{
		log:      log,
		tracker:  tracker,
		verifier: verifier,
		sessions: sessions,
	}
}

// RemainingAttempts reports how many failures the account number may still
// take before it gets locked.
func (c *Controller) RemainingAttempts(ctx context.Context, accountNumber string) (int, error) {
	const op = "login.RemainingAttempts"

	remaining, err := c.tracker.GetRemainingAttempts(ctx, sanitizer.Digits(accountNumber))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return remaining, nil
}

// Submit runs one login attempt. The returned Outcome is always populated;
// err is one of *ValidationError, *LockoutError, ErrInvalidCredentials or
// an infrastructure failure.
func (c *Controller) Submit(ctx context.Context, creds Credentials) (Outcome, error) {
	const op = "login.Submit"

	accountNumber := sanitizer.Digits(creds.AccountNumber)
	log := c.log.With(slog.String("op", op), slog.String("account", accountNumber))

	status, err := c.tracker.IsAccountLocked(ctx, accountNumber)
	if err != nil {
		return Outcome{State: StateIdle}, fmt.Errorf("%s: %w", op, err)
	}
	if status.Locked {
		log.Info("login rejected, account locked", slog.Int("remaining_seconds", status.RemainingSeconds))
		return Outcome{State: StateLocked, LockSeconds: status.RemainingSeconds},
			&LockoutError{RemainingSeconds: status.RemainingSeconds}
	}

	if fields := validate(creds); len(fields) > 0 {
		return Outcome{State: StateIdle, FieldErrors: fields}, &ValidationError{Fields: fields}
	}

	ok, err := c.verifier.Verify(ctx, accountNumber, creds.Password)
	if err != nil {
		log.Error("credential verification failed", sl.Err(err))
		return Outcome{State: StateIdle}, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		return c.fail(ctx, log, accountNumber)
	}

	if err := c.tracker.ResetLoginAttempts(ctx, accountNumber); err != nil {
		return Outcome{State: StateIdle}, fmt.Errorf("%s: %w", op, err)
	}
	if c.sessions != nil {
		if err := c.sessions.CreateSession(ctx, accountNumber); err != nil {
			return Outcome{State: StateIdle}, fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Info("login succeeded")
	return Outcome{State: StateSuccess}, nil
}

func (c *Controller) fail(ctx context.Context, log *slog.Logger, accountNumber string) (Outcome, error) {
	const op = "login.fail"

	if err := c.tracker.RecordFailedLogin(ctx, accountNumber); err != nil {
		return Outcome{State: StateIdle}, fmt.Errorf("%s: %w", op, err)
	}

	status, err := c.tracker.IsAccountLocked(ctx, accountNumber)
	if err != nil {
		return Outcome{State: StateIdle}, fmt.Errorf("%s: %w", op, err)
	}
	if status.Locked {
		log.Warn("account locked after failed login", slog.Int("remaining_seconds", status.RemainingSeconds))
		return Outcome{State: StateLocked, LockSeconds: status.RemainingSeconds},
			errors.Join(ErrInvalidCredentials, &LockoutError{RemainingSeconds: status.RemainingSeconds})
	}

	remaining, err := c.tracker.GetRemainingAttempts(ctx, accountNumber)
	if err != nil {
		return Outcome{State: StateIdle}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("login failed", slog.Int("remaining_attempts", remaining))
	return Outcome{State: StateFailed, RemainingAttempts: remaining}, ErrInvalidCredentials
}

func validate(creds Credentials) map[string]string {
	fields := make(map[string]string)

	switch account := sanitizer.Digits(creds.AccountNumber); {
	case creds.AccountNumber == "":
		fields["account_number"] = "account number is required"
	case account != creds.AccountNumber:
		fields["account_number"] = "account number must contain digits only"
	case len(account) < MinAccountNumberLength:
		fields["account_number"] = fmt.Sprintf("account number must have at least %d digits", MinAccountNumberLength)
	}

	switch {
	case creds.Password == "":
		fields["password"] = "password is required"
	case utf8.RuneCountInString(creds.Password) < MinPasswordLength:
		fields["password"] = fmt.Sprintf("password must have at least %d characters", MinPasswordLength)
	}

	return fields
}
