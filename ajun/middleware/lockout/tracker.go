package lockout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"adalbertofjr/desafio-login-lockout/internal/lib/logger/sl"
)

const (
	DefaultMaxAttempts     = 5
	DefaultLockoutDuration = 15 * time.Minute
)

type Config struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	CleanupInterval time.Duration
	// TTL forgets unlocked records whose last failure is older than TTL.
	// Zero keeps them until a successful login resets them.
	TTL time.Duration
}

func NewConfig(maxAttempts int, lockoutDuration time.Duration, cleanupInterval time.Duration, ttl time.Duration) Config {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if lockoutDuration <= 0 {
		lockoutDuration = DefaultLockoutDuration
	}
	return Config{
		MaxAttempts:     maxAttempts,
		LockoutDuration: lockoutDuration,
		CleanupInterval: cleanupInterval,
		TTL:             ttl,
	}
}

// Tracker counts failed logins per identifier and locks an identifier once
// MaxAttempts is reached. Lock expiry is evaluated when a record is read;
// the cleanup worker only reclaims storage and never decides a lock.
type Tracker struct {
	mu      sync.Mutex
	log     *slog.Logger
	backend Backend
	config  Config
	now     func() time.Time
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) {
		t.log = log
	}
}

func NewTracker(backend Backend, config Config, opts ...Option) *Tracker {
	t := &Tracker{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		backend: backend,
		config:  NewConfig(config.MaxAttempts, config.LockoutDuration, config.CleanupInterval, config.TTL),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) load(ctx context.Context, identifier string) (*AttemptRecord, bool, error) {
	record, err := t.backend.Get(ctx, identifier)
	if errors.Is(err, ErrNotFound) {
		return &AttemptRecord{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// RecordFailedLogin counts one failed login for identifier. Attempts made
// while the identifier is locked are not counted.
func (t *Tracker) RecordFailedLogin(ctx context.Context, identifier string) error {
	const op = "lockout.Tracker.RecordFailedLogin"

	t.mu.Lock()
	defer t.mu.Unlock()

	log := t.log.With(slog.String("op", op), slog.String("identifier", identifier))

	record, _, err := t.load(ctx, identifier)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := t.now()
	if record.lockedAt(now) {
		log.Debug("attempt while locked ignored")
		return nil
	}
	if record.lockExpiredAt(now) {
		*record = AttemptRecord{}
	}

	record.FailureCount++
	record.LastFailure = now
	if record.FailureCount >= t.config.MaxAttempts {
		record.LockedUntil = now.Add(t.config.LockoutDuration)
		log.Warn("identifier locked",
			slog.Int("failures", record.FailureCount),
			slog.Time("locked_until", record.LockedUntil),
		)
	}

	if err := t.backend.Set(ctx, identifier, record); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetLoginAttempts drops all failure state for identifier.
func (t *Tracker) ResetLoginAttempts(ctx context.Context, identifier string) error {
	const op = "lockout.Tracker.ResetLoginAttempts"

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.backend.Delete(ctx, identifier); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (t *Tracker) IsAccountLocked(ctx context.Context, identifier string) (LockStatus, error) {
	const op = "lockout.Tracker.IsAccountLocked"

	t.mu.Lock()
	defer t.mu.Unlock()

	record, _, err := t.load(ctx, identifier)
	if err != nil {
		return LockStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	now := t.now()
	if !record.lockedAt(now) {
		return LockStatus{}, nil
	}

	return LockStatus{
		Locked:           true,
		RemainingSeconds: ceilSeconds(record.LockedUntil.Sub(now)),
	}, nil
}

func (t *Tracker) GetRemainingAttempts(ctx context.Context, identifier string) (int, error) {
	const op = "lockout.Tracker.GetRemainingAttempts"

	t.mu.Lock()
	defer t.mu.Unlock()

	record, exists, err := t.load(ctx, identifier)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !exists || record.lockExpiredAt(t.now()) {
		return t.config.MaxAttempts, nil
	}

	return max(t.config.MaxAttempts-record.FailureCount, 0), nil
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// StartCleanupWorker blocks until ctx is done. It returns at once when no
// cleanup interval is configured.
func (t *Tracker) StartCleanupWorker(ctx context.Context) {
	if t.config.CleanupInterval <= 0 {
		return
	}

	ticker := time.NewTicker(t.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.cleanupOldData(ctx)
		case <-ctx.Done():
			t.log.Info("cleanup worker stopped")
			return
		}
	}
}

func (t *Tracker) cleanupOldData(ctx context.Context) int {
	const op = "lockout.Tracker.cleanupOldData"

	t.mu.Lock()
	defer t.mu.Unlock()

	log := t.log.With(slog.String("op", op))

	records, err := t.backend.List(ctx)
	if err != nil {
		log.Error("failed to list attempt records", sl.Err(err))
		return 0
	}

	now := t.now()
	count := 0
	for identifier, record := range records {
		stale := t.config.TTL > 0 && !record.lockedAt(now) && now.Sub(record.LastFailure) > t.config.TTL
		if !record.lockExpiredAt(now) && !stale {
			continue
		}
		if err := t.backend.Delete(ctx, identifier); err != nil {
			log.Error("failed to delete attempt record", slog.String("identifier", identifier), sl.Err(err))
			continue
		}
		count++
	}

	if count > 0 {
		log.Info("cleanup complete", slog.Int("removed", count))
	}
	return count
}
