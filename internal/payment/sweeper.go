package payment

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/property-management/internal/metrics"
)

const SweepLockKey = "property-management:sweep:late-payments"

type SweepRepository interface {
	SweepLate(ctx context.Context, now time.Time) (int64, error)
}

// Locker guards a critical section across processes. Release must be safe to
// call after the lock expired.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// Sweeper periodically moves overdue pending payments to late.
type Sweeper struct {
	repo    SweepRepository
	locker  Locker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewSweeper(repo SweepRepository, locker Locker, lockTTL time.Duration, logger *slog.Logger) *Sweeper {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &Sweeper{
		repo:    repo,
		locker:  locker,
		lockTTL: lockTTL,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SweepLatePayments marks every pending, unpaid payment due before now as
// late and returns how many changed. Running it twice with the same now
// changes nothing the second time.
func (s *Sweeper) SweepLatePayments(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.SweepLate(ctx, now.UTC())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		metrics.LatePaymentsSwept.Add(float64(count))
		metrics.PaymentTransitions.WithLabelValues(StatusLate).Add(float64(count))
	}
	return count, nil
}

// RunOnce performs one locked sweep. Failures are logged and counted, never
// returned.
func (s *Sweeper) RunOnce(ctx context.Context) {
	release, acquired, err := s.locker.TryLock(ctx, SweepLockKey, s.lockTTL)
	if err != nil {
		metrics.SweepRuns.WithLabelValues("error").Inc()
		s.logger.Error("late sweep lock failed", "error", err)
		return
	}
	if !acquired {
		metrics.SweepRuns.WithLabelValues("skipped").Inc()
		s.logger.Info("late sweep skipped, another run holds the lock")
		return
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("late sweep lock release failed", "error", err)
		}
	}()

	start := time.Now()
	count, err := s.SweepLatePayments(ctx, s.now())
	if err != nil {
		metrics.SweepRuns.WithLabelValues("error").Inc()
		s.logger.Error("late sweep failed", "error", err)
		return
	}

	metrics.SweepRuns.WithLabelValues("ok").Inc()
	s.logger.Info("late sweep completed", "updated", count, "duration", time.Since(start))
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("late sweeper started", "interval", interval)
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("late sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
