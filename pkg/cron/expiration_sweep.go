package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"clipfeed_backend/internal/model"
)

// ErrSweepAlreadyRunning is returned when a sweep is requested while another one is still going.
var ErrSweepAlreadyRunning = errors.New("expiration sweep already running")

type SweepResult struct {
	Evicted int `json:"evicted"`
	Failed  int `json:"failed"`
}

// Sweeper removes expired memberships and switches off expired VIP subscriptions.
// Expiry is final: nothing is refunded.
type Sweeper struct {
	db            *gorm.DB
	now           func() time.Time
	workers       int
	entityTimeout time.Duration
	logger        *slog.Logger

	running sync.Mutex
}

type SweeperOption func(*Sweeper)

func WithClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) { s.now = now }
}

// WithWorkers bounds how many evictions run at once.
func WithWorkers(n int) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithEntityTimeout limits a single eviction. A timed out entity is counted as failed and
// picked up again on the next sweep.
func WithEntityTimeout(d time.Duration) SweeperOption {
	return func(s *Sweeper) { s.entityTimeout = d }
}

func WithLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) { s.logger = logger }
}

func NewSweeper(db *gorm.DB, options ...SweeperOption) *Sweeper {
	s := &Sweeper{
		db:            db,
		now:           time.Now,
		workers:       8,
		entityTimeout: 5 * time.Second,
		logger:        slog.Default(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

type evictFunc func(ctx context.Context, id uint, now time.Time) (bool, error)

// RunExpirationSweep evicts everything that had expired when the sweep started. Failures on
// individual entities are logged and counted; the only error returned is for the sweep as a
// whole (listing failed, or another sweep holds the run lock).
func (s *Sweeper) RunExpirationSweep(ctx context.Context) (SweepResult, error) {
	if !s.running.TryLock() {
		return SweepResult{}, ErrSweepAlreadyRunning
	}
	defer s.running.Unlock()

	start := time.Now()
	now := s.now().UTC()

	var memberIDs, accountIDs []uint
	err := s.db.WithContext(ctx).Model(&model.Member{}).
		Where("end_date < ?", now).
		Pluck("id", &memberIDs).Error
	if err != nil {
		return SweepResult{}, err
	}
	err = s.db.WithContext(ctx).Unscoped().Model(&model.Account{}).
		Where("vip_status = ? AND vip_end_date < ?", true, now).
		Pluck("id", &accountIDs).Error
	if err != nil {
		return SweepResult{}, err
	}

	var evicted, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	dispatch := func(kind string, ids []uint, evict evictFunc) {
		for _, id := range ids {
			id := id
			g.Go(func() error {
				ok, err := s.evictOne(gctx, id, now, evict)
				switch {
				case err != nil:
					failed.Add(1)
					s.logger.Error("eviction failed", "kind", kind, "id", id, "error", err)
				case ok:
					evicted.Add(1)
				}
				return nil
			})
		}
	}
	dispatch("member", memberIDs, s.evictMember)
	dispatch("vip", accountIDs, s.evictVip)
	_ = g.Wait()

	res := SweepResult{Evicted: int(evicted.Load()), Failed: int(failed.Load())}
	s.logger.Info("expiration sweep finished",
		"evicted", res.Evicted,
		"failed", res.Failed,
		"took", time.Since(start).String(),
	)
	return res, nil
}

func (s *Sweeper) evictOne(ctx context.Context, id uint, now time.Time, evict evictFunc) (bool, error) {
	if s.entityTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.entityTimeout)
		defer cancel()
	}
	return evict(ctx, id, now)
}

// evictMember deletes one member row. The expiry condition is part of the statement so a
// membership extended after the listing survives.
func (s *Sweeper) evictMember(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND end_date < ?", id, now).
		Delete(&model.Member{})
	return res.RowsAffected > 0, res.Error
}

// evictVip switches off one VIP subscription. Soft-deleted accounts are swept too.
func (s *Sweeper) evictVip(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Unscoped().Model(&model.Account{}).
		Where("id = ? AND vip_status = ? AND vip_end_date < ?", id, true, now).
		Updates(map[string]interface{}{
			"vip_status":     false,
			"vip_package_id": nil,
			"vip_join_date":  nil,
			"vip_end_date":   nil,
		})
	return res.RowsAffected > 0, res.Error
}
