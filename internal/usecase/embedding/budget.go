package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vidsynth/internal/domain"
)

// BudgetAction defines behavior when token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// ParseBudgetAction maps a config value to a BudgetAction. Empty means warn.
func ParseBudgetAction(s string) (BudgetAction, error) {
	switch BudgetAction(s) {
	case "", BudgetActionWarn:
		return BudgetActionWarn, nil
	case BudgetActionReject:
		return BudgetActionReject, nil
	default:
		return "", fmt.Errorf("unknown budget action %q", s)
	}
}

// Persisted counters outlive their window a little so a late reader still finds them.
const (
	dailyKeyTTL   = 48 * time.Hour
	monthlyKeyTTL = 62 * 24 * time.Hour
)

// BudgetStore persists window counters. Add must be additive so retries only over-count.
type BudgetStore interface {
	Add(ctx context.Context, key string, tokens int64, ttl time.Duration) error
	// Load returns one value per key; missing keys read as zero.
	Load(ctx context.Context, keys ...string) ([]int64, error)
}

// window is one budget period (a UTC day or month) and its running total.
type window struct {
	name     string // "daily" or "monthly", part of the store key
	limit    int64  // 0 = unlimited
	used     int64
	start    time.Time
	truncate func(time.Time) time.Time
	stamp    string // time layout of the key suffix
	ttl      time.Duration
}

func (w *window) roll(now time.Time) {
	if cur := w.truncate(now); cur.After(w.start) {
		w.start = cur
		w.used = 0
	}
}

func (w *window) exhausted() bool { return w.limit > 0 && w.used >= w.limit }

func (w *window) remaining() int64 {
	if w.limit == 0 {
		return -1
	}
	return max(w.limit-w.used, 0)
}

// BudgetTracker counts embedding tokens per UTC day and month against optional limits.
// Check never leaves memory; Record updates memory and then writes through to the store.
type BudgetTracker struct {
	mu       sync.Mutex
	daily    window
	monthly  window
	action   BudgetAction
	provider string
	now      func() time.Time
	store    BudgetStore
	logger   *zap.Logger
}

// NewBudgetTracker creates a budget tracker with the given limits (0 = unlimited).
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &BudgetTracker{
		daily: window{
			name: "daily", limit: dailyLimit,
			truncate: truncateToDay, stamp: "2006-01-02", ttl: dailyKeyTTL,
		},
		monthly: window{
			name: "monthly", limit: monthlyLimit,
			truncate: truncateToMonth, stamp: "2006-01", ttl: monthlyKeyTTL,
		},
		action:   action,
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	b.rollLocked()
	return b
}

// WithStore attaches a persistence store and loads the current window totals.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	b.rollLocked()
	windows := b.windows()
	keys := make([]string, len(windows))
	for i, w := range windows {
		keys[i] = b.key(w)
	}

	vals, err := store.Load(ctx, keys...)
	if err != nil || len(vals) != len(keys) {
		b.logger.Warn("Failed to load embedding budget from store, starting from zero",
			zap.String("provider", b.provider),
			zap.Int("values", len(vals)),
			zap.Error(err),
		)
		return b
	}
	for i, w := range windows {
		w.used = vals[i]
	}

	b.logger.Info("Embedding budget loaded from store",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("monthly_used", b.monthly.used),
	)
	return b
}

// Check reports ErrEmbeddingQuotaExceeded when a window is used up and the action is reject.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()

	for _, w := range b.windows() {
		if !w.exhausted() {
			continue
		}
		if b.action == BudgetActionReject {
			return fmt.Errorf("%s limit of %d tokens reached: %w", w.name, w.limit, domain.ErrEmbeddingQuotaExceeded)
		}
		b.logger.Warn("Embedding budget exceeded, request allowed",
			zap.String("provider", b.provider),
			zap.String("window", w.name),
			zap.Int64("used", w.used),
			zap.Int64("limit", w.limit),
		)
		return nil
	}
	return nil
}

// Record adds consumed tokens to both windows and persists them when a store is attached.
func (b *BudgetTracker) Record(tokens int64) {
	type write struct {
		key string
		ttl time.Duration
	}

	b.mu.Lock()
	b.rollLocked()
	writes := make([]write, 0, 2)
	for _, w := range b.windows() {
		w.used += tokens
		writes = append(writes, write{b.key(w), w.ttl})
	}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the request so a cancelled call still gets counted.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, wr := range writes {
		if err := store.Add(ctx, wr.key, tokens, wr.ttl); err != nil {
			b.logger.Warn("Failed to persist embedding budget", zap.String("key", wr.key), zap.Error(err))
		}
	}
}

// RemainingDaily returns tokens left today (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() int64 {
	return b.read(func() int64 { return b.daily.remaining() })
}

// RemainingMonthly returns tokens left this month (-1 if unlimited).
func (b *BudgetTracker) RemainingMonthly() int64 {
	return b.read(func() int64 { return b.monthly.remaining() })
}

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 {
	return b.read(func() int64 { return b.daily.used })
}

// MonthlyUsed returns tokens consumed this month.
func (b *BudgetTracker) MonthlyUsed() int64 {
	return b.read(func() int64 { return b.monthly.used })
}

// Provider returns the provider name the counters belong to.
func (b *BudgetTracker) Provider() string { return b.provider }

// DailyLimit returns the daily token cap.
func (b *BudgetTracker) DailyLimit() int64 { return b.daily.limit }

// MonthlyLimit returns the monthly token cap.
func (b *BudgetTracker) MonthlyLimit() int64 { return b.monthly.limit }

func (b *BudgetTracker) read(f func() int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return f()
}

func (b *BudgetTracker) windows() []*window { return []*window{&b.daily, &b.monthly} }

func (b *BudgetTracker) rollLocked() {
	now := b.now()
	b.daily.roll(now)
	b.monthly.roll(now)
}

// key is vidsynth:budget:{provider}:{daily|monthly}:{stamp}.
func (b *BudgetTracker) key(w *window) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, b.provider, w.name, w.start.Format(w.stamp))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
