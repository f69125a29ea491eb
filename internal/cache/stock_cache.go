package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

const DefaultTTL = 30 * time.Second

type StockRepository interface {
	CountAvailable(ctx context.Context, bankID int64, filter repository.StockFilter) ([]repository.StockCount, error)
}

type entry struct {
	counts   []repository.StockCount
	loadedAt time.Time
}

// StockCache is a read-through cache of per-bucket available counts, keyed
// by bank. Writers call Invalidate after commit; a load that raced with an
// invalidation is returned to its caller but not stored.
type StockCache struct {
	mu         sync.RWMutex
	cache      map[int64]entry
	generation map[int64]uint64
	repo       StockRepository
	ttl        time.Duration
	logger     *zap.Logger
	timeNow    func() time.Time
}

func NewStockCache(repo StockRepository, ttl time.Duration, logger *zap.Logger) *StockCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockCache{
		cache:      make(map[int64]entry),
		generation: make(map[int64]uint64),
		repo:       repo,
		ttl:        ttl,
		logger:     logger.Named("stock_cache"),
		timeNow:    time.Now,
	}
}

// LoadInitialData warms the cache for the given banks.
func (c *StockCache) LoadInitialData(ctx context.Context, bankIDs []int64) error {
	for _, id := range bankIDs {
		if _, err := c.Counts(ctx, id); err != nil {
			return err
		}
	}
	c.logger.Info("stock cache warmed", zap.Int("banks", len(bankIDs)))
	return nil
}

func (c *StockCache) Counts(ctx context.Context, bankID int64) ([]repository.StockCount, error) {
	c.mu.RLock()
	e, found := c.cache[bankID]
	gen := c.generation[bankID]
	c.mu.RUnlock()
	if found && c.timeNow().Sub(e.loadedAt) < c.ttl {
		return copyCounts(e.counts), nil
	}

	counts, err := c.repo.CountAvailable(ctx, bankID, repository.StockFilter{})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generation[bankID] == gen {
		c.cache[bankID] = entry{counts: copyCounts(counts), loadedAt: c.timeNow()}
		metrics.StockCacheItems.Set(float64(len(c.cache)))
	}
	c.mu.Unlock()
	return counts, nil
}

func (c *StockCache) Invalidate(bankID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation[bankID]++
	if _, found := c.cache[bankID]; found {
		delete(c.cache, bankID)
		metrics.StockCacheItems.Set(float64(len(c.cache)))
		c.logger.Debug("stock invalidated", zap.Int64("bank_id", bankID))
	}
}

func copyCounts(counts []repository.StockCount) []repository.StockCount {
	out := make([]repository.StockCount, len(counts))
	copy(out, counts)
	return out
}
