package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"escape-room-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// RoundLoader fetches round content from a backing store (YAML files, Postgres, ...).
type RoundLoader interface {
	LoadRound(ctx context.Context, roundID string) (domain.Round, error)
}

// RoundRepository caches rounds with TTL to avoid repeated content loads.
type RoundRepository struct {
	loader RoundLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedRound
}

type cachedRound struct {
	round     domain.Round
	expiresAt time.Time
}

func NewRoundRepository(loader RoundLoader, ttl time.Duration) *RoundRepository {
	return &RoundRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedRound),
	}
}

func (r *RoundRepository) GetRound(ctx context.Context, roundID string) (domain.Round, error) {
	if round, ok := r.cached(roundID, r.clock()); ok {
		return round, nil
	}

	result, err, _ := r.sf.Do(roundID, func() (interface{}, error) {
		now := r.clock()
		if round, ok := r.cached(roundID, now); ok {
			return round, nil
		}

		round, err := r.loader.LoadRound(ctx, roundID)
		if err != nil {
			return domain.Round{}, err
		}

		expiresAt := now.Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[roundID] = cachedRound{round: round, expiresAt: expiresAt}
		r.mu.Unlock()
		return round, nil
	})
	if err != nil {
		return domain.Round{}, err
	}
	return result.(domain.Round), nil
}

func (r *RoundRepository) cached(roundID string, now time.Time) (domain.Round, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[roundID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Round{}, false
	}
	return entry.round, true
}

func (r *RoundRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticRoundLoader is a loader backed by an in-memory map (built-in content, tests).
type StaticRoundLoader struct {
	rounds map[string]domain.Round
}

func NewStaticRoundLoader(rounds map[string]domain.Round) *StaticRoundLoader {
	return &StaticRoundLoader{rounds: rounds}
}

func (l *StaticRoundLoader) LoadRound(_ context.Context, roundID string) (domain.Round, error) {
	if round, ok := l.rounds[roundID]; ok {
		return round, nil
	}
	return domain.Round{}, domain.ErrRoundNotFound
}
