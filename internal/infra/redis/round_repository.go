package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"escape-room-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RoundLoader fetches round content from a backing store (YAML files, Postgres, ...).
type RoundLoader interface {
	LoadRound(ctx context.Context, roundID string) (domain.Round, error)
}

// RoundRepository caches round content in Redis and falls back to a loader on cache miss.
// Rounds are stored as JSON: SET round:{roundID} {json} EX ttl
type RoundRepository struct {
	client *redis.Client
	loader RoundLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRoundRepository(client *redis.Client, loader RoundLoader, ttl time.Duration) *RoundRepository {
	return &RoundRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *RoundRepository) GetRound(ctx context.Context, roundID string) (domain.Round, error) {
	if round, ok := r.cached(ctx, roundID); ok {
		return round, nil
	}

	result, err, _ := r.sf.Do(roundID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if round, ok := r.cached(ctx, roundID); ok {
			return round, nil
		}

		round, err := r.loader.LoadRound(ctx, roundID)
		if err != nil {
			return domain.Round{}, err
		}
		data, err := json.Marshal(round)
		if err != nil {
			return domain.Round{}, fmt.Errorf("marshal round: %w", err)
		}
		// best-effort: a failed cache write still serves the loaded round
		_ = r.client.Set(ctx, r.key(roundID), data, r.ttlWithJitter()).Err()
		return round, nil
	})
	if err != nil {
		return domain.Round{}, err
	}
	return result.(domain.Round), nil
}

// Invalidate drops a cached round so the next read reloads it.
func (r *RoundRepository) Invalidate(ctx context.Context, roundID string) error {
	return r.client.Del(ctx, r.key(roundID)).Err()
}

func (r *RoundRepository) cached(ctx context.Context, roundID string) (domain.Round, bool) {
	data, err := r.client.Get(ctx, r.key(roundID)).Bytes()
	if err != nil {
		return domain.Round{}, false
	}
	var round domain.Round
	if err := json.Unmarshal(data, &round); err != nil {
		return domain.Round{}, false
	}
	return round, true
}

func (r *RoundRepository) key(roundID string) string {
	return "round:" + roundID
}

func (r *RoundRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
