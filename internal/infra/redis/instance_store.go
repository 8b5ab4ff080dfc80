package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"escape-room-service/internal/app"
	"escape-room-service/internal/domain"
	"escape-room-service/internal/round"
	"github.com/redis/go-redis/v9"
)

// InstanceStore is a Redis-backed implementation of app.InstanceRepository.
// Running instances stay in a local map; every save also writes the
// instance's view to round:instance:{id} so another process can rehydrate it
// after a restart or reconnect.
type InstanceStore struct {
	client *redis.Client
	ttl    time.Duration
	rounds app.RoundRepository
	scorer round.Scorer

	mu        sync.RWMutex
	instances map[string]*app.Instance
}

func NewInstanceStore(client *redis.Client, ttl time.Duration, rounds app.RoundRepository, scorer round.Scorer) *InstanceStore {
	return &InstanceStore{
		client:    client,
		ttl:       ttl,
		rounds:    rounds,
		scorer:    scorer,
		instances: make(map[string]*app.Instance),
	}
}

func (s *InstanceStore) Create(ctx context.Context, inst *app.Instance) error {
	s.mu.Lock()
	s.instances[inst.ID()] = inst
	s.mu.Unlock()
	return s.Save(ctx, inst)
}

func (s *InstanceStore) Get(ctx context.Context, instanceID string) (*app.Instance, bool) {
	s.mu.RLock()
	inst, ok := s.instances[instanceID]
	s.mu.RUnlock()
	if ok {
		if s.snapshotGone(ctx, instanceID) {
			s.mu.Lock()
			delete(s.instances, instanceID)
			s.mu.Unlock()
			return nil, false
		}
		return inst, true
	}

	inst, err := s.rehydrate(ctx, instanceID)
	if err != nil {
		if !isNil(err) {
			log.Printf("rehydrate instance %s: %v", instanceID, err)
		}
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.instances[instanceID]; ok {
		return existing, true
	}
	s.instances[instanceID] = inst
	return inst, true
}

func (s *InstanceStore) Save(ctx context.Context, inst *app.Instance) error {
	data, err := json.Marshal(inst.View())
	if err != nil {
		return fmt.Errorf("marshal instance: %w", err)
	}
	return s.client.Set(ctx, s.key(inst.ID()), data, s.ttl).Err()
}

func (s *InstanceStore) Delete(ctx context.Context, instanceID string) {
	s.mu.Lock()
	delete(s.instances, instanceID)
	s.mu.Unlock()
	_ = s.client.Del(ctx, s.key(instanceID)).Err()
}

// snapshotGone reports whether the instance's snapshot expired or was removed
// by another process. Redis errors keep the local copy in service.
func (s *InstanceStore) snapshotGone(ctx context.Context, instanceID string) bool {
	n, err := s.client.Exists(ctx, s.key(instanceID)).Result()
	if err != nil {
		log.Printf("check instance %s: %v", instanceID, err)
		return false
	}
	return n == 0
}

func (s *InstanceStore) rehydrate(ctx context.Context, instanceID string) (*app.Instance, error) {
	data, err := s.client.Get(ctx, s.key(instanceID)).Bytes()
	if err != nil {
		return nil, err
	}
	var view domain.RoundView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("unmarshal instance: %w", err)
	}
	content, err := s.rounds.GetRound(ctx, view.RoundID)
	if err != nil {
		return nil, err
	}
	return app.RestoreInstance(view, round.New(content, s.scorer))
}

func (s *InstanceStore) key(instanceID string) string {
	return "round:instance:" + instanceID
}
