package memory

import (
	"context"
	"sync"
	"time"

	"escape-room-service/internal/app"
)

// InstanceStore is an in-memory implementation of app.InstanceRepository.
// Instances untouched for longer than the idle TTL are evicted.
type InstanceStore struct {
	idleTTL time.Duration
	clock   func() time.Time

	mu        sync.Mutex
	instances map[string]storedInstance
}

type storedInstance struct {
	inst     *app.Instance
	lastSeen time.Time
}

// NewInstanceStore keeps instances until they are deleted.
func NewInstanceStore() *InstanceStore {
	return NewInstanceStoreWithTTL(0)
}

// NewInstanceStoreWithTTL evicts instances idle for idleTTL; zero disables eviction.
func NewInstanceStoreWithTTL(idleTTL time.Duration) *InstanceStore {
	return &InstanceStore{
		idleTTL:   idleTTL,
		clock:     time.Now,
		instances: make(map[string]storedInstance),
	}
}

func (s *InstanceStore) Create(_ context.Context, inst *app.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.sweepLocked(now)
	s.instances[inst.ID()] = storedInstance{inst: inst, lastSeen: now}
	return nil
}

func (s *InstanceStore) Get(_ context.Context, instanceID string) (*app.Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.instances[instanceID]
	if !ok {
		return nil, false
	}
	now := s.clock()
	if s.expired(stored, now) {
		delete(s.instances, instanceID)
		return nil, false
	}
	stored.lastSeen = now
	s.instances[instanceID] = stored
	return stored.inst, true
}

// Save only refreshes the idle timer: instances are held by pointer.
func (s *InstanceStore) Save(_ context.Context, inst *app.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.instances[inst.ID()]; ok {
		stored.lastSeen = s.clock()
		s.instances[inst.ID()] = stored
	}
	return nil
}

func (s *InstanceStore) Delete(_ context.Context, instanceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, instanceID)
}

// Len reports how many instances are held, expired ones included until swept.
func (s *InstanceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}

func (s *InstanceStore) sweepLocked(now time.Time) {
	if s.idleTTL <= 0 {
		return
	}
	for id, stored := range s.instances {
		if s.expired(stored, now) {
			delete(s.instances, id)
		}
	}
}

func (s *InstanceStore) expired(stored storedInstance, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(stored.lastSeen) > s.idleTTL
}
