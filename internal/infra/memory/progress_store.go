package memory

import (
	"context"
	"sync"

	"escape-room-service/internal/app"
	"escape-room-service/internal/domain"
)

type sectionKey struct {
	playerID string
	section  int
}

// ProgressStore accumulates completed rounds in memory.
type ProgressStore struct {
	mu       sync.Mutex
	recorded map[string]struct{}
	totals   map[sectionKey]app.SectionTotals
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		recorded: make(map[string]struct{}),
		totals:   make(map[sectionKey]app.SectionTotals),
	}
}

func (s *ProgressStore) Record(_ context.Context, summary domain.RoundSummary) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.recorded[summary.InstanceID]; dup {
		return false, nil
	}
	s.recorded[summary.InstanceID] = struct{}{}

	key := sectionKey{playerID: summary.PlayerID, section: summary.Section}
	t := s.totals[key]
	t.Score += summary.Score
	t.MaxScore += summary.MaxScore
	t.Rounds++
	s.totals[key] = t
	return true, nil
}

func (s *ProgressStore) Totals(_ context.Context, playerID string, section int) (app.SectionTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals[sectionKey{playerID: playerID, section: section}], nil
}
