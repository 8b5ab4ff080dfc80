package app

import (
	"context"
	"fmt"
	"time"

	"escape-room-service/internal/domain"
	"escape-room-service/internal/round"
	"escape-room-service/internal/scoring"
	"github.com/google/uuid"
)

// InstanceRepository abstracts where running round instances live (in-memory, Redis, etc).
type InstanceRepository interface {
	Create(ctx context.Context, inst *Instance) error
	Get(ctx context.Context, instanceID string) (*Instance, bool)
	Save(ctx context.Context, inst *Instance) error
	Delete(ctx context.Context, instanceID string)
}

// RoundRepository loads round content (from cache/backing store).
type RoundRepository interface {
	GetRound(ctx context.Context, roundID string) (domain.Round, error)
}

// SectionTotals is the raw aggregate a progress store keeps per player and section.
type SectionTotals struct {
	Score    int
	MaxScore int
	Rounds   int
}

// ProgressRepository accumulates completed rounds. Record must be idempotent
// per instance id and report whether the summary was newly counted.
type ProgressRepository interface {
	Record(ctx context.Context, summary domain.RoundSummary) (bool, error)
	Totals(ctx context.Context, playerID string, section int) (SectionTotals, error)
}

// Recorder receives lifecycle events for metrics.
type Recorder interface {
	RoundStarted(roundID string)
	RoundValidated(roundID, tierID string, percentage int)
	RoundCompleted(roundID string, section int)
}

type nopRecorder struct{}

func (nopRecorder) RoundStarted(string)                {}
func (nopRecorder) RoundValidated(string, string, int) {}
func (nopRecorder) RoundCompleted(string, int)         {}

// DefaultRoundsPerSection matches four 100-point rounds per section.
const DefaultRoundsPerSection = 4

// RoundService contains the round use cases.
type RoundService struct {
	instances        InstanceRepository
	rounds           RoundRepository
	progress         ProgressRepository
	scorer           round.Scorer
	recorder         Recorder
	roundsPerSection int
	newID            func() string
	now              func() time.Time
}

// Option customises a RoundService.
type Option func(*RoundService)

func WithScorer(s round.Scorer) Option      { return func(rs *RoundService) { rs.scorer = s } }
func WithRecorder(r Recorder) Option        { return func(rs *RoundService) { rs.recorder = r } }
func WithClock(now func() time.Time) Option { return func(rs *RoundService) { rs.now = now } }
func WithIDGenerator(f func() string) Option {
	return func(rs *RoundService) { rs.newID = f }
}

// WithRoundsPerSection sets how many completed rounds finish a section.
func WithRoundsPerSection(n int) Option {
	return func(rs *RoundService) {
		if n > 0 {
			rs.roundsPerSection = n
		}
	}
}

func NewRoundService(instances InstanceRepository, rounds RoundRepository, progress ProgressRepository, opts ...Option) *RoundService {
	s := &RoundService{
		instances:        instances,
		rounds:           rounds,
		progress:         progress,
		scorer:           scoring.Engine{},
		recorder:         nopRecorder{},
		roundsPerSection: DefaultRoundsPerSection,
		newID:            uuid.NewString,
		now:              time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Machine builds the state machine for round content using the service's scorer.
func (s *RoundService) Machine(r domain.Round) *round.Machine {
	return round.New(r, s.scorer)
}

// Start creates a new instance of a round for a player. Content that fails
// validation cannot be started.
func (s *RoundService) Start(ctx context.Context, roundID, playerID string) (domain.RoundView, error) {
	r, err := s.rounds.GetRound(ctx, roundID)
	if err != nil {
		return domain.RoundView{}, err
	}
	if err := scoring.ValidateRound(r); err != nil {
		return domain.RoundView{}, fmt.Errorf("start round %s: %w", roundID, err)
	}

	inst := NewInstance(s.newID(), playerID, s.Machine(r), s.now())
	if err := s.instances.Create(ctx, inst); err != nil {
		return domain.RoundView{}, err
	}
	s.recorder.RoundStarted(roundID)
	return inst.View(), nil
}

// Select records a classification or flag for an item.
func (s *RoundService) Select(ctx context.Context, instanceID, playerID, itemID, value string) (domain.RoundView, error) {
	return s.apply(ctx, instanceID, playerID, func(m *round.Machine, st round.State) (round.State, bool, error) {
		next, ok := m.Select(st, itemID, value)
		return next, ok, nil
	})
}

// Deselect clears an item's selection.
func (s *RoundService) Deselect(ctx context.Context, instanceID, playerID, itemID string) (domain.RoundView, error) {
	return s.apply(ctx, instanceID, playerID, func(m *round.Machine, st round.State) (round.State, bool, error) {
		next, ok := m.Deselect(st, itemID)
		return next, ok, nil
	})
}

// Reorder replaces the ranking of a rank round.
func (s *RoundService) Reorder(ctx context.Context, instanceID, playerID string, order []string) (domain.RoundView, error) {
	return s.apply(ctx, instanceID, playerID, func(m *round.Machine, st round.State) (round.State, bool, error) {
		next, ok := m.Reorder(st, order)
		return next, ok, nil
	})
}

// Validate scores the instance once its precondition holds.
func (s *RoundService) Validate(ctx context.Context, instanceID, playerID string) (domain.RoundView, error) {
	view, err := s.apply(ctx, instanceID, playerID, func(m *round.Machine, st round.State) (round.State, bool, error) {
		return m.Validate(st)
	})
	if err != nil {
		return view, err
	}
	if view.Result != nil && view.Feedback != nil {
		s.recorder.RoundValidated(view.RoundID, view.Feedback.ID, view.Result.Percentage)
	}
	return view, nil
}

// Retry resets a validated instance whose round offers a retry.
func (s *RoundService) Retry(ctx context.Context, instanceID, playerID string) (domain.RoundView, error) {
	return s.apply(ctx, instanceID, playerID, func(m *round.Machine, st round.State) (round.State, bool, error) {
		next, ok := m.Retry(st)
		return next, ok, nil
	})
}

// Continue completes a validated instance, hands its result to progression
// exactly once and drops the instance. An instance left Completed by a failed
// hand-off is handed off again; the progress store ignores repeats.
func (s *RoundService) Continue(ctx context.Context, instanceID, playerID string) (domain.RoundView, domain.SectionProgress, error) {
	inst, err := s.lookup(ctx, instanceID, playerID)
	if err != nil {
		return domain.RoundView{}, domain.SectionProgress{}, err
	}
	view := inst.View()
	if view.Phase != round.Completed.String() {
		view, err = s.apply(ctx, instanceID, playerID, func(m *round.Machine, st round.State) (round.State, bool, error) {
			next, _, ok := m.Continue(st)
			return next, ok, nil
		})
		if err != nil {
			return view, domain.SectionProgress{}, err
		}
	}
	result := view.Result
	if result == nil {
		return view, domain.SectionProgress{}, domain.ErrTransitionNotAllowed
	}

	recorded, err := s.progress.Record(ctx, domain.RoundSummary{
		InstanceID: view.InstanceID,
		RoundID:    view.RoundID,
		PlayerID:   view.PlayerID,
		Section:    view.Section,
		Score:      result.Score,
		MaxScore:   result.MaxScore,
		Percentage: result.Percentage,
	})
	if err != nil {
		return view, domain.SectionProgress{}, fmt.Errorf("record progress: %w", err)
	}
	if recorded {
		s.recorder.RoundCompleted(view.RoundID, view.Section)
	}
	s.instances.Delete(ctx, instanceID)

	progress, err := s.Progress(ctx, playerID, view.Section)
	return view, progress, err
}

// Abandon discards an instance without scoring it.
func (s *RoundService) Abandon(ctx context.Context, instanceID, playerID string) error {
	inst, err := s.lookup(ctx, instanceID, playerID)
	if err != nil {
		return err
	}
	s.instances.Delete(ctx, inst.ID())
	return nil
}

// View returns the current snapshot of an instance.
func (s *RoundService) View(ctx context.Context, instanceID, playerID string) (domain.RoundView, error) {
	inst, err := s.lookup(ctx, instanceID, playerID)
	if err != nil {
		return domain.RoundView{}, err
	}
	return inst.View(), nil
}

// Progress summarises a player's completed rounds in a section.
func (s *RoundService) Progress(ctx context.Context, playerID string, section int) (domain.SectionProgress, error) {
	totals, err := s.progress.Totals(ctx, playerID, section)
	if err != nil {
		return domain.SectionProgress{}, err
	}
	p := domain.SectionProgress{
		PlayerID:        playerID,
		Section:         section,
		Score:           totals.Score,
		MaxScore:        totals.MaxScore,
		Percentage:      scoring.Percentage(totals.Score, totals.MaxScore),
		RoundsCompleted: totals.Rounds,
		RoundsTotal:     s.roundsPerSection,
		Complete:        totals.Rounds >= s.roundsPerSection,
	}
	if p.Complete {
		tier := scoring.SelectFeedback(domain.RoundResult{Percentage: p.Percentage}, nil)
		p.Feedback = &tier
	}
	return p, nil
}

func (s *RoundService) apply(ctx context.Context, instanceID, playerID string, fn func(*round.Machine, round.State) (round.State, bool, error)) (domain.RoundView, error) {
	inst, err := s.lookup(ctx, instanceID, playerID)
	if err != nil {
		return domain.RoundView{}, err
	}
	view, err := inst.transition(fn)
	if err != nil {
		return view, err
	}
	if err := s.instances.Save(ctx, inst); err != nil {
		return view, fmt.Errorf("save instance: %w", err)
	}
	return view, nil
}

func (s *RoundService) lookup(ctx context.Context, instanceID, playerID string) (*Instance, error) {
	inst, ok := s.instances.Get(ctx, instanceID)
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	if inst.PlayerID() != playerID {
		return nil, domain.ErrPlayerMismatch
	}
	return inst, nil
}
