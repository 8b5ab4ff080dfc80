// Package round holds the interaction lifecycle of a single round instance.
//
// A round moves Collecting -> Validated -> Completed. Transitions are methods
// on Machine that take the current State value and return the next one; a
// false result means the action is not allowed and the state is unchanged.
package round

import (
	"escape-room-service/internal/domain"
	"escape-room-service/internal/scoring"
)

// Phase is the lifecycle position of a round instance.
type Phase int

const (
	Collecting Phase = iota
	Validated
	Completed
)

func (p Phase) String() string {
	switch p {
	case Collecting:
		return "collecting"
	case Validated:
		return "validated"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, bool) {
	switch s {
	case "collecting":
		return Collecting, true
	case "validated":
		return Validated, true
	case "completed":
		return Completed, true
	}
	return Collecting, false
}

// DetectMarker is stored for flagged items when the client sends no value.
const DetectMarker = "flagged"

// Scorer turns a response into a result. scoring.Engine is the production implementation.
type Scorer interface {
	Score(round domain.Round, resp domain.Response) (domain.RoundResult, error)
}

// State is an immutable snapshot of one round instance.
type State struct {
	Phase    Phase
	Response domain.Response
	Result   *domain.RoundResult
	Feedback *domain.FeedbackTier
}

// Machine applies transitions for one round's content.
type Machine struct {
	round  domain.Round
	scorer Scorer
}

func New(round domain.Round, scorer Scorer) *Machine {
	return &Machine{round: round, scorer: scorer}
}

// Round returns the content the machine was built for.
func (m *Machine) Round() domain.Round {
	return m.round
}

// Initial is the empty Collecting state a round starts in.
func (m *Machine) Initial() State {
	return State{Phase: Collecting}
}

// Select records value for item id.
func (m *Machine) Select(s State, id, value string) (State, bool) {
	mode := m.round.Scoring.Mode
	if id == "" || mode == domain.ModeRank {
		return s, false
	}
	if mode == domain.ModeDetect && value == "" {
		value = DetectMarker
	}
	if mode == domain.ModeClassify && !m.knownClassification(value) {
		return s, false
	}
	next, ok := m.reopen(s)
	if !ok {
		return s, false
	}
	next.Response = next.Response.WithSelection(id, value)
	return next, true
}

// Deselect clears any value for item id.
func (m *Machine) Deselect(s State, id string) (State, bool) {
	if m.round.Scoring.Mode == domain.ModeRank {
		return s, false
	}
	if _, ok := s.Response.Selections[id]; !ok {
		return s, false
	}
	next, ok := m.reopen(s)
	if !ok {
		return s, false
	}
	next.Response = next.Response.WithoutSelection(id)
	return next, true
}

// Reorder replaces the ranking of a rank round.
func (m *Machine) Reorder(s State, order []string) (State, bool) {
	if m.round.Scoring.Mode != domain.ModeRank {
		return s, false
	}
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if _, ok := m.round.Item(id); !ok {
			return s, false
		}
		if _, dup := seen[id]; dup {
			return s, false
		}
		seen[id] = struct{}{}
	}
	next, ok := m.reopen(s)
	if !ok {
		return s, false
	}
	next.Response = next.Response.WithOrder(order)
	return next, true
}

// CanValidate reports whether the round's precondition holds.
func (m *Machine) CanValidate(s State) bool {
	if s.Phase != Collecting {
		return false
	}
	rules := m.round.Rules
	if s.Response.Count() < rules.MinSelections {
		return false
	}
	if rules.RequireAllPlaced && !m.allPlaced(s.Response) {
		return false
	}
	return true
}

// Validate scores the response and freezes it. It is the only transition
// that invokes the scorer. A scorer error leaves the state unchanged.
func (m *Machine) Validate(s State) (State, bool, error) {
	if !m.CanValidate(s) {
		return s, false, nil
	}
	result, err := m.scorer.Score(m.round, s.Response)
	if err != nil {
		return s, false, err
	}
	tier := scoring.SelectFeedback(result, m.round.Feedback)
	return State{
		Phase:    Validated,
		Response: s.Response,
		Result:   &result,
		Feedback: &tier,
	}, true, nil
}

// Retry clears the response of a validated round that offers a retry.
func (m *Machine) Retry(s State) (State, bool) {
	if s.Phase != Validated || !m.round.Rules.AllowRetry {
		return s, false
	}
	return m.Initial(), true
}

// Continue completes a validated round and returns its result for hand-off.
// Completed is terminal, so a result is handed off at most once.
func (m *Machine) Continue(s State) (State, domain.RoundResult, bool) {
	if s.Phase != Validated || s.Result == nil {
		return s, domain.RoundResult{}, false
	}
	return State{
		Phase:    Completed,
		Response: s.Response,
		Result:   s.Result,
		Feedback: s.Feedback,
	}, *s.Result, true
}

// reopen returns the state an edit starts from. Editing a validated round
// that is not locked drops the stale result.
func (m *Machine) reopen(s State) (State, bool) {
	switch s.Phase {
	case Collecting:
		return s, true
	case Validated:
		if m.round.Rules.LockAfterValidate {
			return s, false
		}
		return State{Phase: Collecting, Response: s.Response}, true
	default:
		return s, false
	}
}

func (m *Machine) knownClassification(value string) bool {
	if value == "" {
		return false
	}
	declared := m.round.Scoring.Classifications
	if len(declared) == 0 {
		return true
	}
	for _, c := range declared {
		if c == value {
			return true
		}
	}
	return false
}

// allPlaced is meaningless for detect rounds, where placing every key item
// would reveal the answer; they only honour MinSelections.
func (m *Machine) allPlaced(resp domain.Response) bool {
	switch m.round.Scoring.Mode {
	case domain.ModeRank:
		return len(resp.Order) == len(m.round.Items)
	case domain.ModeClassify:
		for _, item := range m.round.Items {
			if _, ok := resp.Selections[item.ID]; !ok {
				return false
			}
		}
	}
	return true
}
