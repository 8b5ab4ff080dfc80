package app

import (
	"sync"
	"time"

	"escape-room-service/internal/domain"
	"escape-room-service/internal/round"
)

// Instance is one player's run through one round.
type Instance struct {
	id        string
	playerID  string
	startedAt time.Time
	machine   *round.Machine

	mu    sync.Mutex
	state round.State
}

// NewInstance starts a fresh round instance in the Collecting phase.
func NewInstance(id, playerID string, machine *round.Machine, startedAt time.Time) *Instance {
	return &Instance{
		id:        id,
		playerID:  playerID,
		startedAt: startedAt,
		machine:   machine,
		state:     machine.Initial(),
	}
}

// RestoreInstance rebuilds an instance from a persisted view.
func RestoreInstance(view domain.RoundView, machine *round.Machine) (*Instance, error) {
	phase, ok := round.ParsePhase(view.Phase)
	if !ok {
		return nil, &domain.ResponseError{RoundID: view.RoundID, Reason: "unknown phase " + view.Phase}
	}
	return &Instance{
		id:        view.InstanceID,
		playerID:  view.PlayerID,
		startedAt: view.StartedAt,
		machine:   machine,
		state: round.State{
			Phase:    phase,
			Response: view.Response,
			Result:   view.Result,
			Feedback: view.Feedback,
		},
	}, nil
}

func (i *Instance) ID() string       { return i.id }
func (i *Instance) PlayerID() string { return i.playerID }
func (i *Instance) RoundID() string  { return i.machine.Round().ID }

// View returns a snapshot safe to hand to clients and stores.
func (i *Instance) View() domain.RoundView {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.viewLocked()
}

func (i *Instance) viewLocked() domain.RoundView {
	r := i.machine.Round()
	return domain.RoundView{
		InstanceID:  i.id,
		RoundID:     r.ID,
		PlayerID:    i.playerID,
		Section:     r.Section,
		Phase:       i.state.Phase.String(),
		Response:    i.state.Response,
		CanValidate: i.machine.CanValidate(i.state),
		Result:      i.state.Result,
		Feedback:    i.state.Feedback,
		StartedAt:   i.startedAt,
	}
}

// transition runs fn against the current state under the instance lock and
// keeps the new state only when fn allows it.
func (i *Instance) transition(fn func(*round.Machine, round.State) (round.State, bool, error)) (domain.RoundView, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	next, ok, err := fn(i.machine, i.state)
	if err != nil {
		return i.viewLocked(), err
	}
	if !ok {
		return i.viewLocked(), domain.ErrTransitionNotAllowed
	}
	i.state = next
	return i.viewLocked(), nil
}
