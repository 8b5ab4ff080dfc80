package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInstanceNotFound is returned when a round instance has not been started.
	ErrInstanceNotFound = errors.New("round instance not found")
	// ErrRoundNotFound indicates the round content could not be loaded.
	ErrRoundNotFound = errors.New("round not found")
	// ErrInvalidConfig marks round content that cannot be scored.
	ErrInvalidConfig = errors.New("invalid round configuration")
	// ErrInvalidResponse marks a response that does not fit the round's shape.
	ErrInvalidResponse = errors.New("invalid round response")
	// ErrTransitionNotAllowed is returned when an action is not permitted in the current round state.
	ErrTransitionNotAllowed = errors.New("action not allowed in current round state")
	// ErrPlayerMismatch is returned when a player acts on another player's round instance.
	ErrPlayerMismatch = errors.New("round instance belongs to another player")
)

// ConfigError describes a single problem with round content.
type ConfigError struct {
	RoundID string
	Field   string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("round %q: %s: %s", e.RoundID, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// ResponseError describes a response the scorer refuses to evaluate.
type ResponseError struct {
	RoundID string
	ItemID  string
	Reason  string
}

func (e *ResponseError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("round %q: %s", e.RoundID, e.Reason)
	}
	return fmt.Sprintf("round %q: item %q: %s", e.RoundID, e.ItemID, e.Reason)
}

func (e *ResponseError) Unwrap() error { return ErrInvalidResponse }
