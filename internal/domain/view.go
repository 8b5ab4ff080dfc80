package domain

import "time"

// RoundView is the client-facing snapshot of a round instance. It is also
// the persisted form used to rehydrate instances.
type RoundView struct {
	InstanceID  string        `json:"instanceId"`
	RoundID     string        `json:"roundId"`
	PlayerID    string        `json:"playerId"`
	Section     int           `json:"section"`
	Phase       string        `json:"phase"`
	Response    Response      `json:"response"`
	CanValidate bool          `json:"canValidate"`
	Result      *RoundResult  `json:"result,omitempty"`
	Feedback    *FeedbackTier `json:"feedback,omitempty"`
	StartedAt   time.Time     `json:"startedAt"`
}
