package domain

// Outcome classifies a single evaluated answer.
type Outcome string

const (
	OutcomeCorrect       Outcome = "correct"
	OutcomePartial       Outcome = "partial"
	OutcomeIncorrect     Outcome = "incorrect"
	OutcomeFalsePositive Outcome = "false_positive"
)

// Evaluation is the verdict for one key item or one unmatched selection.
type Evaluation struct {
	ItemID  string  `json:"itemId"`
	Outcome Outcome `json:"outcome"`
	Points  int     `json:"points"`
}

// BreakdownLine is one row of the score explanation shown to the player.
type BreakdownLine struct {
	Label     string `json:"label"`
	Points    int    `json:"points"`
	IsPenalty bool   `json:"isPenalty"`
}

// BonusAward records a satisfied bonus predicate.
type BonusAward struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// RoundResult is the immutable outcome of validating a round.
type RoundResult struct {
	RoundID        string          `json:"roundId"`
	Score          int             `json:"score"`
	MaxScore       int             `json:"maxScore"`
	Percentage     int             `json:"percentage"`
	Breakdown      []BreakdownLine `json:"breakdown"`
	Items          []Evaluation    `json:"items"`
	Bonuses        []BonusAward    `json:"bonuses,omitempty"`
	Correct        int             `json:"correct"`
	Partial        int             `json:"partial"`
	Incorrect      int             `json:"incorrect"`
	FalsePositives int             `json:"falsePositives"`
	MissedCritical int             `json:"missedCritical"`
}

// RoundSummary is what a completed round hands to progression.
type RoundSummary struct {
	InstanceID string `json:"instanceId"`
	RoundID    string `json:"roundId"`
	PlayerID   string `json:"playerId"`
	Section    int    `json:"section"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"maxScore"`
	Percentage int    `json:"percentage"`
}

// SectionProgress aggregates completed rounds of one section for one player.
type SectionProgress struct {
	PlayerID        string        `json:"playerId"`
	Section         int           `json:"section"`
	Score           int           `json:"score"`
	MaxScore        int           `json:"maxScore"`
	Percentage      int           `json:"percentage"`
	RoundsCompleted int           `json:"roundsCompleted"`
	RoundsTotal     int           `json:"roundsTotal"`
	Complete        bool          `json:"complete"`
	Feedback        *FeedbackTier `json:"feedback,omitempty"`
}
