package domain

// Mode selects how a round's answer key is compared with a response.
type Mode string

const (
	// ModeClassify expects every key item to be assigned its classification.
	ModeClassify Mode = "classify"
	// ModeDetect expects the player to flag the key items among distractors.
	ModeDetect Mode = "detect"
	// ModeRank expects the key items in order; near misses earn partial credit.
	ModeRank Mode = "rank"
)

// BonusKind names the predicate a bonus is awarded for.
type BonusKind string

const (
	BonusAllCritical      BonusKind = "all_critical"
	BonusAllTier          BonusKind = "all_tier"
	BonusAllCategory      BonusKind = "all_category"
	BonusAllBonusEligible BonusKind = "all_bonus_eligible"
	BonusNoFalsePositives BonusKind = "no_false_positives"
	BonusPerfect          BonusKind = "perfect"
)

// AnswerKeyItem is one scoreable unit of a round.
type AnswerKeyItem struct {
	ID             string `json:"id" yaml:"id"`
	Label          string `json:"label,omitempty" yaml:"label,omitempty"`
	Classification string `json:"classification,omitempty" yaml:"classification,omitempty"`
	// Position is the 1-based expected place in rank rounds.
	Position      int    `json:"position,omitempty" yaml:"position,omitempty"`
	Tier          string `json:"tier,omitempty" yaml:"tier,omitempty"`
	Category      string `json:"category,omitempty" yaml:"category,omitempty"`
	Points        int    `json:"points,omitempty" yaml:"points,omitempty"` // overrides tier points when set
	Critical      bool   `json:"critical,omitempty" yaml:"critical,omitempty"`
	BonusEligible bool   `json:"bonusEligible,omitempty" yaml:"bonusEligible,omitempty"`
}

// Bonus is awarded once when its predicate holds for a scored round.
type Bonus struct {
	ID     string    `json:"id" yaml:"id"`
	Label  string    `json:"label" yaml:"label"`
	Kind   BonusKind `json:"kind" yaml:"kind"`
	Target string    `json:"target,omitempty" yaml:"target,omitempty"` // tier or category for all_tier/all_category
	Points int       `json:"points" yaml:"points"`
}

// ScoringConfig holds the per-round scoring constants.
type ScoringConfig struct {
	Mode             Mode           `json:"mode" yaml:"mode"`
	PointsPerCorrect int            `json:"pointsPerCorrect,omitempty" yaml:"pointsPerCorrect,omitempty"`
	TierPoints       map[string]int `json:"tierPoints,omitempty" yaml:"tierPoints,omitempty"`
	// PartialPoints is awarded for near misses; zero means half the item's points.
	PartialPoints        int      `json:"partialPoints,omitempty" yaml:"partialPoints,omitempty"`
	RankTolerance        int      `json:"rankTolerance,omitempty" yaml:"rankTolerance,omitempty"`
	FalsePositivePenalty int      `json:"falsePositivePenalty,omitempty" yaml:"falsePositivePenalty,omitempty"`
	IncorrectPenalty     int      `json:"incorrectPenalty,omitempty" yaml:"incorrectPenalty,omitempty"`
	Classifications      []string `json:"classifications,omitempty" yaml:"classifications,omitempty"`
	Bonuses              []Bonus  `json:"bonuses,omitempty" yaml:"bonuses,omitempty"`
	ExclusiveBonuses     bool     `json:"exclusiveBonuses,omitempty" yaml:"exclusiveBonuses,omitempty"`
	MaxScore             int      `json:"maxScore" yaml:"maxScore"`
}

// FeedbackOverride forces a tier regardless of percentage.
type FeedbackOverride struct {
	MissedCriticalAtLeast int `json:"missedCriticalAtLeast,omitempty" yaml:"missedCriticalAtLeast,omitempty"`
	FalsePositivesAtLeast int `json:"falsePositivesAtLeast,omitempty" yaml:"falsePositivesAtLeast,omitempty"`
}

// FeedbackTier is one rule of a round's ordered feedback table.
type FeedbackTier struct {
	ID            string            `json:"id" yaml:"id"`
	Label         string            `json:"label" yaml:"label"`
	Message       string            `json:"message" yaml:"message"`
	Color         string            `json:"color,omitempty" yaml:"color,omitempty"`
	Icon          string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	MinPercentage int               `json:"minPercentage" yaml:"minPercentage"`
	Override      *FeedbackOverride `json:"override,omitempty" yaml:"override,omitempty"`
}

// Rules declares the interaction constraints of a round.
type Rules struct {
	MinSelections     int  `json:"minSelections,omitempty" yaml:"minSelections,omitempty"`
	RequireAllPlaced  bool `json:"requireAllPlaced,omitempty" yaml:"requireAllPlaced,omitempty"`
	LockAfterValidate bool `json:"lockAfterValidate,omitempty" yaml:"lockAfterValidate,omitempty"`
	AllowRetry        bool `json:"allowRetry,omitempty" yaml:"allowRetry,omitempty"`
}

// Round is the full content of one round for one faculty scenario.
type Round struct {
	ID       string          `json:"id" yaml:"id"`
	Faculty  string          `json:"faculty,omitempty" yaml:"faculty,omitempty"`
	Section  int             `json:"section" yaml:"section"`
	Index    int             `json:"index" yaml:"index"`
	Title    string          `json:"title,omitempty" yaml:"title,omitempty"`
	Items    []AnswerKeyItem `json:"items" yaml:"items"`
	Scoring  ScoringConfig   `json:"scoring" yaml:"scoring"`
	Feedback []FeedbackTier  `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	Rules    Rules           `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Item returns the key item with the given id.
func (r Round) Item(id string) (AnswerKeyItem, bool) {
	for _, item := range r.Items {
		if item.ID == id {
			return item, true
		}
	}
	return AnswerKeyItem{}, false
}
