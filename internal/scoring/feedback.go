package scoring

import (
	"sort"

	"escape-room-service/internal/domain"
)

// DefaultFeedbackTiers is used for rounds that declare no feedback table.
func DefaultFeedbackTiers() []domain.FeedbackTier {
	return []domain.FeedbackTier{
		{ID: "excellent", Label: "Excellent", Message: "Outstanding work! You evaluated every piece of evidence like a seasoned researcher.", Color: "green", Icon: "trophy", MinPercentage: 90},
		{ID: "good", Label: "Good", Message: "Solid reasoning. Review the items you missed before moving on.", Color: "blue", Icon: "thumbs-up", MinPercentage: 70},
		{ID: "fair", Label: "Fair", Message: "You are on the right track, but several judgements need another look.", Color: "yellow", Icon: "lightbulb", MinPercentage: 50},
		{ID: "retry", Label: "Keep practising", Message: "This one was tough. Revisit the criteria and try again.", Color: "red", Icon: "refresh", MinPercentage: 0},
	}
}

// SelectFeedback picks the tier for a result. Override tiers are checked
// first in declared order, then thresholds from highest to lowest; the first
// match wins. An empty table falls back to DefaultFeedbackTiers.
func SelectFeedback(result domain.RoundResult, tiers []domain.FeedbackTier) domain.FeedbackTier {
	if len(tiers) == 0 {
		tiers = DefaultFeedbackTiers()
	}

	thresholds := make([]domain.FeedbackTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.Override == nil {
			thresholds = append(thresholds, tier)
			continue
		}
		if overrideMatches(*tier.Override, result) {
			return tier
		}
	}

	sort.SliceStable(thresholds, func(i, j int) bool {
		return thresholds[i].MinPercentage > thresholds[j].MinPercentage
	})
	for _, tier := range thresholds {
		if result.Percentage >= tier.MinPercentage {
			return tier
		}
	}
	if len(thresholds) > 0 {
		return thresholds[len(thresholds)-1]
	}
	return tiers[len(tiers)-1]
}

func overrideMatches(o domain.FeedbackOverride, result domain.RoundResult) bool {
	if o.MissedCriticalAtLeast > 0 && result.MissedCritical >= o.MissedCriticalAtLeast {
		return true
	}
	if o.FalsePositivesAtLeast > 0 && result.FalsePositives >= o.FalsePositivesAtLeast {
		return true
	}
	return false
}
