// Package content ships the built-in demo rounds used when no content store
// is configured.
package content

import "escape-room-service/internal/domain"

// SampleRounds returns one section of four 100-point rounds.
func SampleRounds() map[string]domain.Round {
	rounds := []domain.Round{
		credibilityRound(),
		redFlagRound(),
		evidenceRankingRound(),
		qualityChecklistRound(),
	}
	out := make(map[string]domain.Round, len(rounds))
	for _, r := range rounds {
		out[r.ID] = r
	}
	return out
}

func credibilityRound() domain.Round {
	return domain.Round{
		ID:      "s1-r1-credibility",
		Faculty: "general",
		Section: 1,
		Index:   1,
		Title:   "Credible or questionable?",
		Items: []domain.AnswerKeyItem{
			{ID: "peer-reviewed-journal", Label: "Article in a peer-reviewed journal", Classification: "credible"},
			{ID: "anonymous-forum", Label: "Anonymous forum post", Classification: "questionable"},
			{ID: "government-statistics", Label: "National statistics office report", Classification: "credible"},
			{ID: "sponsored-blog", Label: "Blog post sponsored by a supplement brand", Classification: "questionable"},
			{ID: "university-press", Label: "Monograph from a university press", Classification: "credible"},
		},
		Scoring: domain.ScoringConfig{
			Mode:             domain.ModeClassify,
			PointsPerCorrect: 20,
			Classifications:  []string{"credible", "questionable"},
			MaxScore:         100,
		},
		Rules: domain.Rules{RequireAllPlaced: true, LockAfterValidate: true},
	}
}

func redFlagRound() domain.Round {
	return domain.Round{
		ID:      "s1-r2-red-flags",
		Faculty: "general",
		Section: 1,
		Index:   2,
		Title:   "Spot the red flags",
		Items: []domain.AnswerKeyItem{
			{ID: "no-author", Label: "No author or organisation named", Tier: "critical", Critical: true},
			{ID: "no-sources", Label: "Claims without any references", Tier: "critical", Critical: true},
			{ID: "conflict-of-interest", Label: "Undisclosed funding by the product maker", Tier: "critical", Critical: true},
			{ID: "outdated", Label: "Statistics more than ten years old", Tier: "medium"},
			{ID: "emotive-language", Label: "Sensational, emotive headline", Tier: "medium"},
		},
		Scoring: domain.ScoringConfig{
			Mode:                 domain.ModeDetect,
			TierPoints:           map[string]int{"critical": 15, "medium": 10},
			FalsePositivePenalty: 5,
			Bonuses: []domain.Bonus{
				{ID: "all-critical", Label: "Every critical red flag found", Kind: domain.BonusAllCritical, Points: 20},
				{ID: "sharp-eye", Label: "Perfect detective work", Kind: domain.BonusPerfect, Points: 15},
			},
			MaxScore: 100,
		},
		Feedback: []domain.FeedbackTier{
			{ID: "missed-critical", Label: "A critical flag slipped through", Message: "At least one critical warning sign went unnoticed. Those alone can make a source unusable.", Color: "orange", Icon: "alert", Override: &domain.FeedbackOverride{MissedCriticalAtLeast: 1}},
			{ID: "detective", Label: "Master detective", Message: "Nothing gets past you.", Color: "green", Icon: "magnifier", MinPercentage: 90},
			{ID: "investigator", Label: "Investigator", Message: "Good eye. A few details escaped you.", Color: "blue", Icon: "magnifier", MinPercentage: 60},
			{ID: "trainee", Label: "Trainee", Message: "Look again at authorship, references and funding.", Color: "red", Icon: "refresh", MinPercentage: 0},
		},
		Rules: domain.Rules{MinSelections: 1, LockAfterValidate: true},
	}
}

func evidenceRankingRound() domain.Round {
	return domain.Round{
		ID:      "s1-r3-evidence-ranking",
		Faculty: "general",
		Section: 1,
		Index:   3,
		Title:   "Rank the strength of evidence",
		Items: []domain.AnswerKeyItem{
			{ID: "systematic-review", Label: "Systematic review", Position: 1},
			{ID: "rct", Label: "Randomised controlled trial", Position: 2},
			{ID: "cohort-study", Label: "Cohort study", Position: 3},
			{ID: "case-report", Label: "Case report", Position: 4},
			{ID: "expert-opinion", Label: "Expert opinion", Position: 5},
		},
		Scoring: domain.ScoringConfig{
			Mode:             domain.ModeRank,
			PointsPerCorrect: 20,
			PartialPoints:    10,
			RankTolerance:    1,
			MaxScore:         100,
		},
		Rules: domain.Rules{RequireAllPlaced: true},
	}
}

func qualityChecklistRound() domain.Round {
	return domain.Round{
		ID:      "s1-r4-quality-checklist",
		Faculty: "general",
		Section: 1,
		Index:   4,
		Title:   "Research quality checklist",
		Items: []domain.AnswerKeyItem{
			{ID: "sample-size", Label: "Sample size is justified", Classification: "yes", Tier: "high"},
			{ID: "control-group", Label: "A control group is used", Classification: "yes", Tier: "high"},
			{ID: "cherry-picked", Label: "Only favourable outcomes are reported", Classification: "no", Tier: "high"},
			{ID: "limitations", Label: "Limitations are discussed", Classification: "yes", Tier: "medium"},
			{ID: "ethics", Label: "Ethics approval is stated", Classification: "yes", Tier: "medium"},
			{ID: "press-release", Label: "Findings were announced before review", Classification: "no", Tier: "medium"},
			{ID: "open-data", Label: "Data are openly available", Classification: "yes", Tier: "low"},
			{ID: "recent", Label: "Published within the last five years", Classification: "yes", Tier: "low"},
			{ID: "jargon", Label: "Abstract avoids defining key terms", Classification: "no", Tier: "low"},
		},
		Scoring: domain.ScoringConfig{
			Mode:            domain.ModeClassify,
			TierPoints:      map[string]int{"high": 15, "medium": 10, "low": 5},
			Classifications: []string{"yes", "no"},
			Bonuses: []domain.Bonus{
				{ID: "all-high", Label: "Every high-importance criterion right", Kind: domain.BonusAllTier, Target: "high", Points: 10},
			},
			MaxScore: 100,
		},
		Rules: domain.Rules{RequireAllPlaced: true, LockAfterValidate: true, AllowRetry: true},
	}
}
