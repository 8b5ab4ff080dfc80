package scoring

import (
	"errors"
	"fmt"

	"escape-room-service/internal/domain"
)

// ValidateRound checks that a round can be scored. Every problem found is
// reported as a *domain.ConfigError; the joined error matches domain.ErrInvalidConfig.
func ValidateRound(round domain.Round) error {
	v := validator{round: round}
	v.check()
	return errors.Join(v.errs...)
}

type validator struct {
	round domain.Round
	errs  []error
}

func (v *validator) fail(field, format string, args ...any) {
	v.errs = append(v.errs, &domain.ConfigError{
		RoundID: v.round.ID,
		Field:   field,
		Reason:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) check() {
	round := v.round
	cfg := round.Scoring

	if round.ID == "" {
		v.fail("id", "must not be empty")
	}
	switch cfg.Mode {
	case domain.ModeClassify, domain.ModeDetect, domain.ModeRank:
	default:
		v.fail("scoring.mode", "unknown mode %q", cfg.Mode)
	}
	if len(round.Items) == 0 {
		v.fail("items", "answer key is empty")
	}
	if cfg.PointsPerCorrect < 0 || cfg.PartialPoints < 0 || cfg.RankTolerance < 0 ||
		cfg.FalsePositivePenalty < 0 || cfg.IncorrectPenalty < 0 {
		v.fail("scoring", "point values, penalties and tolerance must not be negative")
	}
	if round.Rules.MinSelections < 0 {
		v.fail("rules.minSelections", "must not be negative")
	}

	v.checkItems()
	v.checkPartial()
	v.checkBonuses()
	v.checkMaxScore()
	v.checkFeedback()
}

func (v *validator) checkItems() {
	cfg := v.round.Scoring
	allowed := make(map[string]struct{}, len(cfg.Classifications))
	for _, c := range cfg.Classifications {
		allowed[c] = struct{}{}
	}

	seen := make(map[string]struct{}, len(v.round.Items))
	positions := make(map[int]string, len(v.round.Items))
	for i, item := range v.round.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ID == "" {
			v.fail(field+".id", "must not be empty")
		} else if _, dup := seen[item.ID]; dup {
			v.fail(field+".id", "duplicate id %q", item.ID)
		}
		seen[item.ID] = struct{}{}

		if item.Points < 0 {
			v.fail(field+".points", "must not be negative")
		}
		if _, err := itemPoints(cfg, item); err != nil {
			v.fail(field+".points", "%v", err)
		}

		switch cfg.Mode {
		case domain.ModeClassify:
			if item.Classification == "" {
				v.fail(field+".classification", "required in classify rounds")
			} else if len(allowed) > 0 {
				if _, ok := allowed[item.Classification]; !ok {
					v.fail(field+".classification", "%q is not a declared classification", item.Classification)
				}
			}
		case domain.ModeRank:
			if item.Position < 1 || item.Position > len(v.round.Items) {
				v.fail(field+".position", "must be between 1 and %d", len(v.round.Items))
			} else if other, dup := positions[item.Position]; dup {
				v.fail(field+".position", "position %d already taken by %q", item.Position, other)
			} else {
				positions[item.Position] = item.ID
			}
		}
	}
}

// checkPartial keeps a near miss worth less than an exact placement, so no
// imperfect ranking can reach the declared maximum.
func (v *validator) checkPartial() {
	cfg := v.round.Scoring
	if cfg.Mode != domain.ModeRank || cfg.PartialPoints <= 0 {
		return
	}
	for _, item := range v.round.Items {
		p, err := itemPoints(cfg, item)
		if err != nil {
			continue
		}
		if cfg.PartialPoints >= p {
			v.fail("scoring.partialPoints", "%d is not below the %d points of item %q", cfg.PartialPoints, p, item.ID)
			return
		}
	}
}

func (v *validator) checkBonuses() {
	seen := make(map[string]struct{}, len(v.round.Scoring.Bonuses))
	for i, bonus := range v.round.Scoring.Bonuses {
		field := fmt.Sprintf("scoring.bonuses[%d]", i)
		if bonus.ID == "" {
			v.fail(field+".id", "must not be empty")
		} else if _, dup := seen[bonus.ID]; dup {
			v.fail(field+".id", "duplicate id %q", bonus.ID)
		}
		seen[bonus.ID] = struct{}{}
		if bonus.Points <= 0 {
			v.fail(field+".points", "must be positive")
		}

		var matches func(domain.AnswerKeyItem) bool
		switch bonus.Kind {
		case domain.BonusAllCritical:
			matches = func(it domain.AnswerKeyItem) bool { return it.Critical }
		case domain.BonusAllTier:
			matches = func(it domain.AnswerKeyItem) bool { return bonus.Target != "" && it.Tier == bonus.Target }
		case domain.BonusAllCategory:
			matches = func(it domain.AnswerKeyItem) bool { return bonus.Target != "" && it.Category == bonus.Target }
		case domain.BonusAllBonusEligible:
			matches = func(it domain.AnswerKeyItem) bool { return it.BonusEligible }
		case domain.BonusNoFalsePositives, domain.BonusPerfect:
			continue
		default:
			v.fail(field+".kind", "unknown bonus kind %q", bonus.Kind)
			continue
		}
		if countItems(v.round.Items, matches) == 0 {
			v.fail(field, "no answer key item satisfies %s %q", bonus.Kind, bonus.Target)
		}
	}
}

func (v *validator) checkMaxScore() {
	cfg := v.round.Scoring
	if cfg.MaxScore <= 0 {
		v.fail("scoring.maxScore", "must be declared and positive")
		return
	}
	earnable := MaxEarnable(v.round)
	if earnable != cfg.MaxScore {
		v.fail("scoring.maxScore", "declared %d but items and bonuses can earn %d", cfg.MaxScore, earnable)
	}
}

func (v *validator) checkFeedback() {
	if len(v.round.Feedback) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(v.round.Feedback))
	fallback := false
	for i, tier := range v.round.Feedback {
		field := fmt.Sprintf("feedback[%d]", i)
		if tier.ID == "" {
			v.fail(field+".id", "must not be empty")
		} else if _, dup := seen[tier.ID]; dup {
			v.fail(field+".id", "duplicate id %q", tier.ID)
		}
		seen[tier.ID] = struct{}{}
		if tier.MinPercentage < 0 || tier.MinPercentage > 100 {
			v.fail(field+".minPercentage", "must be between 0 and 100")
		}
		if tier.Override != nil {
			if tier.Override.MissedCriticalAtLeast <= 0 && tier.Override.FalsePositivesAtLeast <= 0 {
				v.fail(field+".override", "declares no condition")
			}
			continue
		}
		if tier.MinPercentage == 0 {
			fallback = true
		}
	}
	if !fallback {
		v.fail("feedback", "needs a threshold tier with minPercentage 0")
	}
}

// MaxEarnable is the best score a round's content allows: every item at full
// points plus every bonus, or only the largest bonus when bonuses are exclusive.
func MaxEarnable(round domain.Round) int {
	total := 0
	for _, item := range round.Items {
		p, err := itemPoints(round.Scoring, item)
		if err == nil {
			total += p
		}
	}
	best := 0
	for _, bonus := range round.Scoring.Bonuses {
		if round.Scoring.ExclusiveBonuses {
			if bonus.Points > best {
				best = bonus.Points
			}
			continue
		}
		total += bonus.Points
	}
	return total + best
}

// itemPoints resolves the full value of an item: explicit points, then the
// tier table, then the round's flat value.
func itemPoints(cfg domain.ScoringConfig, item domain.AnswerKeyItem) (int, error) {
	if item.Points > 0 {
		return item.Points, nil
	}
	if item.Tier != "" {
		if p, ok := cfg.TierPoints[item.Tier]; ok && p > 0 {
			return p, nil
		}
		if cfg.PointsPerCorrect <= 0 {
			return 0, fmt.Errorf("tier %q has no point value", item.Tier)
		}
	}
	if cfg.PointsPerCorrect > 0 {
		return cfg.PointsPerCorrect, nil
	}
	return 0, errors.New("no point value resolves for item")
}

func countItems(items []domain.AnswerKeyItem, match func(domain.AnswerKeyItem) bool) int {
	n := 0
	for _, item := range items {
		if match(item) {
			n++
		}
	}
	return n
}
