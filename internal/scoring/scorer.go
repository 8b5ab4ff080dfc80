// Package scoring evaluates round responses against their answer keys and
// picks the feedback shown for the result.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"escape-room-service/internal/domain"
)

// Engine is the stateless scorer used by the round state machine.
type Engine struct{}

// Score implements round.Scorer.
func (Engine) Score(round domain.Round, resp domain.Response) (domain.RoundResult, error) {
	return Score(round, resp)
}

// Score evaluates resp against the round's answer key and scoring config.
// Invalid content or a response of the wrong shape is an error; unanswered
// items and unknown selections are scored, never rejected.
func Score(round domain.Round, resp domain.Response) (domain.RoundResult, error) {
	if err := ValidateRound(round); err != nil {
		return domain.RoundResult{}, err
	}
	cfg := round.Scoring
	evaluator, err := NewEvaluator(cfg)
	if err != nil {
		return domain.RoundResult{}, err
	}
	answers, extras, err := collectAnswers(round, resp)
	if err != nil {
		return domain.RoundResult{}, err
	}

	result := domain.RoundResult{
		RoundID:  round.ID,
		MaxScore: cfg.MaxScore,
		Items:    make([]domain.Evaluation, 0, len(round.Items)+len(extras)),
	}
	outcomes := make(map[string]domain.Outcome, len(round.Items))
	total := 0
	for _, item := range round.Items {
		ev := evaluator.Evaluate(item, answers[item.ID])
		outcomes[item.ID] = ev.Outcome
		result.Items = append(result.Items, ev)
		total += ev.Points
		switch ev.Outcome {
		case domain.OutcomeCorrect:
			result.Correct++
		case domain.OutcomePartial:
			result.Partial++
		default:
			result.Incorrect++
		}
		if item.Critical && ev.Outcome != domain.OutcomeCorrect {
			result.MissedCritical++
		}
	}
	for _, id := range extras {
		ev := FalsePositive(cfg, id)
		result.Items = append(result.Items, ev)
		result.FalsePositives++
		total += ev.Points
	}

	result.Breakdown = breakdown(round, result.Items)

	// An empty or all-wrong response never earns a bonus.
	if result.Correct > 0 {
		for _, bonus := range cfg.Bonuses {
			if !bonusSatisfied(round, bonus, outcomes, result.FalsePositives) {
				continue
			}
			result.Bonuses = append(result.Bonuses, domain.BonusAward{ID: bonus.ID, Label: bonus.Label, Points: bonus.Points})
			result.Breakdown = append(result.Breakdown, domain.BreakdownLine{Label: bonus.Label, Points: bonus.Points})
			total += bonus.Points
			if cfg.ExclusiveBonuses {
				break
			}
		}
	}

	result.Score = clamp(total, 0, cfg.MaxScore)
	result.Percentage = Percentage(result.Score, cfg.MaxScore)
	return result, nil
}

// Percentage rounds score/max to a whole percent.
func Percentage(score, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(max)))
}

// collectAnswers maps the response onto key item ids. Selections that match no
// key item are returned sorted as extras.
func collectAnswers(round domain.Round, resp domain.Response) (map[string]Answer, []string, error) {
	answers := make(map[string]Answer, len(round.Items))
	var extras []string

	switch round.Scoring.Mode {
	case domain.ModeRank:
		if len(resp.Selections) > 0 {
			return nil, nil, &domain.ResponseError{RoundID: round.ID, Reason: "rank rounds take an order, not selections"}
		}
		for i, id := range resp.Order {
			if _, ok := round.Item(id); !ok {
				return nil, nil, &domain.ResponseError{RoundID: round.ID, ItemID: id, Reason: "ranked item is not part of the round"}
			}
			if _, dup := answers[id]; dup {
				return nil, nil, &domain.ResponseError{RoundID: round.ID, ItemID: id, Reason: "ranked twice"}
			}
			answers[id] = Answer{Present: true, Position: i + 1}
		}
		return answers, nil, nil

	case domain.ModeClassify, domain.ModeDetect:
		if len(resp.Order) > 0 {
			return nil, nil, &domain.ResponseError{RoundID: round.ID, Reason: fmt.Sprintf("%s rounds take selections, not an order", round.Scoring.Mode)}
		}
		allowed := make(map[string]struct{}, len(round.Scoring.Classifications))
		for _, c := range round.Scoring.Classifications {
			allowed[c] = struct{}{}
		}
		for id, value := range resp.Selections {
			if round.Scoring.Mode == domain.ModeClassify {
				if value == "" {
					return nil, nil, &domain.ResponseError{RoundID: round.ID, ItemID: id, Reason: "empty classification"}
				}
				if _, ok := allowed[value]; len(allowed) > 0 && !ok {
					return nil, nil, &domain.ResponseError{RoundID: round.ID, ItemID: id, Reason: fmt.Sprintf("unknown classification %q", value)}
				}
			}
			if _, ok := round.Item(id); !ok {
				extras = append(extras, id)
				continue
			}
			answers[id] = Answer{Present: true, Value: value}
		}
		sort.Strings(extras)
		return answers, extras, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidConfig, round.Scoring.Mode)
}

func bonusSatisfied(round domain.Round, bonus domain.Bonus, outcomes map[string]domain.Outcome, falsePositives int) bool {
	all := func(match func(domain.AnswerKeyItem) bool) bool {
		for _, item := range round.Items {
			if match(item) && outcomes[item.ID] != domain.OutcomeCorrect {
				return false
			}
		}
		return true
	}
	switch bonus.Kind {
	case domain.BonusAllCritical:
		return all(func(it domain.AnswerKeyItem) bool { return it.Critical })
	case domain.BonusAllTier:
		return all(func(it domain.AnswerKeyItem) bool { return it.Tier == bonus.Target })
	case domain.BonusAllCategory:
		return all(func(it domain.AnswerKeyItem) bool { return it.Category == bonus.Target })
	case domain.BonusAllBonusEligible:
		return all(func(it domain.AnswerKeyItem) bool { return it.BonusEligible })
	case domain.BonusNoFalsePositives:
		return falsePositives == 0
	case domain.BonusPerfect:
		return falsePositives == 0 && all(func(domain.AnswerKeyItem) bool { return true })
	}
	return false
}

// breakdown groups item points by tier in answer-key order, followed by
// penalty lines.
func breakdown(round domain.Round, evals []domain.Evaluation) []domain.BreakdownLine {
	type group struct {
		label   string
		points  int
		correct int
		total   int
	}
	var groups []*group
	byTier := make(map[string]*group)
	penalty, wrongCount := 0, 0
	fpPoints, fpCount := 0, 0

	for _, ev := range evals {
		if ev.Outcome == domain.OutcomeFalsePositive {
			fpPoints += ev.Points
			fpCount++
			continue
		}
		item, _ := round.Item(ev.ItemID)
		g, ok := byTier[item.Tier]
		if !ok {
			label := item.Tier
			if label == "" {
				label = "items"
			}
			g = &group{label: label}
			byTier[item.Tier] = g
			groups = append(groups, g)
		}
		g.total++
		if ev.Points > 0 {
			g.points += ev.Points
		} else if ev.Points < 0 {
			penalty += ev.Points
			wrongCount++
		}
		if ev.Outcome == domain.OutcomeCorrect {
			g.correct++
		}
	}

	lines := make([]domain.BreakdownLine, 0, len(groups)+2)
	for _, g := range groups {
		lines = append(lines, domain.BreakdownLine{
			Label:  fmt.Sprintf("%s (%d/%d correct)", g.label, g.correct, g.total),
			Points: g.points,
		})
	}
	if wrongCount > 0 {
		lines = append(lines, domain.BreakdownLine{Label: fmt.Sprintf("incorrect answers (%d)", wrongCount), Points: penalty, IsPenalty: true})
	}
	if fpCount > 0 {
		lines = append(lines, domain.BreakdownLine{Label: fmt.Sprintf("false positives (%d)", fpCount), Points: fpPoints, IsPenalty: true})
	}
	return lines
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
