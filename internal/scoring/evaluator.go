package scoring

import (
	"fmt"

	"escape-room-service/internal/domain"
)

// Answer is the player's value for one key item.
type Answer struct {
	Present  bool
	Value    string
	Position int // 1-based, rank rounds only
}

// Evaluator judges a single key item against the player's answer for it.
// Implementations are pure.
type Evaluator interface {
	Evaluate(item domain.AnswerKeyItem, answer Answer) domain.Evaluation
}

// NewEvaluator returns the evaluator for the round's mode. Evaluators assume
// the round passed ValidateRound: an item whose points do not resolve is
// worth 0. Score validates before evaluating.
func NewEvaluator(cfg domain.ScoringConfig) (Evaluator, error) {
	switch cfg.Mode {
	case domain.ModeClassify:
		return classifyEvaluator{cfg: cfg}, nil
	case domain.ModeDetect:
		return detectEvaluator{cfg: cfg}, nil
	case domain.ModeRank:
		return rankEvaluator{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidConfig, cfg.Mode)
	}
}

// FalsePositive scores a selection that matches no key item.
func FalsePositive(cfg domain.ScoringConfig, id string) domain.Evaluation {
	return domain.Evaluation{ItemID: id, Outcome: domain.OutcomeFalsePositive, Points: -cfg.FalsePositivePenalty}
}

type classifyEvaluator struct{ cfg domain.ScoringConfig }

func (e classifyEvaluator) Evaluate(item domain.AnswerKeyItem, answer Answer) domain.Evaluation {
	if !answer.Present {
		return missed(item)
	}
	if answer.Value == item.Classification {
		return correct(e.cfg, item)
	}
	return wrong(e.cfg, item)
}

// detectEvaluator only cares whether a key item was flagged.
type detectEvaluator struct{ cfg domain.ScoringConfig }

func (e detectEvaluator) Evaluate(item domain.AnswerKeyItem, answer Answer) domain.Evaluation {
	if !answer.Present {
		return missed(item)
	}
	return correct(e.cfg, item)
}

type rankEvaluator struct{ cfg domain.ScoringConfig }

func (e rankEvaluator) Evaluate(item domain.AnswerKeyItem, answer Answer) domain.Evaluation {
	if !answer.Present {
		return missed(item)
	}
	off := answer.Position - item.Position
	if off < 0 {
		off = -off
	}
	switch {
	case off == 0:
		return correct(e.cfg, item)
	case off <= e.cfg.RankTolerance:
		return domain.Evaluation{ItemID: item.ID, Outcome: domain.OutcomePartial, Points: partialPoints(e.cfg, item)}
	default:
		return wrong(e.cfg, item)
	}
}

func correct(cfg domain.ScoringConfig, item domain.AnswerKeyItem) domain.Evaluation {
	p, _ := itemPoints(cfg, item)
	return domain.Evaluation{ItemID: item.ID, Outcome: domain.OutcomeCorrect, Points: p}
}

func wrong(cfg domain.ScoringConfig, item domain.AnswerKeyItem) domain.Evaluation {
	return domain.Evaluation{ItemID: item.ID, Outcome: domain.OutcomeIncorrect, Points: -cfg.IncorrectPenalty}
}

func missed(item domain.AnswerKeyItem) domain.Evaluation {
	return domain.Evaluation{ItemID: item.ID, Outcome: domain.OutcomeIncorrect}
}

func partialPoints(cfg domain.ScoringConfig, item domain.AnswerKeyItem) int {
	if cfg.PartialPoints > 0 {
		return cfg.PartialPoints
	}
	p, _ := itemPoints(cfg, item)
	return p / 2
}
