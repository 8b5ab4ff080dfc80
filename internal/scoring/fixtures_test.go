package scoring

import "escape-room-service/internal/domain"

func rankRound() domain.Round {
	items := make([]domain.AnswerKeyItem, 0, 5)
	for i, id := range []string{"A", "B", "C", "D", "E"} {
		items = append(items, domain.AnswerKeyItem{ID: id, Position: i + 1})
	}
	return domain.Round{
		ID:    "rank-sources",
		Items: items,
		Scoring: domain.ScoringConfig{
			Mode:             domain.ModeRank,
			PointsPerCorrect: 20,
			PartialPoints:    10,
			RankTolerance:    1,
			MaxScore:         100,
		},
	}
}

func detectRound() domain.Round {
	return domain.Round{
		ID: "red-flags",
		Items: []domain.AnswerKeyItem{
			{ID: "f1", Label: "No author listed", Critical: true},
			{ID: "f2", Label: "Outdated statistics", Critical: true},
			{ID: "f3", Label: "Sponsored content", Critical: true},
		},
		Scoring: domain.ScoringConfig{
			Mode:                 domain.ModeDetect,
			PointsPerCorrect:     15,
			FalsePositivePenalty: 5,
			Bonuses: []domain.Bonus{
				{ID: "critical", Label: "All critical flags found", Kind: domain.BonusAllCritical, Points: 10},
			},
			MaxScore: 55,
		},
	}
}

func checklistRound() domain.Round {
	tiers := []string{"high", "high", "high", "medium", "medium", "medium", "medium", "low", "low", "low"}
	items := make([]domain.AnswerKeyItem, 0, len(tiers))
	for i, tier := range tiers {
		classification := "yes"
		if i%2 == 1 {
			classification = "no"
		}
		items = append(items, domain.AnswerKeyItem{
			ID:             checklistID(i),
			Classification: classification,
			Tier:           tier,
		})
	}
	return domain.Round{
		ID:    "checklist",
		Items: items,
		Scoring: domain.ScoringConfig{
			Mode:            domain.ModeClassify,
			TierPoints:      map[string]int{"high": 15, "medium": 10, "low": 5},
			Classifications: []string{"yes", "no"},
			Bonuses: []domain.Bonus{
				{ID: "all-high", Label: "Every high-importance criterion right", Kind: domain.BonusAllTier, Target: "high", Points: 10},
			},
			MaxScore: 110,
		},
	}
}

func checklistID(i int) string {
	return string(rune('a'+i)) + "-criterion"
}

func perfectResponse(round domain.Round) domain.Response {
	resp := domain.Response{}
	switch round.Scoring.Mode {
	case domain.ModeRank:
		order := make([]string, len(round.Items))
		for _, item := range round.Items {
			order[item.Position-1] = item.ID
		}
		return resp.WithOrder(order)
	case domain.ModeDetect:
		for _, item := range round.Items {
			resp = resp.WithSelection(item.ID, "flagged")
		}
	default:
		for _, item := range round.Items {
			resp = resp.WithSelection(item.ID, item.Classification)
		}
	}
	return resp
}
