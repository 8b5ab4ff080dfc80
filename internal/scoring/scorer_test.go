package scoring

import (
	"testing"

	"escape-room-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRankingWithTolerance(t *testing.T) {
	round := rankRound()
	resp := domain.Response{}.WithOrder([]string{"B", "A", "C", "D", "E"})

	result, err := Score(round, resp)
	require.NoError(t, err)

	points := make([]int, 0, len(result.Items))
	for _, ev := range result.Items {
		points = append(points, ev.Points)
	}
	assert.Equal(t, []int{10, 10, 20, 20, 20}, points)
	assert.Equal(t, 80, result.Score)
	assert.Equal(t, 100, result.MaxScore)
	assert.Equal(t, 80, result.Percentage)
	assert.Equal(t, 3, result.Correct)
	assert.Equal(t, 2, result.Partial)
}

func TestScoreRankingFarMissEarnsNothing(t *testing.T) {
	result, err := Score(rankRound(), domain.Response{}.WithOrder([]string{"E", "B", "C", "D", "A"}))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeIncorrect, result.Items[0].Outcome)
	assert.Equal(t, domain.OutcomeIncorrect, result.Items[4].Outcome)
	assert.Equal(t, 60, result.Score)
}

func TestScoreDetectAllFlags(t *testing.T) {
	round := detectRound()

	result, err := Score(round, perfectResponse(round))
	require.NoError(t, err)

	assert.Equal(t, 55, result.Score)
	assert.Equal(t, 100, result.Percentage)
	require.Len(t, result.Bonuses, 1)
	assert.Equal(t, "critical", result.Bonuses[0].ID)
	assert.Zero(t, result.MissedCritical)
}

func TestScoreDetectMissAndFalsePositive(t *testing.T) {
	resp := domain.Response{}.
		WithSelection("f1", "flagged").
		WithSelection("f2", "flagged").
		WithSelection("peer-reviewed", "flagged")

	result, err := Score(detectRound(), resp)
	require.NoError(t, err)

	assert.Equal(t, 25, result.Score)
	assert.Empty(t, result.Bonuses)
	assert.Equal(t, 1, result.FalsePositives)
	assert.Equal(t, 1, result.MissedCritical)
	assert.Equal(t, 45, result.Percentage)

	last := result.Breakdown[len(result.Breakdown)-1]
	assert.True(t, last.IsPenalty)
	assert.Equal(t, -5, last.Points)
}

func TestScoreChecklistTiers(t *testing.T) {
	round := checklistRound()
	perfect := perfectResponse(round)

	result, err := Score(round, perfect)
	require.NoError(t, err)
	assert.Equal(t, 110, result.Score)
	assert.Equal(t, 100, result.Percentage)

	// Item 0 is high importance and expects "yes".
	flipped := perfect.WithSelection(checklistID(0), "no")
	result, err = Score(round, flipped)
	require.NoError(t, err)
	assert.Equal(t, 85, result.Score)
	assert.Empty(t, result.Bonuses)
	assert.Equal(t, 77, result.Percentage)
}

func TestScorePerfectPlayIsFullMarks(t *testing.T) {
	for _, round := range []domain.Round{rankRound(), detectRound(), checklistRound()} {
		t.Run(round.ID, func(t *testing.T) {
			result, err := Score(round, perfectResponse(round))
			require.NoError(t, err)
			assert.Equal(t, 100, result.Percentage)
			assert.Equal(t, result.MaxScore, result.Score)
		})
	}
}

func TestScoreEmptyResponse(t *testing.T) {
	detect := detectRound()
	detect.Scoring.Bonuses = append(detect.Scoring.Bonuses, domain.Bonus{
		ID: "clean", Label: "No false alarms", Kind: domain.BonusNoFalsePositives, Points: 5,
	})
	detect.Scoring.MaxScore = 60

	for _, round := range []domain.Round{rankRound(), detect, checklistRound()} {
		t.Run(round.ID, func(t *testing.T) {
			result, err := Score(round, domain.Response{})
			require.NoError(t, err)
			assert.Zero(t, result.Score)
			assert.Zero(t, result.Percentage)
			assert.Empty(t, result.Bonuses)
			assert.Equal(t, len(round.Items), result.Incorrect)
		})
	}
}

func TestScoreNeverNegative(t *testing.T) {
	detect := detectRound()
	resp := domain.Response{}
	for _, id := range []string{"x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8", "x9", "x10", "x11", "x12"} {
		resp = resp.WithSelection(id, "flagged")
	}
	result, err := Score(detect, resp)
	require.NoError(t, err)
	assert.Zero(t, result.Score)
	assert.Equal(t, 12, result.FalsePositives)

	checklist := checklistRound()
	checklist.Scoring.IncorrectPenalty = 20
	wrong := domain.Response{}
	for _, item := range checklist.Items {
		answer := "yes"
		if item.Classification == "yes" {
			answer = "no"
		}
		wrong = wrong.WithSelection(item.ID, answer)
	}
	result, err = Score(checklist, wrong)
	require.NoError(t, err)
	assert.Zero(t, result.Score)
	assert.GreaterOrEqual(t, result.MaxScore, result.Score)
}

func TestScoreExclusiveBonuses(t *testing.T) {
	round := detectRound()
	round.Scoring.Bonuses = []domain.Bonus{
		{ID: "perfect", Label: "Flawless", Kind: domain.BonusPerfect, Points: 10},
		{ID: "clean", Label: "No false alarms", Kind: domain.BonusNoFalsePositives, Points: 5},
	}
	round.Scoring.ExclusiveBonuses = true
	round.Scoring.MaxScore = 55

	result, err := Score(round, perfectResponse(round))
	require.NoError(t, err)
	require.Len(t, result.Bonuses, 1)
	assert.Equal(t, "perfect", result.Bonuses[0].ID)
	assert.Equal(t, 55, result.Score)
}

func TestScoreRejectsMalformedResponses(t *testing.T) {
	tests := []struct {
		name  string
		round domain.Round
		resp  domain.Response
	}{
		{name: "rank duplicate", round: rankRound(), resp: domain.Response{}.WithOrder([]string{"A", "A"})},
		{name: "rank unknown item", round: rankRound(), resp: domain.Response{}.WithOrder([]string{"Z"})},
		{name: "rank with selections", round: rankRound(), resp: domain.Response{}.WithSelection("A", "1")},
		{name: "classify unknown classification", round: checklistRound(), resp: domain.Response{}.WithSelection(checklistID(0), "maybe")},
		{name: "classify with order", round: checklistRound(), resp: domain.Response{}.WithOrder([]string{checklistID(0)})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Score(tc.round, tc.resp)
			require.ErrorIs(t, err, domain.ErrInvalidResponse)
		})
	}
}

func TestScoreRefusesInvalidContent(t *testing.T) {
	round := detectRound()
	round.Scoring.MaxScore = 45 // bonus left out

	_, err := Score(round, perfectResponse(round))
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestScoreRefusesUnresolvablePoints(t *testing.T) {
	round := checklistRound()
	round.Items[0].Tier = "urgent" // no tier points and no flat value

	result, err := Score(round, perfectResponse(round))
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
	require.Zero(t, result.Score)
}

func TestScoreIsDeterministic(t *testing.T) {
	round := detectRound()
	resp := domain.Response{}.
		WithSelection("zz", "flagged").
		WithSelection("f3", "flagged").
		WithSelection("aa", "flagged")

	first, err := Score(round, resp)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Score(round, resp)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "aa", first.Items[3].ItemID)
	assert.Equal(t, "zz", first.Items[4].ItemID)
}

func TestPercentageRounds(t *testing.T) {
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 50, Percentage(1, 2))
	assert.Equal(t, 0, Percentage(5, 0))
}
