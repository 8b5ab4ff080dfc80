package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"escape-room-service/internal/app"
	"escape-room-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// recordScript counts a hand-off unless its marker exists. The marker is set
// last so a failed increment leaves the hand-off retryable.
//
// KEYS[1] marker, KEYS[2] totals hash
// ARGV: roundID, score, maxScore, markerTTL in ms (0 keeps it forever)
var recordScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HINCRBY', KEYS[2], 'score', ARGV[2])
redis.call('HINCRBY', KEYS[2], 'maxScore', ARGV[3])
redis.call('HINCRBY', KEYS[2], 'rounds', 1)
if tonumber(ARGV[4]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[4])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// ProgressStore keeps section totals in Redis.
// Totals are stored as: HINCRBY progress:{playerID}:{section} score|maxScore|rounds
// Hand-offs are marked:  SET progress:handoff:{instanceID}
type ProgressStore struct {
	client    *redis.Client
	markerTTL time.Duration
}

// NewProgressStore keeps hand-off markers for markerTTL; zero keeps them forever.
func NewProgressStore(client *redis.Client, markerTTL time.Duration) *ProgressStore {
	return &ProgressStore{client: client, markerTTL: markerTTL}
}

func (s *ProgressStore) Record(ctx context.Context, summary domain.RoundSummary) (bool, error) {
	keys := []string{s.handoffKey(summary.InstanceID), s.totalsKey(summary.PlayerID, summary.Section)}
	counted, err := recordScript.Run(ctx, s.client, keys,
		summary.RoundID, summary.Score, summary.MaxScore, s.markerTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("record hand-off: %w", err)
	}
	return counted == 1, nil
}

func (s *ProgressStore) Totals(ctx context.Context, playerID string, section int) (app.SectionTotals, error) {
	fields, err := s.client.HGetAll(ctx, s.totalsKey(playerID, section)).Result()
	if err != nil {
		return app.SectionTotals{}, err
	}
	return app.SectionTotals{
		Score:    atoi(fields["score"]),
		MaxScore: atoi(fields["maxScore"]),
		Rounds:   atoi(fields["rounds"]),
	}, nil
}

func (s *ProgressStore) totalsKey(playerID string, section int) string {
	return "progress:" + playerID + ":" + strconv.Itoa(section)
}

func (s *ProgressStore) handoffKey(instanceID string) string {
	return "progress:handoff:" + instanceID
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
