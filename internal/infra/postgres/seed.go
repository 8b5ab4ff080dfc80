package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"escape-room-service/internal/domain"
	"github.com/uptrace/bun"
)

// RoundRow is the rounds table as bun sees it.
type RoundRow struct {
	bun.BaseModel `bun:"table:rounds"`

	ID      string          `bun:"id,pk"`
	Section int             `bun:"section,notnull"`
	Index   int             `bun:"idx,notnull"`
	Data    json.RawMessage `bun:"data,type:jsonb,notnull"`
}

// UpsertRounds writes rounds to the rounds table, replacing existing content by id.
func UpsertRounds(ctx context.Context, db bun.IDB, rounds []domain.Round) (int, error) {
	if len(rounds) == 0 {
		return 0, nil
	}
	rows := make([]RoundRow, 0, len(rounds))
	for _, r := range rounds {
		data, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("marshal round %s: %w", r.ID, err)
		}
		rows = append(rows, RoundRow{ID: r.ID, Section: r.Section, Index: r.Index, Data: data})
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("section = EXCLUDED.section").
		Set("idx = EXCLUDED.idx").
		Set("data = EXCLUDED.data").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("upsert rounds: %w", err)
	}
	return len(rows), nil
}
