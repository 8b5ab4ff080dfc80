package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"escape-room-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// RoundLoader loads round JSONB from Postgres.
type RoundLoader struct {
	pool *pgxpool.Pool
}

func NewRoundLoader(pool *pgxpool.Pool) *RoundLoader {
	return &RoundLoader{pool: pool}
}

func (l *RoundLoader) LoadRound(ctx context.Context, roundID string) (domain.Round, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM rounds WHERE id=$1`, roundID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	if err != nil {
		return domain.Round{}, fmt.Errorf("load round: %w", err)
	}
	var round domain.Round
	if err := json.Unmarshal(raw, &round); err != nil {
		return domain.Round{}, fmt.Errorf("unmarshal round: %w", err)
	}
	return round, nil
}
