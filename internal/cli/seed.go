package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"escape-room-service/internal/config"
	"escape-room-service/internal/domain"
	"escape-room-service/internal/infra/file"
	"escape-room-service/internal/infra/postgres"
	redisstore "escape-room-service/internal/infra/redis"
	"escape-room-service/internal/scoring"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads YAML round content into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate YAML round content and upsert it into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "content directory (defaults to rounds.contentDir)")
	return cmd
}

func runSeed(ctx context.Context, configPath, dir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.Rounds.ContentDir
	}
	if dir == "" {
		return fmt.Errorf("no content directory given")
	}

	rounds, err := file.NewRoundLoader(dir).LoadAll()
	if err != nil {
		return err
	}
	if err := validateAll(rounds); err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := postgres.UpsertRounds(ctx, db, rounds)
	if err != nil {
		return err
	}
	log.Printf("seeded %d rounds from %s", n, dir)
	return invalidateCachedRounds(ctx, cfg, dir, rounds)
}

// invalidateCachedRounds drops seeded rounds from the Redis cache so running
// servers pick up the new content on their next load.
func invalidateCachedRounds(ctx context.Context, cfg config.Config, dir string, rounds []domain.Round) error {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	cache := redisstore.NewRoundRepository(client, file.NewRoundLoader(dir), config.TTLDuration(cfg.Rounds.TTL, 10*time.Minute))
	for _, r := range rounds {
		if err := cache.Invalidate(ctx, r.ID); err != nil {
			return fmt.Errorf("invalidate cached round %s: %w", r.ID, err)
		}
	}
	log.Printf("invalidated %d cached rounds", len(rounds))
	return nil
}

func validateAll(rounds []domain.Round) error {
	var failed int
	for _, r := range rounds {
		if err := scoring.ValidateRound(r); err != nil {
			log.Printf("round %s: %v", r.ID, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d rounds failed validation", failed, len(rounds))
	}
	return nil
}
