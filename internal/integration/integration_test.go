package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"escape-room-service/internal/app"
	"escape-room-service/internal/content"
	"escape-room-service/internal/domain"
	pgloader "escape-room-service/internal/infra/postgres"
	pgmigrations "escape-room-service/internal/infra/postgres/migrations"
	infraredis "escape-room-service/internal/infra/redis"
	"escape-room-service/internal/scoring"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestRoundEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedRounds(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewRoundLoader(pool)
	if _, err := loader.LoadRound(ctx, "missing"); err != domain.ErrRoundNotFound {
		t.Fatalf("expected round not found from postgres, got %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	rounds := infraredis.NewRoundRepository(redisClient, loader, 5*time.Minute)
	newService := func() *app.RoundService {
		return app.NewRoundService(
			infraredis.NewInstanceStore(redisClient, 5*time.Minute, rounds, scoring.Engine{}),
			rounds,
			infraredis.NewProgressStore(redisClient, 0),
		)
	}
	service := newService()

	view, err := service.Start(ctx, "s1-r2-red-flags", "p1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, id := range []string{"no-author", "no-sources", "outdated", "made-up"} {
		if view, err = service.Select(ctx, view.InstanceID, "p1", id, ""); err != nil {
			t.Fatalf("select %s: %v", id, err)
		}
	}

	// A fresh service only shares Postgres and Redis with the first one.
	restarted := newService()
	view, err = restarted.Validate(ctx, view.InstanceID, "p1")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	// 15 + 15 + 10 - 5, and the missed critical flag selects the override tier.
	if view.Result.Score != 35 || view.Result.MissedCritical != 1 || view.Feedback.ID != "missed-critical" {
		t.Fatalf("unexpected result %+v feedback %+v", view.Result, view.Feedback)
	}

	_, progress, err := restarted.Continue(ctx, view.InstanceID, "p1")
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if progress.Score != 35 || progress.MaxScore != 100 || progress.RoundsCompleted != 1 {
		t.Fatalf("unexpected progress %+v", progress)
	}
	if _, err := newService().View(ctx, view.InstanceID, "p1"); err != domain.ErrInstanceNotFound {
		t.Fatalf("expected completed instance to be gone from redis, got %v", err)
	}
	shared, err := service.Progress(ctx, "p1", 1)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if shared.Score != 35 || shared.RoundsCompleted != 1 {
		t.Fatalf("expected progress shared through redis, got %+v", shared)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "rooms", "POSTGRES_PASSWORD": "roomspass", "POSTGRES_DB": "escaperoom"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://rooms:roomspass@%s:%s/escaperoom?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedRounds(t *testing.T, ctx context.Context, dsn string) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var rounds []domain.Round
	for _, r := range content.SampleRounds() {
		rounds = append(rounds, r)
	}
	if _, err := pgloader.UpsertRounds(ctx, db, rounds); err != nil {
		t.Fatalf("seed rounds: %v", err)
	}
	// Upserting twice must not fail.
	if _, err := pgloader.UpsertRounds(ctx, db, rounds); err != nil {
		t.Fatalf("reseed rounds: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
