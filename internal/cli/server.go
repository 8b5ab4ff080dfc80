package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"escape-room-service/internal/app"
	"escape-room-service/internal/config"
	"escape-room-service/internal/content"
	"escape-room-service/internal/infra/file"
	"escape-room-service/internal/infra/memory"
	pgloader "escape-room-service/internal/infra/postgres"
	redisstore "escape-room-service/internal/infra/redis"
	"escape-room-service/internal/metrics"
	"escape-room-service/internal/scoring"
	transport "escape-room-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the round server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	instanceTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader := roundLoader(cfg, pool)

	roundTTL := config.TTLDuration(cfg.Rounds.TTL, 10*time.Minute)
	var rounds app.RoundRepository
	if redisClient != nil {
		rounds = redisstore.NewRoundRepository(redisClient, loader, roundTTL)
	} else {
		rounds = memory.NewRoundRepository(loader, roundTTL)
	}

	var (
		instances app.InstanceRepository
		progress  app.ProgressRepository
	)
	if redisClient != nil {
		instances = redisstore.NewInstanceStore(redisClient, instanceTTL, rounds, scoring.Engine{})
		progress = redisstore.NewProgressStore(redisClient, 0)
	} else {
		instances = memory.NewInstanceStoreWithTTL(instanceTTL)
		progress = memory.NewProgressStore()
	}

	opts := []app.Option{app.WithRoundsPerSection(cfg.Rounds.RoundsPerSection)}
	mux := http.NewServeMux()
	if cfg.Metrics.Enabled {
		recorder := metrics.NewRecorder()
		opts = append(opts, app.WithRecorder(recorder))
		mux.Handle("/metrics", recorder.Handler())
	}
	service := app.NewRoundService(instances, rounds, progress, opts...)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(service).ServeWS)
	mux.Handle("/progress", transport.NewProgressHandler(service))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting escape room service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// roundLoader prefers Postgres, then a YAML content directory, then the built-in rounds.
func roundLoader(cfg config.Config, pool *pgxpool.Pool) memory.RoundLoader {
	if pool != nil {
		log.Printf("loading rounds from postgres")
		return pgloader.NewRoundLoader(pool)
	}
	if dir := cfg.Rounds.ContentDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			log.Printf("loading rounds from %s", dir)
			return file.NewRoundLoader(dir)
		}
		log.Printf("content dir %s not found, using built-in rounds", dir)
	}
	return memory.NewStaticRoundLoader(content.SampleRounds())
}
