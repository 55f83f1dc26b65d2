package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"movie-trivia-service/internal/app"
	"movie-trivia-service/internal/config"
	"movie-trivia-service/internal/infra/libretranslate"
	"movie-trivia-service/internal/infra/memory"
	"movie-trivia-service/internal/infra/opentdb"
	pgstore "movie-trivia-service/internal/infra/postgres"
	redisstore "movie-trivia-service/internal/infra/redis"
	sqlitestore "movie-trivia-service/internal/infra/sqlite"
	transport "movie-trivia-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
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

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	eligibility, cleanup, err := buildEligibilityStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	httpClient := &http.Client{Timeout: 15 * time.Second}
	source := opentdb.NewClient(httpClient, opentdb.Config{
		BaseURL:  cfg.Trivia.URL,
		Category: cfg.Trivia.Category,
	})

	var translator app.Translator
	if !cfg.Translate.Disabled {
		translator = libretranslate.NewClient(httpClient, libretranslate.Config{
			BaseURL: cfg.Translate.URL,
			Source:  cfg.Translate.Source,
			Target:  cfg.Translate.Target,
			Timeout: config.DurationOr(cfg.Translate.Timeout, 0),
		})
	}

	service := app.NewTriviaService(source, translator, eligibility, app.Options{
		BatchSize:    cfg.Trivia.BatchSize,
		RoundSeconds: cfg.Session.RoundSeconds,
		AdvanceDelay: config.DurationOr(cfg.Session.AdvanceDelay, 0),
		TimeoutGrace: config.DurationOr(cfg.Session.TimeoutGrace, 0),
	})
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
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

// buildEligibilityStore picks the last-played backend: Postgres when a URL is
// configured (migrations run first), then Redis, then SQLite, falling back to
// in-memory. The returned cleanup closes whatever was opened.
func buildEligibilityStore(ctx context.Context, cfg config.Config) (app.EligibilityStore, func(), error) {
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewEligibilityStore(pool), pool.Close, nil
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.DurationOr(cfg.Redis.TTL, 48*time.Hour)
		return redisstore.NewEligibilityStore(client, ttl), func() { _ = client.Close() }, nil
	}

	if cfg.SQLite.Path != "" {
		db, err := sqlitestore.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlitestore.NewEligibilityStore(db), func() { _ = db.Close() }, nil
	}

	return memory.NewEligibilityStore(), func() {}, nil
}
