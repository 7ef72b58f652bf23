package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/htlin222/gkahoot/internal/app"
	"github.com/htlin222/gkahoot/internal/config"
	"github.com/htlin222/gkahoot/internal/feed"
	"github.com/htlin222/gkahoot/internal/infra/memory"
	pgsource "github.com/htlin222/gkahoot/internal/infra/postgres"
	redisfeed "github.com/htlin222/gkahoot/internal/infra/redis"
	"github.com/htlin222/gkahoot/internal/scoring"
	transport "github.com/htlin222/gkahoot/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewServerCmd builds the CLI subcommand to start the server.
func NewServerCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the scoring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		log.Printf("no config at %s, using defaults", configPath)
		cfg = config.Default()
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Feeds: plain HTTP loader, optionally fronted by a Redis or in-memory
	// cache so double triggers don't refetch the same export.
	loader := feed.NewLoader(&http.Client{Timeout: 30 * time.Second})
	cacheTTL := config.TTLDuration(cfg.Feed.CacheTTL, 30*time.Second)

	var feeds feed.Source = memory.NewFeedCache(loader, cacheTTL)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		feeds = redisfeed.NewFeedCache(redisClient, loader, cacheTTL)
	}

	engine := scoring.NewEngine(scoring.Policy{
		BasePoints: cfg.Scoring.BasePoints,
		Decay:      cfg.Scoring.Decay,
		Floor:      cfg.Scoring.FloorPoint,
	})
	normalizer := feed.NewNormalizer(feed.Columns{
		Timestamp:   cfg.Feed.TimestampColumn,
		Participant: cfg.Feed.ParticipantColumn,
		Answer:      cfg.Feed.AnswerColumn,
	})
	session := app.NewQuizSession(feeds, normalizer, engine)

	// Optional: seed the catalog from Postgres instead of waiting for an
	// upload. Stats always stay in memory either way.
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		questions, err := pgsource.NewCatalogSource(pool).LoadQuestions(ctx)
		if err != nil {
			log.Printf("postgres catalog not loaded: %v", err)
		} else {
			session.ReplaceQuestions(questions)
			log.Printf("loaded %d questions from postgres", len(questions))
		}
	}

	mux := http.NewServeMux()
	transport.NewHandler(session).Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("starting gkahoot on :%s", finalPort)
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
