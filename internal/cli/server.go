package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zuehlke/kwiz/internal/app"
	"github.com/Zuehlke/kwiz/internal/config"
	"github.com/Zuehlke/kwiz/internal/infra/memory"
	pgloader "github.com/Zuehlke/kwiz/internal/infra/postgres"
	redisinfra "github.com/Zuehlke/kwiz/internal/infra/redis"
	"github.com/Zuehlke/kwiz/internal/timer"
	transport "github.com/Zuehlke/kwiz/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz game server",
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
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	engine := app.NewQuizEngine()

	// Quiz definitions come from the setup engine unless Postgres is
	// configured; then they are loaded from JSONB, cached in Redis when
	// available and in-process otherwise.
	cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var quizSource app.QuizSource = engine
	if pool != nil {
		loader := pgloader.NewQuizLoader(pool)
		if redisClient != nil {
			quizSource = redisinfra.NewQuizCache(redisClient, loader, cacheTTL)
		} else {
			quizSource = memory.NewQuizCache(loader, cacheTTL)
		}
	}

	games := memory.NewGameRepository()
	hub := transport.NewHub()
	registry := timer.NewRegistry()

	orchestrator := app.NewGameOrchestrator(games, quizSource, hub, registry)
	engine.SetGameStarter(orchestrator)

	tickInterval := config.Duration(cfg.Game.TickInterval, time.Second)
	driver := timer.NewDriver(registry, games, orchestrator, tickInterval)
	driver.RecoverActiveGames()

	driverCtx, stopDriver := context.WithCancel(ctx)
	defer stopDriver()
	go driver.Run(driverCtx)

	wsHandler := transport.NewWSHandler(orchestrator, hub)
	gameHandler := transport.NewGameHandler(engine, orchestrator)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	gameHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting kwiz server on :%s", finalPort)
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

	stopDriver()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
