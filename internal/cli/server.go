package cli

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fraction-tug-service/internal/app"
	"fraction-tug-service/internal/config"
	"fraction-tug-service/internal/infra/memory"
	redisstore "fraction-tug-service/internal/infra/redis"
	transport "fraction-tug-service/internal/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, *verbose)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string, verboseFlag bool) error {
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
	verbose := verboseFlag || cfg.Server.Verbose

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var store app.MatchRepository
	if redisClient != nil {
		store = redisstore.NewMatchStore(redisClient, redisTTL)
	} else {
		store = memory.NewMatchStore()
	}

	defaults := app.DefaultTimings()
	timings := app.Timings{
		PullAnimation:  config.TTLDuration(cfg.Game.PullAnimation, defaults.PullAnimation),
		ErrorHighlight: config.TTLDuration(cfg.Game.ErrorHighlight, defaults.ErrorHighlight),
	}
	idleTimeout := config.TTLDuration(cfg.Game.IdleTimeout, time.Hour)

	service := app.NewMatchService(store, app.NewGenerator(), app.TimerScheduler{}, timings)
	router := transport.NewRouter(service, transport.Options{
		Version: releaseVersion,
		Verbose: verbose,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Bind, finalPort),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("starting fraction tug-of-war v%s on %s", releaseVersion, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return reapLoop(gctx, service, idleTimeout, verbose)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// reapLoop periodically removes matches that have been idle longer than idleTimeout.
func reapLoop(ctx context.Context, service *app.MatchService, idleTimeout time.Duration, verbose bool) error {
	if idleTimeout <= 0 {
		return nil
	}
	ticker := time.NewTicker(idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := service.ReapIdle(now.Add(-idleTimeout)); n > 0 && verbose {
				log.Printf("reaped %d idle matches", n)
			}
		}
	}
}
