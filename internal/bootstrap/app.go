package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/yanqian/support-expert/internal/domain/feedsync"
	"github.com/yanqian/support-expert/internal/infra/config"
)

// Scheduler refreshes feeds in the background.
type Scheduler interface {
	Run(ctx context.Context, interval time.Duration, immediate bool)
}

// App encapsulates the HTTP server and feed scheduler lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	scheduler Scheduler
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, syncer *feedsync.Syncer) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, scheduler: syncer}
}

// Run starts the HTTP server and the feed scheduler, and blocks until
// shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	schedCtx, stopScheduler := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if a.scheduler != nil && a.cfg.Feeds.Source != config.FeedSourceNone {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.logger.Info("feed scheduler starting", "interval", a.cfg.Sync.Interval, "onStartup", a.cfg.Sync.OnStartup)
			a.scheduler.Run(schedCtx, a.cfg.Sync.Interval, a.cfg.Sync.OnStartup)
		}()
	}
	defer func() {
		stopScheduler()
		wg.Wait()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
