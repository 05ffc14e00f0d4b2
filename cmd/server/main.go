package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "watchparty/internal/adapters/http"
	"watchparty/internal/adapters/ws"
	"watchparty/internal/app"
	"watchparty/internal/config"
	"watchparty/internal/metrics"
	"watchparty/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer st.Close()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store opened")

	dir := app.NewDirectory()
	hist := app.NewHistory(cfg.Chat.HistoryLimit)
	reg := app.NewRegistry()
	coord := app.NewCoordinator(reg, dir, hist, st)
	coord.SetChatLimit(cfg.Chat.RateLimit, cfg.Chat.RateInterval)
	metrics.RegisterRoomGauge(dir.Len)

	reaper := &app.Reaper{
		Store:     st,
		Interval:  cfg.Reaper.Interval,
		Threshold: cfg.Reaper.Threshold,
	}
	go reaper.Run(ctx)

	ctl := ws.NewController(coord, cfg.ReadLimit, cfg.PingPeriod)
	r := router.SetupRouter(ctx, cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Watchparty server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
