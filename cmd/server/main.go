package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devaloi/noteboard/internal/auth"
	"github.com/devaloi/noteboard/internal/chat"
	"github.com/devaloi/noteboard/internal/config"
	"github.com/devaloi/noteboard/internal/handler"
	"github.com/devaloi/noteboard/internal/logging"
	"github.com/devaloi/noteboard/internal/middleware"
	"github.com/devaloi/noteboard/internal/store"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	st, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open store")
	}
	defer st.Close()

	// Chat history: Redis when configured, memory-only otherwise. A Redis
	// that is down at startup (or dies later) degrades to the memory buffer.
	var durable chat.DurableStore
	if cfg.RedisAddr != "" {
		rh := chat.NewRedisHistory(cfg.RedisAddr, cfg.RedisPassword)
		defer rh.Close()
		durable = rh

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rh.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, chat history falls back to memory")
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
		}
		cancel()
	}

	registry := chat.NewRegistry()
	history := chat.NewHistory(durable, log)
	bcast := chat.NewBroadcaster(registry, history, log)

	tokens := auth.NewManager(cfg.SecretKey, cfg.TokenTTL())
	throttle := auth.NewThrottle()

	h, err := handler.New(st, tokens, throttle, registry, bcast, history, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build handlers")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.Logging(log, middleware.CORS(h.Routes())),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("noteboard listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("shutdown complete")
}
