package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saeidalz13/battleship-solo/api"
	"github.com/saeidalz13/battleship-solo/db"
	"github.com/saeidalz13/battleship-solo/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Stage == config.StageDev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var psqlDb *sql.DB
	if cfg.DatabaseUrl != "" {
		psqlDb = db.MustConnectToDb(cfg.DatabaseUrl, cfg.MigrationDir)
		defer psqlDb.Close()
	} else {
		log.Warn().Msg("DATABASE_URL is empty; running without analytics")
	}

	server, err := api.NewServer(
		api.WithPort(cfg.Port),
		api.WithStage(cfg.Stage),
		api.WithDb(psqlDb),
		api.WithBotDelay(cfg.BotDelay),
	)
	if err != nil {
		panic(err)
	}

	stop := make(chan struct{})
	server.RunCleanups(stop)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", server.Port()),
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Msgf("Listening to port %d", server.Port())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	close(stop)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server shut down")
}
