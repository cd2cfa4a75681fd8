package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"

	"github.com/commitplay/rps-escrow-backend/internal/config"
	"github.com/commitplay/rps-escrow-backend/internal/engine"
	"github.com/commitplay/rps-escrow-backend/internal/event"
	"github.com/commitplay/rps-escrow-backend/internal/lifecycle"
	"github.com/commitplay/rps-escrow-backend/internal/repository"
	"github.com/commitplay/rps-escrow-backend/internal/repository/storage"
	"github.com/commitplay/rps-escrow-backend/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	ledgerRepo := repository.NewLedgerRepository(redisStorage.Connection)
	guard := lifecycle.NewGuard()

	emitter := event.MultiEmitter{
		event.NewLogEmitter(logger),
		event.NewRedisEmitter(redisStorage.Connection, logger),
	}

	gameEngine := engine.New(logger, gameRepo, ledgerRepo, guard, emitter, clock.New(), engine.Rules{
		Operator:     conf.Operator,
		MinWager:     conf.Game.MinWager,
		Fee:          conf.Game.Fee,
		JoinWindow:   conf.Game.JoinWindow(),
		MoveWindow:   conf.Game.MoveWindow(),
		RevealWindow: conf.Game.RevealWindow(),
		GraceWindow:  conf.Game.GraceWindow(),
	})

	server := rest.New(logger, gameEngine, guard, conf.Operator, func(ctx context.Context) error {
		return redisStorage.Connection.Ping(ctx).Err()
	})

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err = server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
