package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/hangman-backend/internal/config"
	"github.com/rocketscienceinc/hangman-backend/internal/repository"
	"github.com/rocketscienceinc/hangman-backend/internal/usecase"
	"github.com/rocketscienceinc/hangman-backend/internal/words"
	"github.com/rocketscienceinc/hangman-backend/transport/console"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	corpus, err := words.Load(logger, conf.Words.Path, conf.Words.Count)
	if err != nil {
		return fmt.Errorf("could not load word corpus: %w", err)
	}

	sessionRepo, err := repository.NewSessionRepository(ctx, logger, conf)
	if err != nil {
		return fmt.Errorf("could not open session store: %w", err)
	}

	defer func() {
		if err = sessionRepo.Close(); err != nil {
			log.Error("could not close session store", "error", err)
		}
	}()

	gameManager := usecase.NewGameManager(logger, corpus, sessionRepo)

	log.Info("Starting console", "storage", conf.Storage.Kind)

	if err = console.New(logger, gameManager, out).Start(ctx, in); err != nil {
		return fmt.Errorf("console error: %w", err)
	}

	log.Info("Console closed, shutting down")

	return nil
}
