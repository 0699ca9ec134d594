package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

const maskRune = '_'

func (that *Server) handleNew(ctx context.Context, _ string) error {
	if that.sessionID != "" {
		if err := that.uGame.Abandon(ctx, that.sessionID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
			return fmt.Errorf("failed to abandon session: %w", err)
		}
	}

	id, session := that.uGame.StartSession(ctx)
	that.sessionID = id

	that.printf("new game %s\n", id)
	that.render(session)

	return nil
}

func (that *Server) handleGuess(ctx context.Context, letter rune) error {
	outcome, err := that.uGame.Guess(ctx, that.sessionID, letter)
	if err != nil {
		return fmt.Errorf("failed to guess: %w", err)
	}

	switch outcome.Result {
	case entity.ResultAlreadyGuessed:
		that.printf("%q was already guessed\n", letter)
		return nil
	case entity.ResultConcluded:
		that.printf("this game is over, type %s to play again\n", commandNew)
		return nil
	case entity.ResultHit:
		that.printf("%q is in the word (%d revealed)\n", letter, len(outcome.Revealed))
	case entity.ResultMiss:
		that.printf("%q is not in the word\n", letter)
	}

	session, err := that.uGame.Session(ctx, that.sessionID)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	that.render(session)

	return nil
}

func (that *Server) handleSave(ctx context.Context, _ string) error {
	log := that.logger.With("method", "handleSave")

	err := that.uGame.Save(ctx, that.sessionID)
	if errors.Is(err, apperror.ErrSessionConcluded) {
		that.printf("a finished game cannot be saved\n")
		return nil
	}

	if err != nil {
		log.Error("failed to save session", "error", err)
		that.printf("save failed: %v\n", err)

		return nil
	}

	that.printf("saved as %s\n", that.sessionID)

	return nil
}

func (that *Server) handleLoad(ctx context.Context, id string) error {
	log := that.logger.With("method", "handleLoad")

	if id == "" {
		that.printf("usage: %s <id>\n", commandLoad)
		return nil
	}

	session, err := that.uGame.Load(ctx, id)
	if err != nil {
		log.Warn("failed to load session", "sessionID", id, "error", err)

		switch {
		case errors.Is(err, apperror.ErrSessionNotFound):
			that.printf("no saved game %s\n", id)
		case errors.Is(err, apperror.ErrMalformedRecord):
			that.printf("saved game %s is corrupt\n", id)
		default:
			that.printf("load failed: %v\n", err)
		}

		return nil
	}

	if that.sessionID != "" && that.sessionID != id {
		if err = that.uGame.Abandon(ctx, that.sessionID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
			return fmt.Errorf("failed to abandon session: %w", err)
		}
	}

	that.sessionID = id

	that.printf("loaded %s\n", id)
	that.render(session)

	return nil
}

// handleQuit asks once before dropping unsaved progress.
func (that *Server) handleQuit(ctx context.Context, _ string) error {
	unsaved, err := that.uGame.Unsaved(ctx, that.sessionID)
	if err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		return fmt.Errorf("failed to check session: %w", err)
	}

	if unsaved && !that.quitWarning {
		that.quitWarning = true
		that.printf("unsaved progress, type %s to keep it or %s again to leave\n", commandSave, commandQuit)

		return nil
	}

	return errQuit
}

func (that *Server) render(session *entity.Session) {
	that.printf("%s  remaining: %d", spaced(session.Display(maskRune)), session.RemainingGuesses())

	if bad := session.BadGuesses(); len(bad) > 0 {
		that.printf("  misses: %s", string(bad))
	}

	that.printf("\n")

	switch session.Status() {
	case entity.StatusWon:
		that.printf("You win!\n")
	case entity.StatusLost:
		that.printf("Ah, close but not quite there. The word was %q.\n", session.TargetWord())
	case entity.StatusActive:
	}
}

func spaced(word string) string {
	return strings.Join(strings.Split(word, ""), " ")
}
