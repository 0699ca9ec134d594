package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/pkg"
)

type wordSource interface {
	SelectWord() string
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, id string, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// liveSession pairs a session with the lock that serializes guesses on it.
type liveSession struct {
	mu      sync.Mutex
	session *entity.Session
	dirty   bool
}

// GameManager owns the sessions being played in this process. It is safe for
// concurrent use; calls on the same session are serialized. Sessions returned
// to callers are snapshots and do not follow later guesses.
type GameManager struct {
	logger      *slog.Logger
	words       wordSource
	sessionRepo sessionRepo

	mu       sync.Mutex
	sessions map[string]*liveSession
}

func NewGameManager(logger *slog.Logger, words wordSource, sessionRepo sessionRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		words:       words,
		sessionRepo: sessionRepo,

		sessions: make(map[string]*liveSession),
	}
}

// StartSession draws a target word and registers a new active session.
// It returns the session id and a snapshot of the new session.
func (that *GameManager) StartSession(_ context.Context) (string, *entity.Session) {
	id := pkg.GenerateSessionID()
	session := entity.NewSession(that.words.SelectWord())

	that.mu.Lock()
	that.sessions[id] = &liveSession{session: session}
	that.mu.Unlock()

	that.logger.Debug("session started", "sessionID", id, "length", len(session.TargetWord()))

	return id, session.Clone()
}

// Guess applies one letter to the session. Repeated letters and guesses on a
// concluded session come back as outcomes, not errors.
func (that *GameManager) Guess(ctx context.Context, id string, c rune) (entity.GuessOutcome, error) {
	live, err := that.getLive(id)
	if err != nil {
		return entity.GuessOutcome{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	outcome := live.session.Guess(c)

	switch outcome.Result {
	case entity.ResultHit, entity.ResultMiss:
		live.dirty = true
	case entity.ResultAlreadyGuessed, entity.ResultConcluded:
		return outcome, nil
	}

	if live.session.IsConcluded() {
		that.concludeSession(ctx, id, live.session)
	}

	return outcome, nil
}

// Session returns a snapshot of the live session for the presentation layer.
func (that *GameManager) Session(_ context.Context, id string) (*entity.Session, error) {
	live, err := that.getLive(id)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	return live.session.Clone(), nil
}

// Unsaved reports whether an active session has progress that is not in the store.
func (that *GameManager) Unsaved(_ context.Context, id string) (bool, error) {
	live, err := that.getLive(id)
	if err != nil {
		return false, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	return live.dirty && !live.session.IsConcluded(), nil
}

// Save snapshots an active session into the store. Concluded sessions are not savable.
func (that *GameManager) Save(ctx context.Context, id string) error {
	live, err := that.getLive(id)
	if err != nil {
		return err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	if live.session.IsConcluded() {
		return apperror.ErrSessionConcluded
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, id, live.session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	live.dirty = false

	that.logger.Info("session saved", "sessionID", id)

	return nil
}

// Load restores a saved session and makes it live under the same id,
// replacing any live session with that id. It returns a snapshot.
func (that *GameManager) Load(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	that.mu.Lock()
	that.sessions[id] = &liveSession{session: session}
	that.mu.Unlock()

	that.logger.Info("session loaded", "sessionID", id, "status", session.Status())

	return session.Clone(), nil
}

// Abandon drops a live session. Saved snapshots are kept.
func (that *GameManager) Abandon(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}

func (that *GameManager) getLive(id string) (*liveSession, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	live, ok := that.sessions[id]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	return live, nil
}

// concludeSession logs the result and removes any snapshot: a finished game
// cannot be resumed.
func (that *GameManager) concludeSession(ctx context.Context, id string, session *entity.Session) {
	log := that.logger.With("method", "concludeSession", "sessionID", id)

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		log.Error("failed to delete saved session", "error", err)
	}

	log.Info("session concluded",
		"status", session.Status(),
		"word", session.TargetWord(),
		"remaining", session.RemainingGuesses())
}
