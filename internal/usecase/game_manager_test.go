package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/words"
)

var errRedisDown = errors.New("redis down")

func newManager(t *testing.T, word string) (*GameManager, *mockSessionRepo) {
	t.Helper()

	words := &mockWordSource{}
	words.On("SelectWord").Return(word).Maybe()

	repo := &mockSessionRepo{}
	t.Cleanup(func() {
		words.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewGameManager(logger, words, repo), repo
}

func TestGameManager_StartSession(t *testing.T) {
	ctx := context.Background()

	// Given: a manager whose corpus yields "cat"
	manager, _ := newManager(t, "cat")

	// When: starting two sessions
	firstID, first := manager.StartSession(ctx)
	secondID, _ := manager.StartSession(ctx)

	// Then: each gets its own id and an active session on the drawn word
	assert.NotEqual(t, firstID, secondID)
	assert.Equal(t, "cat", first.TargetWord())
	assert.Equal(t, entity.StatusActive, first.Status())

	session, err := manager.Session(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, first.TargetWord(), session.TargetWord())
}

func TestGameManager_StartSession_Concurrent(t *testing.T) {
	ctx := context.Background()

	// Given: a manager drawing from a real corpus
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("apple\nbanana\ncherry\ndamson\n"), 0o600))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	corpus, err := words.Load(logger, path, 4)
	require.NoError(t, err)

	manager := NewGameManager(logger, corpus, &mockSessionRepo{})

	// When: sessions are started from several goroutines
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{})
	)

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				id, session := manager.StartSession(ctx)
				assert.Contains(t, []string{"apple", "banana", "cherry", "damson"}, session.TargetWord())

				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Then: every session was registered under its own id
	assert.Len(t, ids, 800)
}

func TestGameManager_Guess(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies the guess to the live session", func(t *testing.T) {
		// Given: a started session
		manager, _ := newManager(t, "banana")
		id, _ := manager.StartSession(ctx)

		// When: guessing a repeated letter
		outcome, err := manager.Guess(ctx, id, 'a')

		// Then: the outcome and the session agree
		require.NoError(t, err)
		assert.Equal(t, entity.ResultHit, outcome.Result)

		session, err := manager.Session(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 5}, session.RevealedPositions())
	})

	t.Run("Unknown session", func(t *testing.T) {
		// Given: a manager without sessions
		manager, _ := newManager(t, "cat")

		// When: guessing on an unknown id
		_, err := manager.Guess(ctx, "nope", 'a')

		// Then: ErrSessionNotFound is returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Winning removes the saved snapshot", func(t *testing.T) {
		// Given: a started session with a saved snapshot
		manager, repo := newManager(t, "ox")
		id, _ := manager.StartSession(ctx)

		repo.On("DeleteByID", mock.Anything, id).Return(nil).Once()

		// When: the word is completed
		_, err := manager.Guess(ctx, id, 'o')
		require.NoError(t, err)
		outcome, err := manager.Guess(ctx, id, 'x')

		// Then: the session is won and its snapshot deleted
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWon, outcome.Status)
	})

	t.Run("Losing tolerates a missing snapshot", func(t *testing.T) {
		// Given: a started session that was never saved
		manager, repo := newManager(t, "dog")
		id, _ := manager.StartSession(ctx)

		repo.On("DeleteByID", mock.Anything, id).Return(apperror.ErrSessionNotFound).Once()

		// When: ten misses are made
		var outcome entity.GuessOutcome
		for _, c := range "xyzqwertui" {
			var err error
			outcome, err = manager.Guess(ctx, id, c)
			require.NoError(t, err)
		}

		// Then: the session is lost
		assert.Equal(t, entity.StatusLost, outcome.Status)

		// And: later guesses are ignored without touching the store again
		outcome, err := manager.Guess(ctx, id, 'd')
		require.NoError(t, err)
		assert.Equal(t, entity.ResultConcluded, outcome.Result)
	})

	t.Run("Snapshots do not follow later guesses", func(t *testing.T) {
		// Given: a snapshot taken before any guess
		manager, _ := newManager(t, "cat")
		id, started := manager.StartSession(ctx)
		before, err := manager.Session(ctx, id)
		require.NoError(t, err)

		// When: a letter is guessed
		_, err = manager.Guess(ctx, id, 'c')
		require.NoError(t, err)

		// Then: earlier snapshots are unchanged and a new one sees the guess
		assert.Empty(t, started.RevealedPositions())
		assert.Empty(t, before.RevealedPositions())

		after, err := manager.Session(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []int{0}, after.RevealedPositions())
	})

	t.Run("Reads run alongside guesses", func(t *testing.T) {
		// Given: a started session on a long word
		manager, _ := newManager(t, "abcdefghijklmnopqrstuvwxyz")
		id, _ := manager.StartSession(ctx)

		// When: one goroutine guesses while another reads
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for _, c := range "abcdefghij" {
				_, _ = manager.Guess(ctx, id, c)
			}
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				session, err := manager.Session(ctx, id)
				if assert.NoError(t, err) {
					_ = session.RevealedPositions()
					_ = session.Status()
				}
			}
		}()
		wg.Wait()

		// Then: the final state has all ten letters
		session, err := manager.Session(ctx, id)
		require.NoError(t, err)
		assert.Len(t, session.RevealedPositions(), 10)
	})

	t.Run("Concurrent guesses are serialized", func(t *testing.T) {
		// Given: a started session on a long word
		manager, _ := newManager(t, "abcdefghijklmnopqrstuvwxyz")
		id, _ := manager.StartSession(ctx)

		// When: the same letters are guessed from many goroutines
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, c := range "abcdefghij" {
					_, _ = manager.Guess(ctx, id, c)
				}
			}()
		}
		wg.Wait()

		// Then: each letter was revealed exactly once
		session, err := manager.Session(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, session.RevealedPositions())
		assert.Equal(t, entity.MaxGuesses, session.RemainingGuesses())
	})
}

func TestGameManager_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves an active session", func(t *testing.T) {
		// Given: a session with progress
		manager, repo := newManager(t, "cat")
		id, _ := manager.StartSession(ctx)
		_, err := manager.Guess(ctx, id, 'c')
		require.NoError(t, err)

		unsaved, err := manager.Unsaved(ctx, id)
		require.NoError(t, err)
		require.True(t, unsaved)

		repo.On("CreateOrUpdate", mock.Anything, id, mock.AnythingOfType("*entity.Session")).Return(nil).Once()

		// When: saving it
		err = manager.Save(ctx, id)

		// Then: it is written and no longer unsaved
		require.NoError(t, err)
		unsaved, err = manager.Unsaved(ctx, id)
		require.NoError(t, err)
		assert.False(t, unsaved)
	})

	t.Run("Concluded session is not savable", func(t *testing.T) {
		// Given: a won session
		manager, repo := newManager(t, "a")
		id, _ := manager.StartSession(ctx)
		repo.On("DeleteByID", mock.Anything, id).Return(nil).Once()
		_, err := manager.Guess(ctx, id, 'a')
		require.NoError(t, err)

		// When: saving it
		err = manager.Save(ctx, id)

		// Then: ErrSessionConcluded is returned
		require.ErrorIs(t, err, apperror.ErrSessionConcluded)
	})

	t.Run("Store failure is returned", func(t *testing.T) {
		// Given: a session with progress and a store that is down
		manager, repo := newManager(t, "cat")
		id, _ := manager.StartSession(ctx)
		_, err := manager.Guess(ctx, id, 'a')
		require.NoError(t, err)
		repo.On("CreateOrUpdate", mock.Anything, id, mock.Anything).Return(errRedisDown).Once()

		// When: saving
		err = manager.Save(ctx, id)

		// Then: the store error is wrapped
		require.ErrorIs(t, err, errRedisDown)
		unsaved, err := manager.Unsaved(ctx, id)
		require.NoError(t, err)
		assert.True(t, unsaved)
	})
}

func TestGameManager_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Restores a saved session", func(t *testing.T) {
		// Given: a store holding a session
		manager, repo := newManager(t, "unused")
		stored := entity.NewSession("dog")
		stored.Guess('o')
		repo.On("GetByID", mock.Anything, "saved-1").Return(stored, nil).Once()

		// When: loading it
		session, err := manager.Load(ctx, "saved-1")

		// Then: it becomes live and guessable
		require.NoError(t, err)
		assert.Equal(t, stored.RevealedPositions(), session.RevealedPositions())
		assert.NotSame(t, stored, session)

		outcome, err := manager.Guess(ctx, "saved-1", 'd')
		require.NoError(t, err)
		assert.Equal(t, entity.ResultHit, outcome.Result)
	})

	t.Run("Malformed record is surfaced", func(t *testing.T) {
		// Given: a store holding a malformed record
		manager, repo := newManager(t, "unused")
		repo.On("GetByID", mock.Anything, "broken").Return(nil, apperror.ErrMalformedRecord).Once()

		// When: loading it
		session, err := manager.Load(ctx, "broken")

		// Then: ErrMalformedRecord reaches the caller
		require.ErrorIs(t, err, apperror.ErrMalformedRecord)
		assert.Nil(t, session)

		_, err = manager.Session(ctx, "broken")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestGameManager_Unsaved(t *testing.T) {
	ctx := context.Background()

	// Given: a fresh session
	manager, _ := newManager(t, "cat")
	id, _ := manager.StartSession(ctx)

	// Then: there is nothing to lose before the first guess
	unsaved, err := manager.Unsaved(ctx, id)
	require.NoError(t, err)
	assert.False(t, unsaved)

	// And: a miss counts as progress
	_, err = manager.Guess(ctx, id, 'z')
	require.NoError(t, err)
	unsaved, err = manager.Unsaved(ctx, id)
	require.NoError(t, err)
	assert.True(t, unsaved)
}

func TestGameManager_Abandon(t *testing.T) {
	ctx := context.Background()

	// Given: a started session
	manager, _ := newManager(t, "cat")
	id, _ := manager.StartSession(ctx)

	// When: abandoning it
	require.NoError(t, manager.Abandon(ctx, id))

	// Then: it is no longer live
	_, err := manager.Session(ctx, id)
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	require.ErrorIs(t, manager.Abandon(ctx, id), apperror.ErrSessionNotFound)
}
