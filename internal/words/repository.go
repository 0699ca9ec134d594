package words

import (
	"bufio"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
)

// Repository holds the word corpus. It is read-only after Load and safe for
// concurrent use.
type Repository struct {
	lines         []string
	expectedCount int

	mu     sync.Mutex // guards random
	random *rand.Rand
}

type Option func(*Repository)

// WithRand replaces the default random source. Tests use it to pin selection.
func WithRand(r *rand.Rand) Option {
	return func(that *Repository) {
		that.random = r
	}
}

// Load reads the newline-delimited corpus at path. expectedCount is the
// configured corpus size used for index draws; zero means "use the actual
// line count".
func Load(logger *slog.Logger, path string, expectedCount int, opts ...Option) (*Repository, error) {
	log := logger.With("component", "words", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorpusUnavailable, err)
	}
	defer file.Close()

	var (
		lines []string
		words int
	)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			words++
		}
		lines = append(lines, line)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorpusUnavailable, err)
	}

	if words == 0 {
		return nil, fmt.Errorf("%w: no words in %s", apperror.ErrCorpusUnavailable, path)
	}

	if expectedCount <= 0 {
		expectedCount = len(lines)
	}

	repo := &Repository{
		lines:         lines,
		expectedCount: expectedCount,
		random:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint: gosec // word choice is not security sensitive
	}

	for _, opt := range opts {
		opt(repo)
	}

	if repo.Mismatch() {
		log.Warn("configured corpus size does not match the corpus",
			"expected", expectedCount, "lines", len(lines))
	}

	log.Info("word corpus loaded", "lines", len(lines), "words", words)

	return repo, nil
}

// SelectWord draws an index uniformly over the configured corpus size and
// returns the word on that line. When the index falls on a blank line or past
// the end of a shorter corpus, it scans forward from index mod lines, wrapping,
// until it finds a word.
func (that *Repository) SelectWord() string {
	that.mu.Lock()
	index := that.random.IntN(that.expectedCount)
	that.mu.Unlock()

	return that.wordAt(index)
}

func (that *Repository) wordAt(index int) string {
	start := index % len(that.lines)

	for offset := range len(that.lines) {
		if word := that.lines[(start+offset)%len(that.lines)]; word != "" {
			return word
		}
	}

	// Load guarantees at least one word.
	panic("words: corpus has no words")
}

// Mismatch reports whether the configured corpus size differs from the line count.
func (that *Repository) Mismatch() bool {
	return that.expectedCount != len(that.lines)
}

// Size returns the number of lines in the corpus, blank lines included.
func (that *Repository) Size() int {
	return len(that.lines)
}
