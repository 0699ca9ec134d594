package entity

import (
	"maps"
	"slices"
	"strings"
)

// MaxGuesses is the number of bad guesses a session can absorb before it is lost.
const MaxGuesses = 10

type Status string

const (
	StatusActive Status = "active"
	StatusWon    Status = "won"
	StatusLost   Status = "lost"
)

type GuessResult string

const (
	ResultHit            GuessResult = "hit"
	ResultMiss           GuessResult = "miss"
	ResultAlreadyGuessed GuessResult = "already_guessed"
	ResultConcluded      GuessResult = "concluded"
)

// GuessOutcome describes what a single call to Session.Guess did.
type GuessOutcome struct {
	Result   GuessResult `json:"result"`
	Revealed []int       `json:"revealed,omitempty"`
	Status   Status      `json:"status"`
}

// Session is the state of one round. The target word is fixed at construction;
// remaining guesses and status are derived from the guess sets on every read.
//
// A Session is not safe for concurrent use.
type Session struct {
	target      []rune
	goodGuesses map[rune]struct{}
	badGuesses  map[rune]struct{}
	revealed    []bool
	discovered  int
}

// NewSession panics on an empty target word.
func NewSession(targetWord string) *Session {
	if targetWord == "" {
		panic("entity: empty target word")
	}

	target := []rune(targetWord)

	return &Session{
		target:      target,
		goodGuesses: make(map[rune]struct{}),
		badGuesses:  make(map[rune]struct{}),
		revealed:    make([]bool, len(target)),
	}
}

// RestoreSession rebuilds a session from its guess sets. Revealed positions are
// recomputed from the good guesses; callers validate the sets beforehand.
func RestoreSession(targetWord string, good, bad []rune) *Session {
	session := NewSession(targetWord)

	for _, c := range good {
		session.reveal(c)
	}

	for _, c := range bad {
		session.badGuesses[c] = struct{}{}
	}

	return session
}

// Clone returns an independent copy of the session.
func (that *Session) Clone() *Session {
	return &Session{
		target:      slices.Clone(that.target),
		goodGuesses: maps.Clone(that.goodGuesses),
		badGuesses:  maps.Clone(that.badGuesses),
		revealed:    slices.Clone(that.revealed),
		discovered:  that.discovered,
	}
}

// Guess applies a single letter. Letters are compared literally, without case folding.
func (that *Session) Guess(c rune) GuessOutcome {
	if that.IsConcluded() {
		return GuessOutcome{Result: ResultConcluded, Status: that.Status()}
	}

	if that.AlreadyGuessed(c) {
		return GuessOutcome{Result: ResultAlreadyGuessed, Status: that.Status()}
	}

	revealed := that.reveal(c)
	if len(revealed) == 0 {
		that.badGuesses[c] = struct{}{}

		return GuessOutcome{Result: ResultMiss, Status: that.Status()}
	}

	return GuessOutcome{Result: ResultHit, Revealed: revealed, Status: that.Status()}
}

// reveal marks every position holding c and records c as a good guess when
// at least one position matched. It returns the newly revealed indices.
func (that *Session) reveal(c rune) []int {
	var positions []int

	for i, letter := range that.target {
		if letter != c {
			continue
		}

		that.goodGuesses[c] = struct{}{}
		if !that.revealed[i] {
			that.revealed[i] = true
			that.discovered++
			positions = append(positions, i)
		}
	}

	return positions
}

func (that *Session) AlreadyGuessed(c rune) bool {
	if _, ok := that.goodGuesses[c]; ok {
		return true
	}

	_, ok := that.badGuesses[c]

	return ok
}

func (that *Session) Status() Status {
	switch {
	case that.discovered == len(that.target):
		return StatusWon
	case that.RemainingGuesses() <= 0:
		return StatusLost
	default:
		return StatusActive
	}
}

func (that *Session) IsConcluded() bool {
	return that.Status() != StatusActive
}

func (that *Session) RemainingGuesses() int {
	return MaxGuesses - len(that.badGuesses)
}

func (that *Session) TargetWord() string {
	return string(that.target)
}

func (that *Session) GoodGuesses() []rune {
	return sortedRunes(that.goodGuesses)
}

func (that *Session) BadGuesses() []rune {
	return sortedRunes(that.badGuesses)
}

// RevealedPositions returns the disclosed indices in ascending order.
func (that *Session) RevealedPositions() []int {
	positions := make([]int, 0, that.discovered)

	for i, ok := range that.revealed {
		if ok {
			positions = append(positions, i)
		}
	}

	return positions
}

// Display renders the target word with every undisclosed letter replaced by mask.
func (that *Session) Display(mask rune) string {
	var sb strings.Builder

	for i, letter := range that.target {
		if that.revealed[i] {
			sb.WriteRune(letter)
		} else {
			sb.WriteRune(mask)
		}
	}

	return sb.String()
}

func sortedRunes(set map[rune]struct{}) []rune {
	out := make([]rune, 0, len(set))
	for r := range set {
		out = append(out, r)
	}

	slices.Sort(out)

	return out
}
