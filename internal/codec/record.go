// Package codec converts sessions to and from their persisted record form.
//
// A record carries only the target word and the two guess sets. Everything
// else a session exposes (revealed positions, remaining guesses, status) is
// recomputed on Load so it can never disagree with the guesses.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

const (
	FieldTargetWord  = "TARGET_WORD"
	FieldGoodGuesses = "GOOD_GUESSES"
	FieldBadGuesses  = "BAD_GUESSES"
)

// Record is the persisted form of a session. Guesses are one-character strings.
type Record struct {
	TargetWord  string   `json:"TARGET_WORD"`
	GoodGuesses []string `json:"GOOD_GUESSES"`
	BadGuesses  []string `json:"BAD_GUESSES"`
}

// Save projects a session onto a record.
func Save(session *entity.Session) Record {
	return Record{
		TargetWord:  session.TargetWord(),
		GoodGuesses: toStrings(session.GoodGuesses()),
		BadGuesses:  toStrings(session.BadGuesses()),
	}
}

// Load validates a record and rebuilds the session it describes.
func Load(record Record) (*entity.Session, error) {
	if record.TargetWord == "" {
		return nil, fmt.Errorf("%w: %s is empty", apperror.ErrMalformedRecord, FieldTargetWord)
	}

	if !utf8.ValidString(record.TargetWord) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", apperror.ErrMalformedRecord, FieldTargetWord)
	}

	good, err := toRunes(FieldGoodGuesses, record.GoodGuesses)
	if err != nil {
		return nil, err
	}

	bad, err := toRunes(FieldBadGuesses, record.BadGuesses)
	if err != nil {
		return nil, err
	}

	if len(bad) > entity.MaxGuesses {
		return nil, fmt.Errorf("%w: %d bad guesses exceed the limit of %d",
			apperror.ErrMalformedRecord, len(bad), entity.MaxGuesses)
	}

	for c := range good {
		if _, ok := bad[c]; ok {
			return nil, fmt.Errorf("%w: %q is both a good and a bad guess", apperror.ErrMalformedRecord, c)
		}
	}

	for c := range good {
		if !strings.ContainsRune(record.TargetWord, c) {
			return nil, fmt.Errorf("%w: good guess %q is not in the target word", apperror.ErrMalformedRecord, c)
		}
	}

	for c := range bad {
		if strings.ContainsRune(record.TargetWord, c) {
			return nil, fmt.Errorf("%w: bad guess %q is in the target word", apperror.ErrMalformedRecord, c)
		}
	}

	return entity.RestoreSession(record.TargetWord, keys(good), keys(bad)), nil
}

// Marshal encodes a session as a JSON record.
func Marshal(session *entity.Session) ([]byte, error) {
	data, err := json.Marshal(Save(session))
	if err != nil {
		return nil, fmt.Errorf("could not marshal record: %w", err)
	}

	return data, nil
}

// Unmarshal decodes a JSON record and rebuilds the session.
func Unmarshal(data []byte) (*entity.Session, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedRecord, err)
	}

	return Load(record)
}

func toStrings(runes []rune) []string {
	out := make([]string, 0, len(runes))
	for _, r := range runes {
		out = append(out, string(r))
	}

	return out
}

func toRunes(field string, values []string) (map[rune]struct{}, error) {
	set := make(map[rune]struct{}, len(values))

	for _, value := range values {
		if !utf8.ValidString(value) {
			return nil, fmt.Errorf("%w: %s entry %q is not valid UTF-8", apperror.ErrMalformedRecord, field, value)
		}

		if utf8.RuneCountInString(value) != 1 {
			return nil, fmt.Errorf("%w: %s entry %q is not a single character", apperror.ErrMalformedRecord, field, value)
		}

		r, _ := utf8.DecodeRuneInString(value)
		set[r] = struct{}{}
	}

	return set, nil
}

func keys(set map[rune]struct{}) []rune {
	out := make([]rune, 0, len(set))
	for r := range set {
		out = append(out, r)
	}

	return out
}
