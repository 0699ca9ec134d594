package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/codec"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

const sessionFileExt = ".json"

// fileSession writes one JSON record per session into a work directory.
type fileSession struct {
	dir string
}

func NewFileSessionRepository(dir string) (SessionRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("can't create work directory %s: %w", dir, err)
	}

	return &fileSession{dir: dir}, nil
}

func (that *fileSession) CreateOrUpdate(_ context.Context, id string, session *entity.Session) error {
	path, err := that.path(id)
	if err != nil {
		return err
	}

	record, err := codec.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	// atomic replace
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, record, 0o600); err != nil {
		return fmt.Errorf("can't write session file: %w", err)
	}

	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("can't replace session file: %w", err)
	}

	return nil
}

func (that *fileSession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	path, err := that.path(id)
	if err != nil {
		return nil, err
	}

	record, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't read session file: %w", err)
	}

	session, err := codec.Unmarshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return session, nil
}

func (that *fileSession) DeleteByID(_ context.Context, id string) error {
	path, err := that.path(id)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return apperror.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("can't delete session file: %w", err)
	}

	return nil
}

func (that *fileSession) Close() error {
	return nil
}

func (that *fileSession) path(id string) (string, error) {
	if id == "" || filepath.Base(id) != id || id == "." || id == ".." {
		return "", fmt.Errorf("%w: invalid id %q", apperror.ErrSessionNotFound, id)
	}

	return filepath.Join(that.dir, id+sessionFileExt), nil
}
