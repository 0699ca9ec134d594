package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/codec"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/repository/storage"
)

type sqliteSession struct {
	storage *storage.SQLiteStorage
}

// NewSQLiteSessionRepository expects storage.Init to have been called.
func NewSQLiteSessionRepository(storage *storage.SQLiteStorage) SessionRepository {
	return &sqliteSession{
		storage: storage,
	}
}

func (that *sqliteSession) CreateOrUpdate(ctx context.Context, id string, session *entity.Session) error {
	query := `INSERT INTO sessions (id, record) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET record = excluded.record, updated_at = CURRENT_TIMESTAMP`

	record, err := codec.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	if _, err = that.storage.Connection.ExecContext(ctx, query, id, string(record)); err != nil {
		return fmt.Errorf("can't save session: %w", err)
	}

	return nil
}

func (that *sqliteSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	query := `SELECT record FROM sessions WHERE id = ?`

	var record string

	err := that.storage.Connection.QueryRowContext(ctx, query, id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find session: %w", err)
	}

	session, err := codec.Unmarshal([]byte(record))
	if err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return session, nil
}

func (that *sqliteSession) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = ?`

	result, err := that.storage.Connection.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("can't delete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't count deleted sessions: %w", err)
	}

	if affected == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func (that *sqliteSession) Close() error {
	return that.storage.Close()
}
