package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/config"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/repository/storage"
)

// SessionRepository keeps session snapshots keyed by session id. Every
// implementation stores the codec record, never the live session.
type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, id string, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
	Close() error
}

type Kind string

const (
	KindFile   Kind = "file"
	KindRedis  Kind = "redis"
	KindSQLite Kind = "sqlite"
)

func ParseKind(value string) (Kind, error) {
	switch kind := Kind(value); kind {
	case KindFile, KindRedis, KindSQLite:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownStoreKind, value)
	}
}

// NewSessionRepository builds the store selected by conf.Storage.Kind.
func NewSessionRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (SessionRepository, error) {
	kind, err := ParseKind(conf.Storage.Kind)
	if err != nil {
		return nil, err
	}

	logger.With("component", "repository").Info("opening session store", "kind", kind)

	switch kind {
	case KindRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return NewRedisSessionRepository(redisStorage), nil
	case KindSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return NewSQLiteSessionRepository(sqliteStorage), nil
	default:
		return NewFileSessionRepository(conf.Storage.Dir)
	}
}
