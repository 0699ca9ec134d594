package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/codec"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/repository/storage"
)

const sessionKeyPrefix = "session:"

type redisSession struct {
	storage *storage.RedisStorage
}

func NewRedisSessionRepository(storage *storage.RedisStorage) SessionRepository {
	return &redisSession{
		storage: storage,
	}
}

func (that *redisSession) CreateOrUpdate(ctx context.Context, id string, session *entity.Session) error {
	sessionJSON, err := codec.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	err = that.storage.Connection.Set(ctx, sessionKeyPrefix+id, sessionJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *redisSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	response, err := that.storage.Connection.Get(ctx, sessionKeyPrefix+id).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	session, err := codec.Unmarshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return session, nil
}

func (that *redisSession) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.storage.Connection.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func (that *redisSession) Close() error {
	return that.storage.Close()
}
