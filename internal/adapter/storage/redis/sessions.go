// Package redis provides the Redis-backed session store & event broadcaster.
package redis

import (
	"context"
	"encoding/json"

	"github.com/gofiber/storage/redis/v3"
	"github.com/karystudio/podpool/internal/core/domain"
	"github.com/karystudio/podpool/internal/core/port"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "session:"

type sessionStore struct {
	storage *redis.Storage
	log     *zap.Logger
}

// NewSessionStore creates a session store reading the sessions written by the
// auth subsystem. This package never issues or refreshes sessions.
func NewSessionStore(storage *redis.Storage, log *zap.Logger) port.SessionStore {
	return &sessionStore{
		storage: storage,
		log:     log,
	}
}

func (s *sessionStore) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	raw, err := s.storage.GetWithContext(ctx, sessionKeyPrefix+token)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.ErrUnauthorized
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		s.log.Warn("Failed to decode session payload", zap.Error(err))
		return nil, domain.ErrInvalidSession
	}
	session.Token = token

	return &session, nil
}
