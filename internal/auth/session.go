package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sigainv/siga-backend/internal/rbac"
)

// ErrSessionNotFound is returned when a token does not resolve to a live
// session.
var ErrSessionNotFound = errors.New("session not found")

// Session is the authenticated principal carried on every request.
type Session struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        rbac.Role `json:"role"`
	OfficeID    int64     `json:"office_id"`
	OfficeName  string    `json:"office_name"`
}

// Store keeps sessions in redis under an opaque token.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Create persists the session and returns its token.
func (s *Store) Create(ctx context.Context, sess Session) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// Get resolves a token and refreshes its expiry.
func (s *Store) Get(ctx context.Context, token string) (Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("loading session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("decoding session: %w", err)
	}
	s.client.Expire(ctx, sessionKey(token), s.ttl)
	return sess, nil
}

// Delete removes a session. Deleting a missing token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
