package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"school_inspection_bot/internal/domain/collection"
)

const defaultKeyPrefix = "school_inspection:draft"

// RedisDraftStore keeps sessions in Redis with the idle timeout as TTL, so
// every Save pushes expiry forward and drafts survive bot restarts.
type RedisDraftStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDraftStore wraps an existing client. ttl <= 0 stores keys without expiry.
func NewRedisDraftStore(client *redis.Client, prefix string, ttl time.Duration) *RedisDraftStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisDraftStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisDraftStore) key(submitterID int64) string {
	return s.prefix + ":" + strconv.FormatInt(submitterID, 10)
}

func (s *RedisDraftStore) Get(ctx context.Context, submitterID int64) (*collection.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	val, err := s.client.Get(ctx, s.key(submitterID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, collection.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading draft for %d: %w", submitterID, err)
	}

	var sess collection.Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("error decoding draft for %d: %w", submitterID, err)
	}
	return &sess, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, sess *collection.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("error encoding draft for %d: %w", sess.SubmitterID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, s.key(sess.SubmitterID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("error writing draft for %d: %w", sess.SubmitterID, err)
	}
	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, submitterID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, s.key(submitterID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("error deleting draft for %d: %w", submitterID, err)
	}
	return nil
}

// PurgeIdle is a no-op: Redis expires idle drafts through key TTL.
func (s *RedisDraftStore) PurgeIdle(ctx context.Context) (int, error) {
	return 0, nil
}
