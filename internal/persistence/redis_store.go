package persistence

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore is a SessionStore backed by Redis.
// It uses a simple key structure:
//
//	<prefix>sess:<id>          => gob-encoded session payload
//	<prefix>idx:all            => SET of all session IDs
//	<prefix>idx:step:<n>       => SET of session IDs currently on step n
//
// The indexes are best-effort; they are always updated on Save/Update,
// and ListSessions uses them for step filtering.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a RedisSessionStore.
// prefix is optional but recommended (e.g. "checkout:").
func NewRedisSessionStore(client *redis.Client, prefix string) *RedisSessionStore {
	if prefix == "" {
		prefix = "checkout:"
	}
	return &RedisSessionStore{client: client, prefix: prefix}
}

func (s *RedisSessionStore) keySession(id string) string {
	return s.prefix + "sess:" + id
}

func (s *RedisSessionStore) keyAll() string {
	return s.prefix + "idx:all"
}

func (s *RedisSessionStore) keyStep(step int) string {
	return s.prefix + "idx:step:" + strconv.Itoa(step)
}

func (s *RedisSessionStore) SaveSession(rec *SessionRecord) error {
	return s.write(rec, false)
}

func (s *RedisSessionStore) UpdateSession(rec *SessionRecord) error {
	return s.write(rec, true)
}

func (s *RedisSessionStore) write(rec *SessionRecord, mustExist bool) error {
	ctx := context.Background()

	var prevStep int
	if existing, err := s.GetSession(rec.ID); err == nil {
		prevStep = existing.State.Step
	} else if mustExist {
		return err
	}

	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keySession(rec.ID), data, 0)
	pipe.SAdd(ctx, s.keyAll(), rec.ID)
	if prevStep > 0 && prevStep != rec.State.Step {
		pipe.SRem(ctx, s.keyStep(prevStep), rec.ID)
	}
	pipe.SAdd(ctx, s.keyStep(rec.State.Step), rec.ID)

	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSessionStore) GetSession(id string) (*SessionRecord, error) {
	ctx := context.Background()

	data, err := s.client.Get(ctx, s.keySession(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return DecodeRecord(data)
}

func (s *RedisSessionStore) ListSessions(filter SessionFilter) ([]*SessionRecord, error) {
	ctx := context.Background()

	indexKey := s.keyAll()
	if filter.Step > 0 {
		indexKey = s.keyStep(filter.Step)
	}

	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	var result []*SessionRecord
	for _, id := range ids {
		rec, err := s.GetSession(id)
		if errors.Is(err, ErrSessionNotFound) {
			// Index entry outlived the session key; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		if !matches(rec, filter) {
			continue
		}
		result = append(result, rec)
	}
	return result, nil
}
