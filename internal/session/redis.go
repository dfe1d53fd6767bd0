package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps the storage in Redis, so console instances on several
// machines share one session. Writes are announced on a pub/sub channel.
type RedisStore struct {
	client *redis.Client
	prefix string
	origin string
	logger *zap.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	subs   []*redis.PubSub
}

// NewRedisStore wraps an existing client. Keys are stored as prefix:key.
func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, prefix: prefix, origin: newOrigin(), logger: logger}
}

// Origin identifies writes made through this handle.
func (s *RedisStore) Origin() string {
	return s.origin
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) channel() string {
	return s.prefix + ":changes"
}

// Get returns the stored value or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key and announces the change. Write and
// announcement run in one MULTI/EXEC, so a failed call leaves nothing behind.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.write(ctx, key, true, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, s.key(key), value, 0)
	})
}

// Clear removes key and announces the change.
func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.write(ctx, key, false, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, s.key(key))
	})
}

func (s *RedisStore) write(ctx context.Context, key string, present bool, apply func(redis.Pipeliner)) error {
	payload, err := json.Marshal(wireChange{Origin: s.origin, Key: key, Present: present})
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		apply(pipe)
		pipe.Publish(ctx, s.channel(), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Watch subscribes to the change channel. The subscription is confirmed
// before Watch returns so no later write is missed.
func (s *RedisStore) Watch(ctx context.Context, fn ChangeFunc) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	pubsub := s.client.Subscribe(ctx, s.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", s.channel(), err)
	}

	s.mu.Lock()
	s.subs = append(s.subs, pubsub)
	s.mu.Unlock()

	messages := pubsub.Channel()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change wireChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					s.logger.Warn("ignoring malformed storage change", zap.Error(err))
					continue
				}
				if change.Origin == s.origin {
					continue
				}
				fn(Change{Key: change.Key, Present: change.Present, Origin: change.Origin})
			}
		}
	}()
	return nil
}

// Close ends every subscription. The client is owned by the caller.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	s.wg.Wait()
	return nil
}
