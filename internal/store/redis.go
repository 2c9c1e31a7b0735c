// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
)

// RedisStore persists game documents as JSON in Redis and fans out every
// write over pub/sub, giving networked participants the read/write/subscribe
// channel. The compare-and-swap on Version runs under WATCH so two
// participants racing on the same turn cannot both win.
type RedisStore struct {
	rdb *redis.Client

	// DocTTL bounds how long an abandoned game document lingers. Zero means
	// no expiry.
	DocTTL time.Duration
}

// ConnectRedis builds a RedisStore from environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() (*RedisStore, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb, DocTTL: 24 * time.Hour}, nil
}

// NewRedisStore wraps an existing client, e.g. for tests against miniredis.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func docKey(gameID string) string     { return "unoverse:game:" + gameID }
func docChannel(gameID string) string { return "unoverse:game:" + gameID + ":changes" }

func (s *RedisStore) Read(ctx context.Context, gameID string) (*game.GameState, error) {
	data, err := s.rdb.Get(ctx, docKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read game %s: %w", gameID, err)
	}
	var st game.GameState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", gameID, err)
	}
	return &st, nil
}

func (s *RedisStore) Write(ctx context.Context, st *game.GameState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", st.ID, err)
	}
	key := docKey(st.ID)

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		expected := int64(1)
		switch {
		case err == redis.Nil:
			// first write creates the document
		case err != nil:
			return err
		default:
			var stored game.GameState
			if err := json.Unmarshal(cur, &stored); err != nil {
				return fmt.Errorf("decode stored game %s: %w", st.ID, err)
			}
			expected = stored.Version + 1
		}
		if st.Version != expected {
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.DocTTL)
			pipe.Publish(ctx, docChannel(st.ID), data)
			return nil
		})
		return err
	}, key)
	if err == redis.TxFailedErr {
		// another participant wrote between our read and the commit
		return ErrVersionConflict
	}
	return err
}

func (s *RedisStore) Subscribe(ctx context.Context, gameID string, onChange func(*game.GameState)) (func(), error) {
	pubsub := s.rdb.Subscribe(ctx, docChannel(gameID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe game %s: %w", gameID, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var st game.GameState
			if err := json.Unmarshal([]byte(msg.Payload), &st); err != nil {
				continue
			}
			onChange(&st)
		}
	}()

	return func() { pubsub.Close() }, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
