package convstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/salaohub/salon-scheduler/internal/config"
	"github.com/salaohub/salon-scheduler/internal/llm"
)

const (
	// Mantemos apenas as últimas 10 mensagens por conversa
	historyLimit = 10

	historyTTL = 24 * time.Hour
	dialogTTL  = 30 * time.Minute
)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(cfg *config.Config) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}),
	}
}

func historyKey(convID string) string { return "conv:" + convID + ":history" }
func dialogKey(convID string) string  { return "conv:" + convID + ":dialog" }

func (s *RedisStore) History(ctx context.Context, convID string) ([]llm.Message, error) {
	raw, err := s.rdb.LRange(ctx, historyKey(convID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	msgs := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		var m llm.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue // entrada corrompida não derruba a conversa
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *RedisStore) Append(ctx context.Context, convID string, msgs ...llm.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	key := historyKey(convID)

	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -historyLimit, -1)
	pipe.Expire(ctx, key, historyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Dialog(ctx context.Context, convID string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, dialogKey(convID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *RedisStore) SetDialog(ctx context.Context, convID string, state []byte) error {
	return s.rdb.Set(ctx, dialogKey(convID), state, dialogTTL).Err()
}

func (s *RedisStore) ClearDialog(ctx context.Context, convID string) error {
	return s.rdb.Del(ctx, dialogKey(convID)).Err()
}

var _ Store = (*RedisStore)(nil)
