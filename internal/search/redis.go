package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/socialmock/apiserver/config"
)

const redisPingTimeout = 5 * time.Second

// RedisIndex stores each record as JSON under <index>:<objectID> and keeps
// the ids in a sorted set <index>:by-updated scored by updatedAt.
type RedisIndex struct {
	client *redis.Client
	name   string
}

// NewRedisIndex connects to Redis and checks the connection.
func NewRedisIndex(ctx context.Context, cfg config.RedisConfig, name string) (*RedisIndex, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisIndex{client: client, name: name}, nil
}

func (r *RedisIndex) Save(ctx context.Context, record PostRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.recordKey(record.ObjectID), data, 0)
	pipe.ZAdd(ctx, r.updatedKey(), redis.Z{Score: float64(record.UpdatedAt), Member: record.ObjectID})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisIndex) Delete(ctx context.Context, objectID string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.recordKey(objectID))
	pipe.ZRem(ctx, r.updatedKey(), objectID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisIndex) Close() error {
	return r.client.Close()
}

func (r *RedisIndex) recordKey(objectID string) string {
	return r.name + ":" + objectID
}

func (r *RedisIndex) updatedKey() string {
	return r.name + ":by-updated"
}
