package redis

import (
	"context"
	"strings"
	"time"

	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "vc:"

// GET-compare-DEL in one round trip, so concurrent verification attempts
// consume a code at most once.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCodeRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCodeRepo(client *redis.Client, ttl time.Duration) *RedisCodeRepo {
	return &RedisCodeRepo{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCodeRepo) Put(ctx context.Context, email, code string) error {
	if err := r.client.Set(ctx, key(email), code, r.ttl).Err(); err != nil {
		return customErrors.WrapStoreUnavailable(err, "Put")
	}
	return nil
}

func (r *RedisCodeRepo) Get(ctx context.Context, email string) (string, error) {
	val, err := r.client.Get(ctx, key(email)).Result()
	switch {
	case err == redis.Nil:
		return "", customErrors.ErrInvalidCode
	case err != nil:
		return "", customErrors.WrapStoreUnavailable(err, "Get")
	}
	return val, nil
}

func (r *RedisCodeRepo) Consume(ctx context.Context, email, code string) error {
	n, err := consumeScript.Run(ctx, r.client, []string{key(email)}, code).Int64()
	if err != nil {
		return customErrors.WrapStoreUnavailable(err, "Consume")
	}
	if n == 0 {
		return customErrors.ErrInvalidCode
	}
	return nil
}

func (r *RedisCodeRepo) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, key(email)).Err(); err != nil {
		return customErrors.WrapStoreUnavailable(err, "Delete")
	}
	return nil
}

func key(email string) string {
	return keyPrefix + strings.ToLower(email)
}
