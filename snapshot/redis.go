package snapshot

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

var _ Store = &RedisStore{}

// RedisStore keeps snapshot blobs in redis so a play-mode snapshot survives
// an editor process restart.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return eris.Wrap(r.client.Set(ctx, key, value, 0).Err(), "")
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	bz, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if eris.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}

func (r *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return count > 0, nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return eris.Wrap(r.client.Del(ctx, key).Err(), "")
}
