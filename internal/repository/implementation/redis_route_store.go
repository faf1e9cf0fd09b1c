// FILE: internal/repository/implementation/redis_route_store.go
package implementation

import (
	"context"
	"errors"
	"time"

	"voiceform-be/internal/repository/contract"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const routeKeyPrefix = "form_route:"

// RedisRouteStore is the cross-instance routing table. Every instance writes
// its own sessions under form_route:<id> and reads other instances' entries
// when it needs to forward an update. Lookups are cached locally for a few
// seconds; session ownership does not move, so a short cache cannot go stale
// in a harmful way (a deleted route just means one extra failed fallback).
type RedisRouteStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	local *gocache.Cache
}

func NewRedisRouteStore(rdb *redis.Client, ttl time.Duration) *RedisRouteStore {
	return &RedisRouteStore{
		rdb:   rdb,
		ttl:   ttl,
		local: gocache.New(30*time.Second, 5*time.Minute),
	}
}

func (r *RedisRouteStore) Register(ctx context.Context, formId, instanceAddr string) error {
	if err := r.rdb.Set(ctx, routeKeyPrefix+formId, instanceAddr, r.ttl).Err(); err != nil {
		return err
	}
	r.local.Set(formId, instanceAddr, gocache.DefaultExpiration)
	return nil
}

func (r *RedisRouteStore) Locate(ctx context.Context, formId string) (string, error) {
	if x, found := r.local.Get(formId); found {
		return x.(string), nil
	}

	addr, err := r.rdb.Get(ctx, routeKeyPrefix+formId).Result()
	if errors.Is(err, redis.Nil) {
		return "", contract.ErrRouteNotFound
	}
	if err != nil {
		return "", err
	}

	r.local.Set(formId, addr, gocache.DefaultExpiration)
	return addr, nil
}

func (r *RedisRouteStore) Forget(ctx context.Context, formId string) error {
	r.local.Delete(formId)
	return r.rdb.Del(ctx, routeKeyPrefix+formId).Err()
}
