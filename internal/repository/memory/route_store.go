package memory

import (
	"context"
	"time"

	"voiceform-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// RouteStore is the single-instance routing table. Entries expire on their
// own so a crashed session cannot leave a stale route behind.
type RouteStore struct {
	cache *cache.Cache
}

func NewRouteStore(ttl time.Duration) *RouteStore {
	// Purge expired routes every 10 minutes; lookups already skip expired
	// entries before then.
	c := cache.New(ttl, 10*time.Minute)
	return &RouteStore{cache: c}
}

func (r *RouteStore) Register(ctx context.Context, formId, instanceAddr string) error {
	r.cache.Set(formId, instanceAddr, cache.DefaultExpiration)
	return nil
}

func (r *RouteStore) Locate(ctx context.Context, formId string) (string, error) {
	if x, found := r.cache.Get(formId); found {
		return x.(string), nil
	}
	return "", contract.ErrRouteNotFound
}

func (r *RouteStore) Forget(ctx context.Context, formId string) error {
	r.cache.Delete(formId)
	return nil
}
