package names

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cached wraps a Provider with a per address cache. Placeholders are cached too, so an unknown address is not asked
// again before ttl expires.
type Cached struct {
	p Provider
	c *ttlcache.Cache[string, Domain]
}

// NewCached returns p wrapped with a cache of the given ttl. Close must be called to stop the expiry routine.
func NewCached(p Provider, ttl time.Duration) *Cached {
	c := ttlcache.New[string, Domain](
		ttlcache.WithTTL[string, Domain](ttl),
		ttlcache.WithDisableTouchOnHit[string, Domain](),
	)

	go c.Start()

	return &Cached{p: p, c: c}
}

// Name returns the wrapped provider name.
func (c *Cached) Name() string {
	return c.p.Name()
}

// Resolve answers cached addresses and asks the wrapped provider for the rest.
func (c *Cached) Resolve(ctx context.Context, addrs []string) (map[string]Domain, error) {
	keys := Normalize(addrs)
	out := make(map[string]Domain, len(keys))

	var missing []string

	for _, k := range keys {
		if item := c.c.Get(k); item != nil {
			out[k] = item.Value()

			continue
		}

		missing = append(missing, k)
	}

	if len(missing) == 0 {
		return out, nil
	}

	res, err := c.p.Resolve(ctx, missing)
	if err != nil {
		return out, err
	}

	for _, k := range missing {
		d, ok := res[k]
		if !ok {
			d = Placeholder(c.p.Name(), k)
		}

		c.c.Set(k, d, ttlcache.DefaultTTL)
		out[k] = d
	}

	return out, nil
}

// Forget drops an address from the cache.
func (c *Cached) Forget(addr string) {
	c.c.Delete(Key(addr))
}

// Close stops the expiry routine.
func (c *Cached) Close() {
	c.c.Stop()
}
