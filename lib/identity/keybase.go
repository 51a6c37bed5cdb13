// Package identity looks up validator operator pictures from their keybase identity.
package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
)

// DefaultURL is the keybase public API.
const DefaultURL = "https://keybase.io/_/api/1.0"

// lookup is the reply of user/lookup.json.
type lookup struct {
	Them []struct {
		Pictures *struct {
			Primary struct {
				URL string `json:"url"`
			} `json:"primary"`
		} `json:"pictures"`
	} `json:"them"`
}

// Opts configures a Keybase client.
type Opts struct {
	URL   string
	HTTP  *httpc.Client
	TTL   time.Duration
	Limit int // concurrent lookups in Preload, 0 means no limit
}

// Keybase resolves identities to picture urls.
type Keybase struct {
	url   string
	http  *httpc.Client
	limit int
	cache *ttlcache.Cache[string, string]
}

// NewKeybase returns a Keybase client. Close must be called to stop the cache expiry routine.
func NewKeybase(o Opts) *Keybase {
	if o.URL == "" {
		o.URL = DefaultURL
	}

	if o.TTL <= 0 {
		o.TTL = time.Hour
	}

	c := ttlcache.New[string, string](ttlcache.WithTTL[string, string](o.TTL))
	go c.Start()

	return &Keybase{url: strings.TrimRight(o.URL, "/"), http: o.HTTP, limit: o.Limit, cache: c}
}

// Picture returns the primary picture of identity, or "" when it has none or the lookup fails.
func (k *Keybase) Picture(ctx context.Context, identity string) string {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ""
	}

	if item := k.cache.Get(identity); item != nil {
		return item.Value()
	}

	var res lookup

	err := k.http.Get(ctx, k.url+"/user/lookup.json", map[string]string{
		"key_suffix": identity,
		"fields":     "pictures",
	}, &res)
	if err != nil {
		log.WithField("identity", identity).WithError(err).Debug("keybase lookup failed")

		return ""
	}

	var url string
	if len(res.Them) > 0 && res.Them[0].Pictures != nil {
		url = res.Them[0].Pictures.Primary.URL
	}

	k.cache.Set(identity, url, ttlcache.DefaultTTL)

	return url
}

// Preload looks up every identity and returns the pictures found. Lookups run concurrently, all at once or at most
// Limit at a time, and complete in any order.
func (k *Keybase) Preload(ctx context.Context, identities []string) map[string]string {
	var mu sync.Mutex

	out := make(map[string]string, len(identities))

	g, ctx := errgroup.WithContext(ctx)
	if k.limit > 0 {
		g.SetLimit(k.limit)
	}

	for _, id := range identities {
		id := id

		g.Go(func() error {
			if url := k.Picture(ctx, id); url != "" {
				mu.Lock()
				out[id] = url
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	return out
}

// Close stops the cache expiry routine.
func (k *Keybase) Close() {
	k.cache.Stop()
}
