package names

import (
	"context"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/metrics"
)

// Default sizes.
const (
	DefaultChunkSize = 50
	DefaultPageSize  = 1000
)

// FetchFunc returns one page of records for the chunk of addresses. An empty chunk asks for an unfiltered page.
type FetchFunc[R any] func(ctx context.Context, chunk []string, cur PageCursor) ([]R, error)

// Aggregator is the chunk, paginate, merge and back-fill pipeline shared by every name service. Fetch, ID, Key and
// Placeholder are required; Merge is the multi-match policy and defaults to keeping the first record.
type Aggregator[R any] struct {
	Name        string // provider name used in logs and metrics
	Fetch       FetchFunc[R]
	ID          func(R) string
	Key         func(R) string
	Placeholder func(addr string) R
	Merge       func(key string, recs []R) R
	ChunkSize   int
	PageSize    int
}

// Normalize trims and lower-cases addrs, drops empty ones and removes duplicates keeping the first seen order.
func Normalize(addrs []string) []string {
	return lo.Uniq(lo.FilterMap(addrs, func(a string, _ int) (string, bool) {
		k := Key(a)

		return k, k != ""
	}))
}

// Resolve returns one record per normalized address. Chunks and pages are requested one after another. A failed page
// halts pagination for the whole call: records read so far are kept and the remaining addresses are back-filled.
func (a *Aggregator[R]) Resolve(ctx context.Context, addrs []string) map[string]R {
	keys := Normalize(addrs)
	out := make(map[string]R, len(keys))

	if len(keys) == 0 {
		return out
	}

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	seen := make(map[string]bool)
	groups := make(map[string][]R)

	for _, chunk := range lo.Chunk(keys, a.chunkSize()) {
		recs, ok := a.paginate(ctx, chunk, seen)
		for _, r := range recs {
			if k := Key(a.Key(r)); wanted[k] {
				groups[k] = append(groups[k], r)
			}
		}

		if !ok {
			break
		}
	}

	found := 0

	for _, k := range keys {
		recs := groups[k]

		switch {
		case len(recs) == 0:
			out[k] = a.Placeholder(k)
		case len(recs) > 1 && a.Merge != nil:
			out[k] = a.Merge(k, recs)
			found++
		default:
			out[k] = recs[0]
			found++
		}
	}

	metrics.Resolved.WithLabelValues(a.Name, "found").Add(float64(found))
	metrics.Resolved.WithLabelValues(a.Name, "placeholder").Add(float64(len(keys) - found))

	log.WithFields(log.Fields{"provider": a.Name, "addresses": len(keys), "found": found}).Debug("names resolved")

	return out
}

// List pages through the unfiltered source until a short page and returns the de-duplicated records.
func (a *Aggregator[R]) List(ctx context.Context) []R {
	recs, _ := a.paginate(ctx, nil, make(map[string]bool))

	return recs
}

// paginate requests pages for chunk until one is short. Records whose id is in seen are dropped and new ids are
// added to it. The returned flag is false when a page failed.
func (a *Aggregator[R]) paginate(ctx context.Context, chunk []string, seen map[string]bool) ([]R, bool) {
	var out []R

	cur := PageCursor{PageSize: a.pageSize()}

	for {
		if ctx.Err() != nil {
			return out, false
		}

		metrics.PageFetches.WithLabelValues(a.Name).Inc()

		page, err := a.Fetch(ctx, chunk, cur)
		if err != nil {
			metrics.PageFailures.WithLabelValues(a.Name).Inc()
			log.WithFields(log.Fields{"provider": a.Name, "skip": cur.Skip}).WithError(err).Warn("page fetch failed")

			return out, false
		}

		fresh := 0

		for _, r := range page {
			id := a.ID(r)
			if seen[id] {
				continue
			}

			seen[id] = true
			fresh++

			out = append(out, r)
		}

		// a full page with nothing new means the source ignores the cursor
		if len(page) < cur.PageSize || fresh == 0 {
			return out, true
		}

		cur = cur.Next()
	}
}

func (a *Aggregator[R]) chunkSize() int {
	if a.ChunkSize > 0 {
		return a.ChunkSize
	}

	return DefaultChunkSize
}

func (a *Aggregator[R]) pageSize() int {
	if a.PageSize > 0 {
		return a.PageSize
	}

	return DefaultPageSize
}
