// Package lens resolves addresses to Lens profiles through the Lens GraphQL API.
package lens

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
)

// PageSize is the largest page the Lens API serves.
const PageSize = 50

const query = `query Profiles($request: ProfileQueryRequest!) {
  profiles(request: $request) {
    items { id name handle ownedBy picture { ... on MediaSet { original { url } } } }
    pageInfo { next }
  }
}`

// profile is a Lens profile as returned by the API.
type profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Handle  string `json:"handle"`
	OwnedBy string `json:"ownedBy"`
	Picture *struct {
		Original struct {
			URL string `json:"url"`
		} `json:"original"`
	} `json:"picture"`
}

// request is the ProfileQueryRequest input.
type request struct {
	OwnedBy []string `json:"ownedBy,omitempty"`
	Limit   int      `json:"limit"`
	Cursor  string   `json:"cursor,omitempty"`
}

// Cursor returns the Lens offset cursor for a page, empty for the first one.
func Cursor(cur names.PageCursor) string {
	if cur.Skip == 0 {
		return ""
	}

	b, _ := json.Marshal(struct {
		Offset int `json:"offset"`
	}{cur.Skip})

	return string(b)
}

// Opts configures a Lens resolver.
type Opts struct {
	URL       string
	HTTP      *httpc.Client
	ChunkSize int
}

// Lens is the Lens name service provider.
type Lens struct {
	agg *names.Aggregator[profile]
}

// New returns a Lens resolver.
func New(o Opts) *Lens {
	fetch := func(ctx context.Context, chunk []string, cur names.PageCursor) ([]profile, error) {
		var res struct {
			Profiles struct {
				Items []profile `json:"items"`
			} `json:"profiles"`
		}

		req := request{OwnedBy: chunk, Limit: cur.PageSize, Cursor: Cursor(cur)}
		if err := o.HTTP.GraphQL(ctx, o.URL, query, map[string]interface{}{"request": req}, &res); err != nil {
			return nil, err
		}

		return res.Profiles.Items, nil
	}

	return &Lens{agg: &names.Aggregator[profile]{
		Name:        names.Lens,
		Fetch:       fetch,
		ID:          func(p profile) string { return p.ID },
		Key:         func(p profile) string { return p.OwnedBy },
		Placeholder: func(addr string) profile { return profile{OwnedBy: addr} },
		ChunkSize:   o.ChunkSize,
		PageSize:    PageSize,
	}}
}

// Name returns the provider name.
func (l *Lens) Name() string {
	return names.Lens
}

// Resolve returns the first Lens profile owned by every address.
func (l *Lens) Resolve(ctx context.Context, addrs []string) (map[string]names.Domain, error) {
	res := l.agg.Resolve(ctx, addrs)
	out := make(map[string]names.Domain, len(res))

	for k, p := range res {
		if p.ID == "" {
			out[k] = names.Placeholder(names.Lens, k)

			continue
		}

		d := names.Domain{
			Provider: names.Lens,
			Address:  k,
			ID:       p.ID,
			Name:     p.Name,
			Owner:    strings.ToLower(p.OwnedBy),
			Handle:   p.Handle,
		}
		if p.Picture != nil {
			d.Avatar = p.Picture.Original.URL
		}

		out[k] = d
	}

	return out, nil
}
