// Package unstoppable resolves addresses to Unstoppable Domains through the dot-crypto registry subgraph.
package unstoppable

import (
	"context"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
)

const (
	filtered = `query Domains($addrs: [String!], $first: Int!, $skip: Int!) {
  domains(where: {owner_in: $addrs}, first: $first, skip: $skip) { id name owner { id } resolver { id } }
}`
	unfiltered = `query Domains($first: Int!, $skip: Int!) {
  domains(first: $first, skip: $skip) { id name owner { id } resolver { id } }
}`
)

type domain struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		ID string `json:"id"`
	} `json:"owner"`
}

// Opts configures an Unstoppable resolver.
type Opts struct {
	URL       string
	HTTP      *httpc.Client
	ChunkSize int
	PageSize  int
}

// Unstoppable is the Unstoppable Domains provider.
type Unstoppable struct {
	agg *names.Aggregator[domain]
}

// New returns an Unstoppable resolver.
func New(o Opts) *Unstoppable {
	fetch := func(ctx context.Context, chunk []string, cur names.PageCursor) ([]domain, error) {
		var res struct {
			Domains []domain `json:"domains"`
		}

		vars := map[string]interface{}{"first": cur.PageSize, "skip": cur.Skip}
		q := unfiltered

		if len(chunk) > 0 {
			vars["addrs"] = chunk
			q = filtered
		}

		if err := o.HTTP.GraphQL(ctx, o.URL, q, vars, &res); err != nil {
			return nil, err
		}

		return res.Domains, nil
	}

	return &Unstoppable{agg: &names.Aggregator[domain]{
		Name:  names.Unstoppable,
		Fetch: fetch,
		ID:    func(d domain) string { return d.ID },
		Key:   func(d domain) string { return d.Owner.ID },
		Placeholder: func(addr string) domain {
			var d domain
			d.Owner.ID = addr

			return d
		},
		ChunkSize: o.ChunkSize,
		PageSize:  o.PageSize,
	}}
}

// Name returns the provider name.
func (u *Unstoppable) Name() string {
	return names.Unstoppable
}

// Resolve returns the first domain owned by every address.
func (u *Unstoppable) Resolve(ctx context.Context, addrs []string) (map[string]names.Domain, error) {
	return convert(u.agg.Resolve(ctx, addrs)), nil
}

// Recent lists the registry domains, paging until the source is exhausted.
func (u *Unstoppable) Recent(ctx context.Context) []names.Domain {
	ds := u.agg.List(ctx)
	out := make([]names.Domain, 0, len(ds))

	for _, d := range ds {
		out = append(out, toDomain(names.Key(d.Owner.ID), d))
	}

	return out
}

func convert(res map[string]domain) map[string]names.Domain {
	out := make(map[string]names.Domain, len(res))

	for k, d := range res {
		if d.ID == "" {
			out[k] = names.Placeholder(names.Unstoppable, k)

			continue
		}

		out[k] = toDomain(k, d)
	}

	return out
}

func toDomain(k string, d domain) names.Domain {
	return names.Domain{
		Provider: names.Unstoppable,
		Address:  k,
		ID:       d.ID,
		Name:     d.Name,
		Owner:    names.Key(d.Owner.ID),
	}
}
