// Package ens resolves addresses to ENS domains through the ENS subgraph, annotated with the primary name read from
// the ENS ReverseRecords contract.
package ens

import (
	"context"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
)

const (
	filtered = `query Domains($addrs: [String!], $first: Int!, $skip: Int!) {
  domains(where: {resolvedAddress_in: $addrs}, first: $first, skip: $skip, orderBy: createdAt) {
    id name labelName owner { id } resolvedAddress { id } registration { expiryDate }
  }
}`
	unfiltered = `query Domains($first: Int!, $skip: Int!) {
  domains(first: $first, skip: $skip, orderBy: createdAt) {
    id name labelName owner { id } resolvedAddress { id } registration { expiryDate }
  }
}`
)

type ref struct {
	ID string `json:"id"`
}

// domain is a domain as returned by the subgraph.
type domain struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	LabelName       string `json:"labelName"`
	Owner           *ref   `json:"owner"`
	ResolvedAddress *ref   `json:"resolvedAddress"`
	Registration    *struct {
		ExpiryDate string `json:"expiryDate"`
	} `json:"registration"`

	address   string // set on placeholders
	ambiguous bool   // more than one domain resolves to the address
}

func (d domain) key() string {
	if d.ResolvedAddress != nil {
		return d.ResolvedAddress.ID
	}

	return d.address
}

// Opts configures an ENS resolver.
type Opts struct {
	URL       string // subgraph endpoint
	HTTP      *httpc.Client
	Reverse   *ReverseRecords // optional
	ChunkSize int
	PageSize  int
}

// ENS is the ENS name service provider.
type ENS struct {
	agg     *names.Aggregator[domain]
	reverse *ReverseRecords
}

// New returns an ENS resolver.
func New(o Opts) *ENS {
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

	return &ENS{
		reverse: o.Reverse,
		agg: &names.Aggregator[domain]{
			Name:        names.ENS,
			Fetch:       fetch,
			ID:          func(d domain) string { return d.ID },
			Key:         domain.key,
			Placeholder: func(addr string) domain { return domain{address: addr} },
			Merge: func(_ string, ds []domain) domain {
				d := ds[0]
				d.ambiguous = true

				return d
			},
			ChunkSize: o.ChunkSize,
			PageSize:  o.PageSize,
		},
	}
}

// Name returns the provider name.
func (e *ENS) Name() string {
	return names.ENS
}

// Resolve returns the ENS domain of every address. When an address resolves more than one domain, the first one is
// kept without its reverse record.
func (e *ENS) Resolve(ctx context.Context, addrs []string) (map[string]names.Domain, error) {
	res := e.agg.Resolve(ctx, addrs)

	var rr map[string]string

	if e.reverse != nil {
		var lookup []string

		for k, d := range res {
			if d.ID != "" && !d.ambiguous {
				lookup = append(lookup, k)
			}
		}

		if len(lookup) > 0 {
			var err error
			if rr, err = e.reverse.Names(ctx, lookup); err != nil {
				log.WithField("provider", names.ENS).WithError(err).Warn("reverse records lookup failed")
			}
		}
	}

	out := make(map[string]names.Domain, len(res))

	for k, d := range res {
		if d.ID == "" {
			out[k] = names.Placeholder(names.ENS, k)

			continue
		}

		out[k] = d.toDomain(k, rr[k])
	}

	return out, nil
}

func (d domain) toDomain(key, reverse string) names.Domain {
	out := names.Domain{
		Provider:      names.ENS,
		Address:       key,
		ID:            d.ID,
		Name:          d.Name,
		ReverseRecord: reverse,
	}

	if d.Owner != nil {
		out.Owner = d.Owner.ID
	}

	if d.Registration != nil {
		if exp, err := strconv.ParseInt(d.Registration.ExpiryDate, 10, 64); err == nil {
			out.Expiry = exp
		}
	}

	return out
}

// Expired reports whether a resolved domain registration has expired at now.
func Expired(d names.Domain, now time.Time) bool {
	return d.Expiry > 0 && time.Unix(d.Expiry, 0).Before(now)
}
