package store

import (
	"time"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
)

// Pending contains the addresses waiting to be resolved for a provider and some round statistics.
type Pending struct {
	Addrs    []string  `json:"addrs" bson:"addrs"`
	Rounds   uint64    `json:"rounds" bson:"rounds"`
	Resolved uint64    `json:"resolved" bson:"resolved"`
	Updated  time.Time `json:"updated" bson:"updated"`
}

// Fresh filters out the placeholders of recs. Placeholders are never persisted since a later round may resolve them.
func Fresh(recs []names.Domain) []names.Domain {
	out := make([]names.Domain, 0, len(recs))

	for _, r := range recs {
		if !r.IsPlaceholder() {
			out = append(out, r)
		}
	}

	return out
}
