// Package names aggregates blockchain name services (ENS, Lens, SpaceID, Unstoppable) into one address keyed view.
//
// Every resolver shares the same shape: the input addresses are normalized and chunked, each chunk is paginated
// against the remote source, records are merged by their identifier and every address without a match is back-filled
// with a placeholder, so the result holds exactly one Domain per normalized address.
package names

import (
	"context"
	"strings"
)

// Provider names.
const (
	ENS         = "ens"
	Lens        = "lens"
	SpaceID     = "spaceid"
	Unstoppable = "unstoppable"
)

// Domain is the resolver neutral record of a name resolved for an address. A placeholder carries only Provider and
// Address.
type Domain struct {
	Provider      string `json:"provider" bson:"provider"`
	Address       string `json:"address" bson:"address"`
	ID            string `json:"id,omitempty" bson:"id,omitempty"`
	Name          string `json:"name,omitempty" bson:"name,omitempty"`
	Owner         string `json:"owner,omitempty" bson:"owner,omitempty"`
	Handle        string `json:"handle,omitempty" bson:"handle,omitempty"`
	Avatar        string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	ReverseRecord string `json:"reverseRecord,omitempty" bson:"reverseRecord,omitempty"`
	Expiry        int64  `json:"expiry,omitempty" bson:"expiry,omitempty"`
}

// Placeholder returns the record used for an address without any match.
func Placeholder(provider, addr string) Domain {
	return Domain{Provider: provider, Address: Key(addr)}
}

// IsPlaceholder reports whether d holds no resolved data.
func (d Domain) IsPlaceholder() bool {
	return d.ID == "" && d.Name == "" && d.Handle == ""
}

// Provider resolves addresses against one name service.
type Provider interface {
	Name() string
	// Resolve returns exactly one Domain per normalized address.
	Resolve(ctx context.Context, addrs []string) (map[string]Domain, error)
}

// Key returns the join key of an address: trimmed and lower-cased.
func Key(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// PageCursor drives pagination: Skip records already read and PageSize records per request.
type PageCursor struct {
	Skip     int
	PageSize int
}

// Next returns the cursor of the following page.
func (c PageCursor) Next() PageCursor {
	return PageCursor{Skip: c.Skip + c.PageSize, PageSize: c.PageSize}
}
