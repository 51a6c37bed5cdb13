// Package msg defines the interface for different message brokers.
package msg

import (
	"sync"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
)

// Actions to be applied to the addresses of a resolve request.
const (
	RESOLVE = 0
	FORGET  = 1
)

// ResolveReq defines the message that the api service publishes to the resolver to ask to resolve or forget
// addresses.
type ResolveReq struct {
	Provider string   `json:"provider"`
	Addrs    []string `json:"addrs"`
	Act      int      `json:"act"` // action to be applied
}

// Valid reports whether the request targets provider with a known action and some address.
func (r ResolveReq) Valid(provider string) bool {
	return r.Provider == provider && len(r.Addrs) > 0 && (r.Act == RESOLVE || r.Act == FORGET)
}

// MsgBroker is implemented by the message brokers connecting the api and resolver services. The consumer methods take
// a locked mutex: a consumed message is only acknowledged after the managing routine unlocks it.
type MsgBroker interface {
	Setup(interface{}) error
	Close() error

	// methods for the api service
	SendRequest(provider string, r ResolveReq) error
	GetEvents(provider string, mut *sync.Mutex) (<-chan names.Domain, <-chan error, error)

	// methods for the resolver service
	GetReqs(provider string, mut *sync.Mutex) (<-chan ResolveReq, <-chan error, error)
	SendResolved(provider string, recs []names.Domain) error
}
