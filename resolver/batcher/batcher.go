// Package batcher holds the addresses waiting to be resolved for a name-service provider.
package batcher

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
)

// Status possible values, control whether a Batcher is working or is/has to stop
const (
	WORK int = 0
	STOP int = 1
)

// Batcher contains the pending addresses of a provider in arrival order and the round statistics.
type Batcher struct {
	l        sync.Mutex // l guards every field
	status   int
	pending  []string
	set      map[string]struct{}
	rounds   uint64
	resolved uint64
	updated  time.Time
}

// New loads the pending set of provider from db and returns a working Batcher. A provider without a stored set
// starts empty.
func New(ctx context.Context, provider string, db store.DB) (*Batcher, error) {
	b := &Batcher{set: make(map[string]struct{})}

	p, err := db.LoadPending(ctx, provider)

	switch {
	case errors.Is(err, store.ErrDataNotFound):
	case err != nil:
		return nil, err
	default:
		b.FromStore(p)
	}

	log.WithField("provider", provider).WithField("pending", len(b.pending)).Info("batcher.New")

	return b, nil
}

// Add queues the addresses not queued yet and returns how many were added.
func (b *Batcher) Add(addrs ...string) (n int) {
	b.l.Lock()
	defer b.l.Unlock()

	for _, a := range names.Normalize(addrs) {
		if _, ok := b.set[a]; !ok {
			b.set[a] = struct{}{}
			b.pending = append(b.pending, a)
			n++
		}
	}

	return
}

// Del removes the addresses from the queue and returns how many were queued.
func (b *Batcher) Del(addrs ...string) (n int) {
	b.l.Lock()
	defer b.l.Unlock()

	for _, a := range names.Normalize(addrs) {
		if _, ok := b.set[a]; ok {
			delete(b.set, a)
			n++
		}
	}

	if n > 0 {
		kept := b.pending[:0]

		for _, a := range b.pending {
			if _, ok := b.set[a]; ok {
				kept = append(kept, a)
			}
		}

		b.pending = kept
	}

	return
}

// Drain removes and returns up to max addresses in arrival order, all of them when max is not positive.
func (b *Batcher) Drain(max int) []string {
	b.l.Lock()
	defer b.l.Unlock()

	if max <= 0 || max > len(b.pending) {
		max = len(b.pending)
	}

	out := append([]string(nil), b.pending[:max]...)
	b.pending = append(b.pending[:0], b.pending[max:]...)

	for _, a := range out {
		delete(b.set, a)
	}

	return out
}

// Len returns the number of pending addresses.
func (b *Batcher) Len() int {
	b.l.Lock()
	defer b.l.Unlock()

	return len(b.pending)
}

// Done records a finished round that resolved n addresses.
func (b *Batcher) Done(n int) {
	b.l.Lock()
	defer b.l.Unlock()

	b.rounds++
	b.resolved += uint64(n)
	b.updated = time.Now().UTC()
}

// ToStore returns a store.Pending struct to be saved to store
func (b *Batcher) ToStore() store.Pending {
	b.l.Lock()
	defer b.l.Unlock()

	return store.Pending{
		Addrs:    append([]string{}, b.pending...),
		Rounds:   b.rounds,
		Resolved: b.resolved,
		Updated:  b.updated,
	}
}

// FromStore loads the Batcher with the values read from store
func (b *Batcher) FromStore(p store.Pending) {
	b.l.Lock()
	b.rounds = p.Rounds
	b.resolved = p.Resolved
	b.updated = p.Updated
	b.pending = nil
	b.set = make(map[string]struct{}, len(p.Addrs))
	b.l.Unlock()

	b.Add(p.Addrs...)
}

// Stop sets status to STOP
func (b *Batcher) Stop() {
	b.l.Lock()
	b.status = STOP
	b.l.Unlock()
}

// Start sets status to WORK
func (b *Batcher) Start() {
	b.l.Lock()
	b.status = WORK
	b.l.Unlock()
}

// Status returns the current Batcher status
func (b *Batcher) Status() int {
	b.l.Lock()
	defer b.l.Unlock()

	return b.status
}
