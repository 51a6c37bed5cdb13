// Package resolver implements the name resolver microservice. The resolver resolves the addresses requested through
// the message broker against the name-service providers in batches, saves the records found and sends an event for
// every address resolved.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/resolver/batcher"
)

// ErrStopped is returned by a round interrupted by Stop. Its addresses are queued again.
var ErrStopped = errors.New("resolver stopped")

// Defaults for the batch size and the wait when there is nothing to resolve.
const (
	DefaultMaxBatch = 500
	DefaultInterval = 5 * time.Second
)

// Resolver implements a resolver service.
type Resolver struct {
	dbtype   string
	db       store.DB
	mb       msg.MsgBroker
	ns       *names.Service
	bat      map[string]*batcher.Batcher // batchers by provider
	maxBatch int
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// New instantiates a new resolver service for every provider of ns.
func New(dbtype string, db store.DB, mb msg.MsgBroker, ns *names.Service, maxBatch int, interval time.Duration) *Resolver {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}

	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Resolver{
		dbtype:   dbtype,
		db:       db,
		mb:       mb,
		ns:       ns,
		bat:      make(map[string]*batcher.Batcher),
		maxBatch: maxBatch,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Run starts a go routine for each provider available. Each provider has a Batcher (see package resolver/batcher)
// holding the addresses waiting to be resolved, loaded from the database. The resolver consumes resolve requests to
// queue new addresses. In case of graceful termination, the resolver waits for the rounds in progress to finish and
// saves the pending addresses. The returned channel reports when every provider routine is done.
func (r *Resolver) Run() chan string {
	ret := make(chan string, 1)

	providers := r.ns.Names()
	// channel to wait for provider routines
	w := make(chan string, len(providers))

	started := 0

	for _, provider := range providers {
		l := log.WithField("provider", provider)

		b, err := batcher.New(r.ctx, provider, r.db)
		if err != nil {
			l.WithError(err).Error("Cannot load pending addresses from DB")

			continue
		}

		r.bat[provider] = b
		// listen for resolve requests, requests pending in the broker queues are queued before the first round
		if err = r.ManageRequests(provider); err != nil {
			l.WithError(err).Error("Cannot consume resolve requests from broker")

			continue
		}

		r.ResolveProvider(provider, w)

		started++
	}
	// routine to wait for all providers to complete
	go func() {
		for i := 1; i <= started; i++ {
			log.Infof("Run, channel %d/%d returned: %s", i, started, <-w)
		}

		ret <- "Done!"
	}()

	return ret
}

// Stop sends termination signals to all provider routines and aborts the lookups in flight.
func (r *Resolver) Stop() {
	for _, b := range r.bat {
		b.Stop()
	}

	r.cancel()
}

// wait pauses for the resolver interval, returning early when the resolver is stopped.
func (r *Resolver) wait() {
	t := time.NewTimer(r.interval)
	defer t.Stop()

	select {
	case <-r.ctx.Done():
	case <-t.C:
	}
}

// ResolveProvider starts the routine resolving the pending addresses of provider in rounds of at most maxBatch
// addresses. When the routine ends, it reports via the 'ret' channel given so the calling routine can control graceful
// termination. When there is nothing pending the routine waits for the resolver interval.
func (r *Resolver) ResolveProvider(provider string, ret chan string) {
	b := r.bat[provider]
	l := log.WithField("provider", provider)

	l.WithField("pending", b.Len()).Info("Resolving...")

	go func() {
		var err error

		defer func() {
			// save pending addresses to DB
			errSave := r.db.SavePending(context.Background(), provider, b.ToStore())
			ret <- fmt.Sprintf("[%s] Done! err:%v err2:%v", provider, err, errSave)
		}()

		for b.Status() == batcher.WORK {
			if b.Len() == 0 {
				r.wait()

				continue
			}

			addrs := b.Drain(r.maxBatch)

			var n int
			if n, err = r.round(provider, addrs); err != nil {
				b.Add(addrs...)

				if errors.Is(err, ErrStopped) {
					err = nil

					break
				}

				l.WithError(err).Warn("Round failed, addresses queued again")
				r.wait()

				continue
			}

			b.Done(n)
			// save pending status to DB
			if err = r.db.SavePending(context.Background(), provider, b.ToStore()); err != nil {
				l.WithError(err).Error("Error saving pending addresses to DB")

				return
			}
		}
	}()
}

// round resolves addrs, saves the records found and sends one event per address. It returns the number of addresses
// with a record.
func (r *Resolver) round(provider string, addrs []string) (int, error) {
	res, err := r.ns.Resolve(r.ctx, provider, addrs)
	if err != nil {
		return 0, err
	}

	// lookups aborted by Stop come back as placeholders
	if r.ctx.Err() != nil {
		return 0, ErrStopped
	}

	recs := make([]names.Domain, 0, len(res))
	for _, d := range res {
		recs = append(recs, d)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Address < recs[j].Address })

	found := store.Fresh(recs)
	if err = r.db.SaveRecords(context.Background(), provider, found); err != nil {
		return 0, fmt.Errorf("resolver: save records: %w", err)
	}

	if err = r.mb.SendResolved(provider, recs); err != nil {
		log.WithField("provider", provider).WithError(err).Warn("Error sending events")
	}

	log.WithFields(log.Fields{"provider": provider, "addrs": len(addrs), "found": len(found)}).Info("Round done")

	return len(found), nil
}

// ManageRequests starts a go routine to receive and manage the resolve requests of provider: RESOLVE queues the
// addresses, FORGET drops them from the queue, the cache and the database.
func (r *Resolver) ManageRequests(provider string) error {
	mut := new(sync.Mutex)
	mut.Lock()

	reqCh, errCh, err := r.mb.GetReqs(provider, mut)
	if err != nil {
		return fmt.Errorf("resolver: cannot get requests: %w", err)
	}

	b := r.bat[provider]
	p, _ := r.ns.Provider(provider)
	l := log.WithField("provider", provider)

	go func() {
		l.Info("Start listening to resolve request channel")

		for {
			select {
			case req, ok := <-reqCh:
				if !ok {
					l.Info("Stop listening to resolve request channel")

					return
				}

				r.request(provider, b, p, req)
				mut.Unlock()
			case e, ok := <-errCh:
				if !ok {
					errCh = nil

					continue
				}

				l.WithError(e).Warn("Received error")
			}
		}
	}()

	return nil
}

// request applies one resolve request.
func (r *Resolver) request(provider string, b *batcher.Batcher, p names.Provider, req msg.ResolveReq) {
	l := log.WithField("provider", provider)

	if !req.Valid(provider) {
		l.WithField("req", req).Warn("Request has wrong provider, missing addresses or wrong action")

		return
	}

	switch req.Act {
	case msg.RESOLVE:
		n := b.Add(req.Addrs...)
		l.WithField("queued", n).Debug("Queued addresses")
	case msg.FORGET:
		b.Del(req.Addrs...)

		if f, ok := p.(interface{ Forget(string) }); ok {
			for _, a := range req.Addrs {
				f.Forget(a)
			}
		}

		if n, err := r.db.DeleteRecords(context.Background(), provider, req.Addrs); err != nil {
			l.WithError(err).Debug("Error deleting records from DB")
		} else {
			l.WithField("deleted", n).Debug("Forgot addresses")
		}
	}
}
