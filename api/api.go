// Package api implements the explorer API microservice.
//
// This microservice implements a RESTful API for the explorer front-end: chain and asset lookups, token metadata read
// from the blockchains, name-service resolution of addresses, validator identity pictures and display formatting.
// Resolution can also be requested asynchronously; the requests are sent to the resolver service through the message
// broker.
package api

import (
	"context"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/chains"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/identity"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store/db"
)

// Deps holds the connections and components the API serves from. Any of them may be nil, the routes depending on a
// missing one reply an error.
type Deps struct {
	DbType  string
	DB      store.DB
	MB      msg.MsgBroker
	BC      map[string]block.Chain // blockchain clients
	Names   *names.Service
	Chains  *chains.Store
	Keybase *identity.Keybase
}

// API contains the data necessary to deliver the service
type API struct {
	Deps
	s  *http.Server  // http server
	ss *http.Server  // https server
	sc chan struct{} // http server channel used for graceful shutdowns
}

// New returns a pointer to a new API service
func New(d Deps) *API {
	return &API{Deps: d, sc: make(chan struct{})}
}

// Stop shuts down the http servers implementing the RESTful API and closes gracefully the connections to message
// broker, name providers and database.
func (a *API) Stop() {
	var err error
	// shutdown http servers
	if a.s != nil {
		if err = a.s.Shutdown(context.Background()); err != nil {
			log.WithError(err).Error("Error in http server shutdown")
		}
	}

	if a.ss != nil {
		if err = a.ss.Shutdown(context.Background()); err != nil {
			log.WithError(err).Error("Error in https server shutdown")
		}
	}

	close(a.sc) // close server channel to indicate shutdowns have finished

	if a.MB != nil {
		if err = a.MB.Close(); err != nil {
			log.WithError(err).Error("Error closing message broker")
		}
	}

	if a.Names != nil {
		a.Names.Close()
	}

	if a.Keybase != nil {
		a.Keybase.Close()
	}

	if a.DB != nil {
		err = db.Close(a.DbType, a.DB)
		log.WithField("db", a.DbType).WithError(err).Info("Disconnecting database")
	}
}

// ManageEvents starts go routines to consume the message broker queues for records resolved by the resolver service.
// For each provider, two channels are opened, one for resolved records, and one for errors. Records are forgotten from
// the provider cache so the next synchronous lookup reads the fresh data.
func (a *API) ManageEvents() error {
	if a.Names == nil || a.MB == nil {
		return ErrUnavailable
	}

	for _, provider := range a.Names.Names() {
		mut := new(sync.Mutex)
		mut.Lock()

		eveCh, errCh, err := a.MB.GetEvents(provider, mut)
		if err != nil {
			return err
		}

		p, _ := a.Names.Provider(provider)

		go func(provider string) {
			l := log.WithField("provider", provider)
			l.Info("Start listening to resolver event channel")

			for eve := range eveCh {
				l.WithField("address", eve.Address).WithField("name", eve.Name+eve.Handle).Debug("Received event")

				if f, ok := p.(forgetter); ok {
					f.Forget(eve.Address)
				}

				mut.Unlock()
			}

			l.Info("Stop listening to resolver event channel")
		}(provider)

		go func(provider string) {
			for e := range errCh {
				log.WithField("provider", provider).WithError(e).Warn("Received error")
			}
		}(provider)
	}

	return nil
}

// forgetter is implemented by caching providers.
type forgetter interface {
	Forget(addr string)
}
