// Package providers builds the configured name-service providers.
package providers

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/config"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names/ens"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names/lens"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names/spaceid"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names/unstoppable"
)

// Set holds the providers built and the node connections they use.
type Set struct {
	Providers []names.Provider
	clients   []*ethclient.Client
}

// Build returns a provider for every endpoint configured. A provider whose node cannot be dialed is left out.
func Build(ctx context.Context, conf config.NamesConfig, hc *httpc.Client, timeout time.Duration) *Set {
	s := &Set{}

	if conf.ENS != "" {
		o := ens.Opts{URL: conf.ENS, HTTP: hc, ChunkSize: conf.ChunkSize, PageSize: conf.PageSize}

		if c := s.dial(ctx, names.ENS, conf.ENSRPC, timeout); c != nil {
			rr, err := ens.NewReverseRecords(c, ens.ReverseRecordsAddress)
			if err != nil {
				log.WithField("provider", names.ENS).WithError(err).Warn("reverse records disabled")
			}

			o.Reverse = rr
		}

		s.Providers = append(s.Providers, ens.New(o))
	}

	if conf.Lens != "" {
		s.Providers = append(s.Providers, lens.New(lens.Opts{URL: conf.Lens, HTTP: hc, ChunkSize: conf.ChunkSize}))
	}

	if conf.Unstoppable != "" {
		s.Providers = append(s.Providers, unstoppable.New(unstoppable.Opts{
			URL: conf.Unstoppable, HTTP: hc, ChunkSize: conf.ChunkSize, PageSize: conf.PageSize,
		}))
	}

	if c := s.dial(ctx, names.SpaceID, conf.SpaceIDRPC, timeout); c != nil {
		p, err := spaceid.New(spaceid.Opts{Caller: c, Registry: conf.SpaceIDRegistry, ChunkSize: conf.ChunkSize})
		if err != nil {
			log.WithField("provider", names.SpaceID).WithError(err).Warn("provider disabled")
		} else {
			s.Providers = append(s.Providers, p)
		}
	}

	return s
}

func (s *Set) dial(ctx context.Context, provider, node string, timeout time.Duration) *ethclient.Client {
	if node == "" {
		return nil
	}

	c, err := block.DialEVM(ctx, node, timeout)
	if err != nil {
		log.WithField("provider", provider).WithError(err).Warn("cannot dial node")

		return nil
	}

	s.clients = append(s.clients, c)

	return c
}

// Service returns a names.Service of the providers, each wrapped with a cache when ttl is positive.
func (s *Set) Service(ttl time.Duration) *names.Service {
	ps := make([]names.Provider, 0, len(s.Providers))

	for _, p := range s.Providers {
		if ttl > 0 {
			p = names.NewCached(p, ttl)
		}

		ps = append(ps, p)
	}

	return names.NewService(ps...)
}

// Close closes the node connections.
func (s *Set) Close() {
	for _, c := range s.clients {
		c.Close()
	}
}
