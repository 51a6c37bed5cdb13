package names

import (
	"context"
	"errors"
	"sort"

	log "github.com/sirupsen/logrus"
)

// ErrUnknownProvider is returned when a provider name is not registered.
var ErrUnknownProvider = errors.New("names: unknown provider")

// Service is the set of configured name service providers.
type Service struct {
	providers map[string]Provider
}

// NewService returns a Service holding ps. Nil providers are skipped.
func NewService(ps ...Provider) *Service {
	s := &Service{providers: make(map[string]Provider, len(ps))}

	for _, p := range ps {
		if p != nil {
			s.providers[p.Name()] = p
		}
	}

	return s
}

// Names returns the registered provider names, sorted.
func (s *Service) Names() []string {
	out := make([]string, 0, len(s.providers))
	for n := range s.providers {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

// Provider returns the provider registered as name.
func (s *Service) Provider(name string) (Provider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}

	return p, nil
}

// Resolve resolves addrs with one provider.
func (s *Service) Resolve(ctx context.Context, provider string, addrs []string) (map[string]Domain, error) {
	p, err := s.Provider(provider)
	if err != nil {
		return nil, err
	}

	return p.Resolve(ctx, addrs)
}

// ResolveAll runs every provider, one after another, and returns their results keyed by provider name. A failing
// provider is logged and left out.
func (s *Service) ResolveAll(ctx context.Context, addrs []string) map[string]map[string]Domain {
	out := make(map[string]map[string]Domain, len(s.providers))

	for _, name := range s.Names() {
		res, err := s.providers[name].Resolve(ctx, addrs)
		if err != nil {
			log.WithField("provider", name).WithError(err).Warn("resolve failed")

			continue
		}

		out[name] = res
	}

	return out
}

// Close releases the cache of cached providers.
func (s *Service) Close() {
	for _, p := range s.providers {
		if c, ok := p.(*Cached); ok {
			c.Close()
		}
	}
}
