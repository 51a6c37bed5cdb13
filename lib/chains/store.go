package chains

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
)

// ErrEmpty is returned by loaders that read no chains.
var ErrEmpty = errors.New("chains: no chains loaded")

// Loader reads the chain and asset lists from a source.
type Loader interface {
	Load(ctx context.Context) ([]ChainDescriptor, []AssetDescriptor, error)
}

// Store holds the current Registry snapshot.
type Store struct {
	r atomic.Pointer[Registry]
}

// NewStore returns a Store holding r, or an empty registry when r is nil.
func NewStore(r *Registry) *Store {
	if r == nil {
		r = NewRegistry(nil, nil)
	}

	s := &Store{}
	s.r.Store(r)

	return s
}

// Registry returns the current snapshot.
func (s *Store) Registry() *Registry {
	return s.r.Load()
}

// Reload reads the lists with l and swaps the snapshot. The current snapshot is kept when l fails.
func (s *Store) Reload(ctx context.Context, l Loader) error {
	chains, assets, err := l.Load(ctx)
	if err != nil {
		return err
	}

	if len(chains) == 0 {
		return ErrEmpty
	}

	s.r.Store(NewRegistry(chains, assets))
	log.WithFields(log.Fields{"chains": len(chains), "assets": len(assets)}).Info("chains registry loaded")

	return nil
}

// lists is the document read by FileLoader.
type lists struct {
	Chains []ChainDescriptor `json:"chains" yaml:"chains"`
	Assets []AssetDescriptor `json:"assets" yaml:"assets"`
}

// FileLoader reads the lists from a JSON or YAML (.yaml, .yml) file holding "chains" and "assets".
type FileLoader struct {
	Path string
}

// Load implements Loader.
func (f FileLoader) Load(_ context.Context) ([]ChainDescriptor, []AssetDescriptor, error) {
	buf, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("chains: reading %s: %w", f.Path, err)
	}

	var l lists

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(buf, &l)
	default:
		err = json.Unmarshal(buf, &l)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("chains: decoding %s: %w", f.Path, err)
	}

	return l.Chains, l.Assets, nil
}

// APILoader reads the lists from the backend API methods getChains and getAssets.
type APILoader struct {
	URL  string
	HTTP *httpc.Client
}

// Load implements Loader. A failing getAssets leaves the asset list empty.
func (a APILoader) Load(ctx context.Context) ([]ChainDescriptor, []AssetDescriptor, error) {
	var chains []ChainDescriptor
	if err := a.call(ctx, "getChains", &chains); err != nil {
		return nil, nil, err
	}

	var assets []AssetDescriptor
	if err := a.call(ctx, "getAssets", &assets); err != nil {
		log.WithError(err).Warn("chains: cannot load assets")
	}

	return chains, assets, nil
}

// call decodes replies that are either a bare list or a {"data": list} envelope.
func (a APILoader) call(ctx context.Context, method string, out interface{}) error {
	var raw json.RawMessage
	if err := a.HTTP.Call(ctx, a.URL, method, nil, &raw); err != nil {
		return err
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &env) == nil && len(env.Data) > 0 {
		raw = env.Data
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("chains: decoding %s: %w", method, err)
	}

	return nil
}

// NewLoader returns a FileLoader when path is set, an APILoader of url otherwise.
func NewLoader(path, url string, hc *httpc.Client) Loader {
	if path != "" {
		return FileLoader{Path: path}
	}

	return APILoader{URL: url, HTTP: hc}
}
