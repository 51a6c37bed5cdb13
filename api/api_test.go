package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block/types"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/chains"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/identity"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
)

const (
	alice = "0x00000000000000000000000000000000000a11ce"
	bob   = "0x0000000000000000000000000000000000000b0b"
	usdc  = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

// fakeProvider resolves alice only and counts the addresses asked.
type fakeProvider struct {
	mu    sync.Mutex
	asked int
}

func (f *fakeProvider) Name() string { return names.ENS }

func (f *fakeProvider) Resolve(_ context.Context, addrs []string) (map[string]names.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := map[string]names.Domain{}

	for _, a := range names.Normalize(addrs) {
		f.asked++
		out[a] = names.Placeholder(names.ENS, a)

		if a == alice {
			out[a] = names.Domain{Provider: names.ENS, Address: a, ID: "0x01", Name: "alice.eth"}
		}
	}

	return out, nil
}

type fakeChain struct{}

func (fakeChain) Close() {}

func (fakeChain) GetToken(token string) (types.Token, error) {
	if !strings.EqualFold(token, usdc) {
		return types.Token{}, types.ErrBadToken
	}

	return types.Token{Address: usdc, Name: "USD Coin", Symbol: "USDC", Decimals: 6}, nil
}

// fakeBroker records the requests sent and feeds the events given.
type fakeBroker struct {
	mu     sync.Mutex
	reqs   []msg.ResolveReq
	events chan names.Domain
}

func (b *fakeBroker) Setup(interface{}) error { return nil }
func (b *fakeBroker) Close() error            { return nil }

func (b *fakeBroker) SendRequest(_ string, r msg.ResolveReq) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.reqs = append(b.reqs, r)

	return nil
}

// GetEvents relays the events given and, like a broker acknowledging them, waits for mut before the next one.
func (b *fakeBroker) GetEvents(_ string, mut *sync.Mutex) (<-chan names.Domain, <-chan error, error) {
	out := make(chan names.Domain)

	go func() {
		defer close(out)

		for d := range b.events {
			out <- d

			mut.Lock()
		}
	}()

	return out, make(chan error), nil
}

func (b *fakeBroker) GetReqs(string, *sync.Mutex) (<-chan msg.ResolveReq, <-chan error, error) {
	return nil, nil, nil
}

func (b *fakeBroker) SendResolved(string, []names.Domain) error { return nil }

type fakeDB struct {
	recs []names.Domain
}

func (f *fakeDB) GetRecords(_ context.Context, provider string, addrs []string) ([]names.Domain, error) {
	var out []names.Domain

	for _, r := range f.recs {
		if r.Provider == provider && (len(addrs) == 0 || r.Address == addrs[0]) {
			out = append(out, r)
		}
	}

	return out, nil
}

func (f *fakeDB) DeleteRecords(context.Context, string, []string) (int64, error) { return 0, nil }

func (f *fakeDB) SaveRecords(context.Context, string, []names.Domain) error { return nil }

func (f *fakeDB) LoadPending(context.Context, string) (store.Pending, error) {
	return store.Pending{}, store.ErrDataNotFound
}

func (f *fakeDB) SavePending(context.Context, string, store.Pending) error { return nil }

type fixture struct {
	api    *API
	srv    *httptest.Server
	prov   *fakeProvider
	broker *fakeBroker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	kb := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key_suffix") == "ABCDEF0123456789" {
			fmt.Fprint(rw, `{"them":[{"pictures":{"primary":{"url":"https://s3.keybase/op.jpg"}}}]}`)

			return
		}

		fmt.Fprint(rw, `{"them":[]}`)
	}))
	t.Cleanup(kb.Close)

	cs := chains.NewStore(nil)
	require.NoError(t, cs.Reload(context.Background(), chains.FileLoader{Path: "../lib/chains/testdata/registry.json"}))

	f := &fixture{prov: &fakeProvider{}, broker: &fakeBroker{events: make(chan names.Domain)}}
	f.api = New(Deps{
		DB:      &fakeDB{recs: []names.Domain{{Provider: names.ENS, Address: alice, ID: "0x01", Name: "alice.eth"}}},
		MB:      f.broker,
		BC:      map[string]block.Chain{"ethereum": fakeChain{}},
		Names:   names.NewService(names.NewCached(f.prov, time.Minute)),
		Chains:  cs,
		Keybase: identity.NewKeybase(identity.Opts{URL: kb.URL, HTTP: httpc.New(time.Second)}),
	})
	f.srv = httptest.NewServer(f.api.Router())
	t.Cleanup(f.srv.Close)
	t.Cleanup(f.api.Names.Close)
	t.Cleanup(f.api.Keybase.Close)

	return f
}

// call performs the request and decodes the envelope, and the body into out when given.
func (f *fixture) call(t *testing.T, method, uri string, out interface{}) (int, Response) {
	t.Helper()

	req, err := http.NewRequest(method, f.srv.URL+uri, nil)
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var r Response
	if res.StatusCode == http.StatusMethodNotAllowed || res.StatusCode == http.StatusNotFound && res.Header.Get("Content-Type") == "text/plain; charset=utf-8" {
		return res.StatusCode, r
	}

	require.NoError(t, json.NewDecoder(res.Body).Decode(&r))

	if out != nil && r.Error == "" {
		require.NoError(t, json.Unmarshal([]byte(r.Body), out))
	}

	return res.StatusCode, r
}

func TestHome(t *testing.T) {
	f := newFixture(t)

	for _, m := range []string{http.MethodGet, http.MethodPost} {
		code, r := f.call(t, m, "/", nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, Welcome, r.Body)
	}
}

func TestChains(t *testing.T) {
	f := newFixture(t)

	var all []chains.ChainDescriptor
	code, _ := f.call(t, http.MethodGet, "/chains", &all)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, all, 5)

	code, _ = f.call(t, http.MethodPost, "/chains", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)

	cases := []struct {
		name, uri string
		code      int
		id        string
	}{
		{"exact", "/chains/ethereum?exact=true", http.StatusOK, "ethereum"},
		{"alias", "/chains/avax", http.StatusOK, "avalanche"},
		{"alias exact", "/chains/avax?exact=true", http.StatusNotFound, ""},
		{"chain id prefix", "/chains/osmosis-1", http.StatusOK, "osmosis"},
		{"unknown", "/chains/solana", http.StatusNotFound, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c chains.ChainDescriptor
			code, r := f.call(t, http.MethodGet, tc.uri, &c)
			assert.Equal(t, tc.code, code)

			if tc.code == http.StatusOK {
				assert.Equal(t, tc.id, c.ID)
			} else {
				assert.NotEmpty(t, r.Error)
			}
		})
	}
}

func TestAssets(t *testing.T) {
	f := newFixture(t)

	var a chains.AssetDescriptor
	code, _ := f.call(t, http.MethodGet, "/assets/usdc", &a)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "uusdc", a.ID)

	var v chains.AssetView
	code, _ = f.call(t, http.MethodGet, "/assets/uusdc?chain=osmosis", &v)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "axlUSDC", v.Symbol)
	assert.Equal(t, 6, v.Decimals)

	code, _ = f.call(t, http.MethodGet, "/assets/usdc?exact=true", nil)
	assert.Equal(t, http.StatusNotFound, code)

	var s []chains.Suggestion
	code, _ = f.call(t, http.MethodGet, "/suggest/ethrm?n=2", &s)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, s)
	assert.LessOrEqual(t, len(s), 2)

	code, _ = f.call(t, http.MethodGet, "/suggest/eth?n=x", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestToken(t *testing.T) {
	f := newFixture(t)

	var tok types.Token
	code, _ := f.call(t, http.MethodGet, "/token/"+usdc+"?net=ethereum", &tok)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "USDC", tok.Symbol)
	assert.Equal(t, uint8(6), tok.Decimals)

	code, r := f.call(t, http.MethodGet, "/token/"+usdc, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, ErrMissingNet.Error(), r.Error)

	code, _ = f.call(t, http.MethodGet, "/token/"+usdc+"?net=solana", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.call(t, http.MethodGet, "/token/0x12?net=ethereum", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNames(t *testing.T) {
	f := newFixture(t)

	var recs map[string]names.Domain
	code, _ := f.call(t, http.MethodGet, "/names/ens?address="+strings.ToUpper(alice[2:])+","+bob+"&address="+alice, &recs)
	assert.Equal(t, http.StatusOK, code)
	// "00..a11ce" without 0x is a different key than alice
	assert.Len(t, recs, 3)
	assert.Equal(t, "alice.eth", recs[alice].Name)
	assert.True(t, recs[bob].IsPlaceholder())

	code, _ = f.call(t, http.MethodGet, "/names/ens", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.call(t, http.MethodGet, "/names/bns?address="+alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	var stored []names.Domain
	code, _ = f.call(t, http.MethodGet, "/records/ens?address="+alice, &stored)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, stored, 1)
	assert.Equal(t, "alice.eth", stored[0].Name)
}

func TestRequests(t *testing.T) {
	f := newFixture(t)

	code, _ := f.call(t, http.MethodPost, "/names/ens/"+strings.ToUpper(bob), nil)
	assert.Equal(t, http.StatusAccepted, code)

	// cache the lookup, forgetting it must ask the provider again
	f.call(t, http.MethodGet, "/names/ens?address="+alice, nil)
	f.call(t, http.MethodGet, "/names/ens?address="+alice, nil)
	assert.Equal(t, 1, f.prov.asked)

	code, _ = f.call(t, http.MethodDelete, "/names/ens/"+alice, nil)
	assert.Equal(t, http.StatusAccepted, code)
	f.call(t, http.MethodGet, "/names/ens?address="+alice, nil)
	assert.Equal(t, 2, f.prov.asked)

	code, _ = f.call(t, http.MethodPut, "/names/ens/"+alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.call(t, http.MethodPost, "/names/bns/"+alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	require.Len(t, f.broker.reqs, 2)
	assert.Equal(t, msg.ResolveReq{Provider: names.ENS, Addrs: []string{bob}, Act: msg.RESOLVE}, f.broker.reqs[0])
	assert.Equal(t, msg.FORGET, f.broker.reqs[1].Act)
}

func TestManageEvents(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.api.ManageEvents())

	f.call(t, http.MethodGet, "/names/ens?address="+alice, nil)
	assert.Equal(t, 1, f.prov.asked)

	f.broker.events <- names.Domain{Provider: names.ENS, Address: alice, Name: "alice.eth"}
	// the second send blocks until the first event is processed
	f.broker.events <- names.Domain{Provider: names.ENS, Address: bob}

	f.call(t, http.MethodGet, "/names/ens?address="+alice, nil)
	assert.Equal(t, 2, f.prov.asked)
}

func TestManageEventsUnavailable(t *testing.T) {
	assert.ErrorIs(t, New(Deps{}).ManageEvents(), ErrUnavailable)
	assert.ErrorIs(t, New(Deps{Names: names.NewService()}).ManageEvents(), ErrUnavailable)
}

func TestIdentity(t *testing.T) {
	f := newFixture(t)

	var out map[string]string
	code, _ := f.call(t, http.MethodGet, "/identity/ABCDEF0123456789", &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "https://s3.keybase/op.jpg", out["picture"])

	code, _ = f.call(t, http.MethodGet, "/identity/nobody", nil)
	assert.Equal(t, http.StatusNotFound, code)

	out = nil
	code, _ = f.call(t, http.MethodGet, "/identities?id=ABCDEF0123456789,nobody&id=ABCDEF0123456789", &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]string{"ABCDEF0123456789": "https://s3.keybase/op.jpg"}, out)

	code, _ = f.call(t, http.MethodGet, "/identities", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFormat(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		uri, want string
		code      int
	}{
		{"/format/number?value=1999", "1.99K", http.StatusOK},
		{"/format/number?value=999.999", "999.99", http.StatusOK},
		{"/format/number?value=0.999999", "0.999999", http.StatusOK},
		{"/format/number?value=1500000&units=6", "1.5", http.StatusOK},
		{"/format/number?value=1234567.891&grouped=true", "1,234,567.89", http.StatusOK},
		{"/format/number?value=abc", "", http.StatusBadRequest},
		{"/format/number?value=1&decimals=-1", "", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.uri, func(t *testing.T) {
			var out map[string]string
			code, _ := f.call(t, http.MethodGet, tc.uri, &out)
			assert.Equal(t, tc.code, code)

			if tc.code == http.StatusOK {
				assert.Equal(t, tc.want, out["value"])
			}
		})
	}

	ts := time.Now().Add(-3 * time.Hour).Unix()

	var out map[string]string
	code, _ := f.call(t, http.MethodGet, fmt.Sprintf("/format/time?ts=%d", ts), &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "3h ago", out["ago"])
	assert.Equal(t, time.Unix(ts, 0).UTC().Format(time.RFC3339), out["time"])

	code, _ = f.call(t, http.MethodGet, "/format/time", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUnavailable(t *testing.T) {
	a := New(Deps{})
	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	for _, uri := range []string{"/chains", "/chains/ethereum", "/names/ens?address=" + alice, "/records/ens", "/identity/x"} {
		res, err := http.Get(srv.URL + uri)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode, uri)
	}
}
