package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
)

const (
	alice = "0xa11ce00000000000000000000000000000000000"
	bob   = "0x0000000000000000000000000000000000000b0b"
	carol = "0xaca201000000000000000000000000000000000"
)

var errDown = errors.New("provider down")

// memDB is an in-memory store.DB.
type memDB struct {
	mu      sync.Mutex
	recs    map[string]map[string]names.Domain
	pending map[string]store.Pending
}

func newMemDB() *memDB {
	return &memDB{recs: map[string]map[string]names.Domain{}, pending: map[string]store.Pending{}}
}

func (m *memDB) GetRecords(_ context.Context, provider string, addrs []string) ([]names.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []names.Domain

	for a, d := range m.recs[provider] {
		if len(addrs) == 0 || strings.Contains(strings.Join(addrs, ","), a) {
			out = append(out, d)
		}
	}

	return out, nil
}

func (m *memDB) has(provider, addr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.recs[provider][addr]

	return ok
}

func (m *memDB) DeleteRecords(_ context.Context, provider string, addrs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64

	for _, a := range addrs {
		if _, ok := m.recs[provider][a]; ok {
			delete(m.recs[provider], a)
			n++
		}
	}

	if n == 0 {
		return 0, store.ErrDataNotFound
	}

	return n, nil
}

func (m *memDB) SaveRecords(_ context.Context, provider string, recs []names.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.recs[provider] == nil {
		m.recs[provider] = map[string]names.Domain{}
	}

	for _, r := range recs {
		m.recs[provider][r.Address] = r
	}

	return nil
}

func (m *memDB) LoadPending(_ context.Context, provider string) (store.Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[provider]
	if !ok {
		return p, store.ErrDataNotFound
	}

	return p, nil
}

func (m *memDB) SavePending(_ context.Context, provider string, p store.Pending) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending[provider] = p

	return nil
}

func (m *memDB) saved(provider string) store.Pending {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pending[provider]
}

// fakeBroker relays the requests given and records the events sent.
type fakeBroker struct {
	mu     sync.Mutex
	in     chan msg.ResolveReq
	events []names.Domain
}

func (b *fakeBroker) Setup(interface{}) error { return nil }
func (b *fakeBroker) Close() error            { return nil }

func (b *fakeBroker) SendRequest(string, msg.ResolveReq) error { return nil }

func (b *fakeBroker) GetEvents(string, *sync.Mutex) (<-chan names.Domain, <-chan error, error) {
	return nil, nil, nil
}

// GetReqs waits for mut after every request relayed, like a broker acknowledging it.
func (b *fakeBroker) GetReqs(_ string, mut *sync.Mutex) (<-chan msg.ResolveReq, <-chan error, error) {
	out := make(chan msg.ResolveReq)

	go func() {
		defer close(out)

		for r := range b.in {
			out <- r

			mut.Lock()
		}
	}()

	return out, make(chan error), nil
}

func (b *fakeBroker) SendResolved(_ string, recs []names.Domain) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, recs...)

	return nil
}

func (b *fakeBroker) sent() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.events)
}

// fakeProvider names the addresses starting with 0xa.
type fakeProvider struct {
	mu   sync.Mutex
	down bool
}

func (f *fakeProvider) Name() string { return names.ENS }

func (f *fakeProvider) Resolve(_ context.Context, addrs []string) (map[string]names.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down {
		return nil, errDown
	}

	out := map[string]names.Domain{}

	for _, a := range names.Normalize(addrs) {
		out[a] = names.Placeholder(names.ENS, a)
		if strings.HasPrefix(a, "0xa") {
			out[a] = names.Domain{Provider: names.ENS, Address: a, ID: a, Name: a[2:7] + ".eth"}
		}
	}

	return out, nil
}

func TestRun(t *testing.T) {
	db := newMemDB()
	db.pending[names.ENS] = store.Pending{Addrs: []string{alice, bob}}

	mb := &fakeBroker{in: make(chan msg.ResolveReq)}
	r := New("mem", db, mb, names.NewService(&fakeProvider{}), 1, 10*time.Millisecond)

	ret := r.Run()

	// pending addresses loaded from the store are resolved one per round
	require.Eventually(t, func() bool { return mb.sent() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, db.has(names.ENS, alice))
	assert.False(t, db.has(names.ENS, bob))

	mb.in <- msg.ResolveReq{Provider: names.ENS, Addrs: []string{strings.ToUpper(carol[2:])}, Act: msg.RESOLVE}
	mb.in <- msg.ResolveReq{Provider: names.ENS, Addrs: []string{carol}, Act: msg.RESOLVE}
	require.Eventually(t, func() bool { return db.has(names.ENS, carol) }, 2*time.Second, 5*time.Millisecond)

	// requests for other providers or without addresses are ignored
	mb.in <- msg.ResolveReq{Provider: names.Lens, Addrs: []string{alice}, Act: msg.FORGET}
	mb.in <- msg.ResolveReq{Provider: names.ENS, Act: msg.FORGET}
	assert.True(t, db.has(names.ENS, alice))

	mb.in <- msg.ResolveReq{Provider: names.ENS, Addrs: []string{alice}, Act: msg.FORGET}
	// the next request is only relayed once the forget was applied
	mb.in <- msg.ResolveReq{Provider: names.ENS, Addrs: []string{bob}, Act: msg.FORGET}
	assert.False(t, db.has(names.ENS, alice))

	r.Stop()

	select {
	case s := <-ret:
		assert.Equal(t, "Done!", s)
	case <-time.After(2 * time.Second):
		t.Fatal("resolver did not stop")
	}

	p := db.saved(names.ENS)
	assert.Empty(t, p.Addrs)
	assert.GreaterOrEqual(t, p.Rounds, uint64(3))
	assert.GreaterOrEqual(t, p.Resolved, uint64(2))
}

func TestRunProviderDown(t *testing.T) {
	db := newMemDB()
	db.pending[names.ENS] = store.Pending{Addrs: []string{alice, bob}}

	mb := &fakeBroker{in: make(chan msg.ResolveReq)}
	r := New("mem", db, mb, names.NewService(&fakeProvider{down: true}), 0, 10*time.Millisecond)

	ret := r.Run()

	time.Sleep(50 * time.Millisecond)
	r.Stop()
	<-ret

	// failed rounds keep the addresses pending
	assert.ElementsMatch(t, []string{alice, bob}, db.saved(names.ENS).Addrs)
	assert.Zero(t, mb.sent())
}

// blockingProvider answers with placeholders once its context is cancelled, like the aggregator does.
type blockingProvider struct {
	started chan struct{}
}

func (f *blockingProvider) Name() string { return names.ENS }

func (f *blockingProvider) Resolve(ctx context.Context, addrs []string) (map[string]names.Domain, error) {
	close(f.started)
	<-ctx.Done()

	out := map[string]names.Domain{}
	for _, a := range names.Normalize(addrs) {
		out[a] = names.Placeholder(names.ENS, a)
	}

	return out, nil
}

func TestStopDuringRound(t *testing.T) {
	db := newMemDB()
	db.pending[names.ENS] = store.Pending{Addrs: []string{alice, bob}}

	p := &blockingProvider{started: make(chan struct{})}
	mb := &fakeBroker{in: make(chan msg.ResolveReq)}
	r := New("mem", db, mb, names.NewService(p), 0, 10*time.Millisecond)

	ret := r.Run()

	select {
	case <-p.started:
	case <-time.After(2 * time.Second):
		t.Fatal("round did not start")
	}

	r.Stop()

	select {
	case <-ret:
	case <-time.After(2 * time.Second):
		t.Fatal("resolver did not stop")
	}

	// the interrupted round keeps its addresses pending and sends nothing
	assert.ElementsMatch(t, []string{alice, bob}, db.saved(names.ENS).Addrs)
	assert.Zero(t, mb.sent())
	assert.False(t, db.has(names.ENS, alice))
}

func TestNewDefaults(t *testing.T) {
	r := New("mem", newMemDB(), &fakeBroker{}, names.NewService(), 0, 0)
	assert.Equal(t, DefaultMaxBatch, r.maxBatch)
	assert.Equal(t, DefaultInterval, r.interval)

	// nothing to run
	assert.Equal(t, "Done!", <-r.Run())
}
