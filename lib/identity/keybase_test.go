package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
)

// keybaseMock serves pictures for identities starting with "id" and counts lookups and the peak of concurrent ones.
type keybaseMock struct {
	calls, inFlight, peak int32
	mu                    sync.Mutex
}

func (m *keybaseMock) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.calls, 1)

	n := atomic.AddInt32(&m.inFlight, 1)
	defer atomic.AddInt32(&m.inFlight, -1)

	m.mu.Lock()
	if n > m.peak {
		m.peak = n
	}
	m.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	if r.URL.Path != "/user/lookup.json" || r.URL.Query().Get("fields") != "pictures" {
		rw.WriteHeader(http.StatusNotFound)

		return
	}

	key := r.URL.Query().Get("key_suffix")

	switch {
	case key == "broken":
		rw.WriteHeader(http.StatusInternalServerError)
	case len(key) > 1 && key[:2] == "id":
		fmt.Fprintf(rw, `{"them":[{"pictures":{"primary":{"url":"https://s3.keybase/%s.jpg"}}}]}`, key)
	default:
		fmt.Fprint(rw, `{"them":[]}`)
	}
}

func TestPicture(t *testing.T) {
	m := &keybaseMock{}
	srv := httptest.NewServer(m)
	defer srv.Close()

	k := NewKeybase(Opts{URL: srv.URL, HTTP: httpc.New(time.Second)})
	defer k.Close()

	assert.Equal(t, "https://s3.keybase/id1.jpg", k.Picture(context.Background(), "id1"))
	assert.Equal(t, "https://s3.keybase/id1.jpg", k.Picture(context.Background(), " id1 "))
	assert.Equal(t, "", k.Picture(context.Background(), "nobody"))
	assert.Equal(t, "", k.Picture(context.Background(), "broken"))
	assert.Equal(t, "", k.Picture(context.Background(), ""))
	// id1 was cached
	assert.Equal(t, int32(3), atomic.LoadInt32(&m.calls))
}

func TestPreload(t *testing.T) {
	ids := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		ids = append(ids, fmt.Sprintf("id%d", i))
	}

	ids = append(ids, "nobody")

	m := &keybaseMock{}
	srv := httptest.NewServer(m)
	defer srv.Close()

	k := NewKeybase(Opts{URL: srv.URL, HTTP: httpc.New(time.Second), Limit: 2})
	defer k.Close()

	got := k.Preload(context.Background(), ids)
	assert.Len(t, got, 8)
	assert.Equal(t, "https://s3.keybase/id7.jpg", got["id7"])
	assert.LessOrEqual(t, m.peak, int32(2))
}

func TestPreloadUnbounded(t *testing.T) {
	m := &keybaseMock{}
	srv := httptest.NewServer(m)
	defer srv.Close()

	k := NewKeybase(Opts{URL: srv.URL, HTTP: httpc.New(time.Second)})
	defer k.Close()

	got := k.Preload(context.Background(), []string{"id1", "id2", "id3"})
	assert.Len(t, got, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&m.calls))
}
