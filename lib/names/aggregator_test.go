package names

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rec is a minimal record for the aggregator tests.
type rec struct {
	id, addr, name string
}

// source is an in-memory paginated name service.
type source struct {
	recs   []rec
	calls  int
	chunks [][]string
	failAt int // call number that fails, 0 never
}

func (s *source) fetch(_ context.Context, chunk []string, cur PageCursor) ([]rec, error) {
	s.calls++
	if s.failAt != 0 && s.calls == s.failAt {
		return nil, errors.New("transport failure")
	}

	if cur.Skip == 0 {
		s.chunks = append(s.chunks, chunk)
	}

	var match []rec

	for _, r := range s.recs {
		if len(chunk) == 0 || contains(chunk, r.addr) {
			match = append(match, r)
		}
	}

	if cur.Skip >= len(match) {
		return nil, nil
	}

	end := cur.Skip + cur.PageSize
	if end > len(match) {
		end = len(match)
	}

	return match[cur.Skip:end], nil
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}

	return false
}

func newAgg(s *source, pageSize int) *Aggregator[rec] {
	return &Aggregator[rec]{
		Name:        "test",
		Fetch:       s.fetch,
		ID:          func(r rec) string { return r.id },
		Key:         func(r rec) string { return r.addr },
		Placeholder: func(addr string) rec { return rec{addr: addr} },
		PageSize:    pageSize,
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"0xab", "0xcd"}, Normalize([]string{" 0xAB", "0xcd", "", "0xab ", "0XCD"}))
	assert.Empty(t, Normalize(nil))
}

func TestResolveBackFill(t *testing.T) {
	s := &source{recs: []rec{{"1", "0xaa", "alice.eth"}}}
	res := newAgg(s, 10).Resolve(context.Background(), []string{"0xAA", "0xbb", "0xaa"})

	require.Len(t, res, 2)
	assert.Equal(t, "alice.eth", res["0xaa"].name)
	assert.Equal(t, rec{addr: "0xbb"}, res["0xbb"])
}

func TestResolveEmpty(t *testing.T) {
	s := &source{}
	res := newAgg(s, 10).Resolve(context.Background(), []string{" ", ""})

	assert.Empty(t, res)
	assert.Zero(t, s.calls)
}

func TestResolvePagination(t *testing.T) {
	s := &source{}
	for i := 0; i < 25; i++ {
		s.recs = append(s.recs, rec{id: fmt.Sprint(i), addr: fmt.Sprintf("0x%02d", i), name: fmt.Sprint(i)})
	}

	addrs := make([]string, 0, 25)
	for _, r := range s.recs {
		addrs = append(addrs, r.addr)
	}

	res := newAgg(s, 10).Resolve(context.Background(), addrs)

	require.Len(t, res, 25)
	assert.Equal(t, "24", res["0x24"].name)
	// pages of 10, 10 and 5
	assert.Equal(t, 3, s.calls)
}

func TestResolveChunks(t *testing.T) {
	s := &source{}

	addrs := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		addrs = append(addrs, fmt.Sprintf("0x%03d", i))
	}

	res := newAgg(s, 10).Resolve(context.Background(), addrs)

	require.Len(t, res, 120)
	require.Len(t, s.chunks, 3)
	assert.Len(t, s.chunks[0], 50)
	assert.Len(t, s.chunks[1], 50)
	assert.Len(t, s.chunks[2], 20)
}

func TestResolveDuplicateIDs(t *testing.T) {
	s := &source{recs: []rec{
		{"1", "0xaa", "first"},
		{"1", "0xaa", "second"},
		{"2", "0xbb", "bob"},
	}}
	res := newAgg(s, 10).Resolve(context.Background(), []string{"0xaa", "0xbb"})

	assert.Equal(t, "first", res["0xaa"].name)
	assert.Equal(t, "bob", res["0xbb"].name)
}

func TestResolveMultiMatch(t *testing.T) {
	s := &source{recs: []rec{
		{"1", "0xaa", "one"},
		{"2", "0xaa", "two"},
	}}

	agg := newAgg(s, 10)
	assert.Equal(t, "one", agg.Resolve(context.Background(), []string{"0xaa"})["0xaa"].name)

	agg.Merge = func(_ string, recs []rec) rec {
		names := make([]string, 0, len(recs))
		for _, r := range recs {
			names = append(names, r.name)
		}

		return rec{id: recs[0].id, addr: recs[0].addr, name: strings.Join(names, "|")}
	}
	assert.Equal(t, "one|two", agg.Resolve(context.Background(), []string{"0xaa"})["0xaa"].name)
}

func TestResolveFailureHalts(t *testing.T) {
	s := &source{failAt: 2}

	addrs := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		addrs = append(addrs, fmt.Sprintf("0x%03d", i))
		s.recs = append(s.recs, rec{id: fmt.Sprint(i), addr: fmt.Sprintf("0x%03d", i), name: "n"})
	}

	res := newAgg(s, 30).Resolve(context.Background(), addrs)

	// the second page of the first chunk fails: only its first page is kept and the second chunk is never asked
	require.Len(t, res, 100)
	assert.Equal(t, 2, s.calls)
	assert.Equal(t, "n", res["0x000"].name)
	assert.Equal(t, "n", res["0x029"].name)
	assert.Equal(t, rec{addr: "0x030"}, res["0x030"])
	assert.Equal(t, rec{addr: "0x099"}, res["0x099"])
}

func TestResolveIgnoresForeignRecords(t *testing.T) {
	agg := newAgg(&source{}, 10)
	agg.Fetch = func(context.Context, []string, PageCursor) ([]rec, error) {
		return []rec{{"1", "0xzz", "stranger"}}, nil
	}

	res := agg.Resolve(context.Background(), []string{"0xaa"})

	require.Len(t, res, 1)
	assert.Equal(t, rec{addr: "0xaa"}, res["0xaa"])
}

func TestResolveStuckCursor(t *testing.T) {
	agg := newAgg(&source{}, 2)

	calls := 0
	agg.Fetch = func(context.Context, []string, PageCursor) ([]rec, error) {
		calls++

		return []rec{{"1", "0xaa", "a"}, {"2", "0xbb", "b"}}, nil
	}

	res := agg.Resolve(context.Background(), []string{"0xaa", "0xbb"})

	assert.Equal(t, "b", res["0xbb"].name)
	assert.Equal(t, 2, calls)
}

func TestResolveCanceled(t *testing.T) {
	s := &source{recs: []rec{{"1", "0xaa", "a"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newAgg(s, 10).Resolve(ctx, []string{"0xaa"})

	assert.Equal(t, rec{addr: "0xaa"}, res["0xaa"])
	assert.Zero(t, s.calls)
}

func TestList(t *testing.T) {
	s := &source{}
	for i := 0; i < 7; i++ {
		s.recs = append(s.recs, rec{id: fmt.Sprint(i), addr: fmt.Sprintf("0x%d", i)})
	}

	recs := newAgg(s, 3).List(context.Background())

	assert.Len(t, recs, 7)
	assert.Equal(t, 3, s.calls)
}

func TestPageCursor(t *testing.T) {
	c := PageCursor{PageSize: 100}.Next().Next()
	assert.Equal(t, PageCursor{Skip: 200, PageSize: 100}, c)
}
