package chains

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Suggestion kinds.
const (
	KindChain = "chain"
	KindAsset = "asset"
)

// Suggestion is a ranked candidate for an unknown key.
type Suggestion struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// fuzzySource exposes the searchable text of every chain and asset to fuzzy.FindFrom.
type fuzzySource []Suggestion

func (s fuzzySource) Len() int {
	return len(s)
}

func (s fuzzySource) String(i int) string {
	return strings.ToLower(strings.ReplaceAll(s[i].Name, " ", "_") + "_" + s[i].ID)
}

func (r *Registry) source() fuzzySource {
	src := make(fuzzySource, 0, len(r.chains)+len(r.assets))

	for _, c := range r.chains {
		src = append(src, Suggestion{Kind: KindChain, ID: c.ID, Name: c.Name})
	}

	for _, a := range r.assets {
		src = append(src, Suggestion{Kind: KindAsset, ID: a.ID, Name: a.Symbol})
	}

	return src
}

// Suggest returns at most n chains and assets ranked by how well they fuzzy match key. It returns an empty slice when n
// is not positive.
func (r *Registry) Suggest(key string, n int) []Suggestion {
	if n <= 0 {
		return []Suggestion{}
	}

	src := r.source()
	matches := fuzzy.FindFrom(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), " ", "_")), src)

	out := make([]Suggestion, 0, n)

	for i := 0; i < n && i < len(matches); i++ {
		s := src[matches[i].Index]
		s.Score = matches[i].Score
		out = append(out, s)
	}

	return out
}
