package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/config"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
)

func TestBuild(t *testing.T) {
	hc := httpc.New(time.Second)

	s := Build(context.Background(), config.NamesConfig{}, hc, time.Second)
	assert.Empty(t, s.Providers)

	// dialing an http node does not connect
	s = Build(context.Background(), config.NamesDefault, hc, time.Second)
	defer s.Close()

	svc := s.Service(time.Minute)
	defer svc.Close()

	assert.Equal(t, []string{names.ENS, names.Lens, names.SpaceID, names.Unstoppable}, svc.Names())

	p, err := svc.Provider(names.ENS)
	assert.NoError(t, err)
	assert.IsType(t, &names.Cached{}, p)

	p, err = s.Service(0).Provider(names.Lens)
	assert.NoError(t, err)
	assert.Equal(t, names.Lens, p.Name())
	_, cached := p.(*names.Cached)
	assert.False(t, cached)
}
