package chains

import (
	"strings"

	"github.com/samber/lo"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/util"
)

// Registry is an immutable snapshot of the chain and asset lists.
type Registry struct {
	chains []ChainDescriptor
	assets []AssetDescriptor
}

// NewRegistry returns a snapshot holding copies of chains and assets. List order is kept: it decides which
// descriptor wins when a key matches more than one.
func NewRegistry(chains []ChainDescriptor, assets []AssetDescriptor) *Registry {
	return &Registry{
		chains: lo.Map(chains, func(c ChainDescriptor, _ int) ChainDescriptor { return c.clone() }),
		assets: lo.Map(assets, func(a AssetDescriptor, _ int) AssetDescriptor { return a.clone() }),
	}
}

// Chains returns a copy of the chain list.
func (r *Registry) Chains() []ChainDescriptor {
	return lo.Map(r.chains, func(c ChainDescriptor, _ int) ChainDescriptor { return c.clone() })
}

// Assets returns a copy of the asset list.
func (r *Registry) Assets() []AssetDescriptor {
	return lo.Map(r.assets, func(a AssetDescriptor, _ int) AssetDescriptor { return a.clone() })
}

// GetChain returns the first chain matching key. Exact id or chain id matches are tried first over the whole list.
// Unless exact is set, a second pass in list order accepts name or alias equality and then the chain type prefixes:
// the bech32 address prefix of cosmos chains, any of the chain id prefixes, and "<alias>-" for evm chains.
func (r *Registry) GetChain(key string, exact bool) (ChainDescriptor, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return ChainDescriptor{}, false
	}

	for _, c := range r.chains {
		if strings.EqualFold(c.ID, k) || (c.ChainID != "" && strings.EqualFold(c.ChainID, k)) {
			return c.clone(), true
		}
	}

	if exact {
		return ChainDescriptor{}, false
	}

	for _, c := range r.chains {
		if matchChain(c, k) {
			return c.clone(), true
		}
	}

	return ChainDescriptor{}, false
}

func matchChain(c ChainDescriptor, k string) bool {
	if strings.EqualFold(c.Name, k) || util.InFold(c.Aliases, k) {
		return true
	}

	if c.ChainType == Cosmos && c.PrefixAddress != "" && strings.HasPrefix(k, strings.ToLower(c.PrefixAddress)) {
		return true
	}

	if util.HasAnyPrefix(k, lo.Map(c.PrefixChainIDs, func(p string, _ int) string { return strings.ToLower(p) })) {
		return true
	}

	if c.ChainType == EVM {
		for _, a := range append([]string{c.ID}, c.Aliases...) {
			if a != "" && strings.HasPrefix(k, strings.ToLower(a)+"-") {
				return true
			}
		}
	}

	return false
}

// GetAsset returns the first asset matching key, restricted to assets deployed on chain when chain is not empty. With
// exact set only the denom is compared; otherwise the denoms, the symbol, the per chain addresses, IBC denoms and
// symbols are tried too, all case-insensitive.
func (r *Registry) GetAsset(key, chain string, exact bool) (AssetDescriptor, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return AssetDescriptor{}, false
	}

	ch := strings.ToLower(chain)

	for _, a := range r.assets {
		if ch != "" {
			if _, ok := a.Addresses[ch]; !ok && !strings.EqualFold(a.NativeChain, ch) {
				continue
			}
		}

		if matchAsset(a, k, ch, exact) {
			return a.clone(), true
		}
	}

	return AssetDescriptor{}, false
}

func matchAsset(a AssetDescriptor, k, chain string, exact bool) bool {
	if strings.EqualFold(a.ID, k) {
		return true
	}

	if exact {
		return false
	}

	if util.InFold(a.Denoms, k) || strings.EqualFold(a.Symbol, k) {
		return true
	}

	for c, addr := range a.Addresses {
		if chain != "" && c != chain {
			continue
		}

		if (addr.Address != "" && strings.EqualFold(addr.Address, k)) ||
			(addr.IBCDenom != "" && strings.EqualFold(addr.IBCDenom, k)) ||
			(addr.Symbol != "" && strings.EqualFold(addr.Symbol, k)) {
			return true
		}
	}

	return false
}
