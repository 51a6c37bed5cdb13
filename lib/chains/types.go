// Package chains holds the reference lists of chains and assets and resolves free-form keys against them.
//
// A Registry is an immutable snapshot: lookups never mutate it and every list handed in or out is copied. The Store
// swaps whole snapshots when the lists are reloaded.
package chains

import (
	"strings"
)

// Chain types.
const (
	EVM    = "evm"
	Cosmos = "cosmos"
)

// Explorer holds the block explorer of a chain and its path templates. Paths contain a {address}, {tx} or {block}
// placeholder.
type Explorer struct {
	URL         string `json:"url" yaml:"url"`
	Address     string `json:"address_path" yaml:"address_path"`
	Transaction string `json:"transaction_path" yaml:"transaction_path"`
	Block       string `json:"block_path" yaml:"block_path"`
}

// NativeToken is the gas token of a chain.
type NativeToken struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Name     string `json:"name" yaml:"name"`
	Decimals int    `json:"decimals" yaml:"decimals"`
}

// ChainDescriptor describes a chain.
type ChainDescriptor struct {
	ID             string      `json:"id" yaml:"id"`
	ChainID        string      `json:"chain_id" yaml:"chain_id"`
	Name           string      `json:"name" yaml:"name"`
	ChainType      string      `json:"chain_type" yaml:"chain_type"`
	Aliases        []string    `json:"aliases,omitempty" yaml:"aliases"`
	PrefixAddress  string      `json:"prefix_address,omitempty" yaml:"prefix_address"`
	PrefixChainIDs []string    `json:"prefix_chain_ids,omitempty" yaml:"prefix_chain_ids"`
	Explorer       Explorer    `json:"explorer" yaml:"explorer"`
	NativeToken    NativeToken `json:"native_token" yaml:"native_token"`
	Image          string      `json:"image,omitempty" yaml:"image"`
	Deprecated     bool        `json:"deprecated,omitempty" yaml:"deprecated"`
}

// Explorer link kinds.
const (
	LinkAddress     = "address"
	LinkTransaction = "tx"
	LinkBlock       = "block"
)

// ExplorerURL returns the explorer link of value for kind (LinkAddress, LinkTransaction or LinkBlock), or "" when the
// chain has no explorer for it.
func (c ChainDescriptor) ExplorerURL(kind, value string) string {
	var path string

	switch kind {
	case LinkAddress:
		path = c.Explorer.Address
	case LinkTransaction:
		path = c.Explorer.Transaction
	case LinkBlock:
		path = c.Explorer.Block
	}

	if c.Explorer.URL == "" || path == "" {
		return ""
	}

	return strings.TrimRight(c.Explorer.URL, "/") + strings.ReplaceAll(path, "{"+kind+"}", value)
}

func (c ChainDescriptor) clone() ChainDescriptor {
	c.Aliases = append([]string(nil), c.Aliases...)
	c.PrefixChainIDs = append([]string(nil), c.PrefixChainIDs...)

	return c
}

// AssetAddress is the deployment of an asset on one chain.
type AssetAddress struct {
	Address  string `json:"address,omitempty" yaml:"address"`
	IBCDenom string `json:"ibc_denom,omitempty" yaml:"ibc_denom"`
	Symbol   string `json:"symbol,omitempty" yaml:"symbol"`
	Decimals int    `json:"decimals,omitempty" yaml:"decimals"`
	Image    string `json:"image,omitempty" yaml:"image"`
}

// AssetDescriptor describes an asset. ID is its canonical denom.
type AssetDescriptor struct {
	ID          string                  `json:"denom" yaml:"denom"`
	Denoms      []string                `json:"denoms,omitempty" yaml:"denoms"`
	Symbol      string                  `json:"symbol" yaml:"symbol"`
	Name        string                  `json:"name" yaml:"name"`
	Decimals    int                     `json:"decimals" yaml:"decimals"`
	Image       string                  `json:"image,omitempty" yaml:"image"`
	NativeChain string                  `json:"native_chain,omitempty" yaml:"native_chain"`
	Addresses   map[string]AssetAddress `json:"addresses,omitempty" yaml:"addresses"`
}

// AssetView is an asset as seen on one chain.
type AssetView struct {
	Chain    string `json:"chain"`
	Denom    string `json:"denom"`
	Address  string `json:"address,omitempty"`
	IBCDenom string `json:"ibc_denom,omitempty"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	Image    string `json:"image,omitempty"`
}

// OnChain returns the view of the asset on chain. Missing chain specific fields fall back to the asset ones.
func (a AssetDescriptor) OnChain(chain string) (AssetView, bool) {
	addr, ok := a.Addresses[strings.ToLower(chain)]

	v := AssetView{
		Chain:    strings.ToLower(chain),
		Denom:    a.ID,
		Address:  addr.Address,
		IBCDenom: addr.IBCDenom,
		Symbol:   addr.Symbol,
		Name:     a.Name,
		Decimals: addr.Decimals,
		Image:    addr.Image,
	}

	if v.Symbol == "" {
		v.Symbol = a.Symbol
	}

	if v.Decimals == 0 {
		v.Decimals = a.Decimals
	}

	if v.Image == "" {
		v.Image = a.Image
	}

	return v, ok
}

func (a AssetDescriptor) clone() AssetDescriptor {
	a.Denoms = append([]string(nil), a.Denoms...)

	if a.Addresses != nil {
		m := make(map[string]AssetAddress, len(a.Addresses))
		for k, v := range a.Addresses {
			m[strings.ToLower(k)] = v
		}

		a.Addresses = m
	}

	return a
}
