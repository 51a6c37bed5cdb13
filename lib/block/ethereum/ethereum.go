// Package ethereum implements the Chain interface for ethereum-type networks.
package ethereum

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tarancss/ethcli"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block/types"
)

// tokenReader is the part of the ethcli client used to read ERC20 metadata.
type tokenReader interface {
	GetTokenName(token string) (string, error)
	GetTokenSymbol(token string) (string, error)
	GetTokenDecimals(token string) (uint64, error)
	End() error
}

// Ethereum implements a connection to an ethereum-type chain.
type Ethereum struct {
	c tokenReader
}

// Init returns a connection to an ethereum node, using secret if necessary for authentication.
func Init(node, secret string) (*Ethereum, error) {
	c := ethcli.Init(node, secret)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNoConnect, node)
	}

	return &Ethereum{c: c}, nil
}

// Close ends a connection
func (e *Ethereum) Close() {
	_ = e.c.End()
}

// GetToken returns the name, symbol and decimals of a valid ERC20 token.
func (e *Ethereum) GetToken(token string) (t types.Token, err error) {
	if !common.IsHexAddress(token) {
		err = types.ErrBadToken

		return
	}

	t.Address = common.HexToAddress(token).Hex()

	if t.Name, err = e.c.GetTokenName(token); err != nil {
		return
	}

	if t.Symbol, err = e.c.GetTokenSymbol(token); err != nil {
		return
	}

	var dec uint64
	if dec, err = e.c.GetTokenDecimals(token); err != nil {
		return
	}

	t.Decimals = uint8(dec)

	return
}
