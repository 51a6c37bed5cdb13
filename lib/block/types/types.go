// Package types common blockchain types.
package types

import (
	"errors"
)

// Token is a blockchain asset.
type Token struct {
	Address  string      `json:"address"`
	Name     string      `json:"name"`
	Symbol   string      `json:"symbol"`
	Decimals uint8       `json:"decimals"`
	Data     interface{} `json:"data,omitempty"` // contains specific chain details
}

// Error codes.
var (
	ErrNoChain   = errors.New("blockchain client not available")
	ErrBadToken  = errors.New("token address is not valid")
	ErrNoConnect = errors.New("cannot connect to blockchain node")
)
