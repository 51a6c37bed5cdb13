// Package block defines the interface required for blockchain connections and the helpers to read EVM contracts.
package block

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	log "github.com/sirupsen/logrus"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block/ethereum"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block/types"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/config"
)

// Chain is the connection to a blockchain used to read asset metadata.
type Chain interface {
	Close()
	GetToken(token string) (types.Token, error)
}

// ContractCaller performs read only contract calls. *ethclient.Client implements it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg geth.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Init loads a client for every blockchain in the config into a map keyed by chain id. All of them are EVM chains.
func Init(bc []config.BlockConfig) (m map[string]Chain, err error) {
	m = make(map[string]Chain)

	for _, block := range bc {
		if block.Node == "" {
			log.WithField("net", block.Name).Warn("Blockchain without node. Ignoring...")

			continue
		}

		var c *ethereum.Ethereum
		if c, err = ethereum.Init(block.Node, block.Secret); err != nil {
			End(m)

			return nil, fmt.Errorf("block: %s: %w", block.Name, err)
		}

		m[block.Name] = c
	}

	return m, nil
}

// End closes gracefully all the blockchain clients opened.
func End(bc map[string]Chain) {
	for _, block := range bc {
		block.Close()
	}
}

// DialEVM connects to an EVM JSON-RPC node with the given request timeout.
func DialEVM(ctx context.Context, node string, timeout time.Duration) (*ethclient.Client, error) {
	c, err := rpc.DialOptions(ctx, node, rpc.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("block: dialing %s: %w", node, err)
	}

	return ethclient.NewClient(c), nil
}
