// Package spaceid resolves addresses to SPACE ID names by reading the reverse records of the SID registry on BNB
// chain.
package spaceid

import (
	"context"
	"fmt"
	"strings"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
)

// RegistryAddress is the SID registry on BNB chain.
const RegistryAddress = "0x08CEd32a7f3eeC915Ba84415e9C07a7286977956"

const (
	registryABI = `[{"inputs":[{"internalType":"bytes32","name":"node","type":"bytes32"}],"name":"resolver",` +
		`"outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}]`
	resolverABI = `[{"inputs":[{"internalType":"bytes32","name":"node","type":"bytes32"}],"name":"name",` +
		`"outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"}]`
)

// Namehash returns the EIP-137 node of a dot separated name.
func Namehash(name string) [32]byte {
	var node [32]byte

	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		copy(node[:], crypto.Keccak256(node[:], crypto.Keccak256([]byte(labels[i]))))
	}

	return node
}

// ReverseNode returns the node of the reverse record of an address: <hex address>.addr.reverse.
func ReverseNode(addr string) [32]byte {
	return Namehash(strings.TrimPrefix(names.Key(addr), "0x") + ".addr.reverse")
}

// record is a reverse record read for an address.
type record struct {
	node    string
	name    string
	address string
}

// Opts configures a SpaceID resolver.
type Opts struct {
	Caller    block.ContractCaller
	Registry  string // defaults to RegistryAddress
	ChunkSize int
}

// SpaceID is the SPACE ID name service provider.
type SpaceID struct {
	c        block.ContractCaller
	registry common.Address
	regABI   abi.ABI
	resABI   abi.ABI
	agg      *names.Aggregator[record]
}

// New returns a SpaceID resolver.
func New(o Opts) (*SpaceID, error) {
	regABI, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("spaceid: parsing registry abi: %w", err)
	}

	resABI, err := abi.JSON(strings.NewReader(resolverABI))
	if err != nil {
		return nil, fmt.Errorf("spaceid: parsing resolver abi: %w", err)
	}

	if o.Registry == "" {
		o.Registry = RegistryAddress
	}

	chunk := o.ChunkSize
	if chunk <= 0 {
		chunk = names.DefaultChunkSize
	}

	s := &SpaceID{c: o.Caller, registry: common.HexToAddress(o.Registry), regABI: regABI, resABI: resABI}
	s.agg = &names.Aggregator[record]{
		Name:        names.SpaceID,
		Fetch:       s.fetch,
		ID:          func(r record) string { return r.node },
		Key:         func(r record) string { return r.address },
		Placeholder: func(addr string) record { return record{address: addr} },
		ChunkSize:   chunk,
		// one page per chunk
		PageSize: chunk,
	}

	return s, nil
}

// Name returns the provider name.
func (s *SpaceID) Name() string {
	return names.SpaceID
}

// Resolve returns the reverse name of every address.
func (s *SpaceID) Resolve(ctx context.Context, addrs []string) (map[string]names.Domain, error) {
	res := s.agg.Resolve(ctx, addrs)
	out := make(map[string]names.Domain, len(res))

	for k, r := range res {
		if r.name == "" {
			out[k] = names.Placeholder(names.SpaceID, k)

			continue
		}

		out[k] = names.Domain{Provider: names.SpaceID, Address: k, ID: r.node, Name: r.name}
	}

	return out, nil
}

// fetch reads the reverse record of every address of the chunk. The whole chunk is a single page.
func (s *SpaceID) fetch(ctx context.Context, chunk []string, cur names.PageCursor) ([]record, error) {
	if cur.Skip > 0 || len(chunk) == 0 {
		return nil, nil
	}

	out := make([]record, 0, len(chunk))

	for _, addr := range chunk {
		if !common.IsHexAddress(addr) {
			continue
		}

		node := ReverseNode(addr)

		name, err := s.name(ctx, node)
		if err != nil {
			return out, err
		}

		if name != "" {
			out = append(out, record{node: hexutil.Encode(node[:]), name: name, address: addr})
		}
	}

	return out, nil
}

// name reads the resolver of node from the registry and then the name from that resolver.
func (s *SpaceID) name(ctx context.Context, node [32]byte) (string, error) {
	res, err := s.call(ctx, s.registry, s.regABI, "resolver", node)
	if err != nil {
		return "", err
	}

	resolver, ok := res.(common.Address)
	if !ok || resolver == (common.Address{}) {
		return "", nil
	}

	res, err = s.call(ctx, resolver, s.resABI, "name", node)
	if err != nil {
		return "", err
	}

	name, _ := res.(string)

	return name, nil
}

func (s *SpaceID) call(ctx context.Context, to common.Address, a abi.ABI, method string,
	node [32]byte,
) (interface{}, error) {
	data, err := a.Pack(method, node)
	if err != nil {
		return nil, fmt.Errorf("spaceid: packing %s: %w", method, err)
	}

	reply, err := s.c.CallContract(ctx, geth.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("spaceid: calling %s: %w", method, err)
	}

	// an empty reply is a contract without the method
	if len(reply) == 0 {
		return nil, nil
	}

	out, err := a.Unpack(method, reply)
	if err != nil {
		return nil, fmt.Errorf("spaceid: unpacking %s: %w", method, err)
	}

	if len(out) != 1 {
		return nil, nil
	}

	return out[0], nil
}
