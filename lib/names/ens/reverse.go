package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block"
)

// ReverseRecordsAddress is the ENS ReverseRecords contract on ethereum mainnet.
const ReverseRecordsAddress = "0x3671aE578E63FdF66ad4F3E12CC0c0d71Ac7510C"

const reverseRecordsABI = `[{"inputs":[{"internalType":"address[]","name":"addresses","type":"address[]"}],` +
	`"name":"getNames","outputs":[{"internalType":"string[]","name":"r","type":"string[]"}],` +
	`"stateMutability":"view","type":"function"}]`

// ErrBadReply is returned when the contract reply cannot be decoded.
var ErrBadReply = errors.New("ens: unexpected getNames reply")

// ReverseRecords reads the primary ENS name of many addresses in one call.
type ReverseRecords struct {
	c    block.ContractCaller
	addr common.Address
	abi  abi.ABI
}

// NewReverseRecords returns a reader of the ReverseRecords contract at address.
func NewReverseRecords(c block.ContractCaller, address string) (*ReverseRecords, error) {
	parsed, err := abi.JSON(strings.NewReader(reverseRecordsABI))
	if err != nil {
		return nil, fmt.Errorf("ens: parsing abi: %w", err)
	}

	return &ReverseRecords{c: c, addr: common.HexToAddress(address), abi: parsed}, nil
}

// Names returns the primary name of each address keyed by lower-cased address. Addresses without a name are left
// out.
func (r *ReverseRecords) Names(ctx context.Context, addrs []string) (map[string]string, error) {
	in := make([]common.Address, 0, len(addrs))
	for _, a := range addrs {
		if common.IsHexAddress(a) {
			in = append(in, common.HexToAddress(a))
		}
	}

	out := make(map[string]string, len(in))
	if len(in) == 0 {
		return out, nil
	}

	data, err := r.abi.Pack("getNames", in)
	if err != nil {
		return nil, fmt.Errorf("ens: packing getNames: %w", err)
	}

	reply, err := r.c.CallContract(ctx, geth.CallMsg{To: &r.addr, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("ens: calling getNames: %w", err)
	}

	res, err := r.abi.Unpack("getNames", reply)
	if err != nil {
		return nil, fmt.Errorf("ens: unpacking getNames: %w", err)
	}

	if len(res) != 1 {
		return nil, ErrBadReply
	}

	got, ok := res[0].([]string)
	if !ok || len(got) != len(in) {
		return nil, ErrBadReply
	}

	for i, a := range in {
		if got[i] != "" {
			out[strings.ToLower(a.Hex())] = got[i]
		}
	}

	return out, nil
}
