package format

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HexToString decodes a 0x prefixed (or bare) hex string into text. The input is returned when it is not valid hex
// or does not decode into valid UTF-8.
func HexToString(s string) string {
	h := s
	if !strings.HasPrefix(h, "0x") && !strings.HasPrefix(h, "0X") {
		h = "0x" + h
	}

	b, err := hexutil.Decode(h)
	if err != nil || !utf8.Valid(b) {
		return s
	}

	return string(b)
}

// Base64ToString decodes standard base64 into text, returning the input on failure.
func Base64ToString(s string) string {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || !utf8.Valid(b) {
		return s
	}

	return string(b)
}

// ParseJSON returns the decoded JSON value of s, or s itself when it is not JSON.
func ParseJSON(s string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}

	return v
}

// ChecksumAddress returns the EIP-55 form of an EVM address, or the input when it is not one.
func ChecksumAddress(s string) string {
	if !common.IsHexAddress(s) {
		return s
	}

	return common.HexToAddress(s).Hex()
}

// Bech32ToHex converts a bech32 address (ie. axelar1...) into the 0x prefixed hex of its payload.
func Bech32ToHex(s string) string {
	_, data, err := bech32.Decode(s)
	if err != nil {
		return s
	}

	b, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return s
	}

	return "0x" + hex.EncodeToString(b)
}

// HexToBech32 converts a hex payload into a bech32 address with the human readable part hrp.
func HexToBech32(s, hrp string) string {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil || hrp == "" {
		return s
	}

	conv, err := bech32.ConvertBits(b, 8, 5, true)
	if err != nil {
		return s
	}

	out, err := bech32.Encode(hrp, conv)
	if err != nil {
		return s
	}

	return out
}
