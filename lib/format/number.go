// Package format renders raw numeric, time and string values into display strings.
//
// Every formatter is a pure function. Decoders never fail: when the input cannot be parsed they return it unchanged.
package format

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// units are the abbreviations used for values of 1000 and above, one per power of 1000.
var units = []string{"", "K", "M", "B", "T"}

// Number formats v with the display precision rules of the explorer:
//
// - |v| < 1 keeps full precision (shortest representation),
//
// - 1 <= |v| < 1000 keeps at most maxDecimals decimals,
//
// - |v| >= 1000 is abbreviated with K, M, B or T and keeps at most maxDecimals decimals.
//
// Extra decimals are truncated toward zero, never rounded, and trailing zeros are trimmed, so 999.999 renders as
// "999.99" and 1999 as "1.99K".
func Number(v float64, maxDecimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if maxDecimals < 0 {
		maxDecimals = 0
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v < 1 {
		if s == "0" {
			return s
		}

		return sign + s
	}

	ip, fp := split(s)

	// number of thousands groups to move into the fraction
	k := (len(ip) - 1) / 3
	if k >= len(units) {
		k = len(units) - 1
	}

	ip, fp = shift(ip, fp, 3*k)
	if len(ip) > 3 {
		ip = comma(ip)
	}

	return sign + join(ip, truncate(fp, maxDecimals)) + units[k]
}

// Grouped formats v with comma separated thousands and at most decimals truncated decimals (ie. 1234567.891 with 2
// decimals is "1,234,567.89").
func Grouped(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	ip, fp := split(strconv.FormatFloat(v, 'f', -1, 64))

	out := join(comma(ip), truncate(fp, decimals))
	if out == "0" {
		return out
	}

	return sign + out
}

// Units converts an integer amount of base units (decimal or 0x prefixed hexadecimal) into its decimal value for the
// given number of decimals (ie. "1500000" with 6 decimals is "1.5"). The amount is returned unchanged when it cannot
// be parsed.
func Units(amount string, decimals int) string {
	s, base := strings.TrimSpace(amount), 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}

	n, ok := new(big.Int).SetString(s, base)
	if !ok || decimals < 0 {
		return amount
	}

	sign := ""
	if n.Sign() < 0 {
		sign = "-"
		n.Neg(n)
	}

	digits := n.String()
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	out := join(digits[:len(digits)-decimals], strings.TrimRight(digits[len(digits)-decimals:], "0"))
	if out == "0" {
		return out
	}

	return sign + out
}

// split returns the integer and fraction digits of a plain decimal string.
func split(s string) (string, string) {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i], s[i+1:]
	}

	return s, ""
}

// shift moves the decimal point n digits to the left.
func shift(ip, fp string, n int) (string, string) {
	if n == 0 {
		return ip, fp
	}

	point := len(ip) - n

	return ip[:point], ip[point:] + fp
}

func truncate(fp string, n int) string {
	if n < 0 {
		n = 0
	}
	if len(fp) > n {
		fp = fp[:n]
	}

	return strings.TrimRight(fp, "0")
}

func join(ip, fp string) string {
	if fp == "" {
		return ip
	}

	return ip + "." + fp
}

func comma(ip string) string {
	n, ok := new(big.Int).SetString(ip, 10)
	if !ok {
		return ip
	}

	return humanize.BigComma(n)
}
