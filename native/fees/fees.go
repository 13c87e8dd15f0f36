package fees

import (
	"errors"
	"math/big"
)

// MaxRateBps caps the configurable fee rate at 10% of the gross amount.
const MaxRateBps = 1_000

// Basis-point denominator used for all fee arithmetic.
const bpsDenominator = 10_000

var (
	ErrRateOutOfRange = errors.New("fees: rate exceeds maximum basis points")
	ErrInvalidGross   = errors.New("fees: gross amount must be positive")
	ErrFeeConsumesAll = errors.New("fees: fee consumes entire amount")
)

// Policy captures the fee configuration read at creation time: the rate in
// basis points and the collector address the skimmed fee is routed to.
type Policy struct {
	RateBps   uint32
	Collector [20]byte
}

// Valid reports whether the policy rate is within the supported bound.
func (p Policy) Valid() bool {
	return p.RateBps <= MaxRateBps
}

// Result summarises the computed fee and resulting net amount.
type Result struct {
	Fee *big.Int
	Net *big.Int
}

// Apply computes fee = floor(gross*rate/10_000) and net = gross - fee.
// Integer truncation is intentional: the truncated remainder stays with the
// net amount rather than the collector. Apply fails when the fee would
// consume the entire amount, preventing zero-value records.
func Apply(gross *big.Int, rateBps uint32) (Result, error) {
	if rateBps > MaxRateBps {
		return Result{}, ErrRateOutOfRange
	}
	if gross == nil || gross.Sign() <= 0 {
		return Result{}, ErrInvalidGross
	}
	fee := new(big.Int).Mul(gross, new(big.Int).SetUint64(uint64(rateBps)))
	fee.Div(fee, big.NewInt(bpsDenominator))
	net := new(big.Int).Sub(gross, fee)
	if net.Sign() <= 0 {
		return Result{}, ErrFeeConsumesAll
	}
	return Result{Fee: fee, Net: net}, nil
}
