package drop

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// splitFactor derives a pseudo-random factor in [0, 100) from a hash over the
// claim context. The inputs are observable by anyone watching the ledger, so
// the factor is a bounded-variance heuristic, not an unpredictable draw; it
// must not be relied on where claim order or timing is adversarially
// controllable for profit.
func splitFactor(timestamp int64, claimant [20]byte, poolID [32]byte, claimedCount uint32) uint64 {
	var tsBuf [8]byte
	var countBuf [4]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(timestamp))
	binary.BigEndian.PutUint32(countBuf[:], claimedCount)
	hash := ethcrypto.Keccak256(tsBuf[:], claimant[:], poolID[:], countBuf[:])
	return binary.BigEndian.Uint64(hash[:8]) % 100
}

// RandomShare computes the next claimant's allocation from a shrinking pool.
// The final claimant receives exactly the remaining balance so the pool
// drains to zero with no dust. Earlier claimants receive a value in roughly
// [average, average*1.99], clamped so no claim exceeds twice the average and
// one unit stays reserved for every later claimant, and floored at one unit.
func RandomShare(remaining *big.Int, totalRecipients, claimedCount uint32, timestamp int64, claimant [20]byte, poolID [32]byte) *big.Int {
	remaining = cloneBigInt(remaining)
	if remaining.Sign() <= 0 || claimedCount >= totalRecipients {
		return big.NewInt(0)
	}
	if claimedCount == totalRecipients-1 {
		return remaining
	}
	remainingRecipients := int64(totalRecipients - claimedCount)
	average := new(big.Int).Div(remaining, big.NewInt(remainingRecipients))
	factor := splitFactor(timestamp, claimant, poolID, claimedCount)

	allocation := new(big.Int).Mul(average, new(big.Int).SetUint64(factor+100))
	allocation.Div(allocation, big.NewInt(100))

	// Each later claimant keeps at least one unit claimable.
	limit := new(big.Int).Lsh(average, 1)
	reserve := new(big.Int).Sub(remaining, big.NewInt(remainingRecipients-1))
	if limit.Cmp(reserve) > 0 {
		limit.Set(reserve)
	}
	if allocation.Cmp(limit) > 0 {
		allocation.Set(limit)
	}
	if allocation.Sign() <= 0 {
		allocation.SetInt64(1)
	}
	return allocation
}
