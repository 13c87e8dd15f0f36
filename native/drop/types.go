package drop

import "math/big"

// Mode selects how the pool is divided across claimants.
type Mode uint8

const (
	ModeFixed  Mode = 0x01 // equal share computed once at creation
	ModeRandom Mode = 0x02 // bounded-variance pseudo-random share
)

// Valid reports whether the mode value is within the supported range.
func (m Mode) Valid() bool {
	switch m {
	case ModeFixed, ModeRandom:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeRandom:
		return "random"
	default:
		return "unknown"
	}
}

// MaxMessageBytes bounds the opaque pool annotation.
const MaxMessageBytes = 256

// Pool is a single funding event split across up to TotalRecipients
// claimants. TotalAmount is net of the creation fee; RemainingAmount only ever
// decreases and the final claimant always drains it to zero.
type Pool struct {
	ID                 [32]byte
	Creator            [20]byte
	Asset              string
	GrossAmount        *big.Int
	TotalAmount        *big.Int
	RemainingAmount    *big.Int
	AmountPerRecipient *big.Int // fixed mode only, zero otherwise
	TotalRecipients    uint32
	ClaimedCount       uint32
	Mode               Mode
	Message            string
	Expiry             int64
	CreatedAt          int64
	Active             bool
}

// Clone returns a deep copy of the pool so callers can safely mutate the copy
// without affecting the stored instance.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := *p
	clone.GrossAmount = cloneBigInt(p.GrossAmount)
	clone.TotalAmount = cloneBigInt(p.TotalAmount)
	clone.RemainingAmount = cloneBigInt(p.RemainingAmount)
	clone.AmountPerRecipient = cloneBigInt(p.AmountPerRecipient)
	return &clone
}

// Claim records a single claimant's write-once membership in a pool.
type Claim struct {
	Claimant  [20]byte
	Amount    *big.Int
	ClaimedAt int64
}

// Clone returns a deep copy of the claim row.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Amount = cloneBigInt(c.Amount)
	return &clone
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
