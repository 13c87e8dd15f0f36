package transfer

import "math/big"

// Kind distinguishes direct transfers (bound recipient) from link transfers
// (bearer, claimable by whoever presents the id and password).
type Kind uint8

const (
	KindDirect Kind = 0x01
	KindLink   Kind = 0x02
)

// Valid reports whether the kind value is within the supported range.
func (k Kind) Valid() bool {
	switch k {
	case KindDirect, KindLink:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// Status represents the lifecycle state of an escrow record. Values start at
// 0x01 so a zero-valued status can never be mistaken for a live record;
// existence is reported separately by state lookups.
type Status uint8

const (
	StatusPending  Status = 0x01
	StatusClaimed  Status = 0x02
	StatusRefunded Status = 0x03
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusClaimed, StatusRefunded:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusClaimed:
		return "claimed"
	case StatusRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// Record captures a single locked-value entry awaiting claim or refund. The
// identifier is a keccak256 hash over the defining parameters plus the
// creation timestamp, so ids are unguessable before creation yet reproducible
// from the same inputs.
type Record struct {
	ID           [32]byte
	Kind         Kind
	Creator      [20]byte
	Recipient    [20]byte // zero address when the transfer is bearer
	Asset        string
	GrossAmount  *big.Int // original requested value, audit only
	NetAmount    *big.Int // payable on claim, fixed at creation
	Expiry       int64
	PasswordHash [32]byte
	HasPassword  bool
	Status       Status
	CreatedAt    int64
}

// HasRecipient reports whether a claimant restriction is bound to the record.
func (r *Record) HasRecipient() bool {
	return r != nil && r.Recipient != ([20]byte{})
}

// Clone returns a deep copy of the record so callers can safely mutate the
// copy without affecting the stored instance.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	if r.GrossAmount != nil {
		clone.GrossAmount = new(big.Int).Set(r.GrossAmount)
	} else {
		clone.GrossAmount = big.NewInt(0)
	}
	if r.NetAmount != nil {
		clone.NetAmount = new(big.Int).Set(r.NetAmount)
	} else {
		clone.NetAmount = big.NewInt(0)
	}
	return &clone
}
