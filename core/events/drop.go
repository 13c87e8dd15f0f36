package events

import (
	"encoding/hex"
	"math/big"

	"straptledger/core/types"
)

const (
	TypeDropCreated  = "drop.created"
	TypeDropClaimed  = "drop.claimed"
	TypeDropRefunded = "drop.refunded"
)

// DropCreated is emitted when a new drop pool is persisted and funded.
type DropCreated struct {
	ID              [32]byte
	Creator         [20]byte
	Asset           string
	GrossAmount     *big.Int
	TotalAmount     *big.Int
	Fee             *big.Int
	TotalRecipients uint32
	Random          bool
	Expiry          int64
	CreatedAt       int64
}

func (DropCreated) EventType() string { return TypeDropCreated }

func (e DropCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeDropCreated,
		Attributes: map[string]string{
			"id":              hex.EncodeToString(e.ID[:]),
			"creator":         hex.EncodeToString(e.Creator[:]),
			"asset":           normalizeAsset(e.Asset),
			"grossAmount":     formatAmount(e.GrossAmount),
			"totalAmount":     formatAmount(e.TotalAmount),
			"fee":             formatAmount(e.Fee),
			"totalRecipients": uintToString(uint64(e.TotalRecipients)),
			"random":          boolToString(e.Random),
			"expiry":          intToString(e.Expiry),
			"createdAt":       intToString(e.CreatedAt),
		},
	}
}

// DropClaimed is emitted for every successful pool claim.
type DropClaimed struct {
	ID           [32]byte
	Claimant     [20]byte
	Asset        string
	Amount       *big.Int
	Remaining    *big.Int
	ClaimedCount uint32
}

func (DropClaimed) EventType() string { return TypeDropClaimed }

func (e DropClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeDropClaimed,
		Attributes: map[string]string{
			"id":           hex.EncodeToString(e.ID[:]),
			"claimant":     hex.EncodeToString(e.Claimant[:]),
			"asset":        normalizeAsset(e.Asset),
			"amount":       formatAmount(e.Amount),
			"remaining":    formatAmount(e.Remaining),
			"claimedCount": uintToString(uint64(e.ClaimedCount)),
		},
	}
}

// DropRefunded is emitted when the creator reclaims the unclaimed remainder of
// an expired pool.
type DropRefunded struct {
	ID      [32]byte
	Creator [20]byte
	Asset   string
	Amount  *big.Int
}

func (DropRefunded) EventType() string { return TypeDropRefunded }

func (e DropRefunded) Event() *types.Event {
	return &types.Event{
		Type: TypeDropRefunded,
		Attributes: map[string]string{
			"id":      hex.EncodeToString(e.ID[:]),
			"creator": hex.EncodeToString(e.Creator[:]),
			"asset":   normalizeAsset(e.Asset),
			"amount":  formatAmount(e.Amount),
		},
	}
}
