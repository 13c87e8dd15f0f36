package events

import (
	"encoding/hex"
	"math/big"

	"straptledger/core/types"
)

const (
	TypeTransferCreated       = "transfer.created"
	TypeTransferClaimed       = "transfer.claimed"
	TypeTransferRefunded      = "transfer.refunded"
	TypeTransferInstantRefund = "transfer.instant_refunded"
)

// TransferCreated is emitted when a new escrow record is persisted and funded.
type TransferCreated struct {
	ID          [32]byte
	Creator     [20]byte
	Recipient   [20]byte
	Asset       string
	GrossAmount *big.Int
	NetAmount   *big.Int
	Fee         *big.Int
	Expiry      int64
	CreatedAt   int64
}

func (TransferCreated) EventType() string { return TypeTransferCreated }

func (e TransferCreated) Event() *types.Event {
	attrs := map[string]string{
		"id":          hex.EncodeToString(e.ID[:]),
		"creator":     hex.EncodeToString(e.Creator[:]),
		"asset":       normalizeAsset(e.Asset),
		"grossAmount": formatAmount(e.GrossAmount),
		"netAmount":   formatAmount(e.NetAmount),
		"fee":         formatAmount(e.Fee),
		"expiry":      intToString(e.Expiry),
		"createdAt":   intToString(e.CreatedAt),
	}
	if e.Recipient != ([20]byte{}) {
		attrs["recipient"] = hex.EncodeToString(e.Recipient[:])
	}
	return &types.Event{Type: TypeTransferCreated, Attributes: attrs}
}

// TransferClaimed is emitted when a pending record is claimed.
type TransferClaimed struct {
	ID       [32]byte
	Claimant [20]byte
	Asset    string
	Amount   *big.Int
}

func (TransferClaimed) EventType() string { return TypeTransferClaimed }

func (e TransferClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeTransferClaimed,
		Attributes: map[string]string{
			"id":       hex.EncodeToString(e.ID[:]),
			"claimant": hex.EncodeToString(e.Claimant[:]),
			"asset":    normalizeAsset(e.Asset),
			"amount":   formatAmount(e.Amount),
		},
	}
}

// TransferRefunded is emitted when the creator reclaims a record after its
// expiry.
type TransferRefunded struct {
	ID      [32]byte
	Creator [20]byte
	Asset   string
	Amount  *big.Int
}

func (TransferRefunded) EventType() string { return TypeTransferRefunded }

func (e TransferRefunded) Event() *types.Event {
	return &types.Event{
		Type: TypeTransferRefunded,
		Attributes: map[string]string{
			"id":      hex.EncodeToString(e.ID[:]),
			"creator": hex.EncodeToString(e.Creator[:]),
			"asset":   normalizeAsset(e.Asset),
			"amount":  formatAmount(e.Amount),
		},
	}
}

// TransferInstantRefunded is emitted when the creator reclaims a record before
// its expiry.
type TransferInstantRefunded struct {
	ID      [32]byte
	Creator [20]byte
	Asset   string
	Amount  *big.Int
}

func (TransferInstantRefunded) EventType() string { return TypeTransferInstantRefund }

func (e TransferInstantRefunded) Event() *types.Event {
	return &types.Event{
		Type: TypeTransferInstantRefund,
		Attributes: map[string]string{
			"id":      hex.EncodeToString(e.ID[:]),
			"creator": hex.EncodeToString(e.Creator[:]),
			"asset":   normalizeAsset(e.Asset),
			"amount":  formatAmount(e.Amount),
		},
	}
}
