package state

import (
	"fmt"
	"math/big"

	"straptledger/native/transfer"
)

// storedTransfer mirrors transfer.Record with RLP-friendly field types;
// timestamps are carried as big.Int because RLP has no signed integers.
type storedTransfer struct {
	ID           [32]byte
	Kind         uint8
	Creator      [20]byte
	Recipient    [20]byte
	Asset        string
	GrossAmount  *big.Int
	NetAmount    *big.Int
	Expiry       *big.Int
	PasswordHash [32]byte
	HasPassword  bool
	Status       uint8
	CreatedAt    *big.Int
}

func newStoredTransfer(r *transfer.Record) *storedTransfer {
	if r == nil {
		return nil
	}
	return &storedTransfer{
		ID:           r.ID,
		Kind:         uint8(r.Kind),
		Creator:      r.Creator,
		Recipient:    r.Recipient,
		Asset:        r.Asset,
		GrossAmount:  cloneBigInt(r.GrossAmount),
		NetAmount:    cloneBigInt(r.NetAmount),
		Expiry:       big.NewInt(r.Expiry),
		PasswordHash: r.PasswordHash,
		HasPassword:  r.HasPassword,
		Status:       uint8(r.Status),
		CreatedAt:    big.NewInt(r.CreatedAt),
	}
}

func (s *storedTransfer) toRecord() (*transfer.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("state: nil transfer record")
	}
	record := &transfer.Record{
		ID:           s.ID,
		Kind:         transfer.Kind(s.Kind),
		Creator:      s.Creator,
		Recipient:    s.Recipient,
		Asset:        s.Asset,
		GrossAmount:  cloneBigInt(s.GrossAmount),
		NetAmount:    cloneBigInt(s.NetAmount),
		PasswordHash: s.PasswordHash,
		HasPassword:  s.HasPassword,
		Status:       transfer.Status(s.Status),
	}
	if s.Expiry != nil {
		record.Expiry = s.Expiry.Int64()
	}
	if s.CreatedAt != nil {
		record.CreatedAt = s.CreatedAt.Int64()
	}
	if !record.Kind.Valid() {
		return nil, fmt.Errorf("state: invalid transfer kind %d", s.Kind)
	}
	if !record.Status.Valid() {
		return nil, fmt.Errorf("state: invalid transfer status %d", s.Status)
	}
	return record, nil
}

// TransferPut persists the supplied record keyed by its identifier.
func (m *Manager) TransferPut(r *transfer.Record) error {
	if r == nil {
		return fmt.Errorf("state: nil transfer record")
	}
	if !r.Kind.Valid() || !r.Status.Valid() {
		return fmt.Errorf("state: invalid transfer record")
	}
	return m.KVPut(transferKey(r.ID), newStoredTransfer(r))
}

// TransferGet loads the record stored under the identifier. The boolean is
// false when no record exists.
func (m *Manager) TransferGet(id [32]byte) (*transfer.Record, bool) {
	stored := new(storedTransfer)
	ok, err := m.KVGet(transferKey(id), stored)
	if err != nil || !ok {
		return nil, false
	}
	record, err := stored.toRecord()
	if err != nil {
		return nil, false
	}
	return record, true
}

// TransferDelete removes the record. Terminal records are never deleted; this
// exists solely so a creation whose funding failed can be rolled back.
func (m *Manager) TransferDelete(id [32]byte) error {
	return m.KVDelete(transferKey(id))
}
