package state

import (
	"fmt"
	"math/big"

	"straptledger/native/drop"
)

type storedDrop struct {
	ID                 [32]byte
	Creator            [20]byte
	Asset              string
	GrossAmount        *big.Int
	TotalAmount        *big.Int
	RemainingAmount    *big.Int
	AmountPerRecipient *big.Int
	TotalRecipients    uint32
	ClaimedCount       uint32
	Mode               uint8
	Message            string
	Expiry             *big.Int
	CreatedAt          *big.Int
	Active             bool
}

func newStoredDrop(p *drop.Pool) *storedDrop {
	if p == nil {
		return nil
	}
	return &storedDrop{
		ID:                 p.ID,
		Creator:            p.Creator,
		Asset:              p.Asset,
		GrossAmount:        cloneBigInt(p.GrossAmount),
		TotalAmount:        cloneBigInt(p.TotalAmount),
		RemainingAmount:    cloneBigInt(p.RemainingAmount),
		AmountPerRecipient: cloneBigInt(p.AmountPerRecipient),
		TotalRecipients:    p.TotalRecipients,
		ClaimedCount:       p.ClaimedCount,
		Mode:               uint8(p.Mode),
		Message:            p.Message,
		Expiry:             big.NewInt(p.Expiry),
		CreatedAt:          big.NewInt(p.CreatedAt),
		Active:             p.Active,
	}
}

func (s *storedDrop) toPool() (*drop.Pool, error) {
	if s == nil {
		return nil, fmt.Errorf("state: nil drop record")
	}
	pool := &drop.Pool{
		ID:                 s.ID,
		Creator:            s.Creator,
		Asset:              s.Asset,
		GrossAmount:        cloneBigInt(s.GrossAmount),
		TotalAmount:        cloneBigInt(s.TotalAmount),
		RemainingAmount:    cloneBigInt(s.RemainingAmount),
		AmountPerRecipient: cloneBigInt(s.AmountPerRecipient),
		TotalRecipients:    s.TotalRecipients,
		ClaimedCount:       s.ClaimedCount,
		Mode:               drop.Mode(s.Mode),
		Message:            s.Message,
		Active:             s.Active,
	}
	if s.Expiry != nil {
		pool.Expiry = s.Expiry.Int64()
	}
	if s.CreatedAt != nil {
		pool.CreatedAt = s.CreatedAt.Int64()
	}
	if !pool.Mode.Valid() {
		return nil, fmt.Errorf("state: invalid drop mode %d", s.Mode)
	}
	return pool, nil
}

type storedDropClaim struct {
	Claimant  [20]byte
	Amount    *big.Int
	ClaimedAt *big.Int
}

// DropPut persists the supplied pool keyed by its identifier.
func (m *Manager) DropPut(p *drop.Pool) error {
	if p == nil {
		return fmt.Errorf("state: nil drop record")
	}
	if !p.Mode.Valid() {
		return fmt.Errorf("state: invalid drop record")
	}
	return m.KVPut(dropKey(p.ID), newStoredDrop(p))
}

// DropGet loads the pool stored under the identifier.
func (m *Manager) DropGet(id [32]byte) (*drop.Pool, bool) {
	stored := new(storedDrop)
	ok, err := m.KVGet(dropKey(id), stored)
	if err != nil || !ok {
		return nil, false
	}
	pool, err := stored.toPool()
	if err != nil {
		return nil, false
	}
	return pool, true
}

// DropDelete removes the pool. It exists solely so a creation whose funding
// failed can be rolled back.
func (m *Manager) DropDelete(id [32]byte) error {
	return m.KVDelete(dropKey(id))
}

// DropClaimPut records a claimant's write-once membership in a pool. Claiming
// twice is a conflict surfaced here as well as in the engine.
func (m *Manager) DropClaimPut(id [32]byte, claim *drop.Claim) error {
	if claim == nil {
		return fmt.Errorf("state: nil drop claim")
	}
	key := dropClaimKey(id, claim.Claimant)
	if ok, err := m.KVGet(key, nil); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("state: drop claim already recorded")
	}
	return m.KVPut(key, &storedDropClaim{
		Claimant:  claim.Claimant,
		Amount:    cloneBigInt(claim.Amount),
		ClaimedAt: big.NewInt(claim.ClaimedAt),
	})
}

// DropClaimGet loads the claim row for the (pool, claimant) pair.
func (m *Manager) DropClaimGet(id [32]byte, claimant [20]byte) (*drop.Claim, bool) {
	stored := new(storedDropClaim)
	ok, err := m.KVGet(dropClaimKey(id, claimant), stored)
	if err != nil || !ok {
		return nil, false
	}
	claim := &drop.Claim{Claimant: stored.Claimant, Amount: cloneBigInt(stored.Amount)}
	if stored.ClaimedAt != nil {
		claim.ClaimedAt = stored.ClaimedAt.Int64()
	}
	return claim, true
}

// DropClaimDelete removes a claim row written earlier in a failed operation.
func (m *Manager) DropClaimDelete(id [32]byte, claimant [20]byte) error {
	return m.KVDelete(dropClaimKey(id, claimant))
}
