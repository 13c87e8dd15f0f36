package drop

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"straptledger/core/events"
	"straptledger/native/common"
	"straptledger/native/fees"
)

type claimKey struct {
	pool     [32]byte
	claimant [20]byte
}

type mockState struct {
	pools    map[[32]byte]*Pool
	claims   map[claimKey]*Claim
	accounts map[[20]byte]*big.Int
	vault    *big.Int

	failTransferOut bool
}

func newMockState() *mockState {
	return &mockState{
		pools:    make(map[[32]byte]*Pool),
		claims:   make(map[claimKey]*Claim),
		accounts: make(map[[20]byte]*big.Int),
		vault:    big.NewInt(0),
	}
}

func (m *mockState) fund(addr [20]byte, amount int64) {
	m.accounts[addr] = big.NewInt(amount)
}

func (m *mockState) balance(addr [20]byte) *big.Int {
	amount, ok := m.accounts[addr]
	if !ok {
		return big.NewInt(0)
	}
	return amount
}

func (m *mockState) DropPut(p *Pool) error {
	if p == nil {
		return errors.New("nil pool")
	}
	m.pools[p.ID] = p.Clone()
	return nil
}

func (m *mockState) DropGet(id [32]byte) (*Pool, bool) {
	pool, ok := m.pools[id]
	if !ok {
		return nil, false
	}
	return pool.Clone(), true
}

func (m *mockState) DropDelete(id [32]byte) error {
	delete(m.pools, id)
	return nil
}

func (m *mockState) DropClaimPut(id [32]byte, claim *Claim) error {
	key := claimKey{pool: id, claimant: claim.Claimant}
	if _, exists := m.claims[key]; exists {
		return errors.New("claim already recorded")
	}
	m.claims[key] = claim.Clone()
	return nil
}

func (m *mockState) DropClaimGet(id [32]byte, claimant [20]byte) (*Claim, bool) {
	claim, ok := m.claims[claimKey{pool: id, claimant: claimant}]
	if !ok {
		return nil, false
	}
	return claim.Clone(), true
}

func (m *mockState) DropClaimDelete(id [32]byte, claimant [20]byte) error {
	delete(m.claims, claimKey{pool: id, claimant: claimant})
	return nil
}

func (m *mockState) TransferIn(asset string, from [20]byte, amount *big.Int) error {
	balance := m.balance(from)
	if balance.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	m.accounts[from] = new(big.Int).Sub(balance, amount)
	m.vault = new(big.Int).Add(m.vault, amount)
	return nil
}

func (m *mockState) TransferOut(asset string, to [20]byte, amount *big.Int) error {
	if m.failTransferOut {
		return errors.New("transfer out failed")
	}
	if m.vault.Cmp(amount) < 0 {
		return errors.New("vault underflow")
	}
	m.vault = new(big.Int).Sub(m.vault, amount)
	m.accounts[to] = new(big.Int).Add(m.balance(to), amount)
	return nil
}

type stubRegistry struct {
	assets map[string]bool
	policy fees.Policy
	paused map[string]bool
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		assets: map[string]bool{"IDRX": true},
		paused: make(map[string]bool),
	}
}

func (r *stubRegistry) IsAssetSupported(asset string) bool { return r.assets[asset] }

func (r *stubRegistry) FeePolicy() (fees.Policy, error) { return r.policy, nil }

func (r *stubRegistry) IsPaused(module string) bool { return r.paused[module] }

type captureEmitter struct {
	events []events.Event
}

func (c *captureEmitter) Emit(evt events.Event) { c.events = append(c.events, evt) }

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func newTestEngine(t *testing.T) (*Engine, *mockState, *stubRegistry, *captureEmitter) {
	t.Helper()
	state := newMockState()
	registry := newStubRegistry()
	emitter := &captureEmitter{}
	engine := NewEngine()
	engine.SetState(state)
	engine.SetRegistry(registry)
	engine.SetEmitter(emitter)
	engine.SetNowFunc(func() int64 { return 1_000_000 })
	return engine, state, registry, emitter
}

func mustCreate(t *testing.T, engine *Engine, params CreateParams) *Pool {
	t.Helper()
	pool, err := engine.Create(params)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return pool
}

func TestCreateFixedPoolSplitsEvenly(t *testing.T) {
	engine, state, registry, emitter := newTestEngine(t)
	creator := newTestAddress(0x01)
	collector := newTestAddress(0xFE)
	registry.policy = fees.Policy{RateBps: 100, Collector: collector}
	state.fund(creator, 1_000)

	pool := mustCreate(t, engine, CreateParams{
		Creator:         creator,
		Asset:           "idrx",
		Amount:          big.NewInt(1_000),
		TotalRecipients: 3,
		Mode:            ModeFixed,
		Message:         "happy friday",
		Expiry:          1_003_600,
	})
	if pool.TotalAmount.Int64() != 990 {
		t.Fatalf("total = %s, want 990", pool.TotalAmount)
	}
	if pool.AmountPerRecipient.Int64() != 330 {
		t.Fatalf("per recipient = %s, want 330", pool.AmountPerRecipient)
	}
	if !pool.Active || pool.ClaimedCount != 0 {
		t.Fatalf("fresh pool state: %+v", pool)
	}
	if got := state.balance(collector).Int64(); got != 10 {
		t.Fatalf("collector balance = %d, want 10", got)
	}
	if got := state.vault.Int64(); got != 990 {
		t.Fatalf("vault = %d, want 990", got)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType() != events.TypeDropCreated {
		t.Fatalf("expected a single drop.created event, got %v", emitter.events)
	}
}

func TestCreateValidation(t *testing.T) {
	creator := newTestAddress(0x01)
	longMessage := string(bytes.Repeat([]byte("m"), MaxMessageBytes+1))
	cases := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{
			name:    "zero recipients",
			params:  CreateParams{Creator: creator, Asset: "IDRX", Amount: big.NewInt(100), Mode: ModeFixed},
			wantErr: ErrInvalidRecipients,
		},
		{
			name:    "zero amount",
			params:  CreateParams{Creator: creator, Asset: "IDRX", Amount: big.NewInt(0), TotalRecipients: 2, Mode: ModeFixed},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "amount below recipient count",
			params:  CreateParams{Creator: creator, Asset: "IDRX", Amount: big.NewInt(2), TotalRecipients: 3, Mode: ModeRandom},
			wantErr: ErrAmountTooSmall,
		},
		{
			name:    "unsupported asset",
			params:  CreateParams{Creator: creator, Asset: "DOGE", Amount: big.NewInt(100), TotalRecipients: 2, Mode: ModeFixed},
			wantErr: ErrUnsupportedAsset,
		},
		{
			name:    "message too long",
			params:  CreateParams{Creator: creator, Asset: "IDRX", Amount: big.NewInt(100), TotalRecipients: 2, Mode: ModeFixed, Message: longMessage},
			wantErr: ErrMessageTooLong,
		},
		{
			name:    "expiry in the past",
			params:  CreateParams{Creator: creator, Asset: "IDRX", Amount: big.NewInt(100), TotalRecipients: 2, Mode: ModeFixed, Expiry: 999_999},
			wantErr: ErrExpiryOutOfRange,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine, state, _, _ := newTestEngine(t)
			state.fund(creator, 1_000)
			if _, err := engine.Create(tc.params); !errors.Is(err, tc.wantErr) {
				t.Fatalf("create: got %v, want %v", err, tc.wantErr)
			}
			if len(state.pools) != 0 {
				t.Fatal("no pool should persist after a failed create")
			}
		})
	}
}

func TestFixedPoolDrainsToZero(t *testing.T) {
	engine, state, _, _ := newTestEngine(t)
	creator := newTestAddress(0x01)
	state.fund(creator, 999)
	pool := mustCreate(t, engine, CreateParams{
		Creator:         creator,
		Asset:           "IDRX",
		Amount:          big.NewInt(999),
		TotalRecipients: 3,
		Mode:            ModeFixed,
		Expiry:          1_003_600,
	})

	for i := byte(0); i < 3; i++ {
		claimant := newTestAddress(0x10 + i)
		claim, err := engine.Claim(pool.ID, claimant)
		if err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		if claim.Amount.Int64() != 333 {
			t.Fatalf("claim %d amount = %s, want 333", i, claim.Amount)
		}
		if got := state.balance(claimant).Int64(); got != 333 {
			t.Fatalf("claimant %d balance = %d, want 333", i, got)
		}
	}

	drained, err := engine.Get(pool.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if drained.RemainingAmount.Sign() != 0 {
		t.Fatalf("remaining = %s, want 0", drained.RemainingAmount)
	}
	if drained.Active {
		t.Fatal("fully claimed pool must be inactive")
	}
	if drained.ClaimedCount != 3 {
		t.Fatalf("claimed count = %d, want 3", drained.ClaimedCount)
	}
	if got := state.vault.Int64(); got != 0 {
		t.Fatalf("vault = %d, want 0", got)
	}
	if _, err := engine.Claim(pool.ID, newTestAddress(0x20)); !errors.Is(err, ErrInactive) {
		t.Fatalf("claim on drained pool: got %v, want ErrInactive", err)
	}
}

func TestFixedPoolRemainderGoesToFinalClaimant(t *testing.T) {
	engine, state, _, _ := newTestEngine(t)
	creator := newTestAddress(0x01)
	state.fund(creator, 1_000)
	pool := mustCreate(t, engine, CreateParams{
		Creator:         creator,
		Asset:           "IDRX",
		Amount:          big.NewInt(1_000),
		TotalRecipients: 3,
		Mode:            ModeFixed,
		Expiry:          1_003_600,
	})

	// 1000/3 = 333 each, final claimant collects the extra unit.
	amounts := make([]int64, 0, 3)
	for i := byte(0); i < 3; i++ {
		claim, err := engine.Claim(pool.ID, newTestAddress(0x10+i))
		if err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		amounts = append(amounts, claim.Amount.Int64())
	}
	if amounts[0] != 333 || amounts[1] != 333 || amounts[2] != 334 {
		t.Fatalf("amounts = %v, want [333 333 334]", amounts)
	}
	if got := state.vault.Int64(); got != 0 {
		t.Fatalf("vault = %d, want 0", got)
	}
}

func TestRandomPoolConservesAndDrains(t *testing.T) {
	engine, state, _, _ := newTestEngine(t)
	creator := newTestAddress(0x01)
	state.fund(creator, 10_000)
	pool := mustCreate(t, engine, CreateParams{
		Creator:         creator,
		Asset:           "IDRX",
		Amount:          big.NewInt(10_000),
		TotalRecipients: 5,
		Mode:            ModeRandom,
		Expiry:          1_003_600,
	})

	total := int64(0)
	for i := byte(0); i < 5; i++ {
		before, err := engine.Get(pool.ID)
		if err != nil {
			t.Fatalf("get before claim %d: %v", i, err)
		}
		claim, err := engine.Claim(pool.ID, newTestAddress(0x10+i))
		if err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		amount := claim.Amount.Int64()
		if amount < 1 {
			t.Fatalf("claim %d amount = %d, below minimum", i, amount)
		}
		if i < 4 {
			remainingRecipients := int64(5 - i)
			limit := 2 * (before.RemainingAmount.Int64() / remainingRecipients)
			if amount > limit {
				t.Fatalf("claim %d amount = %d exceeds bound %d", i, amount, limit)
			}
		}
		total += amount
	}
	if total != 10_000 {
		t.Fatalf("claims sum to %d, want 10000", total)
	}

	drained, err := engine.Get(pool.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if drained.RemainingAmount.Sign() != 0 || drained.Active {
		t.Fatalf("pool not drained: %+v", drained)
	}
}

func TestClaimOncePerClaimant(t *testing.T) {
	engine, state, _, _ := newTestEngine(t)
	creator := newTestAddress(0x01)
	claimant := newTestAddress(0x10)
	state.fund(creator, 900)
	pool := mustCreate(t, engine, CreateParams{
		Creator:         creator,
		Asset:           "IDRX",
		Amount:          big.NewInt(900),
		TotalRecipients: 3,
		Mode:            ModeFixed,
		Expiry:          1_003_600,
	})
	if _, err := engine.Claim(pool.ID, claimant); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := engine.Claim(pool.ID, claimant); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("second claim: got %v, want ErrAlreadyClaimed", err)
	}
	if claim, ok := engine.HasClaimed(pool.ID, claimant); !ok || claim.Amount.Int64() != 300 {
		t.Fatalf("HasClaimed = %v, %v", claim, ok)
	}
	if _, ok := engine.HasClaimed(pool.ID, newTestAddress(0x11)); ok {
		t.Fatal("unclaimed address must not report a claim")
	}
}

func TestClaimExpiryBoundary(t *testing.T) {
	engine, state, _, _ := newTestEngine(t)
	creator := newTestAddress(0x01)
	state.fund(creator, 900)
	pool := mustCreate(t, engine, CreateParams{
		Creator:         creator,
		Asset:           "IDRX",
		Amount:          big.NewInt(900),
		TotalRecipients: 3,
		Mode:            ModeFixed,
		Expiry:          1_003_600,
	})

	engine.SetNowFunc(func() int64 { return 1_003_600 })
	if _, err := engine.Claim(pool.ID, newTestAddress(0x10)); err != nil {
		t.Fatalf("claim at expiry: %v", err)
	}
	engine.SetNowFunc(func() int64 { return 1_003_601 })
	if _, err := engine.Claim(pool.ID, newTestAddress(0x11)); !errors.Is(err, ErrClaimExpired) {
		t.Fatalf("claim past expiry: got %v, want ErrClaimExpired", err)
	}
}

func TestRefundExpired(t *testing.T) {
	engine, state, _, emitter := newTestEngine(t)
	creator := newTestAddress(0x01)
	state.fund(creator, 900)
	pool := mustCreate(t, engine, CreateParams{
		Creator:         creator,
		Asset:           "IDRX",
		Amount:          big.NewInt(900),
		TotalRecipients: 3,
		Mode:            ModeFixed,
		Expiry:          1_003_600,
	})
	if _, err := engine.Claim(pool.ID, newTestAddress(0x10)); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := engine.RefundExpired(pool.ID, creator); !errors.Is(err, ErrNotExpired) {
		t.Fatalf("refund before expiry: got %v, want ErrNotExpired", err)
	}
	engine.SetNowFunc(func() int64 { return 1_003_601 })
	if _, err := engine.RefundExpired(pool.ID, newTestAddress(0x09)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refund by outsider: got %v, want ErrUnauthorized", err)
	}
	refunded, err := engine.RefundExpired(pool.ID, creator)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.RemainingAmount.Sign() != 0 || refunded.Active {
		t.Fatalf("refunded pool state: %+v", refunded)
	}
	if got := state.balance(creator).Int64(); got != 600 {
		t.Fatalf("creator balance = %d, want 600", got)
	}
	if emitter.events[len(emitter.events)-1].EventType() != events.TypeDropRefunded {
		t.Fatal("expected drop.refunded event")
	}
	if _, err := engine.RefundExpired(pool.ID, creator); !errors.Is(err, ErrInactive) {
		t.Fatalf("second refund: got %v, want ErrInactive", err)
	}
}

func TestClaimTransferFailureRestoresPool(t *testing.T) {
	engine, state, _, _ := newTestEngine(t)
	creator := newTestAddress(0x01)
	claimant := newTestAddress(0x10)
	state.fund(creator, 900)
	pool := mustCreate(t, engine, CreateParams{
		Creator:         creator,
		Asset:           "IDRX",
		Amount:          big.NewInt(900),
		TotalRecipients: 3,
		Mode:            ModeFixed,
		Expiry:          1_003_600,
	})

	state.failTransferOut = true
	if _, err := engine.Claim(pool.ID, claimant); err == nil {
		t.Fatal("claim should fail when the custody transfer fails")
	}
	restored, err := engine.Get(pool.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if restored.ClaimedCount != 0 || restored.RemainingAmount.Int64() != 900 {
		t.Fatalf("pool must be restored after a failed claim, got %+v", restored)
	}
	if _, ok := engine.HasClaimed(pool.ID, claimant); ok {
		t.Fatal("failed claim must not leave a membership row")
	}

	state.failTransferOut = false
	if _, err := engine.Claim(pool.ID, claimant); err != nil {
		t.Fatalf("claim after recovery: %v", err)
	}
}

func TestPausedModuleRejectsOperations(t *testing.T) {
	engine, state, registry, _ := newTestEngine(t)
	creator := newTestAddress(0x01)
	state.fund(creator, 900)
	registry.paused[ModuleName] = true
	_, err := engine.Create(CreateParams{
		Creator:         creator,
		Asset:           "IDRX",
		Amount:          big.NewInt(900),
		TotalRecipients: 3,
		Mode:            ModeFixed,
	})
	if !errors.Is(err, common.ErrModulePaused) {
		t.Fatalf("create while paused: got %v, want ErrModulePaused", err)
	}
}

func TestCreateRejectsIDCollision(t *testing.T) {
	engine, state, _, _ := newTestEngine(t)
	creator := newTestAddress(0x01)
	state.fund(creator, 2_000)
	params := CreateParams{
		Creator:         creator,
		Asset:           "IDRX",
		Amount:          big.NewInt(900),
		TotalRecipients: 3,
		Mode:            ModeFixed,
		Expiry:          1_003_600,
	}
	if _, err := engine.Create(params); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := engine.Create(params); !errors.Is(err, ErrIDCollision) {
		t.Fatalf("second create: got %v, want ErrIDCollision", err)
	}
}
