package drop

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"straptledger/core/events"
	"straptledger/native/common"
	"straptledger/native/fees"
	"straptledger/native/transfer"
)

// ModuleName identifies the engine for pause guards and metrics labels.
const ModuleName = "drop"

var (
	errNilState    = errors.New("drop engine: state not configured")
	errNilRegistry = errors.New("drop engine: registry not configured")
)

var dropDomain = []byte("strapt/drop")

// poolState is the subset of state manager functionality the engine needs.
type poolState interface {
	DropPut(*Pool) error
	DropGet(id [32]byte) (*Pool, bool)
	DropDelete(id [32]byte) error
	DropClaimPut(id [32]byte, claim *Claim) error
	DropClaimGet(id [32]byte, claimant [20]byte) (*Claim, bool)
	DropClaimDelete(id [32]byte, claimant [20]byte) error
	TransferIn(asset string, from [20]byte, amount *big.Int) error
	TransferOut(asset string, to [20]byte, amount *big.Int) error
}

type accessView interface {
	IsAssetSupported(asset string) bool
	FeePolicy() (fees.Policy, error)
	IsPaused(module string) bool
}

type opsObserver interface {
	ObserveDropOp(op, asset string)
}

// CreateParams carries the caller-supplied definition of a new pool.
type CreateParams struct {
	Creator         [20]byte
	Asset           string
	Amount          *big.Int
	TotalRecipients uint32
	Mode            Mode
	Message         string
	Expiry          int64 // unix seconds; zero selects the default window
}

// Engine runs the multi-claimant pool variant of the escrow machine: one
// funding event, up to TotalRecipients claim-once payouts, and a creator
// reclaim of the unclaimed remainder after expiry. Pool mutations are
// persisted before the custody transfer they pay for.
type Engine struct {
	state    poolState
	registry accessView
	emitter  events.Emitter
	metrics  opsObserver
	latch    common.ReentrancyLatch
	nowFn    func() int64

	defaultWindow int64
	maxWindow     int64
}

// NewEngine creates a drop engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{
		emitter:       events.NoopEmitter{},
		nowFn:         func() int64 { return time.Now().Unix() },
		defaultWindow: transfer.DefaultExpiryWindow,
		maxWindow:     transfer.MaxExpiryWindow,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state poolState) { e.state = state }

// SetRegistry configures the access registry consulted at creation time.
func (e *Engine) SetRegistry(registry accessView) { e.registry = registry }

// SetEmitter configures the event emitter. Passing nil resets the emitter to a
// no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetMetrics configures the operation observer.
func (e *Engine) SetMetrics(metrics opsObserver) { e.metrics = metrics }

// SetNowFunc overrides the time source used by the engine.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetExpiryWindows overrides the default and maximum expiry windows, in
// seconds from creation. Non-positive values keep the current setting.
func (e *Engine) SetExpiryWindows(defaultWindow, maxWindow int64) {
	if defaultWindow > 0 {
		e.defaultWindow = defaultWindow
	}
	if maxWindow > 0 {
		e.maxWindow = maxWindow
	}
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) observe(op, asset string) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.ObserveDropOp(op, asset)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.registry == nil {
		return errNilRegistry
	}
	return common.Guard(e.registry, ModuleName)
}

// DeriveID computes the pool identifier from the defining parameters plus the
// creation timestamp.
func DeriveID(creator [20]byte, asset string, gross []byte, totalRecipients uint32, mode Mode, expiry, createdAt int64) [32]byte {
	var countBuf [4]byte
	var expiryBuf, createdBuf [8]byte
	binary.BigEndian.PutUint32(countBuf[:], totalRecipients)
	binary.BigEndian.PutUint64(expiryBuf[:], uint64(expiry))
	binary.BigEndian.PutUint64(createdBuf[:], uint64(createdAt))
	hash := ethcrypto.Keccak256(
		dropDomain,
		creator[:],
		[]byte(asset),
		gross,
		countBuf[:],
		[]byte{byte(mode)},
		expiryBuf[:],
		createdBuf[:],
	)
	var id [32]byte
	copy(id[:], hash)
	return id
}

// Create validates the parameters, skims the creation fee and persists the
// pool before pulling the gross amount into the asset vault. In fixed mode the
// per-recipient share is computed once here by integer division.
func (e *Engine) Create(params CreateParams) (*Pool, error) {
	if err := e.latch.Enter(); err != nil {
		return nil, err
	}
	defer e.latch.Exit()
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !params.Mode.Valid() {
		return nil, fmt.Errorf("drop: invalid mode %d", params.Mode)
	}
	if params.TotalRecipients == 0 {
		return nil, ErrInvalidRecipients
	}
	if len(params.Message) > MaxMessageBytes {
		return nil, ErrMessageTooLong
	}
	asset := strings.ToUpper(strings.TrimSpace(params.Asset))
	if !e.registry.IsAssetSupported(asset) {
		return nil, ErrUnsupportedAsset
	}
	gross := cloneBigInt(params.Amount)
	if gross.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	now := e.now()
	expiry := params.Expiry
	if expiry == 0 {
		expiry = now + e.defaultWindow
	}
	if expiry < now || expiry > now+e.maxWindow {
		return nil, ErrExpiryOutOfRange
	}
	policy, err := e.registry.FeePolicy()
	if err != nil {
		return nil, err
	}
	result, err := fees.Apply(gross, policy.RateBps)
	if err != nil {
		return nil, err
	}
	recipients := new(big.Int).SetUint64(uint64(params.TotalRecipients))
	if result.Net.Cmp(recipients) < 0 {
		return nil, ErrAmountTooSmall
	}
	perRecipient := big.NewInt(0)
	if params.Mode == ModeFixed {
		perRecipient = new(big.Int).Div(result.Net, recipients)
	}

	id := DeriveID(params.Creator, asset, gross.Bytes(), params.TotalRecipients, params.Mode, expiry, now)
	if _, exists := e.state.DropGet(id); exists {
		return nil, ErrIDCollision
	}

	pool := &Pool{
		ID:                 id,
		Creator:            params.Creator,
		Asset:              asset,
		GrossAmount:        gross,
		TotalAmount:        result.Net,
		RemainingAmount:    cloneBigInt(result.Net),
		AmountPerRecipient: perRecipient,
		TotalRecipients:    params.TotalRecipients,
		Mode:               params.Mode,
		Message:            params.Message,
		Expiry:             expiry,
		CreatedAt:          now,
		Active:             true,
	}
	if err := e.state.DropPut(pool); err != nil {
		return nil, err
	}
	if err := e.state.TransferIn(asset, params.Creator, gross); err != nil {
		_ = e.state.DropDelete(id)
		return nil, err
	}
	if result.Fee.Sign() > 0 {
		if err := e.state.TransferOut(asset, policy.Collector, result.Fee); err != nil {
			_ = e.state.TransferOut(asset, params.Creator, gross)
			_ = e.state.DropDelete(id)
			return nil, err
		}
	}
	e.emit(events.DropCreated{
		ID:              id,
		Creator:         params.Creator,
		Asset:           asset,
		GrossAmount:     gross,
		TotalAmount:     pool.TotalAmount,
		Fee:             result.Fee,
		TotalRecipients: params.TotalRecipients,
		Random:          params.Mode == ModeRandom,
		Expiry:          expiry,
		CreatedAt:       now,
	})
	e.observe("create", asset)
	return pool.Clone(), nil
}

// Claim pays the caller their share of the pool. Each claimant may claim at
// most once; the final claimant receives exactly the remaining balance in
// either mode, so a fully claimed pool always drains to zero. The pool and
// membership writes are persisted before the custody transfer.
func (e *Engine) Claim(id [32]byte, caller [20]byte) (*Claim, error) {
	if err := e.latch.Enter(); err != nil {
		return nil, err
	}
	defer e.latch.Exit()
	if err := e.ready(); err != nil {
		return nil, err
	}
	pool, ok := e.state.DropGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	if !pool.Active {
		return nil, ErrInactive
	}
	now := e.now()
	if now > pool.Expiry {
		return nil, ErrClaimExpired
	}
	if _, claimed := e.state.DropClaimGet(id, caller); claimed {
		return nil, ErrAlreadyClaimed
	}

	var amount *big.Int
	switch {
	case pool.ClaimedCount == pool.TotalRecipients-1:
		amount = cloneBigInt(pool.RemainingAmount)
	case pool.Mode == ModeFixed:
		amount = cloneBigInt(pool.AmountPerRecipient)
	default:
		amount = RandomShare(pool.RemainingAmount, pool.TotalRecipients, pool.ClaimedCount, now, caller, id)
	}
	if amount.Sign() <= 0 || amount.Cmp(pool.RemainingAmount) > 0 {
		return nil, fmt.Errorf("drop: allocation out of bounds")
	}

	original := pool.Clone()
	pool.RemainingAmount = new(big.Int).Sub(pool.RemainingAmount, amount)
	pool.ClaimedCount++
	if pool.ClaimedCount == pool.TotalRecipients {
		pool.Active = false
	}
	claim := &Claim{Claimant: caller, Amount: amount, ClaimedAt: now}
	if err := e.state.DropClaimPut(id, claim); err != nil {
		return nil, err
	}
	if err := e.state.DropPut(pool); err != nil {
		_ = e.state.DropClaimDelete(id, caller)
		return nil, err
	}
	if err := e.state.TransferOut(pool.Asset, caller, amount); err != nil {
		if restoreErr := e.state.DropPut(original); restoreErr != nil {
			return nil, fmt.Errorf("drop: claim rollback failed: %w", restoreErr)
		}
		_ = e.state.DropClaimDelete(id, caller)
		return nil, err
	}
	e.emit(events.DropClaimed{
		ID:           id,
		Claimant:     caller,
		Asset:        pool.Asset,
		Amount:       amount,
		Remaining:    pool.RemainingAmount,
		ClaimedCount: pool.ClaimedCount,
	})
	e.observe("claim", pool.Asset)
	return claim.Clone(), nil
}

// RefundExpired returns the unclaimed remainder to the creator once the pool
// has expired. Only the creator may invoke it, strictly after expiry.
func (e *Engine) RefundExpired(id [32]byte, caller [20]byte) (*Pool, error) {
	if err := e.latch.Enter(); err != nil {
		return nil, err
	}
	defer e.latch.Exit()
	if err := e.ready(); err != nil {
		return nil, err
	}
	pool, ok := e.state.DropGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	if !pool.Active {
		return nil, ErrInactive
	}
	if caller != pool.Creator {
		return nil, ErrUnauthorized
	}
	if e.now() <= pool.Expiry {
		return nil, ErrNotExpired
	}
	remainder := cloneBigInt(pool.RemainingAmount)
	if remainder.Sign() <= 0 {
		return nil, ErrNothingToRefund
	}

	original := pool.Clone()
	pool.RemainingAmount = big.NewInt(0)
	pool.Active = false
	if err := e.state.DropPut(pool); err != nil {
		return nil, err
	}
	if err := e.state.TransferOut(pool.Asset, pool.Creator, remainder); err != nil {
		if restoreErr := e.state.DropPut(original); restoreErr != nil {
			return nil, fmt.Errorf("drop: refund rollback failed: %w", restoreErr)
		}
		return nil, err
	}
	e.emit(events.DropRefunded{
		ID:      id,
		Creator: pool.Creator,
		Asset:   pool.Asset,
		Amount:  remainder,
	})
	e.observe("refund", pool.Asset)
	return pool.Clone(), nil
}

// Get returns a copy of the stored pool. It never mutates state.
func (e *Engine) Get(id [32]byte) (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pool, ok := e.state.DropGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return pool.Clone(), nil
}

// HasClaimed reports whether the claimant already claimed from the pool,
// returning the recorded claim when present. It never mutates state.
func (e *Engine) HasClaimed(id [32]byte, claimant [20]byte) (*Claim, bool) {
	if e == nil || e.state == nil {
		return nil, false
	}
	claim, ok := e.state.DropClaimGet(id, claimant)
	if !ok {
		return nil, false
	}
	return claim.Clone(), true
}
