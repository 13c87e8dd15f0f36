package transfer

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"straptledger/core/events"
	"straptledger/native/common"
	"straptledger/native/fees"
)

// ModuleName identifies the engine for pause guards and metrics labels.
const ModuleName = "transfer"

// Default and maximum distance between creation and expiry. A zero expiry in
// the creation parameters selects the default window.
const (
	DefaultExpiryWindow = int64(24 * time.Hour / time.Second)
	MaxExpiryWindow     = int64(30 * 24 * time.Hour / time.Second)
)

var (
	errNilState    = errors.New("transfer engine: state not configured")
	errNilRegistry = errors.New("transfer engine: registry not configured")
)

// ledgerState is the subset of state manager functionality the engine needs:
// record persistence plus the external custody primitive. Custody calls are
// assumed atomic; their failure aborts the enclosing operation.
type ledgerState interface {
	TransferPut(*Record) error
	TransferGet(id [32]byte) (*Record, bool)
	TransferDelete(id [32]byte) error
	TransferIn(asset string, from [20]byte, amount *big.Int) error
	TransferOut(asset string, to [20]byte, amount *big.Int) error
}

// accessView exposes the registry reads consumed at creation time.
type accessView interface {
	IsAssetSupported(asset string) bool
	FeePolicy() (fees.Policy, error)
	IsPaused(module string) bool
}

// opsObserver records operation counts for monitoring. Implementations must
// tolerate being called with any label values.
type opsObserver interface {
	ObserveTransferOp(op, asset string)
}

// CreateParams carries the caller-supplied definition of a new record.
type CreateParams struct {
	Creator      [20]byte
	Recipient    [20]byte // zero for link transfers
	Kind         Kind
	Asset        string
	Amount       *big.Int
	Expiry       int64 // unix seconds; zero selects the default window
	PasswordHash [32]byte
	HasPassword  bool
}

// Engine wires the escrow state machine with external state, the access
// registry and event emission. Records transition Pending -> Claimed or
// Pending -> Refunded exactly once; the transition is persisted before any
// custody transfer that could reenter, and a latch rejects nested calls as a
// second line of defense.
type Engine struct {
	state    ledgerState
	registry accessView
	emitter  events.Emitter
	metrics  opsObserver
	latch    common.ReentrancyLatch
	nowFn    func() int64

	defaultWindow int64
	maxWindow     int64
}

// NewEngine creates a transfer engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter:       events.NoopEmitter{},
		nowFn:         func() int64 { return time.Now().Unix() },
		defaultWindow: DefaultExpiryWindow,
		maxWindow:     MaxExpiryWindow,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state ledgerState) { e.state = state }

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

// SetMetrics configures the operation observer. A nil observer disables
// metric collection.
func (e *Engine) SetMetrics(metrics opsObserver) { e.metrics = metrics }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
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
	e.metrics.ObserveTransferOp(op, asset)
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

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Create validates the parameters, derives the record id, skims the configured
// fee and persists the record as Pending before moving any value. The gross
// amount is pulled from the creator into the asset vault and the fee portion
// is routed to the collector; a failure at any point restores the state
// written earlier in the same call.
func (e *Engine) Create(params CreateParams) (*Record, error) {
	if err := e.latch.Enter(); err != nil {
		return nil, err
	}
	defer e.latch.Exit()
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !params.Kind.Valid() {
		return nil, fmt.Errorf("transfer: invalid kind %d", params.Kind)
	}
	asset := strings.ToUpper(strings.TrimSpace(params.Asset))
	if !e.registry.IsAssetSupported(asset) {
		return nil, ErrUnsupportedAsset
	}
	gross := cloneBigInt(params.Amount)
	if gross.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	switch params.Kind {
	case KindDirect:
		if params.Recipient == ([20]byte{}) {
			return nil, ErrInvalidRecipient
		}
	case KindLink:
		if params.Recipient != ([20]byte{}) {
			return nil, ErrInvalidRecipient
		}
	}
	if params.HasPassword != (params.PasswordHash != ([32]byte{})) {
		return nil, ErrPasswordRequired
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

	id := DeriveID(params.Kind, params.Creator, params.Recipient, asset, gross.Bytes(), expiry, params.PasswordHash, now)
	if _, exists := e.state.TransferGet(id); exists {
		return nil, ErrIDCollision
	}

	record := &Record{
		ID:           id,
		Kind:         params.Kind,
		Creator:      params.Creator,
		Recipient:    params.Recipient,
		Asset:        asset,
		GrossAmount:  gross,
		NetAmount:    result.Net,
		Expiry:       expiry,
		PasswordHash: params.PasswordHash,
		HasPassword:  params.HasPassword,
		Status:       StatusPending,
		CreatedAt:    now,
	}
	if err := e.state.TransferPut(record); err != nil {
		return nil, err
	}
	if err := e.state.TransferIn(asset, params.Creator, gross); err != nil {
		_ = e.state.TransferDelete(id)
		return nil, err
	}
	if result.Fee.Sign() > 0 {
		if err := e.state.TransferOut(asset, policy.Collector, result.Fee); err != nil {
			_ = e.state.TransferOut(asset, params.Creator, gross)
			_ = e.state.TransferDelete(id)
			return nil, err
		}
	}
	e.emit(events.TransferCreated{
		ID:          id,
		Creator:     params.Creator,
		Recipient:   params.Recipient,
		Asset:       asset,
		GrossAmount: gross,
		NetAmount:   record.NetAmount,
		Fee:         result.Fee,
		Expiry:      expiry,
		CreatedAt:   now,
	})
	e.observe("create", asset)
	return record.Clone(), nil
}

// Claim pays the record's net amount to the caller. The record must be
// pending and within its claim window, the supplied secret must match the
// stored commitment when one exists, and a bound recipient restricts who may
// claim. The Claimed transition is persisted before the custody transfer.
func (e *Engine) Claim(id [32]byte, caller [20]byte, secret []byte) (*Record, error) {
	if err := e.latch.Enter(); err != nil {
		return nil, err
	}
	defer e.latch.Exit()
	if err := e.ready(); err != nil {
		return nil, err
	}
	record, ok := e.state.TransferGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	if record.Status != StatusPending {
		return nil, fmt.Errorf("%w: record is %s", ErrNotPending, record.Status)
	}
	if e.now() > record.Expiry {
		return nil, ErrClaimExpired
	}
	if record.HasPassword {
		supplied := HashPassword(secret)
		if subtle.ConstantTimeCompare(supplied[:], record.PasswordHash[:]) != 1 {
			return nil, ErrInvalidPassword
		}
	}
	if record.HasRecipient() && caller != record.Recipient {
		return nil, ErrUnauthorized
	}

	record.Status = StatusClaimed
	if err := e.state.TransferPut(record); err != nil {
		return nil, err
	}
	if err := e.state.TransferOut(record.Asset, caller, record.NetAmount); err != nil {
		record.Status = StatusPending
		if restoreErr := e.state.TransferPut(record); restoreErr != nil {
			return nil, fmt.Errorf("transfer: claim rollback failed: %w", restoreErr)
		}
		return nil, err
	}
	e.emit(events.TransferClaimed{
		ID:       id,
		Claimant: caller,
		Asset:    record.Asset,
		Amount:   record.NetAmount,
	})
	e.observe("claim", record.Asset)
	return record.Clone(), nil
}

// Refund returns the net amount to the creator once the expiry has passed.
// Only the creator may invoke it, strictly after expiry.
func (e *Engine) Refund(id [32]byte, caller [20]byte) (*Record, error) {
	if err := e.latch.Enter(); err != nil {
		return nil, err
	}
	defer e.latch.Exit()
	return e.refund(id, caller, true)
}

// InstantRefund returns the net amount to the creator with no expiry
// precondition: an unclaimed, unrefunded record may always be reclaimed by its
// creator immediately.
func (e *Engine) InstantRefund(id [32]byte, caller [20]byte) (*Record, error) {
	if err := e.latch.Enter(); err != nil {
		return nil, err
	}
	defer e.latch.Exit()
	return e.refund(id, caller, false)
}

func (e *Engine) refund(id [32]byte, caller [20]byte, requireExpired bool) (*Record, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	record, ok := e.state.TransferGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	if record.Status != StatusPending {
		return nil, fmt.Errorf("%w: record is %s", ErrNotPending, record.Status)
	}
	if caller != record.Creator {
		return nil, ErrUnauthorized
	}
	if requireExpired && e.now() <= record.Expiry {
		return nil, ErrNotExpired
	}

	record.Status = StatusRefunded
	if err := e.state.TransferPut(record); err != nil {
		return nil, err
	}
	if err := e.state.TransferOut(record.Asset, record.Creator, record.NetAmount); err != nil {
		record.Status = StatusPending
		if restoreErr := e.state.TransferPut(record); restoreErr != nil {
			return nil, fmt.Errorf("transfer: refund rollback failed: %w", restoreErr)
		}
		return nil, err
	}
	if requireExpired {
		e.emit(events.TransferRefunded{
			ID:      id,
			Creator: record.Creator,
			Asset:   record.Asset,
			Amount:  record.NetAmount,
		})
		e.observe("refund", record.Asset)
	} else {
		e.emit(events.TransferInstantRefunded{
			ID:      id,
			Creator: record.Creator,
			Asset:   record.Asset,
			Amount:  record.NetAmount,
		})
		e.observe("instant_refund", record.Asset)
	}
	return record.Clone(), nil
}

// Get returns a copy of the stored record. It never mutates state.
func (e *Engine) Get(id [32]byte) (*Record, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, ok := e.state.TransferGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

// IsClaimable reports whether the record exists, is pending and is within its
// claim window. It never mutates state.
func (e *Engine) IsClaimable(id [32]byte) bool {
	if e == nil || e.state == nil {
		return false
	}
	record, ok := e.state.TransferGet(id)
	if !ok {
		return false
	}
	return record.Status == StatusPending && e.now() <= record.Expiry
}
