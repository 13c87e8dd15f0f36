package registry

import (
	"errors"

	"straptledger/native/fees"
)

// RoleAdmin gates every registry setter.
const RoleAdmin = "ROLE_ADMIN"

var (
	ErrUnauthorized     = errors.New("registry: caller lacks admin role")
	ErrAlreadyBootstrap = errors.New("registry: admin already configured")
	ErrInvalidFeeRate   = errors.New("registry: fee rate exceeds maximum")
	ErrInvalidCollector = errors.New("registry: fee collector must not be zero")
)

// stateBackend is the persistence surface the registry drives.
type stateBackend interface {
	RegisterAsset(symbol, name string, decimals uint8) error
	SetAssetEnabled(symbol string, enabled bool) error
	IsAssetEnabled(symbol string) bool
	AssetList() ([]string, error)
	SetRole(role string, addr [20]byte) error
	HasRole(role string, addr [20]byte) bool
	RoleMembers(role string) ([][]byte, error)
	SetPaused(module string, paused bool) error
	IsPaused(module string) bool
	SetFeePolicy(rateBps uint32, collector [20]byte) error
	FeePolicy() (uint32, [20]byte, error)
}

// Registry is the admin-controlled allow-list of accepted assets plus the fee
// configuration the escrow engines read at creation time. Setters require the
// admin role; reads are open.
type Registry struct {
	state stateBackend
}

// New creates a registry over the supplied state backend.
func New(state stateBackend) *Registry {
	return &Registry{state: state}
}

// Bootstrap grants the first admin role. It fails once any admin exists so a
// deployed ledger cannot be re-seeded.
func (r *Registry) Bootstrap(admin [20]byte) error {
	members, err := r.state.RoleMembers(RoleAdmin)
	if err != nil {
		return err
	}
	if len(members) > 0 {
		return ErrAlreadyBootstrap
	}
	return r.state.SetRole(RoleAdmin, admin)
}

func (r *Registry) requireAdmin(caller [20]byte) error {
	if !r.state.HasRole(RoleAdmin, caller) {
		return ErrUnauthorized
	}
	return nil
}

// GrantAdmin adds another admin. Only an existing admin may call it.
func (r *Registry) GrantAdmin(caller, admin [20]byte) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	return r.state.SetRole(RoleAdmin, admin)
}

// RegisterAsset allow-lists a new asset.
func (r *Registry) RegisterAsset(caller [20]byte, symbol, name string, decimals uint8) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	return r.state.RegisterAsset(symbol, name, decimals)
}

// SetAssetEnabled toggles a registered asset on the allow-list.
func (r *Registry) SetAssetEnabled(caller [20]byte, symbol string, enabled bool) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	return r.state.SetAssetEnabled(symbol, enabled)
}

// IsAssetSupported reports whether the symbol names a registered, enabled
// asset.
func (r *Registry) IsAssetSupported(symbol string) bool {
	return r.state.IsAssetEnabled(symbol)
}

// AssetList returns the registered asset symbols in sorted order.
func (r *Registry) AssetList() ([]string, error) {
	return r.state.AssetList()
}

// SetFeeRate updates the creation fee rate in basis points.
func (r *Registry) SetFeeRate(caller [20]byte, rateBps uint32) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if rateBps > fees.MaxRateBps {
		return ErrInvalidFeeRate
	}
	_, collector, err := r.state.FeePolicy()
	if err != nil {
		return err
	}
	if rateBps > 0 && collector == ([20]byte{}) {
		return ErrInvalidCollector
	}
	return r.state.SetFeePolicy(rateBps, collector)
}

// SetFeeCollector updates the address creation fees are routed to.
func (r *Registry) SetFeeCollector(caller, collector [20]byte) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if collector == ([20]byte{}) {
		return ErrInvalidCollector
	}
	rateBps, _, err := r.state.FeePolicy()
	if err != nil {
		return err
	}
	return r.state.SetFeePolicy(rateBps, collector)
}

// FeePolicy returns the fee configuration read at creation time.
func (r *Registry) FeePolicy() (fees.Policy, error) {
	rateBps, collector, err := r.state.FeePolicy()
	if err != nil {
		return fees.Policy{}, err
	}
	return fees.Policy{RateBps: rateBps, Collector: collector}, nil
}

// SetPaused toggles the administrative pause flag for a module.
func (r *Registry) SetPaused(caller [20]byte, module string, paused bool) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	return r.state.SetPaused(module, paused)
}

// IsPaused reports whether a module is paused.
func (r *Registry) IsPaused(module string) bool {
	return r.state.IsPaused(module)
}
