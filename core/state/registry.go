package state

import (
	"fmt"
	"sort"
	"strings"
)

// AssetMetadata describes a fungible value type the ledger accepts.
type AssetMetadata struct {
	Symbol   string
	Name     string
	Decimals uint8
	Enabled  bool
}

// NormalizeAsset canonicalises an asset symbol for consistent lookups.
func NormalizeAsset(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// RegisterAsset stores the metadata for an accepted asset and records it in
// the asset index. Registering an existing symbol fails.
func (m *Manager) RegisterAsset(symbol, name string, decimals uint8) error {
	normalized := NormalizeAsset(symbol)
	if normalized == "" {
		return fmt.Errorf("state: asset symbol must not be empty")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("state: asset %s: name must not be empty", normalized)
	}
	if ok, err := m.KVGet(assetKey(normalized), nil); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("state: asset %s already registered", normalized)
	}

	var list []string
	if _, err := m.KVGet(assetListKey, &list); err != nil {
		return err
	}
	list = append(list, normalized)
	sort.Strings(list)
	if err := m.KVPut(assetListKey, list); err != nil {
		return err
	}
	return m.KVPut(assetKey(normalized), &AssetMetadata{
		Symbol:   normalized,
		Name:     name,
		Decimals: decimals,
		Enabled:  true,
	})
}

// SetAssetEnabled flips the allow-list flag for a registered asset.
func (m *Manager) SetAssetEnabled(symbol string, enabled bool) error {
	normalized := NormalizeAsset(symbol)
	meta := new(AssetMetadata)
	ok, err := m.KVGet(assetKey(normalized), meta)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("state: asset %s not registered", normalized)
	}
	meta.Enabled = enabled
	return m.KVPut(assetKey(normalized), meta)
}

// Asset retrieves metadata for a registered asset.
func (m *Manager) Asset(symbol string) (*AssetMetadata, bool, error) {
	normalized := NormalizeAsset(symbol)
	meta := new(AssetMetadata)
	ok, err := m.KVGet(assetKey(normalized), meta)
	if err != nil || !ok {
		return nil, false, err
	}
	return meta, true, nil
}

// AssetList returns all registered asset symbols in sorted order.
func (m *Manager) AssetList() ([]string, error) {
	var list []string
	if _, err := m.KVGet(assetListKey, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// IsAssetEnabled reports whether the symbol names a registered, enabled asset.
// Errors while reading state result in a false return, matching the
// best-effort semantics required by the callers.
func (m *Manager) IsAssetEnabled(symbol string) bool {
	meta, ok, err := m.Asset(symbol)
	if err != nil || !ok {
		return false
	}
	return meta.Enabled
}

// SetRole associates an address with the specified role. Duplicate assignments
// are ignored while the stored list remains sorted for determinism.
func (m *Manager) SetRole(role string, addr [20]byte) error {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return fmt.Errorf("state: role must not be empty")
	}
	var members [][]byte
	if _, err := m.KVGet(roleKey(trimmed), &members); err != nil {
		return err
	}
	for _, existing := range members {
		if string(existing) == string(addr[:]) {
			return nil
		}
	}
	members = append(members, append([]byte(nil), addr[:]...))
	sort.Slice(members, func(i, j int) bool {
		return string(members[i]) < string(members[j])
	})
	return m.KVPut(roleKey(trimmed), members)
}

// RoleMembers returns all addresses assigned to the provided role.
func (m *Manager) RoleMembers(role string) ([][]byte, error) {
	var members [][]byte
	if _, err := m.KVGet(roleKey(strings.TrimSpace(role)), &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = [][]byte{}
	}
	return members, nil
}

// HasRole reports whether the provided address is associated with the role.
// Errors while reading the underlying state result in a false return.
func (m *Manager) HasRole(role string, addr [20]byte) bool {
	var members [][]byte
	ok, err := m.KVGet(roleKey(strings.TrimSpace(role)), &members)
	if err != nil || !ok {
		return false
	}
	for _, member := range members {
		if string(member) == string(addr[:]) {
			return true
		}
	}
	return false
}

// SetPaused stores the administrative pause flag for a module.
func (m *Manager) SetPaused(module string, paused bool) error {
	trimmed := strings.TrimSpace(module)
	if trimmed == "" {
		return fmt.Errorf("state: module must not be empty")
	}
	return m.KVPut(pausedKey(trimmed), paused)
}

// IsPaused reports whether a module is paused. Missing flags and read errors
// both report unpaused.
func (m *Manager) IsPaused(module string) bool {
	var paused bool
	ok, err := m.KVGet(pausedKey(strings.TrimSpace(module)), &paused)
	if err != nil || !ok {
		return false
	}
	return paused
}

type storedFeePolicy struct {
	RateBps   uint32
	Collector [20]byte
}

// SetFeePolicy persists the fee rate and collector consumed at creation time.
func (m *Manager) SetFeePolicy(rateBps uint32, collector [20]byte) error {
	return m.KVPut(feePolicyKey, &storedFeePolicy{RateBps: rateBps, Collector: collector})
}

// FeePolicy returns the stored fee configuration, zero-valued when unset.
func (m *Manager) FeePolicy() (uint32, [20]byte, error) {
	stored := new(storedFeePolicy)
	ok, err := m.KVGet(feePolicyKey, stored)
	if err != nil {
		return 0, [20]byte{}, err
	}
	if !ok {
		return 0, [20]byte{}, nil
	}
	return stored.RateBps, stored.Collector, nil
}
