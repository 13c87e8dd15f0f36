package state

import (
	"fmt"
	"math/big"
	"sort"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"straptledger/core/types"
)

// storedAccount flattens the balance map into parallel sorted slices because
// RLP cannot encode maps.
type storedAccount struct {
	Nonce   uint64
	Assets  []string
	Amounts []*big.Int
}

func newStoredAccount(acc *types.Account) *storedAccount {
	if acc == nil {
		return &storedAccount{}
	}
	assets := make([]string, 0, len(acc.Balances))
	for asset := range acc.Balances {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	amounts := make([]*big.Int, len(assets))
	for i, asset := range assets {
		amounts[i] = cloneBigInt(acc.Balances[asset])
	}
	return &storedAccount{Nonce: acc.Nonce, Assets: assets, Amounts: amounts}
}

func (s *storedAccount) toAccount() (*types.Account, error) {
	if s == nil {
		return types.NewAccount(), nil
	}
	if len(s.Assets) != len(s.Amounts) {
		return nil, fmt.Errorf("state: corrupt account record")
	}
	acc := types.NewAccount()
	acc.Nonce = s.Nonce
	for i, asset := range s.Assets {
		acc.SetBalance(asset, cloneBigInt(s.Amounts[i]))
	}
	return acc, nil
}

// GetAccount loads the account stored for the address, returning a fresh
// zero-balance account when none exists.
func (m *Manager) GetAccount(addr [20]byte) (*types.Account, error) {
	stored := new(storedAccount)
	ok, err := m.KVGet(accountKey(addr), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.NewAccount(), nil
	}
	return stored.toAccount()
}

// PutAccount persists the supplied account for the address.
func (m *Manager) PutAccount(addr [20]byte, acc *types.Account) error {
	if acc == nil {
		return fmt.Errorf("state: nil account")
	}
	return m.KVPut(accountKey(addr), newStoredAccount(acc))
}

// VaultAddress derives the custody address holding escrowed balances for the
// supplied asset. The address is a pure function of the asset symbol, so every
// record of that asset shares one vault.
func VaultAddress(asset string) [20]byte {
	buf := make([]byte, len(vaultPrefix)+len(asset))
	copy(buf, vaultPrefix)
	copy(buf[len(vaultPrefix):], asset)
	hash := ethcrypto.Keccak256(buf)
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}

// moveBalance debits `from` and credits `to` for the supplied asset, restoring
// both accounts if any write fails. Amounts must be strictly positive.
func (m *Manager) moveBalance(asset string, from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: transfer amount must be positive")
	}
	fromAcc, err := m.GetAccount(from)
	if err != nil {
		return err
	}
	toAcc, err := m.GetAccount(to)
	if err != nil {
		return err
	}
	originalFrom := fromAcc.Clone()

	fromBalance := fromAcc.Balance(asset)
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	fromAcc.SetBalance(asset, new(big.Int).Sub(fromBalance, amount))
	toAcc.SetBalance(asset, new(big.Int).Add(toAcc.Balance(asset), amount))

	if err := m.PutAccount(from, fromAcc); err != nil {
		return err
	}
	if err := m.PutAccount(to, toAcc); err != nil {
		if restoreErr := m.PutAccount(from, originalFrom); restoreErr != nil {
			return fmt.Errorf("state: move rollback failed: %w", restoreErr)
		}
		return err
	}
	return nil
}

// TransferIn pulls the amount of the asset from the payer into the asset
// vault. It fails without partial application when the payer balance is
// insufficient.
func (m *Manager) TransferIn(asset string, from [20]byte, amount *big.Int) error {
	return m.moveBalance(asset, from, VaultAddress(asset), amount)
}

// TransferOut pushes the amount of the asset from the vault to the recipient.
func (m *Manager) TransferOut(asset string, to [20]byte, amount *big.Int) error {
	return m.moveBalance(asset, VaultAddress(asset), to, amount)
}

// Mint credits an account with new units of the asset. Used by genesis
// initialisation and development tooling only.
func (m *Manager) Mint(asset string, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: mint amount must be positive")
	}
	acc, err := m.GetAccount(to)
	if err != nil {
		return err
	}
	acc.SetBalance(asset, new(big.Int).Add(acc.Balance(asset), amount))
	return m.PutAccount(to, acc)
}

// Balance returns the asset balance held by the address.
func (m *Manager) Balance(addr [20]byte, asset string) (*big.Int, error) {
	acc, err := m.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance(asset), nil
}
