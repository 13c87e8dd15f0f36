package types

import "math/big"

// Account tracks the nonce and per-asset balances held by an address. Assets
// are keyed by their canonical uppercase symbol; a missing entry means a zero
// balance.
type Account struct {
	Nonce    uint64              `json:"nonce"`
	Balances map[string]*big.Int `json:"balances"`
}

// NewAccount returns an account with an initialised balance map.
func NewAccount() *Account {
	return &Account{Balances: make(map[string]*big.Int)}
}

// Balance returns the balance held for the supplied asset, never nil.
func (a *Account) Balance(asset string) *big.Int {
	if a == nil || a.Balances == nil {
		return big.NewInt(0)
	}
	amount, ok := a.Balances[asset]
	if !ok || amount == nil {
		return big.NewInt(0)
	}
	return amount
}

// SetBalance stores the supplied balance for the asset, initialising the
// balance map when needed.
func (a *Account) SetBalance(asset string, amount *big.Int) {
	if a == nil {
		return
	}
	if a.Balances == nil {
		a.Balances = make(map[string]*big.Int)
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	a.Balances[asset] = amount
}

// Clone returns a deep copy so callers can mutate the result without
// affecting the stored instance.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	clone := &Account{Nonce: a.Nonce, Balances: make(map[string]*big.Int, len(a.Balances))}
	for asset, amount := range a.Balances {
		if amount == nil {
			clone.Balances[asset] = big.NewInt(0)
			continue
		}
		clone.Balances[asset] = new(big.Int).Set(amount)
	}
	return clone
}
