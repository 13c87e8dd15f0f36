package transfer

import "errors"

var (
	ErrNotFound         = errors.New("transfer: not found")
	ErrInvalidAmount    = errors.New("transfer: amount must be positive")
	ErrUnsupportedAsset = errors.New("transfer: unsupported asset")
	ErrInvalidRecipient = errors.New("transfer: invalid recipient for transfer kind")
	ErrPasswordRequired = errors.New("transfer: password hash presence must match password flag")
	ErrExpiryOutOfRange = errors.New("transfer: expiry outside allowed window")
	ErrIDCollision      = errors.New("transfer: identifier already exists")
	ErrNotPending       = errors.New("transfer: record is not pending")
	ErrUnauthorized     = errors.New("transfer: caller not authorized")
	ErrClaimExpired     = errors.New("transfer: claim window closed")
	ErrNotExpired       = errors.New("transfer: expiry not reached")
	ErrInvalidPassword  = errors.New("transfer: password mismatch")
)
