package drop

import "errors"

var (
	ErrNotFound          = errors.New("drop: not found")
	ErrInvalidAmount     = errors.New("drop: amount must be positive")
	ErrAmountTooSmall    = errors.New("drop: amount smaller than recipient count")
	ErrInvalidRecipients = errors.New("drop: total recipients must be positive")
	ErrUnsupportedAsset  = errors.New("drop: unsupported asset")
	ErrMessageTooLong    = errors.New("drop: message exceeds size bound")
	ErrExpiryOutOfRange  = errors.New("drop: expiry outside allowed window")
	ErrIDCollision       = errors.New("drop: identifier already exists")
	ErrInactive          = errors.New("drop: pool is not active")
	ErrAlreadyClaimed    = errors.New("drop: claimant already claimed")
	ErrClaimExpired      = errors.New("drop: claim window closed")
	ErrNotExpired        = errors.New("drop: expiry not reached")
	ErrUnauthorized      = errors.New("drop: caller not authorized")
	ErrNothingToRefund   = errors.New("drop: nothing left to refund")
)
