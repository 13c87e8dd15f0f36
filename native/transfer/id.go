package transfer

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Domain tags keep direct and link transfers created with identical
// parameters in the same instant from colliding.
var (
	domainDirect = []byte("strapt/transfer/direct")
	domainLink   = []byte("strapt/transfer/link")
)

// DeriveID computes the record identifier from the defining parameters plus
// the creation timestamp. The hash is unpredictable ahead of creation while
// remaining reproducible from the same inputs; the engine additionally rejects
// creation when the derived id already has a record.
func DeriveID(kind Kind, creator, recipient [20]byte, asset string, gross []byte, expiry int64, passwordHash [32]byte, createdAt int64) [32]byte {
	domain := domainDirect
	if kind == KindLink {
		domain = domainLink
	}
	var expiryBuf, createdBuf [8]byte
	binary.BigEndian.PutUint64(expiryBuf[:], uint64(expiry))
	binary.BigEndian.PutUint64(createdBuf[:], uint64(createdAt))
	hash := ethcrypto.Keccak256(
		domain,
		creator[:],
		recipient[:],
		[]byte(asset),
		gross,
		expiryBuf[:],
		passwordHash[:],
		createdBuf[:],
	)
	var id [32]byte
	copy(id[:], hash)
	return id
}

// HashPassword commits a claim secret for storage alongside the record.
func HashPassword(secret []byte) [32]byte {
	hash := ethcrypto.Keccak256(secret)
	var out [32]byte
	copy(out[:], hash)
	return out
}
