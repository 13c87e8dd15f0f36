package state

var (
	accountPrefix   = []byte("strapt/account/")
	assetPrefix     = []byte("strapt/asset/")
	assetListKey    = []byte("strapt/asset-list")
	rolePrefix      = []byte("strapt/role/")
	pausedPrefix    = []byte("strapt/params/paused/")
	feePolicyKey    = []byte("strapt/params/fees")
	transferPrefix  = []byte("strapt/transfer/")
	dropPrefix      = []byte("strapt/drop/")
	dropClaimPrefix = []byte("strapt/drop/claim/")
	vaultPrefix     = []byte("strapt/vault/")
)

func accountKey(addr [20]byte) []byte {
	buf := make([]byte, len(accountPrefix)+len(addr))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], addr[:])
	return buf
}

func assetKey(symbol string) []byte {
	buf := make([]byte, len(assetPrefix)+len(symbol))
	copy(buf, assetPrefix)
	copy(buf[len(assetPrefix):], symbol)
	return buf
}

func roleKey(role string) []byte {
	buf := make([]byte, len(rolePrefix)+len(role))
	copy(buf, rolePrefix)
	copy(buf[len(rolePrefix):], role)
	return buf
}

func pausedKey(module string) []byte {
	buf := make([]byte, len(pausedPrefix)+len(module))
	copy(buf, pausedPrefix)
	copy(buf[len(pausedPrefix):], module)
	return buf
}

func transferKey(id [32]byte) []byte {
	buf := make([]byte, len(transferPrefix)+len(id))
	copy(buf, transferPrefix)
	copy(buf[len(transferPrefix):], id[:])
	return buf
}

func dropKey(id [32]byte) []byte {
	buf := make([]byte, len(dropPrefix)+len(id))
	copy(buf, dropPrefix)
	copy(buf[len(dropPrefix):], id[:])
	return buf
}

func dropClaimKey(id [32]byte, claimant [20]byte) []byte {
	buf := make([]byte, len(dropClaimPrefix)+len(id)+len(claimant))
	copy(buf, dropClaimPrefix)
	copy(buf[len(dropClaimPrefix):], id[:])
	copy(buf[len(dropClaimPrefix)+len(id):], claimant[:])
	return buf
}
