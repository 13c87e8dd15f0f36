package transfer

import (
	"math/big"
	"testing"
)

func TestDeriveIDDeterministic(t *testing.T) {
	creator := newTestAddress(0x01)
	recipient := newTestAddress(0x02)
	gross := big.NewInt(1_000).Bytes()
	a := DeriveID(KindDirect, creator, recipient, "IDRX", gross, 2_000, [32]byte{}, 1_000)
	b := DeriveID(KindDirect, creator, recipient, "IDRX", gross, 2_000, [32]byte{}, 1_000)
	if a != b {
		t.Fatal("identical inputs must derive the same id")
	}
}

func TestDeriveIDSeparatesKindsAndInstants(t *testing.T) {
	creator := newTestAddress(0x01)
	gross := big.NewInt(1_000).Bytes()
	direct := DeriveID(KindDirect, creator, [20]byte{}, "IDRX", gross, 2_000, [32]byte{}, 1_000)
	link := DeriveID(KindLink, creator, [20]byte{}, "IDRX", gross, 2_000, [32]byte{}, 1_000)
	if direct == link {
		t.Fatal("direct and link ids must differ for identical parameters")
	}
	later := DeriveID(KindDirect, creator, [20]byte{}, "IDRX", gross, 2_000, [32]byte{}, 1_001)
	if direct == later {
		t.Fatal("ids must differ across creation instants")
	}
}

func TestHashPasswordMatchesOnlyExactSecret(t *testing.T) {
	commitment := HashPassword([]byte("open sesame"))
	if commitment == HashPassword([]byte("open Sesame")) {
		t.Fatal("commitments for different secrets must differ")
	}
	if commitment != HashPassword([]byte("open sesame")) {
		t.Fatal("commitment must be reproducible")
	}
}
