package core

import (
	"math/rand"

	"github.com/MichaleAnderson/beldex-storage-server/utils/randutil"
)

// Ed25519SecKeyFixture returns a randomly generated signing key.
func Ed25519SecKeyFixture() Ed25519SecKey {
	k, err := GenerateEd25519SecKey()
	if err != nil {
		panic(err)
	}
	return k
}

// X25519KeypairFixture returns a randomly generated x25519 keypair.
func X25519KeypairFixture() (X25519SecKey, X25519PubKey) {
	sk, err := GenerateX25519SecKey()
	if err != nil {
		panic(err)
	}
	pk, err := sk.PubKey()
	if err != nil {
		panic(err)
	}
	return sk, pk
}

// LegacyPubKeyFixture returns a randomly generated legacy pubkey.
func LegacyPubKeyFixture() LegacyPubKey {
	var p LegacyPubKey
	rand.Read(p[:])
	return p
}

// MasterNodeStateFixture returns a randomly generated master node entry.
func MasterNodeStateFixture() MasterNodeState {
	edSec := Ed25519SecKeyFixture()
	_, xPub := X25519KeypairFixture()
	return MasterNodeState{
		PubKey:         LegacyPubKeyFixture(),
		PubKeyEd25519:  edSec.PubKey(),
		PubKeyX25519:   xPub,
		PublicIP:       randutil.IP(),
		StoragePort:    uint16(randutil.Port()),
		StorageLMQPort: uint16(randutil.Port()),
	}
}

// MasterNodeStateListFixture returns a list of random master node entries.
func MasterNodeStateListFixture(n int) []MasterNodeState {
	var states []MasterNodeState
	for i := 0; i < n; i++ {
		states = append(states, MasterNodeStateFixture())
	}
	return states
}

// UserPubKeyFixture returns a randomly generated mainnet user pubkey.
func UserPubKeyFixture() UserPubKey {
	u, err := ParseUserPubKey("05"+randutil.Hex(32), true)
	if err != nil {
		panic(err)
	}
	return u
}
