package core

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// User pubkey sizes. A user pubkey is a network id byte followed by a
// 32-byte x25519 key.
const (
	UserPubKeySizeBytes = 33
	UserPubKeySizeHex   = 66
)

// testnetNetID is the network id implied by unprefixed pubkeys on testnet.
const testnetNetID = 5

// UserPubKey identifies a client account: a network id plus its session
// x25519 pubkey.
type UserPubKey struct {
	network byte
	key     []byte
}

// ParseUserPubKey loads a user pubkey from one of its wire forms:
// prefixed hex (66 digits), prefixed raw bytes (33), or - on testnet only -
// unprefixed hex (64) or raw (32) with an implied network id.
func ParseUserPubKey(s string, mainnet bool) (UserPubKey, error) {
	switch {
	case len(s) == UserPubKeySizeHex:
		b, err := hex.DecodeString(s)
		if err != nil {
			return UserPubKey{}, fmt.Errorf("invalid user pubkey hex: %s", err)
		}
		return UserPubKey{network: b[0], key: b[1:]}, nil
	case len(s) == UserPubKeySizeBytes:
		b := []byte(s)
		return UserPubKey{network: b[0], key: b[1:]}, nil
	case !mainnet && len(s) == UserPubKeySizeHex-2:
		b, err := hex.DecodeString(s)
		if err != nil {
			return UserPubKey{}, fmt.Errorf("invalid user pubkey hex: %s", err)
		}
		return UserPubKey{network: testnetNetID, key: b}, nil
	case !mainnet && len(s) == UserPubKeySizeBytes-1:
		return UserPubKey{network: testnetNetID, key: []byte(s)}, nil
	}
	return UserPubKey{}, errors.New("invalid user pubkey: unrecognized size")
}

// Network returns the network id byte.
func (u UserPubKey) Network() byte {
	return u.network
}

// Hex returns the bare key in hexadecimal notation, without the network
// prefix.
func (u UserPubKey) Hex() string {
	return hex.EncodeToString(u.key)
}

// PrefixedHex returns the network prefix plus key in hexadecimal notation.
// The zero network id is omitted on testnet.
func (u UserPubKey) PrefixedHex(mainnet bool) string {
	if len(u.key) == 0 {
		return ""
	}
	if u.network == 0 && !mainnet {
		return hex.EncodeToString(u.key)
	}
	return hex.EncodeToString(append([]byte{u.network}, u.key...))
}

// PrefixedRaw returns the network prefix plus key as raw bytes.
func (u UserPubKey) PrefixedRaw() []byte {
	if len(u.key) == 0 {
		return nil
	}
	return append([]byte{u.network}, u.key...)
}
