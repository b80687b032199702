package core

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"
)

// KeyLength is the byte length of every node key type.
const KeyLength = 32

// base32z is the encoding beldexnet uses for .mnode addresses. It follows
// standard base32 bit packing but with the zbase32 alphabet and no padding.
var base32z = base32.NewEncoding("ybndrfg8ejkmcpqxot1uwisza345h769").
	WithPadding(base32.NoPadding)

// LegacyPubKey is the primary ("legacy") master node public key.
type LegacyPubKey [KeyLength]byte

// Ed25519PubKey is a master node's ed25519 auxiliary public key.
type Ed25519PubKey [KeyLength]byte

// X25519PubKey is a master node's x25519 auxiliary public key, used for
// encrypted channels.
type X25519PubKey [KeyLength]byte

// String encodes the key in hexadecimal notation.
func (p LegacyPubKey) String() string { return hex.EncodeToString(p[:]) }

// String encodes the key in hexadecimal notation.
func (p Ed25519PubKey) String() string { return hex.EncodeToString(p[:]) }

// String encodes the key in hexadecimal notation.
func (p X25519PubKey) String() string { return hex.EncodeToString(p[:]) }

// MnodeAddress returns the beldexnet address of the node, i.e. the base32z
// encoding of its ed25519 pubkey with a ".mnode" suffix.
func (p Ed25519PubKey) MnodeAddress() string {
	return base32z.EncodeToString(p[:]) + ".mnode"
}

// MarshalText implements encoding.TextMarshaler.
func (p LegacyPubKey) MarshalText() ([]byte, error) { return hexKey(p[:]), nil }

// MarshalText implements encoding.TextMarshaler.
func (p Ed25519PubKey) MarshalText() ([]byte, error) { return hexKey(p[:]), nil }

// MarshalText implements encoding.TextMarshaler.
func (p X25519PubKey) MarshalText() ([]byte, error) { return hexKey(p[:]), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *LegacyPubKey) UnmarshalText(b []byte) error { return decodeKey(p[:], string(b)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Ed25519PubKey) UnmarshalText(b []byte) error { return decodeKey(p[:], string(b)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *X25519PubKey) UnmarshalText(b []byte) error { return decodeKey(p[:], string(b)) }

// ParseLegacyPubKey parses a legacy pubkey from raw bytes, hex, base64, or
// base32z input.
func ParseLegacyPubKey(s string) (LegacyPubKey, error) {
	var p LegacyPubKey
	err := decodeKey(p[:], s)
	return p, err
}

// ParseEd25519PubKey parses an ed25519 pubkey from raw bytes, hex, base64, or
// base32z input.
func ParseEd25519PubKey(s string) (Ed25519PubKey, error) {
	var p Ed25519PubKey
	err := decodeKey(p[:], s)
	return p, err
}

// ParseX25519PubKey parses an x25519 pubkey from raw bytes, hex, base64, or
// base32z input.
func ParseX25519PubKey(s string) (X25519PubKey, error) {
	var p X25519PubKey
	err := decodeKey(p[:], s)
	return p, err
}

// decodeKey loads a 32-byte key from any of the encodings node keys appear in
// on the wire: raw bytes (32), hex (64), base64 (43 or 44 with padding), or
// base32z (52).
func decodeKey(dst []byte, s string) error {
	switch len(s) {
	case KeyLength:
		copy(dst, s)
		return nil
	case 2 * KeyLength:
		b, err := hex.DecodeString(s)
		if err != nil {
			return fmt.Errorf("invalid hex key: %s", err)
		}
		copy(dst, b)
		return nil
	case 43, 44:
		enc := base64.RawStdEncoding
		if len(s) == 44 {
			if s[43] != '=' {
				return fmt.Errorf("invalid base64 key: bad padding")
			}
			enc = base64.StdEncoding
		}
		b, err := enc.DecodeString(s)
		if err != nil {
			return fmt.Errorf("invalid base64 key: %s", err)
		}
		copy(dst, b)
		return nil
	case 52:
		b, err := base32z.DecodeString(s)
		if err != nil {
			return fmt.Errorf("invalid base32z key: %s", err)
		}
		copy(dst, b)
		return nil
	default:
		return fmt.Errorf(
			"invalid key: %d characters is not a raw, hex, base64, or base32z key", len(s))
	}
}

func hexKey(b []byte) []byte {
	dst := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(dst, b)
	return dst
}

// LegacySecKey is the secret half of a legacy keypair. The value is an
// ed25519 scalar; the pubkey is derived by unclamped base point
// multiplication.
type LegacySecKey [KeyLength]byte

// Ed25519SecKey is an ed25519 seed.
type Ed25519SecKey [KeyLength]byte

// X25519SecKey is an x25519 scalar.
type X25519SecKey [KeyLength]byte

// LegacySecKeyFromHex parses a legacy seckey from hex.
func LegacySecKeyFromHex(s string) (LegacySecKey, error) {
	var k LegacySecKey
	err := decodeHexKey(k[:], s)
	return k, err
}

// Ed25519SecKeyFromHex parses an ed25519 seed from hex.
func Ed25519SecKeyFromHex(s string) (Ed25519SecKey, error) {
	var k Ed25519SecKey
	err := decodeHexKey(k[:], s)
	return k, err
}

// X25519SecKeyFromHex parses an x25519 seckey from hex.
func X25519SecKeyFromHex(s string) (X25519SecKey, error) {
	var k X25519SecKey
	err := decodeHexKey(k[:], s)
	return k, err
}

func decodeHexKey(dst []byte, s string) error {
	if len(s) != 2*KeyLength {
		return fmt.Errorf("invalid hex key: expected %d hex digits, received %d",
			2*KeyLength, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex key: %s", err)
	}
	copy(dst, b)
	return nil
}

// PubKey derives the legacy pubkey by unclamped ed25519 base point
// multiplication of the secret scalar.
func (k LegacySecKey) PubKey() (LegacyPubKey, error) {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(k[:])
	if err != nil {
		return LegacyPubKey{}, fmt.Errorf("legacy seckey is not a canonical scalar: %s", err)
	}
	var p LegacyPubKey
	copy(p[:], new(edwards25519.Point).ScalarBaseMult(s).Bytes())
	return p, nil
}

// PubKey derives the ed25519 pubkey from the seed.
func (k Ed25519SecKey) PubKey() Ed25519PubKey {
	var p Ed25519PubKey
	copy(p[:], ed25519.NewKeyFromSeed(k[:])[ed25519.SeedSize:])
	return p
}

// PubKey derives the x25519 pubkey by curve25519 base point multiplication.
func (k X25519SecKey) PubKey() (X25519PubKey, error) {
	b, err := curve25519.X25519(k[:], curve25519.Basepoint)
	if err != nil {
		return X25519PubKey{}, fmt.Errorf("derive x25519 pubkey: %s", err)
	}
	var p X25519PubKey
	copy(p[:], b)
	return p, nil
}

// Sign signs message with the ed25519 key.
func (k Ed25519SecKey) Sign(message []byte) []byte {
	return ed25519.Sign(ed25519.NewKeyFromSeed(k[:]), message)
}

// Verify reports whether sig is a valid signature of message by p.
func (p Ed25519PubKey) Verify(message, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(p[:]), message, sig)
}

// GenerateEd25519SecKey generates a fresh random signing key.
func GenerateEd25519SecKey() (Ed25519SecKey, error) {
	var k Ed25519SecKey
	if _, err := rand.Read(k[:]); err != nil {
		return Ed25519SecKey{}, err
	}
	return k, nil
}

// GenerateX25519SecKey generates a fresh random x25519 keypair secret.
func GenerateX25519SecKey() (X25519SecKey, error) {
	var k X25519SecKey
	if _, err := rand.Read(k[:]); err != nil {
		return X25519SecKey{}, err
	}
	return k, nil
}
