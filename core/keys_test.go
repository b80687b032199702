package core

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeKeyEncodings(t *testing.T) {
	sk := Ed25519SecKeyFixture()
	pk := sk.PubKey()

	tests := []struct {
		desc  string
		input string
	}{
		{"raw", string(pk[:])},
		{"hex", hex.EncodeToString(pk[:])},
		{"base64", base64.RawStdEncoding.EncodeToString(pk[:])},
		{"base64 padded", base64.StdEncoding.EncodeToString(pk[:])},
		{"base32z", base32z.EncodeToString(pk[:])},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			parsed, err := ParseEd25519PubKey(test.input)
			require.NoError(t, err)
			require.Equal(t, pk, parsed)
		})
	}
}

func TestDecodeKeyRejectsBadInput(t *testing.T) {
	require := require.New(t)

	_, err := ParseLegacyPubKey("too short")
	require.Error(err)

	_, err = ParseLegacyPubKey(strings.Repeat("zz", KeyLength))
	require.Error(err)
}

func TestMnodeAddress(t *testing.T) {
	require := require.New(t)

	pk := Ed25519SecKeyFixture().PubKey()
	addr := pk.MnodeAddress()

	require.True(strings.HasSuffix(addr, ".mnode"))
	base := strings.TrimSuffix(addr, ".mnode")
	require.Len(base, 52)

	parsed, err := ParseEd25519PubKey(base)
	require.NoError(err)
	require.Equal(pk, parsed)
}

func TestEd25519Derivation(t *testing.T) {
	require := require.New(t)

	sk := Ed25519SecKeyFixture()
	pk := sk.PubKey()

	expected := ed25519.NewKeyFromSeed(sk[:]).Public().(ed25519.PublicKey)
	require.Equal([]byte(expected), pk[:])
}

func TestEd25519SignVerify(t *testing.T) {
	require := require.New(t)

	sk := Ed25519SecKeyFixture()
	pk := sk.PubKey()

	msg := []byte("storage test payload")
	sig := sk.Sign(msg)

	require.True(pk.Verify(msg, sig))
	require.False(pk.Verify([]byte("other payload"), sig))
}

func TestX25519Derivation(t *testing.T) {
	require := require.New(t)

	sk, pk := X25519KeypairFixture()

	derived, err := sk.PubKey()
	require.NoError(err)
	require.Equal(pk, derived)
}

func TestSecKeyFromHex(t *testing.T) {
	require := require.New(t)

	sk := Ed25519SecKeyFixture()

	parsed, err := Ed25519SecKeyFromHex(hex.EncodeToString(sk[:]))
	require.NoError(err)
	require.Equal(sk, parsed)

	_, err = Ed25519SecKeyFromHex("abcd")
	require.Error(err)
}

func TestPubKeyTextMarshaling(t *testing.T) {
	require := require.New(t)

	_, pk := X25519KeypairFixture()

	b, err := pk.MarshalText()
	require.NoError(err)
	require.Equal(pk.String(), string(b))

	var parsed X25519PubKey
	require.NoError(parsed.UnmarshalText(b))
	require.Equal(pk, parsed)
}
