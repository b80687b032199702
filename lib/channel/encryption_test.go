package channel

import (
	"testing"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/utils/randutil"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	for _, et := range []EncType{AESCBC, AESGCM, XChaCha20} {
		t.Run(et.String(), func(t *testing.T) {
			require := require.New(t)

			nodeSec, nodePub := core.X25519KeypairFixture()
			node := New(nodeSec, nodePub, true)

			client, err := NewEphemeral()
			require.NoError(err)

			plaintext := randutil.Bytes(500)

			ciphertext, err := client.Encrypt(et, plaintext, nodePub)
			require.NoError(err)
			require.NotEqual(plaintext, ciphertext)

			decrypted, err := node.Decrypt(et, ciphertext, client.PubKey())
			require.NoError(err)
			require.Equal(plaintext, decrypted)
		})
	}
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	for _, et := range []EncType{AESGCM, XChaCha20} {
		t.Run(et.String(), func(t *testing.T) {
			require := require.New(t)

			_, nodePub := core.X25519KeypairFixture()
			otherSec, otherPub := core.X25519KeypairFixture()
			other := New(otherSec, otherPub, true)

			client, err := NewEphemeral()
			require.NoError(err)

			ciphertext, err := client.Encrypt(et, []byte("payload"), nodePub)
			require.NoError(err)

			_, err = other.Decrypt(et, ciphertext, client.PubKey())
			require.Error(err)
		})
	}
}

func TestDecryptRejectsTruncatedCiphertext(t *testing.T) {
	for _, et := range []EncType{AESCBC, AESGCM, XChaCha20} {
		t.Run(et.String(), func(t *testing.T) {
			require := require.New(t)

			nodeSec, nodePub := core.X25519KeypairFixture()
			node := New(nodeSec, nodePub, true)

			client, err := NewEphemeral()
			require.NoError(err)

			_, err = node.Decrypt(et, []byte("short"), client.PubKey())
			require.Error(err)
		})
	}
}

func TestParseEncType(t *testing.T) {
	require := require.New(t)

	for name, expected := range map[string]EncType{
		"aes-cbc":            AESCBC,
		"cbc":                AESCBC,
		"aes-gcm":            AESGCM,
		"gcm":                AESGCM,
		"":                   AESGCM,
		"xchacha20":          XChaCha20,
		"xchacha20-poly1305": XChaCha20,
	} {
		et, err := ParseEncType(name)
		require.NoError(err)
		require.Equal(expected, et)
	}

	_, err := ParseEncType("rot13")
	require.Error(err)
}

func TestEncTypeStringRoundTrip(t *testing.T) {
	require := require.New(t)

	for _, et := range []EncType{AESCBC, AESGCM, XChaCha20} {
		parsed, err := ParseEncType(et.String())
		require.NoError(err)
		require.Equal(et, parsed)
	}
}
