// Package channel implements the ephemeral-key channel encryption used by
// onion requests: an x25519 agreement between an ephemeral client key and a
// node's x25519 pubkey, with the payload sealed by one of the supported
// ciphers.
package channel

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/MichaleAnderson/beldex-storage-server/core"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
)

// hmacKeySalt is the HMAC key for legacy (aes-gcm / aes-cbc) symmetric key
// derivation.
var hmacKeySalt = []byte("LOKI")

// Encryption encrypts and decrypts channel payloads for a local x25519
// keypair.
type Encryption struct {
	secret core.X25519SecKey
	pubkey core.X25519PubKey

	// server flips the pubkey ordering in xchacha20 key derivation: both
	// sides hash (ecdh || client pub || server pub).
	server bool
}

// New creates an Encryption for the given local keypair. server must be true
// on the node side of the channel and false on the client side.
func New(secret core.X25519SecKey, pubkey core.X25519PubKey, server bool) *Encryption {
	return &Encryption{secret: secret, pubkey: pubkey, server: server}
}

// NewEphemeral generates a fresh keypair and returns an Encryption for it.
func NewEphemeral() (*Encryption, error) {
	secret, err := core.GenerateX25519SecKey()
	if err != nil {
		return nil, err
	}
	pubkey, err := secret.PubKey()
	if err != nil {
		return nil, err
	}
	return New(secret, pubkey, false), nil
}

// PubKey returns the local pubkey of the channel.
func (e *Encryption) PubKey() core.X25519PubKey {
	return e.pubkey
}

// Encrypt seals plaintext for remote using the given cipher.
func (e *Encryption) Encrypt(
	t EncType, plaintext []byte, remote core.X25519PubKey) ([]byte, error) {

	switch t {
	case AESCBC:
		return e.encryptCBC(plaintext, remote)
	case AESGCM:
		return e.encryptGCM(plaintext, remote)
	case XChaCha20:
		return e.encryptXChaCha20(plaintext, remote)
	}
	return nil, fmt.Errorf("invalid enc type %v", t)
}

// Decrypt opens ciphertext sealed by remote using the given cipher.
func (e *Encryption) Decrypt(
	t EncType, ciphertext []byte, remote core.X25519PubKey) ([]byte, error) {

	switch t {
	case AESCBC:
		return e.decryptCBC(ciphertext, remote)
	case AESGCM:
		return e.decryptGCM(ciphertext, remote)
	case XChaCha20:
		return e.decryptXChaCha20(ciphertext, remote)
	}
	return nil, fmt.Errorf("invalid enc type %v", t)
}

func (e *Encryption) ecdh(remote core.X25519PubKey) ([]byte, error) {
	shared, err := curve25519.X25519(e.secret[:], remote[:])
	if err != nil {
		return nil, fmt.Errorf("x25519 agreement: %s", err)
	}
	return shared, nil
}

// legacyKey derives the aes-gcm / aes-cbc symmetric key.
func (e *Encryption) legacyKey(remote core.X25519PubKey) ([]byte, error) {
	shared, err := e.ecdh(remote)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, hmacKeySalt)
	mac.Write(shared)
	return mac.Sum(nil), nil
}

// xchacha20Key derives the xchacha20 key: blake2b-32 over the shared secret
// and both pubkeys, client first.
func (e *Encryption) xchacha20Key(remote core.X25519PubKey) ([]byte, error) {
	shared, err := e.ecdh(remote)
	if err != nil {
		return nil, err
	}
	client, server := e.pubkey[:], remote[:]
	if e.server {
		client, server = remote[:], e.pubkey[:]
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	h.Write(shared)
	h.Write(client)
	h.Write(server)
	return h.Sum(nil), nil
}

func (e *Encryption) encryptXChaCha20(
	plaintext []byte, remote core.X25519PubKey) ([]byte, error) {

	key, err := e.xchacha20Key(remote)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *Encryption) decryptXChaCha20(
	ciphertext []byte, remote core.X25519PubKey) ([]byte, error) {

	key, err := e.xchacha20Key(remote)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < chacha20poly1305.NonceSizeX+aead.Overhead() {
		return nil, errors.New("ciphertext too short")
	}
	nonce := ciphertext[:chacha20poly1305.NonceSizeX]
	return aead.Open(nil, nonce, ciphertext[chacha20poly1305.NonceSizeX:], nil)
}

func (e *Encryption) encryptGCM(
	plaintext []byte, remote core.X25519PubKey) ([]byte, error) {

	key, err := e.legacyKey(remote)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *Encryption) decryptGCM(
	ciphertext []byte, remote core.X25519PubKey) ([]byte, error) {

	key, err := e.legacyKey(remote)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.New("ciphertext too short")
	}
	nonce := ciphertext[:aead.NonceSize()]
	return aead.Open(nil, nonce, ciphertext[aead.NonceSize():], nil)
}

func (e *Encryption) encryptCBC(
	plaintext []byte, remote core.X25519PubKey) ([]byte, error) {

	key, err := e.legacyKey(remote)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(iv)+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[len(iv):], padded)
	return out, nil
}

func (e *Encryption) decryptCBC(
	ciphertext []byte, remote core.X25519PubKey) ([]byte, error) {

	key, err := e.legacyKey(remote)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < 2*aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext has invalid length")
	}
	iv, body := ciphertext[:aes.BlockSize], ciphertext[aes.BlockSize:]
	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)
	return pkcs7Unpad(out, aes.BlockSize)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, errors.New("invalid padding")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
