// Package clientcrypto encrypts vaults on the client before they reach the
// server. The server stores the result as opaque text.
package clientcrypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Params
const (
	SaltLen = 16
	KeyLen  = chacha20poly1305.KeySize

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// ErrMalformed is returned for vault text that is not a sealed vault.
var ErrMalformed = errors.New("malformed vault")

// ErrDecrypt is returned when the password or username does not match the vault.
var ErrDecrypt = errors.New("vault decryption failed")

func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey derives the vault key from password and salt using Argon2id.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// seal encrypts plaintext with XChaCha20-Poly1305 and returns nonce||ciphertext.
func seal(key, aad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, aad), nil
}

// open reverses seal.
func open(key, aad, blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(blob) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrMalformed
	}
	nonce, ct := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return pt, nil
}

// EncryptVault seals plaintext under a key derived from password with a fresh
// salt. The username is bound as associated data. The result is
// base64(salt || nonce || ciphertext).
func EncryptVault(password, username string, plaintext []byte) (string, error) {
	salt, err := Rand(SaltLen)
	if err != nil {
		return "", err
	}
	blob, err := seal(DeriveKey([]byte(password), salt), []byte(username), plaintext)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(append(salt, blob...)), nil
}

// DecryptVault opens a vault produced by EncryptVault.
func DecryptVault(password, username, vault string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(vault)
	if err != nil || len(raw) < SaltLen {
		return nil, ErrMalformed
	}
	salt, blob := raw[:SaltLen], raw[SaltLen:]
	return open(DeriveKey([]byte(password), salt), []byte(username), blob)
}
