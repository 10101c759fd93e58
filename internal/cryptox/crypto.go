// Package cryptox holds the symmetric primitives used to protect the wallet
// keystore at rest.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/akashi/internal/common"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing them invalidates existing keystores, which
// record the values they were written with.
const (
	KDFTime    uint32 = 1
	KDFMemory  uint32 = 64 * 1024
	KDFThreads uint8  = 4
	KeyLen     uint32 = 32
	SaltLen           = 16
)

// ErrDecrypt is returned when a ciphertext does not authenticate under key.
var ErrDecrypt = errors.New("decryption failed")

// DeriveKey stretches a passphrase into a 32-byte AES key with argon2id.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return DeriveKeyWith(passphrase, salt, KDFTime, KDFMemory, KDFThreads)
}

// DeriveKeyWith is DeriveKey with explicit cost parameters, for data written
// with other settings.
func DeriveKeyWith(passphrase, salt []byte, time, memory uint32, threads uint8) []byte {
	return argon2.IDKey(passphrase, salt, time, memory, threads, KeyLen)
}

// NewSalt returns a random KDF salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltLen)
}

// Seal encrypts plaintext with AES-GCM under key, using a fresh random nonce.
//
// The key must be a valid AES key length (16, 24, or 32 bytes). The
// ciphertext and nonce are returned separately so callers can persist both.
func Seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// Open decrypts a Seal result. A wrong key or tampered input yields
// ErrDecrypt.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, ErrDecrypt
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
