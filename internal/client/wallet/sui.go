package wallet

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	// ed25519SchemeFlag prefixes ed25519 public keys and serialized
	// signatures.
	ed25519SchemeFlag byte = 0x00

	serializedSignatureLen = 1 + ed25519.SignatureSize + ed25519.PublicKeySize
)

// transactionIntent is the intent prefix for a TransactionData message:
// scope TransactionData, version V0, app Sui.
var transactionIntent = []byte{0, 0, 0}

// ErrBadSignature is returned when a serialized signature cannot be parsed
// or does not verify.
var ErrBadSignature = errors.New("invalid signature")

// AddressFromPublicKey derives the Sui address of an ed25519 public key.
func AddressFromPublicKey(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, 1+len(pub))
	buf = append(buf, ed25519SchemeFlag)
	buf = append(buf, pub...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}

// IntentDigest is the message actually signed for a transaction.
func IntentDigest(txBytes []byte) [32]byte {
	buf := make([]byte, 0, len(transactionIntent)+len(txBytes))
	buf = append(buf, transactionIntent...)
	buf = append(buf, txBytes...)
	return blake2b.Sum256(buf)
}

// SignTransaction signs base64 txBytes and returns the serialized signature
// (base64 of flag ‖ signature ‖ public key).
func SignTransaction(key ed25519.PrivateKey, txBytes string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBytes)
	if err != nil {
		return "", fmt.Errorf("decode tx bytes: %w", err)
	}
	digest := IntentDigest(raw)
	sig := ed25519.Sign(key, digest[:])

	out := make([]byte, 0, serializedSignatureLen)
	out = append(out, ed25519SchemeFlag)
	out = append(out, sig...)
	out = append(out, key.Public().(ed25519.PublicKey)...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// VerifyTransaction checks a serialized signature over base64 txBytes and
// returns the signer's address.
func VerifyTransaction(txBytes, signature string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBytes)
	if err != nil {
		return "", fmt.Errorf("%w: tx bytes: %w", ErrBadSignature, err)
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadSignature, err)
	}
	if len(sig) != serializedSignatureLen || sig[0] != ed25519SchemeFlag {
		return "", fmt.Errorf("%w: unsupported encoding", ErrBadSignature)
	}

	pub := ed25519.PublicKey(sig[1+ed25519.SignatureSize:])
	digest := IntentDigest(raw)
	if !ed25519.Verify(pub, digest[:], sig[1:1+ed25519.SignatureSize]) {
		return "", ErrBadSignature
	}
	return AddressFromPublicKey(pub), nil
}

// NormalizeAddress lowercases an address and makes sure it has a 0x prefix.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return ""
	}
	if !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}
	return addr
}

// ParseSeed decodes a hex ed25519 seed, with or without 0x.
func ParseSeed(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	seed, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("seed is not hex: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return seed, nil
}
