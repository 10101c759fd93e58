package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/cryptox"
	"github.com/dmitrijs2005/akashi/internal/filex"
)

const keystoreVersion = 1

// keystoreFile is the JSON layout of a keystore on disk.
type keystoreFile struct {
	Version    int       `json:"version"`
	Address    string    `json:"address"`
	KDF        kdfParams `json:"kdf"`
	Cipher     string    `json:"cipher"`
	Nonce      string    `json:"nonce"`
	Ciphertext string    `json:"ciphertext"`
	CreatedAt  time.Time `json:"created_at"`
}

type kdfParams struct {
	Name    string `json:"name"`
	Salt    string `json:"salt"`
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"`
	Threads uint8  `json:"threads"`
}

// Keystore is an ed25519 seed encrypted under a passphrase.
type Keystore struct {
	Path string
}

func NewKeystore(path string) *Keystore {
	return &Keystore{Path: path}
}

// Exists reports whether a keystore file is present.
func (k *Keystore) Exists() bool {
	_, err := os.Stat(k.Path)
	return err == nil
}

// Create generates a fresh key and stores it. An existing keystore is
// never overwritten.
func (k *Keystore) Create(passphrase []byte) (ed25519.PrivateKey, error) {
	seed := common.GenerateRandByteArray(ed25519.SeedSize)
	defer common.WipeByteArray(seed)
	return k.store(seed, passphrase, false)
}

// Import stores the key of a hex seed, replacing any existing keystore.
func (k *Keystore) Import(seedHex string, passphrase []byte) (ed25519.PrivateKey, error) {
	seed, err := ParseSeed(seedHex)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(seed)
	return k.store(seed, passphrase, true)
}

// Unlock decrypts the key. A wrong passphrase is
// common.ErrInvalidPassphrase; a missing file is
// common.ErrKeystoreNotPresent.
func (k *Keystore) Unlock(passphrase []byte) (ed25519.PrivateKey, error) {
	ks, err := k.read()
	if err != nil {
		return nil, err
	}

	salt, err := hex.DecodeString(ks.KDF.Salt)
	if err != nil {
		return nil, fmt.Errorf("keystore salt: %w", err)
	}
	nonce, err := hex.DecodeString(ks.Nonce)
	if err != nil {
		return nil, fmt.Errorf("keystore nonce: %w", err)
	}
	ct, err := hex.DecodeString(ks.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("keystore ciphertext: %w", err)
	}

	key := deriveKey(passphrase, salt, ks.KDF)
	defer common.WipeByteArray(key)

	seed, err := cryptox.Open(ct, nonce, key)
	if err != nil {
		return nil, common.ErrInvalidPassphrase
	}
	defer common.WipeByteArray(seed)

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("keystore seed has %d bytes", len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)

	if addr := AddressFromPublicKey(priv.Public().(ed25519.PublicKey)); addr != ks.Address {
		return nil, fmt.Errorf("keystore address mismatch: file says %s, key is %s", ks.Address, addr)
	}
	return priv, nil
}

// Address returns the address recorded in the keystore without unlocking it.
func (k *Keystore) Address() (string, error) {
	ks, err := k.read()
	if err != nil {
		return "", err
	}
	return ks.Address, nil
}

func (k *Keystore) store(seed, passphrase []byte, overwrite bool) (ed25519.PrivateKey, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", common.ErrInvalidPassphrase)
	}
	if !overwrite && k.Exists() {
		return nil, fmt.Errorf("keystore %s already exists", k.Path)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	params := kdfParams{
		Name:    "argon2id",
		Time:    cryptox.KDFTime,
		Memory:  cryptox.KDFMemory,
		Threads: cryptox.KDFThreads,
	}
	salt := cryptox.NewSalt()
	params.Salt = hex.EncodeToString(salt)

	key := deriveKey(passphrase, salt, params)
	defer common.WipeByteArray(key)

	ct, nonce, err := cryptox.Seal(seed, key)
	if err != nil {
		return nil, fmt.Errorf("seal keystore: %w", err)
	}

	data, err := json.MarshalIndent(keystoreFile{
		Version:    keystoreVersion,
		Address:    AddressFromPublicKey(priv.Public().(ed25519.PublicKey)),
		KDF:        params,
		Cipher:     "aes-256-gcm",
		Nonce:      hex.EncodeToString(nonce),
		Ciphertext: hex.EncodeToString(ct),
		CreatedAt:  time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return nil, err
	}

	if err := filex.WriteFileAtomic(k.Path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write keystore: %w", err)
	}
	return priv, nil
}

func (k *Keystore) read() (*keystoreFile, error) {
	data, err := os.ReadFile(k.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrKeystoreNotPresent
		}
		return nil, fmt.Errorf("read keystore: %w", err)
	}

	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("parse keystore: %w", err)
	}
	if ks.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", ks.Version)
	}
	if ks.KDF.Name != "argon2id" {
		return nil, fmt.Errorf("unsupported keystore kdf %q", ks.KDF.Name)
	}
	if ks.KDF.Time == 0 || ks.KDF.Memory == 0 || ks.KDF.Threads == 0 {
		return nil, errors.New("keystore kdf parameters are zero")
	}
	return &ks, nil
}

func deriveKey(passphrase, salt []byte, p kdfParams) []byte {
	return cryptox.DeriveKeyWith(passphrase, salt, p.Time, p.Memory, p.Threads)
}
