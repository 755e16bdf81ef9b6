// Package crypto implements symmetric encryption of secret payloads and
// password hashing for the password gate on reveals.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcryptCost is fixed so request payloads cannot inflate hashing work.
	bcryptCost = 10
	// keySize is the AES-256 key length.
	keySize = 32
)

// ErrMalformedBlob is returned by Decrypt when a stored blob cannot be
// parsed or fails the padding check.
var ErrMalformedBlob = errors.New("malformed ciphertext blob")

// Cipher encrypts and decrypts secret text with AES-256-CBC. The stored
// blob format is hex(iv) + ":" + hex(ciphertext), so a blob is
// self-contained given the process-wide key.
type Cipher struct {
	key []byte
}

// NewCipher derives the data key from the configured secret value. A value
// that is not exactly 32 bytes is normalized with SHA-256 so any configured
// string yields a valid AES-256 key; a short configured value carries less
// entropy than the key size suggests.
func NewCipher(secret string) *Cipher {
	key := []byte(secret)
	if len(key) != keySize {
		sum := sha256.Sum256(key)
		key = sum[:]
	}
	return &Cipher{key: key}
}

// Encrypt encrypts plaintext with a freshly generated random IV and returns
// the combined blob.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pad([]byte(plaintext))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt splits the IV and ciphertext out of blob and returns the original
// plaintext. Malformed blobs and padding failures report ErrMalformedBlob.
func (c *Cipher) Decrypt(blob string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(blob, ":")
	if !ok {
		return "", fmt.Errorf("%w: missing delimiter", ErrMalformedBlob)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: bad iv", ErrMalformedBlob)
	}

	ct, err := hex.DecodeString(ctHex)
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: bad ciphertext", ErrMalformedBlob)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)

	plain, err := unpad(out)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// HashPassword hashes a reveal password with bcrypt at the fixed cost.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// A malformed hash verifies as false, the same as a wrong password.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// pad applies PKCS#7 padding up to the AES block size.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

// unpad strips and validates PKCS#7 padding.
func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: bad length", ErrMalformedBlob)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("%w: bad padding", ErrMalformedBlob)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrMalformedBlob)
		}
	}
	return b[:len(b)-n], nil
}
