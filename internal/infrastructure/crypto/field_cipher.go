// Package crypto implements field-level encryption for stored
// integration credentials.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/finhealth/finhealth/internal/infrastructure/kms"
)

const (
	kdfIterations = 100_000
	keyLength     = 32
)

// FieldCipher encrypts and decrypts individual sensitive fields with
// AES-256-GCM. The key is derived once from the source's passphrase.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher derives the AES key from the key source material.
func NewFieldCipher(material *kms.KeyMaterial) (*FieldCipher, error) {
	key := pbkdf2.Key([]byte(material.Passphrase), []byte(material.Salt), kdfIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("field cipher init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("field cipher init: %w", err)
	}
	return &FieldCipher{aead: aead}, nil
}

// Encrypt seals the plaintext and returns a base64 string with the
// nonce prepended.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce generation: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered or foreign-key ciphertexts fail
// authentication.
func (c *FieldCipher) Decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("ciphertext decode: %w", err)
	}
	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	plaintext, err := c.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("ciphertext authentication failed: %w", err)
	}
	return string(plaintext), nil
}
