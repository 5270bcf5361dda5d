package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
)

// AEADCipher wraps a cipher.AEAD and draws a fresh random nonce per Encrypt.
// It is safe for concurrent use.
type AEADCipher struct {
	aead  cipher.AEAD
	nonce io.Reader
}

// NewAESGCM returns an AES-256-GCM AEADCipher. The key must be 32 bytes.
func NewAESGCM(key []byte) (*AEADCipher, error) {
	if len(key) != cryptoDomain.SealingKeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AEADCipher{aead: aead, nonce: rand.Reader}, nil
}

// NewChaCha20Poly1305 returns a ChaCha20-Poly1305 AEADCipher. The key must be 32 bytes.
func NewChaCha20Poly1305(key []byte) (*AEADCipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidKeySize, err)
	}

	return &AEADCipher{aead: aead, nonce: rand.Reader}, nil
}

// Encrypt seals plaintext with a random nonce; the returned ciphertext carries the tag.
func (a *AEADCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := io.ReadFull(a.nonce, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return a.aead.Seal(nil, nonce, plaintext, aad), nonce, nil
}

// Decrypt opens ciphertext produced by Encrypt with the same aad.
func (a *AEADCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
