package service

import (
	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
)

// AEADKeySealer implements KeySealer with the sealing key's AEAD.
type AEADKeySealer struct {
	aead AEAD
	alg  cryptoDomain.Algorithm
}

// NewKeySealer builds a sealer from the sealing key. The caller keeps ownership
// of sealingKey and may Close it once the sealer is built.
func NewKeySealer(manager AEADManager, sealingKey *cryptoDomain.SealingKey) (*AEADKeySealer, error) {
	aead, err := manager.CreateCipher(sealingKey.Key, sealingKey.Algorithm)
	if err != nil {
		return nil, err
	}
	return &AEADKeySealer{aead: aead, alg: sealingKey.Algorithm}, nil
}

// Seal encrypts plaintext bound to aad.
func (s *AEADKeySealer) Seal(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	return s.aead.Encrypt(plaintext, aad)
}

// Open decrypts a sealed value, hiding the underlying failure cause.
func (s *AEADKeySealer) Open(ciphertext, nonce, aad []byte) ([]byte, error) {
	plaintext, err := s.aead.Decrypt(ciphertext, nonce, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// Algorithm returns the sealing algorithm.
func (s *AEADKeySealer) Algorithm() cryptoDomain.Algorithm {
	return s.alg
}
