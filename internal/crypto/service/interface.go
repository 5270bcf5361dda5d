// Package service provides the cryptographic primitives of the ticket protocol:
// the AES-128-CBC payload cipher shared by issuer and validator, and the AEAD
// sealing used to keep printer keys encrypted at rest.
package service

import (
	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
)

// TicketCipher encrypts and decrypts redemption payloads.
//
// A wrong key or IV is not an error: it yields garbage plaintext, and callers
// establish validity by checking the decrypted content.
type TicketCipher interface {
	Encrypt(key, iv, plaintext []byte) ([]byte, error)
	Decrypt(key, iv, ciphertext []byte) ([]byte, error)
}

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager creates AEAD instances by algorithm.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeySealer protects printer key material stored by the validator.
type KeySealer interface {
	// Seal encrypts plaintext bound to aad.
	Seal(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Open reverses Seal. Returns ErrDecryptionFailed on any authentication failure.
	Open(ciphertext, nonce, aad []byte) ([]byte, error)

	// Algorithm reports the sealing algorithm, persisted next to each sealed row.
	Algorithm() cryptoDomain.Algorithm
}
