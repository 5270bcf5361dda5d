package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
)

// CBCCipher is the ticket payload cipher: AES-128-CBC keyed by the pairing key,
// using the 4-byte pairing IV tiled four times as the block IV.
//
// Plaintext that is not block aligned is right-padded with bytes read from the
// padding source. The padding is not removable; receivers only interpret the
// leading bytes whose layout they know.
type CBCCipher struct {
	padding io.Reader
}

// NewCBCCipher returns a CBCCipher that pads from padding, or crypto/rand when nil.
func NewCBCCipher(padding io.Reader) *CBCCipher {
	if padding == nil {
		padding = rand.Reader
	}
	return &CBCCipher{padding: padding}
}

// ExpandIV tiles a 4-byte IV to the 16-byte AES block size.
func ExpandIV(iv []byte) ([]byte, error) {
	if len(iv) != cryptoDomain.TicketIVSize {
		return nil, cryptoDomain.ErrInvalidIVSize
	}
	return bytes.Repeat(iv, cryptoDomain.BlockSize/cryptoDomain.TicketIVSize), nil
}

// Encrypt pads plaintext to the next block boundary and encrypts it.
func (c *CBCCipher) Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	mode, err := c.blockMode(key, iv, cipher.NewCBCEncrypter)
	if err != nil {
		return nil, err
	}

	padded := make([]byte, len(plaintext), len(plaintext)+cryptoDomain.BlockSize)
	copy(padded, plaintext)
	if rem := len(padded) % cryptoDomain.BlockSize; rem != 0 {
		pad := make([]byte, cryptoDomain.BlockSize-rem)
		if _, err := io.ReadFull(c.padding, pad); err != nil {
			return nil, fmt.Errorf("failed to read padding: %w", err)
		}
		padded = append(padded, pad...)
	}

	ciphertext := make([]byte, len(padded))
	mode.CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// Decrypt returns the full padded plaintext.
func (c *CBCCipher) Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%cryptoDomain.BlockSize != 0 {
		return nil, cryptoDomain.ErrInvalidCiphertextSize
	}

	mode, err := c.blockMode(key, iv, cipher.NewCBCDecrypter)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	mode.CryptBlocks(plaintext, ciphertext)
	return plaintext, nil
}

func (c *CBCCipher) blockMode(
	key, iv []byte,
	newMode func(cipher.Block, []byte) cipher.BlockMode,
) (cipher.BlockMode, error) {
	if len(key) != cryptoDomain.TicketKeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	expanded, err := ExpandIV(iv)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return newMode(block, expanded), nil
}
