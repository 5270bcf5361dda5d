package domain

import (
	"github.com/allisson/ticketsentry/internal/errors"
)

// Cryptographic errors. All wrap errors.ErrInvalidInput so they surface as 422s.
var (
	// ErrUnsupportedAlgorithm indicates an unknown sealing algorithm.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key of the wrong length for its cipher.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidIVSize indicates a ticket IV that is not 4 bytes.
	ErrInvalidIVSize = errors.Wrap(errors.ErrInvalidInput, "invalid iv size")

	// ErrInvalidCiphertextSize indicates CBC ciphertext that is empty or not block aligned.
	ErrInvalidCiphertextSize = errors.Wrap(errors.ErrInvalidInput, "invalid ciphertext size")

	// ErrDecryptionFailed indicates an AEAD open failed. The cause is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrSealingKeyNotSet indicates SEALING_KEY is required but empty.
	ErrSealingKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "sealing key not set")

	// ErrInvalidSealingKeyBase64 indicates SEALING_KEY is not valid base64.
	ErrInvalidSealingKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "invalid sealing key base64")
)
