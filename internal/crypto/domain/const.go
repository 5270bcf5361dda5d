package domain

// Algorithm identifies the AEAD used to seal key material at rest.
//
// Ticket payloads themselves always use AES-128-CBC (see the Ticket* sizes);
// Algorithm only concerns how the validator protects stored printer keys.
type Algorithm string

const (
	// AESGCM is AES-256-GCM with a 12-byte random nonce.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305 with a 12-byte random nonce.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// TicketKeySize is the AES-128 key size shared between issuer and validator.
	TicketKeySize = 16

	// TicketIVSize is the stored IV size. It is tiled to BlockSize before use.
	TicketIVSize = 4

	// BlockSize is the AES block size.
	BlockSize = 16

	// SealingKeySize is the key size of both sealing algorithms.
	SealingKeySize = 32
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM, ChaCha20:
		return Algorithm(s), nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
