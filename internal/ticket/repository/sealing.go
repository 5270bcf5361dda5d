package repository

import (
	"fmt"

	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
	cryptoService "github.com/allisson/ticketsentry/internal/crypto/service"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

// sealedKey is the at-rest form of a key-store entry's key material.
type sealedKey struct {
	algorithm  cryptoDomain.Algorithm
	ciphertext []byte
	nonce      []byte
}

func sealEntry(sealer cryptoService.KeySealer, entry *ticketDomain.KeyStoreEntry) (*sealedKey, error) {
	material := make([]byte, 0, len(entry.Key)+len(entry.IV))
	material = append(material, entry.Key...)
	material = append(material, entry.IV...)
	defer cryptoDomain.Zero(material)

	ciphertext, nonce, err := sealer.Seal(material, []byte(entry.PrinterID))
	if err != nil {
		return nil, fmt.Errorf("failed to seal printer key: %w", err)
	}
	return &sealedKey{algorithm: sealer.Algorithm(), ciphertext: ciphertext, nonce: nonce}, nil
}

func openEntry(sealer cryptoService.KeySealer, entry *ticketDomain.KeyStoreEntry, sealed *sealedKey) error {
	if sealed.algorithm != sealer.Algorithm() {
		return fmt.Errorf(
			"%w: printer key sealed with %s, configured %s",
			cryptoDomain.ErrUnsupportedAlgorithm,
			sealed.algorithm,
			sealer.Algorithm(),
		)
	}

	material, err := sealer.Open(sealed.ciphertext, sealed.nonce, []byte(entry.PrinterID))
	if err != nil {
		return err
	}
	if len(material) != cryptoDomain.TicketKeySize+cryptoDomain.TicketIVSize {
		cryptoDomain.Zero(material)
		return cryptoDomain.ErrInvalidKeySize
	}

	entry.Key = material[:cryptoDomain.TicketKeySize:cryptoDomain.TicketKeySize]
	entry.IV = material[cryptoDomain.TicketKeySize:]
	return nil
}
