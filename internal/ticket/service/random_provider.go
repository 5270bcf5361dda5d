package service

import (
	"crypto/rand"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

type randomPayoutProvider struct {
	source io.Reader
}

// NewRandomPayoutProvider returns payouts of 8 uniformly random digits read from
// source, or crypto/rand when source is nil.
func NewRandomPayoutProvider(source io.Reader) PayoutProvider {
	if source == nil {
		source = rand.Reader
	}
	return &randomPayoutProvider{source: source}
}

// Next draws one payout. Bytes >= 250 are rejected to keep digits unbiased.
func (p *randomPayoutProvider) Next() (string, error) {
	digits := make([]byte, 0, ticketDomain.PayoutLength)
	buf := make([]byte, 1)
	for len(digits) < ticketDomain.PayoutLength {
		if _, err := io.ReadFull(p.source, buf); err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		if buf[0] >= 250 {
			continue
		}
		digits = append(digits, '0'+buf[0]%10)
	}
	return string(digits), nil
}

// Restart is a no-op; a random sequence has no position.
func (p *randomPayoutProvider) Restart() error {
	return nil
}

type randomSecurityProvider struct {
	source io.Reader
}

// NewRandomSecurityProvider returns freshly random triplets (6-byte id, 16-byte
// key, 4-byte iv) read from source, or crypto/rand when source is nil.
func NewRandomSecurityProvider(source io.Reader) SecurityProvider {
	if source == nil {
		source = rand.Reader
	}
	return &randomSecurityProvider{source: source}
}

func (p *randomSecurityProvider) Next() (ticketDomain.SecurityTriplet, error) {
	buf := make([]byte, ticketDomain.PrinterIDSize+cryptoDomain.TicketKeySize+cryptoDomain.TicketIVSize)
	if _, err := io.ReadFull(p.source, buf); err != nil {
		return ticketDomain.SecurityTriplet{}, fmt.Errorf("failed to generate security triplet: %w", err)
	}

	keyEnd := ticketDomain.PrinterIDSize + cryptoDomain.TicketKeySize
	return ticketDomain.SecurityTriplet{
		PrinterID: buf[:ticketDomain.PrinterIDSize:ticketDomain.PrinterIDSize],
		Key:       buf[ticketDomain.PrinterIDSize:keyEnd:keyEnd],
		IV:        buf[keyEnd:],
	}, nil
}

func (p *randomSecurityProvider) Restart() error {
	return nil
}
