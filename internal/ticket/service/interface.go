// Package service provides the pluggable collaborators of issuers and validators:
// payout and security-triplet providers, the replay fingerprinter and clocks.
package service

import (
	"time"

	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

// PayoutProvider is an infinite, restartable sequence of 8-digit payouts.
// An issuer serializes its own calls. A provider shared between issuers must
// be safe for concurrent use.
type PayoutProvider interface {
	Next() (string, error)
	Restart() error
}

// SecurityProvider is an infinite, restartable sequence of security triplets.
type SecurityProvider interface {
	Next() (ticketDomain.SecurityTriplet, error)
	Restart() error
}

// Fingerprinter derives the replay-detection key of a redemption attempt.
type Fingerprinter interface {
	Fingerprint(code, printerIDHex, nonceHex string) string
}

// Clock supplies the time encoded into timestamp-mode tickets.
type Clock interface {
	Now() time.Time
}
