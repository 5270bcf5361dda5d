// Package usecase implements the two protocol roles: the issuer, which owns one
// printer identity and prints pairing and redemption codes, and the validator,
// which learns printer keys from pairing codes and authenticates redemptions.
package usecase

import (
	"context"

	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

// KeyStoreRepository persists validator key-store entries keyed by hex printer id.
type KeyStoreRepository interface {
	// Upsert stores entry, replacing any previous entry for the same printer id.
	Upsert(ctx context.Context, entry *ticketDomain.KeyStoreEntry) error

	// Get returns errors.ErrNotFound when the printer was never paired.
	Get(ctx context.Context, printerID string) (*ticketDomain.KeyStoreEntry, error)

	// Count returns the number of paired printers.
	Count(ctx context.Context) (int64, error)
}

// HistoryRepository is the validator's append-only redemption history.
type HistoryRepository interface {
	// Add inserts record unless its fingerprint is already present. The check and
	// the insert are atomic; duplicate reports whether the fingerprint existed.
	Add(ctx context.Context, record *ticketDomain.RedemptionRecord) (duplicate bool, err error)

	// List returns records ordered by creation, oldest first.
	List(ctx context.Context, offset, limit int) ([]*ticketDomain.RedemptionRecord, error)

	// Count returns the number of recorded redemptions.
	Count(ctx context.Context) (int64, error)
}

// IssuerUseCase is one printer terminal. It is safe for concurrent use.
type IssuerUseCase interface {
	// SerialNumber returns the 9-digit serial.
	SerialNumber() string

	// LastPairingCode returns the most recent pairing code, or "" before pairing.
	LastPairingCode() string

	// MakePairingString draws a new security triplet, keeps the nonce counter and
	// returns the 46-character pairing code.
	MakePairingString(ctx context.Context) (string, error)

	// MakeRedemptionString returns a 41-character redemption code for the next
	// payout. Fails with ErrNotPaired before the first pairing.
	MakeRedemptionString(ctx context.Context) (string, error)
}

// ValidatorUseCase is the scanner side of the protocol.
type ValidatorUseCase interface {
	// Pair stores the key carried by a pairing code. Last pairing wins.
	Pair(ctx context.Context, code string) (*ticketDomain.KeyStoreEntry, error)

	// PairBatch pairs every code in one transaction. Any invalid code aborts the batch.
	PairBatch(ctx context.Context, codes []string) ([]*ticketDomain.KeyStoreEntry, error)

	// ValidateTicket authenticates a redemption code and records its fingerprint.
	// A wrong key yields Valid=false, not an error; an unpaired printer fails
	// with ErrUnknownPrinter.
	ValidateTicket(ctx context.Context, code string) (*ticketDomain.RedemptionResult, error)

	// Parse describes a code without touching any state.
	Parse(code string) string

	// ListRedemptions pages through the redemption history.
	ListRedemptions(ctx context.Context, offset, limit int) ([]*ticketDomain.RedemptionRecord, error)
}
