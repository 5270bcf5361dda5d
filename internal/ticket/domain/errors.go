package domain

import (
	"github.com/allisson/ticketsentry/internal/errors"
)

// Ticket protocol errors.
var (
	// ErrInvalidFormat indicates a code with the wrong length or control character.
	ErrInvalidFormat = errors.Wrap(errors.ErrInvalidInput, "invalid code format")

	// ErrInvalidPayout indicates a payout that is not exactly 8 ASCII digits.
	ErrInvalidPayout = errors.Wrap(errors.ErrInvalidInput, "payout must be 8 ASCII digits")

	// ErrInvalidSerialNumber indicates a serial number that is not exactly 9 ASCII digits.
	ErrInvalidSerialNumber = errors.Wrap(errors.ErrInvalidInput, "serial number must be 9 ASCII digits")

	// ErrInvalidSecurityTriplet indicates a printer id, key or iv of the wrong size.
	ErrInvalidSecurityTriplet = errors.Wrap(errors.ErrInvalidInput, "invalid security triplet")

	// ErrUnknownPrinter indicates the validator holds no key for the printer id.
	ErrUnknownPrinter = errors.Wrap(errors.ErrNotFound, "unknown printer")

	// ErrNotPaired indicates a redemption was requested before pairing.
	ErrNotPaired = errors.Wrap(errors.ErrFailedPrecondition, "printer is not paired")

	// ErrNonceExhausted indicates the 32-bit nonce counter would wrap.
	ErrNonceExhausted = errors.Wrap(errors.ErrFailedPrecondition, "nonce exhausted, printer must be replaced")
)
