package domain

import (
	"time"
)

// KeyStoreEntry is the validator's record of a paired printer. One entry per
// printer id; a later pairing for the same id replaces it.
type KeyStoreEntry struct {
	// PrinterID is the uppercase hex encoding of the 6-byte printer id.
	PrinterID string
	// SerialNumber is the issuer serial from the last pairing code. Informational.
	SerialNumber string
	// Key is the 16-byte AES key; never serialized.
	Key []byte `json:"-"`
	// IV is the 4-byte unexpanded IV; never serialized.
	IV []byte `json:"-"`
	// PairedAt is when the last pairing was stored.
	PairedAt time.Time
}
