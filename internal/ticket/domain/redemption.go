package domain

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionResult is the outcome of validating one redemption code.
type RedemptionResult struct {
	// Valid reports whether the claimed payout matches the encrypted payout.
	Valid bool
	// Duplicate reports whether this exact code was already seen.
	Duplicate bool
	// Timestamp is the decoded plaintext tail. For codes with TimestampMode false
	// the tail is a fixed marker and the timestamp carries no meaning.
	Timestamp time.Time
	// TimestampMode is true for 'Z' codes.
	TimestampMode bool
	// PrinterID is the hex printer id.
	PrinterID string
	// Payout is the claimed payout.
	Payout string
	// Nonce is the hex of the decrypted nonce bytes.
	Nonce string
	// Fingerprint is the replay-detection digest of the code.
	Fingerprint string
}

// RedemptionRecord is one append-only entry of the validator's redemption history.
type RedemptionRecord struct {
	ID            uuid.UUID
	Fingerprint   string
	PrinterID     string
	Nonce         string
	// Payout is RecordedPayout of the claimed payout.
	Payout        string
	Valid         bool
	CodeTimestamp time.Time
	CreatedAt     time.Time
}
