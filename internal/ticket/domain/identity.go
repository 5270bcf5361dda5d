package domain

import (
	"github.com/allisson/ticketsentry/internal/codec"
	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
)

// SecurityTriplet is the secret material an issuer shares with a validator when pairing.
type SecurityTriplet struct {
	PrinterID []byte
	Key       []byte
	IV        []byte
}

// Validate checks field sizes.
func (s SecurityTriplet) Validate() error {
	if len(s.PrinterID) != PrinterIDSize ||
		len(s.Key) != cryptoDomain.TicketKeySize ||
		len(s.IV) != cryptoDomain.TicketIVSize {
		return ErrInvalidSecurityTriplet
	}
	return nil
}

// PrinterIDHex returns the key-store key for this triplet.
func (s SecurityTriplet) PrinterIDHex() string {
	return codec.HexEncode(s.PrinterID)
}

// Clone returns a deep copy so callers cannot mutate stored material.
func (s SecurityTriplet) Clone() SecurityTriplet {
	return SecurityTriplet{
		PrinterID: append([]byte(nil), s.PrinterID...),
		Key:       append([]byte(nil), s.Key...),
		IV:        append([]byte(nil), s.IV...),
	}
}

// ValidateSerialNumber checks that sn is exactly 9 ASCII digits.
func ValidateSerialNumber(sn string) error {
	if len(sn) != SerialNumberLength || !isDigits(sn) {
		return ErrInvalidSerialNumber
	}
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
