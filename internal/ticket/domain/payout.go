package domain

import (
	"strings"

	"github.com/allisson/ticketsentry/internal/codec"
)

// ValidatePayout checks that payout is exactly 8 ASCII digits.
func ValidatePayout(payout string) error {
	if len(payout) != PayoutLength || !isDigits(payout) {
		return ErrInvalidPayout
	}
	return nil
}

// RecordedPayout returns the claimed payout as stored in the redemption
// history: unchanged when it is 8 digits, uppercase hex of its raw bytes
// otherwise. Forged claims may carry arbitrary bytes that text columns reject.
func RecordedPayout(payout string) string {
	if ValidatePayout(payout) == nil {
		return payout
	}
	return codec.HexEncode([]byte(payout))
}

// PrettyPayout renders a payout in minor units as currency: "00002700" -> "$27.00".
// Leading zeros and separators are stripped, so "00000005" renders as "$.05".
func PrettyPayout(payout string) string {
	var b strings.Builder
	for i := len(payout) - 1; i >= 0; i-- {
		b.WriteByte(payout[i])
		switch len(payout) - 1 - i {
		case 1:
			b.WriteByte('.')
		case 4:
			b.WriteByte(',')
		}
	}

	reversed := []byte(b.String())
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	pretty := strings.TrimLeft(string(reversed), "0")
	pretty = strings.TrimLeft(pretty, ",")
	pretty = strings.TrimLeft(pretty, "0")
	return "$" + pretty
}
