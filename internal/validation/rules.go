// Package validation provides jellydator/validation rules shared by the HTTP
// layer, the CLI and configuration loading.
package validation

import (
	"encoding/base64"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/ticketsentry/internal/errors"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Base64 validates standard base64 text. Empty strings are left to Required.
var Base64 = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_base64", "must be valid base64-encoded data"),
)

// Digits validates an ASCII decimal string.
var Digits = validation.NewStringRuleWithError(
	func(s string) bool {
		for i := 0; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		}
		return true
	},
	validation.NewError("validation_digits", "must contain only decimal digits"),
)

// PairingCodeShape checks length and control character of a pairing code.
// Full decoding is left to the ticket domain.
var PairingCodeShape = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) == ticketDomain.PairingCodeLength && s[0] == ticketDomain.CtrlPairing
	},
	validation.NewError(
		"validation_pairing_code",
		"must be a 46 character pairing code starting with 'X'",
	),
)

// RedemptionCodeShape checks length and control character of a redemption code.
var RedemptionCodeShape = validation.NewStringRuleWithError(
	func(s string) bool {
		if len(s) != ticketDomain.RedemptionCodeLength {
			return false
		}
		return s[0] == ticketDomain.CtrlRedeemMarker || s[0] == ticketDomain.CtrlRedeemTimestamp
	},
	validation.NewError(
		"validation_redemption_code",
		"must be a 41 character redemption code starting with 'Y' or 'Z'",
	),
)

// Payout validates an eight digit payout field.
var Payout = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_payout_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if len(s) != ticketDomain.PayoutLength {
		return validation.NewError("validation_payout_length", "must be exactly 8 digits")
	}
	return Digits.Validate(s)
})
