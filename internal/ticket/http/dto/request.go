// Package dto provides the request and response bodies of the sentry scan API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/ticketsentry/internal/validation"
)

// MaxBatchSize caps the number of pairing codes accepted by one batch request.
const MaxBatchSize = 1000

// PairRequest carries one scanned pairing code.
type PairRequest struct {
	Code string `json:"code"`
}

// Validate checks if the pair request is valid.
func (r *PairRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code,
			validation.Required,
			customValidation.NoWhitespace,
			customValidation.PairingCodeShape,
		),
	)
}

// PairBatchRequest carries pairing codes to be stored atomically.
type PairBatchRequest struct {
	Codes []string `json:"codes"`
}

// Validate checks if the batch request is valid.
func (r *PairBatchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Codes,
			validation.Required,
			validation.Length(1, MaxBatchSize),
			validation.Each(validation.Required, customValidation.PairingCodeShape),
		),
	)
}

// RedeemRequest carries one scanned redemption code.
type RedeemRequest struct {
	Code string `json:"code"`
}

// Validate checks if the redeem request is valid.
func (r *RedeemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code,
			validation.Required,
			customValidation.NoWhitespace,
			customValidation.RedemptionCodeShape,
		),
	)
}

// ParseRequest carries any code; unknown shapes are described, not rejected.
type ParseRequest struct {
	Code string `json:"code"`
}

// Validate checks if the parse request is valid.
func (r *ParseRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 256)),
	)
}
