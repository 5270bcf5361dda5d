package usecase

import (
	"context"
	"time"

	"github.com/allisson/ticketsentry/internal/metrics"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// issuerUseCaseWithMetrics decorates IssuerUseCase with metrics instrumentation.
type issuerUseCaseWithMetrics struct {
	next    IssuerUseCase
	metrics metrics.BusinessMetrics
}

// NewIssuerUseCaseWithMetrics wraps an IssuerUseCase with metrics recording.
func NewIssuerUseCaseWithMetrics(useCase IssuerUseCase, m metrics.BusinessMetrics) IssuerUseCase {
	return &issuerUseCaseWithMetrics{next: useCase, metrics: m}
}

func (i *issuerUseCaseWithMetrics) SerialNumber() string {
	return i.next.SerialNumber()
}

func (i *issuerUseCaseWithMetrics) LastPairingCode() string {
	return i.next.LastPairingCode()
}

// MakePairingString records metrics for pairing code generation.
func (i *issuerUseCaseWithMetrics) MakePairingString(ctx context.Context) (string, error) {
	start := time.Now()
	code, err := i.next.MakePairingString(ctx)

	status := statusOf(err)
	i.metrics.RecordOperation(ctx, "issuer", "pairing_create", status)
	i.metrics.RecordDuration(ctx, "issuer", "pairing_create", time.Since(start), status)

	return code, err
}

// MakeRedemptionString records metrics for redemption code generation.
func (i *issuerUseCaseWithMetrics) MakeRedemptionString(ctx context.Context) (string, error) {
	start := time.Now()
	code, err := i.next.MakeRedemptionString(ctx)

	status := statusOf(err)
	i.metrics.RecordOperation(ctx, "issuer", "redemption_create", status)
	i.metrics.RecordDuration(ctx, "issuer", "redemption_create", time.Since(start), status)

	return code, err
}

// validatorUseCaseWithMetrics decorates ValidatorUseCase with metrics instrumentation.
type validatorUseCaseWithMetrics struct {
	next    ValidatorUseCase
	metrics metrics.BusinessMetrics
}

// NewValidatorUseCaseWithMetrics wraps a ValidatorUseCase with metrics recording.
func NewValidatorUseCaseWithMetrics(useCase ValidatorUseCase, m metrics.BusinessMetrics) ValidatorUseCase {
	return &validatorUseCaseWithMetrics{next: useCase, metrics: m}
}

// Pair records metrics for pairing operations.
func (v *validatorUseCaseWithMetrics) Pair(ctx context.Context, code string) (*ticketDomain.KeyStoreEntry, error) {
	start := time.Now()
	entry, err := v.next.Pair(ctx, code)

	status := statusOf(err)
	v.metrics.RecordOperation(ctx, "sentry", "pair", status)
	v.metrics.RecordDuration(ctx, "sentry", "pair", time.Since(start), status)

	return entry, err
}

// PairBatch records metrics for batch pairing operations.
func (v *validatorUseCaseWithMetrics) PairBatch(
	ctx context.Context,
	codes []string,
) ([]*ticketDomain.KeyStoreEntry, error) {
	start := time.Now()
	entries, err := v.next.PairBatch(ctx, codes)

	status := statusOf(err)
	v.metrics.RecordOperation(ctx, "sentry", "pair_batch", status)
	v.metrics.RecordDuration(ctx, "sentry", "pair_batch", time.Since(start), status)

	return entries, err
}

// ValidateTicket records metrics for validation and the ticket outcome.
func (v *validatorUseCaseWithMetrics) ValidateTicket(
	ctx context.Context,
	code string,
) (*ticketDomain.RedemptionResult, error) {
	start := time.Now()
	result, err := v.next.ValidateTicket(ctx, code)

	status := statusOf(err)
	v.metrics.RecordOperation(ctx, "sentry", "validate", status)
	v.metrics.RecordDuration(ctx, "sentry", "validate", time.Since(start), status)

	if err == nil {
		outcome := "valid"
		switch {
		case result.Duplicate:
			outcome = "duplicate"
		case !result.Valid:
			outcome = "invalid"
		}
		codeType := "marker"
		if result.TimestampMode {
			codeType = "timestamp"
		}
		v.metrics.RecordTicketOutcome(ctx, codeType, outcome)
	}

	return result, err
}

// Parse is not instrumented; it is a pure diagnostic.
func (v *validatorUseCaseWithMetrics) Parse(code string) string {
	return v.next.Parse(code)
}

// ListRedemptions records metrics for history listing.
func (v *validatorUseCaseWithMetrics) ListRedemptions(
	ctx context.Context,
	offset, limit int,
) ([]*ticketDomain.RedemptionRecord, error) {
	start := time.Now()
	records, err := v.next.ListRedemptions(ctx, offset, limit)

	status := statusOf(err)
	v.metrics.RecordOperation(ctx, "sentry", "redemption_list", status)
	v.metrics.RecordDuration(ctx, "sentry", "redemption_list", time.Since(start), status)

	return records, err
}
