package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
	"github.com/allisson/ticketsentry/internal/ticket/http/dto"
	ticketUseCase "github.com/allisson/ticketsentry/internal/ticket/usecase"
)

// RunValidate authenticates redemption codes. Pairing codes given alongside
// are paired first, which lets the memory store validate in one invocation.
func RunValidate(
	ctx context.Context,
	validator ticketUseCase.ValidatorUseCase,
	logger *slog.Logger,
	writer io.Writer,
	pairingCodes []string,
	codes []string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if len(codes) == 0 {
		return errors.New("at least one redemption code is required")
	}
	if len(pairingCodes) > 0 {
		if _, err := pairCodes(ctx, validator, pairingCodes); err != nil {
			return err
		}
	}

	results := make([]dto.RedeemResponse, 0, len(codes))
	for _, code := range codes {
		result, err := validator.ValidateTicket(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to validate %s: %w", code, err)
		}
		logger.Debug("ticket validated",
			slog.String("printer_id", result.PrinterID),
			slog.Bool("valid", result.Valid),
			slog.Bool("duplicate", result.Duplicate),
		)
		results = append(results, dto.MapRedemptionResultToResponse(result))
		if format == FormatText {
			outputValidateText(writer, code, result)
		}
	}

	if format == FormatJSON {
		return writeJSON(writer, results)
	}
	return nil
}

// Verdict renders the outcome of one scan.
func Verdict(result *ticketDomain.RedemptionResult) string {
	switch {
	case result.Duplicate:
		return "DUPLICATE"
	case result.Valid:
		return "VALID"
	default:
		return "INVALID"
	}
}

func outputValidateText(writer io.Writer, code string, result *ticketDomain.RedemptionResult) {
	_, _ = fmt.Fprintf(writer, "%s %s payout=%s printer=%s nonce=%s",
		code,
		Verdict(result),
		ticketDomain.PrettyPayout(result.Payout),
		result.PrinterID,
		result.Nonce,
	)
	if result.TimestampMode {
		_, _ = fmt.Fprintf(writer, " timestamp=%s", result.Timestamp.Format(ticketDomain.DiagnosticTimeLayout))
	}
	_, _ = fmt.Fprintln(writer)
}
