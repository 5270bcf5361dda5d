package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
	ticketUseCase "github.com/allisson/ticketsentry/internal/ticket/usecase"
)

// RunScan reads one code per line until EOF or "q"/"quit" and prints its
// description. With a validator, pairing codes are also paired and redemption
// codes validated.
func RunScan(
	ctx context.Context,
	validator ticketUseCase.ValidatorUseCase,
	logger *slog.Logger,
	io IOTuple,
) error {
	_, _ = fmt.Fprintln(io.Writer, "Q to quit")

	scanner := bufio.NewScanner(io.Reader)
	for {
		_, _ = fmt.Fprintln(io.Writer, "Scan barcode")
		if !scanner.Scan() {
			break
		}

		raw := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(raw) {
		case "q", "quit":
			return nil
		}

		switch len(raw) {
		case ticketDomain.PairingCodeLength, ticketDomain.RedemptionCodeLength:
			_, _ = fmt.Fprintln(io.Writer, ticketDomain.Describe(raw))
		default:
			_, _ = fmt.Fprintln(io.Writer, "Unknown string format (incorrect length)")
			continue
		}

		if validator != nil {
			scanWithValidator(ctx, validator, logger, io, raw)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read scans: %w", err)
	}
	return nil
}

// scanWithValidator reports failures inline so one bad scan never ends the loop.
func scanWithValidator(
	ctx context.Context,
	validator ticketUseCase.ValidatorUseCase,
	logger *slog.Logger,
	io IOTuple,
	raw string,
) {
	if len(raw) == ticketDomain.PairingCodeLength {
		entry, err := validator.Pair(ctx, raw)
		if err != nil {
			logger.Warn("scan pairing failed", slog.Any("error", err))
			_, _ = fmt.Fprintf(io.Writer, "Pairing failed: %v\n", err)
			return
		}
		_, _ = fmt.Fprintf(io.Writer, "Paired printer %s (serial %s)\n", entry.PrinterID, entry.SerialNumber)
		return
	}

	result, err := validator.ValidateTicket(ctx, raw)
	if err != nil {
		logger.Warn("scan validation failed", slog.Any("error", err))
		_, _ = fmt.Fprintf(io.Writer, "Validation failed: %v\n", err)
		return
	}
	_, _ = fmt.Fprintf(io.Writer, "%s %s\n", Verdict(result), ticketDomain.PrettyPayout(result.Payout))
}
