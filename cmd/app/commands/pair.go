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

// RunPair stores the keys carried by one or more pairing codes. Several codes
// are paired atomically.
func RunPair(
	ctx context.Context,
	validator ticketUseCase.ValidatorUseCase,
	logger *slog.Logger,
	writer io.Writer,
	codes []string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	entries, err := pairCodes(ctx, validator, codes)
	if err != nil {
		return err
	}

	logger.Info("printers paired", slog.Int("count", len(entries)))

	if format == FormatJSON {
		return writeJSON(writer, dto.MapKeyStoreEntriesToBatchResponse(entries))
	}
	for _, entry := range entries {
		_, _ = fmt.Fprintf(writer, "Paired printer %s (serial %s)\n", entry.PrinterID, entry.SerialNumber)
	}
	return nil
}

func pairCodes(
	ctx context.Context,
	validator ticketUseCase.ValidatorUseCase,
	codes []string,
) ([]*ticketDomain.KeyStoreEntry, error) {
	switch len(codes) {
	case 0:
		return nil, errors.New("at least one pairing code is required")
	case 1:
		entry, err := validator.Pair(ctx, codes[0])
		if err != nil {
			return nil, fmt.Errorf("failed to pair: %w", err)
		}
		return []*ticketDomain.KeyStoreEntry{entry}, nil
	default:
		entries, err := validator.PairBatch(ctx, codes)
		if err != nil {
			return nil, fmt.Errorf("failed to pair: %w", err)
		}
		return entries, nil
	}
}
