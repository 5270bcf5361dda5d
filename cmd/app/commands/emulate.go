package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/ticketsentry/internal/emulator"
)

// RunEmulate runs a fleet emulation and prints its report. The report is
// printed even when the run fails part way.
func RunEmulate(
	ctx context.Context,
	cfg emulator.Config,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("starting emulation",
		slog.Int("printers", cfg.Printers),
		slog.Int("iterations", cfg.Iterations),
		slog.Int("workers", cfg.Workers),
		slog.Uint64("seed", cfg.Seed),
	)

	report, runErr := emulator.Run(ctx, cfg, logger)
	if report != nil {
		if format == FormatJSON {
			if err := writeJSON(writer, report); err != nil {
				return err
			}
		} else {
			outputReportText(writer, report)
		}
	}
	if runErr != nil {
		return fmt.Errorf("emulation failed: %w", runErr)
	}
	return nil
}

func outputReportText(writer io.Writer, report *emulator.Report) {
	_, _ = fmt.Fprintf(writer, "Paired: %d\n", report.Paired)
	_, _ = fmt.Fprintf(writer, "Issued: %d\n", report.Issued)
	_, _ = fmt.Fprintf(writer, "Valid: %d\n", report.Valid)
	_, _ = fmt.Fprintf(writer, "Invalid: %d\n", report.Invalid)
	_, _ = fmt.Fprintf(writer, "Duplicate: %d\n", report.Duplicate)
}
