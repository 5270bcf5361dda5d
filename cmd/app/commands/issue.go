package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	ticketService "github.com/allisson/ticketsentry/internal/ticket/service"
	ticketUseCase "github.com/allisson/ticketsentry/internal/ticket/usecase"
)

type issueResult struct {
	SerialNumber    string   `json:"serial_number"`
	PairingCode     string   `json:"pairing_code"`
	RedemptionCodes []string `json:"redemption_codes"`
}

// RunIssue pairs a fresh issuer and prints its pairing code followed by count
// redemption codes.
func RunIssue(
	ctx context.Context,
	issuer ticketUseCase.IssuerUseCase,
	logger *slog.Logger,
	writer io.Writer,
	count int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("count must be zero or positive, got: %d", count)
	}

	logger.Info("issuing codes",
		slog.String("serial_number", issuer.SerialNumber()),
		slog.Int("count", count),
	)

	pairingCode, err := issuer.MakePairingString(ctx)
	if err != nil {
		return fmt.Errorf("failed to make pairing code: %w", err)
	}

	result := issueResult{
		SerialNumber:    issuer.SerialNumber(),
		PairingCode:     pairingCode,
		RedemptionCodes: make([]string, 0, count),
	}
	for range count {
		code, err := issuer.MakeRedemptionString(ctx)
		if err != nil {
			return fmt.Errorf("failed to make redemption code: %w", err)
		}
		result.RedemptionCodes = append(result.RedemptionCodes, code)
	}

	if format == FormatJSON {
		return writeJSON(writer, result)
	}
	outputIssueText(writer, result)
	return nil
}

func outputIssueText(writer io.Writer, result issueResult) {
	_, _ = fmt.Fprintf(writer, "Serial number: %s\n", result.SerialNumber)
	_, _ = fmt.Fprintf(writer, "Pairing code: %s\n", result.PairingCode)
	if len(result.RedemptionCodes) == 0 {
		return
	}
	_, _ = fmt.Fprintln(writer, "Redemption codes:")
	for _, code := range result.RedemptionCodes {
		_, _ = fmt.Fprintln(writer, code)
	}
}

// LoadProviders opens the optional payout and security files. An empty path
// yields a nil provider, which issuers replace with a random one.
func LoadProviders(
	payoutFile, securityFile string,
) (ticketService.PayoutProvider, ticketService.SecurityProvider, error) {
	var (
		payouts  ticketService.PayoutProvider
		security ticketService.SecurityProvider
	)
	if payoutFile != "" {
		p, err := ticketService.LoadPayoutFile(payoutFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load payout file: %w", err)
		}
		payouts = p
	}
	if securityFile != "" {
		s, err := ticketService.LoadSecurityFile(securityFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load security file: %w", err)
		}
		security = s
	}
	return payouts, security, nil
}
