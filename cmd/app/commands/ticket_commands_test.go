package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/ticketsentry/internal/app"
	"github.com/allisson/ticketsentry/internal/config"
	"github.com/allisson/ticketsentry/internal/emulator"
	"github.com/allisson/ticketsentry/internal/errors"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
	"github.com/allisson/ticketsentry/internal/ticket/http/dto"
	ticketUseCase "github.com/allisson/ticketsentry/internal/ticket/usecase"
	"github.com/allisson/ticketsentry/internal/ticket/usecase/mocks"
)

const (
	vectorPairingCode    = "X000000001VVVVVVVVISIjJBESExQVFhcYGRobHB0eHyA="
	vectorRedemptionCode = "Y00002700VVVVVVVVLFxhHx0Jemyb6etjL/Nn3Q=="
	secondPairingCode    = "X000000002qrvM3e7/AQIDBAABAgMEBQYHCAkKCwwNDg8="
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemoryContainer(t *testing.T) *app.Container {
	t.Helper()
	container := app.NewContainer(&config.Config{
		StoreDriver:   config.StoreMemory,
		LogLevel:      "error",
		TimestampMode: true,
	})
	t.Cleanup(func() { _ = container.Shutdown(context.Background()) })
	return container
}

func newMemoryValidator(t *testing.T) ticketUseCase.ValidatorUseCase {
	t.Helper()
	validator, err := newMemoryContainer(t).ValidatorUseCase()
	require.NoError(t, err)
	return validator
}

func TestRunIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("text-output", func(t *testing.T) {
		issuer, err := newMemoryContainer(t).NewIssuer("000000042", nil, nil)
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, RunIssue(ctx, issuer, discardLogger(), &out, 3, FormatText))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 6)
		assert.Equal(t, "Serial number: 000000042", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "Pairing code: X000000042"))
		assert.Equal(t, "Redemption codes:", lines[2])
		for _, code := range lines[3:] {
			assert.Len(t, code, ticketDomain.RedemptionCodeLength)
			assert.Equal(t, byte('Z'), code[0])
		}
	})

	t.Run("json-output-validates", func(t *testing.T) {
		issuer, err := newMemoryContainer(t).NewIssuer("000000007", nil, nil)
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, RunIssue(ctx, issuer, discardLogger(), &out, 2, FormatJSON))

		var result issueResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "000000007", result.SerialNumber)
		require.Len(t, result.RedemptionCodes, 2)

		validator := newMemoryValidator(t)
		_, err = validator.Pair(ctx, result.PairingCode)
		require.NoError(t, err)
		for _, code := range result.RedemptionCodes {
			res, err := validator.ValidateTicket(ctx, code)
			require.NoError(t, err)
			assert.True(t, res.Valid)
		}
	})

	t.Run("issuer-error", func(t *testing.T) {
		issuer := mocks.NewMockIssuerUseCase(t)
		issuer.On("SerialNumber").Return("000000001")
		issuer.On("MakePairingString", ctx).Return("", ticketDomain.ErrInvalidSecurityTriplet)

		err := RunIssue(ctx, issuer, discardLogger(), &bytes.Buffer{}, 1, FormatText)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ticketDomain.ErrInvalidSecurityTriplet))
	})

	t.Run("invalid-format", func(t *testing.T) {
		issuer := mocks.NewMockIssuerUseCase(t)
		err := RunIssue(ctx, issuer, discardLogger(), &bytes.Buffer{}, 1, "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})
}

func TestRunPair(t *testing.T) {
	ctx := context.Background()

	t.Run("single-code", func(t *testing.T) {
		var out bytes.Buffer
		err := RunPair(ctx, newMemoryValidator(t), discardLogger(), &out, []string{vectorPairingCode}, FormatText)
		require.NoError(t, err)
		assert.Equal(t, "Paired printer 555555555555 (serial 000000001)\n", out.String())
	})

	t.Run("batch-json", func(t *testing.T) {
		var out bytes.Buffer
		err := RunPair(
			ctx,
			newMemoryValidator(t),
			discardLogger(),
			&out,
			[]string{vectorPairingCode, secondPairingCode},
			FormatJSON,
		)
		require.NoError(t, err)

		var resp dto.PairBatchResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "555555555555", resp.Data[0].PrinterID)
		assert.Equal(t, "AABBCCDDEEFF", resp.Data[1].PrinterID)
	})

	t.Run("batch-uses-pair-batch", func(t *testing.T) {
		validator := mocks.NewMockValidatorUseCase(t)
		codes := []string{vectorPairingCode, secondPairingCode}
		validator.On("PairBatch", ctx, codes).Return(nil, ticketDomain.ErrInvalidFormat)

		err := RunPair(ctx, validator, discardLogger(), &bytes.Buffer{}, codes, FormatText)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("no-codes", func(t *testing.T) {
		validator := mocks.NewMockValidatorUseCase(t)
		err := RunPair(ctx, validator, discardLogger(), &bytes.Buffer{}, nil, FormatText)
		require.Error(t, err)
	})
}

func TestRunValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("pair-then-validate", func(t *testing.T) {
		var out bytes.Buffer
		err := RunValidate(
			ctx,
			newMemoryValidator(t),
			discardLogger(),
			&out,
			[]string{vectorPairingCode},
			[]string{vectorRedemptionCode, vectorRedemptionCode},
			FormatText,
		)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t,
			vectorRedemptionCode+" VALID payout=$27.00 printer=555555555555 nonce=01000000",
			lines[0],
		)
		assert.Contains(t, lines[1], " DUPLICATE ")
	})

	t.Run("json-output", func(t *testing.T) {
		var out bytes.Buffer
		err := RunValidate(
			ctx,
			newMemoryValidator(t),
			discardLogger(),
			&out,
			[]string{vectorPairingCode},
			[]string{vectorRedemptionCode},
			FormatJSON,
		)
		require.NoError(t, err)

		var resp []dto.RedeemResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.True(t, resp[0].Valid)
		assert.Equal(t, "F87604E618DFEFAF751004D77A2A8F7B67ABB667EF36590ED6F06277", resp[0].Fingerprint)
	})

	t.Run("unknown-printer", func(t *testing.T) {
		err := RunValidate(
			ctx,
			newMemoryValidator(t),
			discardLogger(),
			&bytes.Buffer{},
			nil,
			[]string{vectorRedemptionCode},
			FormatText,
		)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ticketDomain.ErrUnknownPrinter))
	})

	t.Run("no-codes", func(t *testing.T) {
		validator := mocks.NewMockValidatorUseCase(t)
		err := RunValidate(ctx, validator, discardLogger(), &bytes.Buffer{}, nil, nil, FormatText)
		require.Error(t, err)
	})
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "VALID", Verdict(&ticketDomain.RedemptionResult{Valid: true}))
	assert.Equal(t, "INVALID", Verdict(&ticketDomain.RedemptionResult{}))
	assert.Equal(t, "DUPLICATE", Verdict(&ticketDomain.RedemptionResult{Valid: true, Duplicate: true}))
}

func TestRunParse(t *testing.T) {
	t.Run("text-output", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunParse(&out, []string{vectorPairingCode, vectorRedemptionCode, "nope"}, FormatText))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "SN# 000000001, PID 555555555555, IV=21222324, AES=1112131415161718191A1B1C1D1E1F20", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "Payout $27.00, PID 555555555555, "))
		assert.Equal(t, "Unknown code format", lines[2])
	})

	t.Run("json-output", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunParse(&out, []string{vectorRedemptionCode}, FormatJSON))

		var resp []dto.ParseResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.True(t, strings.HasPrefix(resp[0].Description, "Payout $27.00"))
	})
}

func TestRunScan(t *testing.T) {
	ctx := context.Background()

	t.Run("parse-only", func(t *testing.T) {
		var out bytes.Buffer
		input := strings.Join([]string{"  " + vectorPairingCode + "  ", "short", "Q", vectorRedemptionCode}, "\n")

		err := RunScan(ctx, nil, discardLogger(), IOTuple{Reader: strings.NewReader(input), Writer: &out})
		require.NoError(t, err)

		got := out.String()
		assert.True(t, strings.HasPrefix(got, "Q to quit\nScan barcode\n"))
		assert.Contains(t, got, "SN# 000000001, PID 555555555555")
		assert.Contains(t, got, "Unknown string format (incorrect length)")
		assert.NotContains(t, got, "Payout $27.00")
	})

	t.Run("eof-ends-loop", func(t *testing.T) {
		var out bytes.Buffer
		err := RunScan(ctx, nil, discardLogger(), IOTuple{Reader: strings.NewReader(vectorRedemptionCode), Writer: &out})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Payout $27.00")
	})

	t.Run("with-validator", func(t *testing.T) {
		var out bytes.Buffer
		input := strings.Join([]string{
			vectorRedemptionCode,
			vectorPairingCode,
			vectorRedemptionCode,
			vectorRedemptionCode,
			"quit",
		}, "\n")

		err := RunScan(ctx, newMemoryValidator(t), discardLogger(), IOTuple{
			Reader: strings.NewReader(input),
			Writer: &out,
		})
		require.NoError(t, err)

		got := out.String()
		assert.Contains(t, got, "Validation failed: ")
		assert.Contains(t, got, "Paired printer 555555555555 (serial 000000001)")
		assert.Contains(t, got, "VALID $27.00")
		assert.Contains(t, got, "DUPLICATE $27.00")
	})
}

func TestRunEmulate(t *testing.T) {
	ctx := context.Background()

	t.Run("text-output", func(t *testing.T) {
		var out bytes.Buffer
		err := RunEmulate(ctx, emulator.Config{Iterations: 25, Printers: 3, Workers: 2, Seed: 1},
			discardLogger(), &out, FormatText)
		require.NoError(t, err)
		assert.Equal(t, "Paired: 3\nIssued: 25\nValid: 25\nInvalid: 0\nDuplicate: 0\n", out.String())
	})

	t.Run("json-output-with-files", func(t *testing.T) {
		dir := t.TempDir()
		var out bytes.Buffer
		err := RunEmulate(ctx, emulator.Config{Iterations: 5, Printers: 1, OutputDir: dir},
			discardLogger(), &out, FormatJSON)
		require.NoError(t, err)

		var report emulator.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, 5, report.Valid)
		_, err = os.Stat(filepath.Join(dir, emulator.RedemptionCodesDir, emulator.RedemptionCodesFile))
		assert.NoError(t, err)
	})

	t.Run("failure-still-reports", func(t *testing.T) {
		validator := mocks.NewMockValidatorUseCase(t)
		validator.On("PairBatch", mock.Anything, mock.Anything).Return([]*ticketDomain.KeyStoreEntry{}, nil)
		validator.On("ValidateTicket", mock.Anything, mock.Anything).
			Return(&ticketDomain.RedemptionResult{Valid: false}, nil)

		var out bytes.Buffer
		err := RunEmulate(ctx, emulator.Config{
			Iterations:  3,
			Printers:    1,
			FailOnError: true,
			Validator:   validator,
		}, discardLogger(), &out, FormatText)

		require.Error(t, err)
		assert.True(t, errors.Is(err, emulator.ErrEmulationFailure))
		assert.Contains(t, out.String(), "Invalid: 1")
	})
}

func TestLoadProviders(t *testing.T) {
	dir := t.TempDir()
	payoutFile := filepath.Join(dir, "payouts.txt")
	securityFile := filepath.Join(dir, "security.txt")
	require.NoError(t, os.WriteFile(payoutFile, []byte("00002700\n00000500\n"), 0o600))
	require.NoError(t, os.WriteFile(securityFile,
		[]byte("555555555555 1112131415161718191A1B1C1D1E1F20 21222324\n"), 0o600))

	t.Run("both-files", func(t *testing.T) {
		payouts, security, err := LoadProviders(payoutFile, securityFile)
		require.NoError(t, err)

		payout, err := payouts.Next()
		require.NoError(t, err)
		assert.Equal(t, "00002700", payout)

		triplet, err := security.Next()
		require.NoError(t, err)
		assert.Equal(t, "555555555555", triplet.PrinterIDHex())
	})

	t.Run("no-files", func(t *testing.T) {
		payouts, security, err := LoadProviders("", "")
		require.NoError(t, err)
		assert.Nil(t, payouts)
		assert.Nil(t, security)
	})

	t.Run("missing-file", func(t *testing.T) {
		_, _, err := LoadProviders(filepath.Join(dir, "missing.txt"), "")
		require.Error(t, err)
	})
}
