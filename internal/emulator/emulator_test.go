package emulator

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/ticketsentry/internal/errors"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
	ticketService "github.com/allisson/ticketsentry/internal/ticket/service"
	ticketUseCase "github.com/allisson/ticketsentry/internal/ticket/usecase"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// rejectingValidator pairs for real but reports every scan as a replay.
type rejectingValidator struct {
	ticketUseCase.ValidatorUseCase
}

func (r rejectingValidator) ValidateTicket(
	ctx context.Context,
	code string,
) (*ticketDomain.RedemptionResult, error) {
	result, err := r.ValidatorUseCase.ValidateTicket(ctx, code)
	if err != nil {
		return nil, err
	}
	result.Duplicate = true
	return result, nil
}

func readCodes(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test fixture
	require.NoError(t, err)
	return strings.Fields(string(data))
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("every ticket validates", func(t *testing.T) {
		report, err := Run(ctx, Config{
			Iterations:    200,
			Printers:      5,
			Workers:       4,
			Seed:          42,
			TimestampMode: true,
		}, discardLogger())

		require.NoError(t, err)
		assert.Equal(t, &Report{Paired: 5, Issued: 200, Valid: 200}, report)
	})

	t.Run("writes code files", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Run(ctx, Config{
			Iterations: 20,
			Printers:   3,
			Workers:    2,
			Seed:       7,
			OutputDir:  dir,
		}, discardLogger())
		require.NoError(t, err)

		pairing := readCodes(t, filepath.Join(dir, PairingCodesDir, PairingCodesFile))
		require.Len(t, pairing, 3)
		for i, code := range pairing {
			assert.Len(t, code, 46)
			assert.True(t, strings.HasPrefix(code, "X00000000"+string(rune('1'+i))))
		}

		redemption := readCodes(t, filepath.Join(dir, RedemptionCodesDir, RedemptionCodesFile))
		require.Len(t, redemption, 20)
		for _, code := range redemption {
			assert.Len(t, code, 41)
			assert.Equal(t, byte('Y'), code[0])
		}
	})

	t.Run("same seed reproduces the run", func(t *testing.T) {
		cfg := Config{
			Iterations:    30,
			Printers:      4,
			Workers:       1,
			Seed:          99,
			TimestampMode: true,
			RandomClock:   true,
			ClockFromYear: 2020,
			ClockToYear:   2030,
		}

		first, second := t.TempDir(), t.TempDir()
		cfg.OutputDir = first
		_, err := Run(ctx, cfg, discardLogger())
		require.NoError(t, err)
		cfg.OutputDir = second
		_, err = Run(ctx, cfg, discardLogger())
		require.NoError(t, err)

		for _, p := range [][2]string{
			{PairingCodesDir, PairingCodesFile},
			{RedemptionCodesDir, RedemptionCodesFile},
		} {
			assert.Equal(t,
				readCodes(t, filepath.Join(first, p[0], p[1])),
				readCodes(t, filepath.Join(second, p[0], p[1])),
			)
		}
	})

	t.Run("shared payout sequence", func(t *testing.T) {
		payouts, err := ticketService.NewSequencePayoutProvider([]string{"00002700", "00000500"})
		require.NoError(t, err)

		dir := t.TempDir()
		report, err := Run(ctx, Config{
			Iterations: 10,
			Printers:   2,
			Workers:    3,
			Payouts:    payouts,
			OutputDir:  dir,
		}, discardLogger())
		require.NoError(t, err)
		assert.Equal(t, 10, report.Valid)

		for _, code := range readCodes(t, filepath.Join(dir, RedemptionCodesDir, RedemptionCodesFile)) {
			assert.Contains(t, []string{"00002700", "00000500"}, code[1:9])
		}
	})

	t.Run("rejections are counted", func(t *testing.T) {
		report, err := Run(ctx, Config{
			Iterations: 12,
			Printers:   2,
			Workers:    3,
			Validator:  rejectingValidator{newMemoryValidator(discardLogger())},
		}, discardLogger())

		require.NoError(t, err)
		assert.Equal(t, 12, report.Duplicate)
		assert.Zero(t, report.Valid)
	})

	t.Run("fail on error aborts", func(t *testing.T) {
		report, err := Run(ctx, Config{
			Iterations:  100,
			Printers:    2,
			Workers:     4,
			FailOnError: true,
			Validator:   rejectingValidator{newMemoryValidator(discardLogger())},
		}, discardLogger())

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmulationFailure))
		require.NotNil(t, report)
		assert.GreaterOrEqual(t, report.Duplicate, 1)
		assert.Less(t, report.Issued, 100)
	})

	t.Run("defaulted clock range that would be empty is rejected", func(t *testing.T) {
		report, err := Run(ctx, Config{
			Iterations:    1,
			Printers:      1,
			RandomClock:   true,
			ClockFromYear: 2150,
			TimestampMode: true,
		}, discardLogger())

		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		assert.Nil(t, report)
	})

	t.Run("cancelled context stops the fleet", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Run(cctx, Config{Iterations: 1000, Printers: 1, Workers: 2}, discardLogger())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "minimal", cfg: Config{Printers: 1}},
		{name: "no printers", cfg: Config{Iterations: 1}, wantErr: true},
		{name: "negative iterations", cfg: Config{Printers: 1, Iterations: -1}, wantErr: true},
		{name: "negative workers", cfg: Config{Printers: 1, Workers: -2}, wantErr: true},
		{
			name:    "clock before encodable range",
			cfg:     Config{Printers: 1, RandomClock: true, ClockFromYear: 1999, ClockToYear: 2020},
			wantErr: true,
		},
		{
			name:    "clock past encodable range",
			cfg:     Config{Printers: 1, RandomClock: true, ClockFromYear: 2000, ClockToYear: 2300},
			wantErr: true,
		},
		{
			name: "default clock range",
			cfg:  Config{Printers: 1, RandomClock: true},
		},
		{
			name:    "from year past default end year",
			cfg:     Config{Printers: 1, RandomClock: true, ClockFromYear: 2150},
			wantErr: true,
		},
		{
			name:    "end year before default start year",
			cfg:     Config{Printers: 1, RandomClock: true, ClockToYear: 1999},
			wantErr: true,
		},
		{
			name: "from year with default end year",
			cfg:  Config{Printers: 1, RandomClock: true, ClockFromYear: 2050},
		},
		{
			name: "clock bounds ignored without random clock",
			cfg:  Config{Printers: 1, ClockFromYear: 2150},
		},
		{
			name:    "inverted clock range",
			cfg:     Config{Printers: 1, RandomClock: true, ClockFromYear: 2030, ClockToYear: 2020},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}
