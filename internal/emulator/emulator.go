// Package emulator drives a fleet of simulated printers against one validator.
// It pairs every printer, then redeems tickets on randomly chosen printers from
// a pool of workers and tallies the outcome of each scan.
package emulator

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"

	validation "github.com/jellydator/validation"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/ticketsentry/internal/codec"
	cryptoService "github.com/allisson/ticketsentry/internal/crypto/service"
	"github.com/allisson/ticketsentry/internal/database"
	"github.com/allisson/ticketsentry/internal/errors"
	"github.com/allisson/ticketsentry/internal/metrics"
	ticketRepository "github.com/allisson/ticketsentry/internal/ticket/repository"
	ticketService "github.com/allisson/ticketsentry/internal/ticket/service"
	ticketUseCase "github.com/allisson/ticketsentry/internal/ticket/usecase"
	customValidation "github.com/allisson/ticketsentry/internal/validation"
)

// Output file layout under Config.OutputDir.
const (
	PairingCodesDir        = "pairing_codes"
	RedemptionCodesDir     = "redemption_codes"
	PairingCodesFile       = "a_small_pairing_codes.txt"
	RedemptionCodesFile    = "a_small_redemption_codes.txt"
	defaultClockFromYear   = 2000
	defaultClockToYear     = 2100
	outputFilePermissions  = 0o600
	outputDirPermissions   = 0o750
	redemptionLogBatchSize = 1000
)

// ErrEmulationFailure is returned when FailOnError is set and a scan comes back
// invalid or duplicate.
var ErrEmulationFailure = errors.New("emulation failure")

// Config describes one emulation run.
type Config struct {
	// Iterations is the number of redemption codes to issue and scan.
	Iterations int
	// Printers is the fleet size. Serials are assigned 000000001 onwards.
	Printers int
	// Workers is the number of concurrent scanning goroutines. Defaults to 1.
	Workers int
	// Seed makes printer selection and random providers reproducible.
	Seed uint64
	// TimestampMode selects 'Z' codes carrying a timestamp.
	TimestampMode bool
	// RandomClock stamps tickets with random minutes in [ClockFromYear,
	// ClockToYear) instead of the wall clock. Zero years default to 2000 and 2100.
	RandomClock   bool
	ClockFromYear int
	ClockToYear   int
	// Payouts and Security are shared by every printer when set. Otherwise each
	// printer gets random providers seeded from Seed.
	Payouts  ticketService.PayoutProvider
	Security ticketService.SecurityProvider
	// OutputDir receives the generated codes as text files. Empty disables output.
	OutputDir string
	// FailOnError aborts on the first invalid or duplicate scan.
	FailOnError bool
	// Validator defaults to an in-memory validator.
	Validator ticketUseCase.ValidatorUseCase
	// Metrics instruments the printers when set.
	Metrics metrics.BusinessMetrics
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	from, to := c.clockYears()
	err := validation.ValidateStruct(c,
		validation.Field(&c.Iterations, validation.Min(0)),
		validation.Field(&c.Printers, validation.Required, validation.Min(1), validation.Max(999999999)),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.ClockFromYear,
			validation.When(c.RandomClock, validation.By(yearBetween(from, codec.MinTimestampYear, codec.MaxTimestampYear))),
		),
		validation.Field(&c.ClockToYear,
			validation.When(c.RandomClock, validation.By(yearBetween(to, from+1, codec.MaxTimestampYear+1))),
		),
	)
	return customValidation.WrapValidationError(err)
}

// clockYears returns the random clock bounds with zero years defaulted.
func (c *Config) clockYears() (from, to int) {
	from, to = c.ClockFromYear, c.ClockToYear
	if from == 0 {
		from = defaultClockFromYear
	}
	if to == 0 {
		to = defaultClockToYear
	}
	return from, to
}

// yearBetween checks the resolved year rather than the raw field, which may be
// zero and defaulted.
func yearBetween(year, lo, hi int) validation.RuleFunc {
	return func(any) error {
		if year < lo || year > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// Report tallies one run.
type Report struct {
	Paired    int `json:"paired"`
	Issued    int `json:"issued"`
	Valid     int `json:"valid"`
	Invalid   int `json:"invalid"`
	Duplicate int `json:"duplicate"`
}

type counters struct {
	issued, valid, invalid, duplicate atomic.Int64
}

// Run executes the emulation. On ErrEmulationFailure the returned report holds
// the tallies up to the failure.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Validator == nil {
		cfg.Validator = newMemoryValidator(logger)
	}

	printers, err := buildFleet(cfg, logger)
	if err != nil {
		return nil, err
	}

	pairingCodes := make([]string, len(printers))
	for i, p := range printers {
		code, err := p.MakePairingString(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to pair printer %s: %w", p.SerialNumber(), err)
		}
		pairingCodes[i] = code
	}
	if _, err := cfg.Validator.PairBatch(ctx, pairingCodes); err != nil {
		return nil, fmt.Errorf("failed to pair fleet: %w", err)
	}
	logger.Info("fleet paired", slog.Int("printers", len(printers)))

	report := &Report{Paired: len(printers)}
	redemptionCodes := make([]string, cfg.Iterations)
	var c counters
	err = scan(ctx, cfg, printers, redemptionCodes, &c, logger)

	report.Issued = int(c.issued.Load())
	report.Valid = int(c.valid.Load())
	report.Invalid = int(c.invalid.Load())
	report.Duplicate = int(c.duplicate.Load())
	if err != nil {
		return report, err
	}

	if cfg.OutputDir != "" {
		if err := writeCodes(cfg.OutputDir, PairingCodesDir, PairingCodesFile, pairingCodes); err != nil {
			return report, err
		}
		if err := writeCodes(cfg.OutputDir, RedemptionCodesDir, RedemptionCodesFile, redemptionCodes); err != nil {
			return report, err
		}
	}

	logger.Info("emulation finished",
		slog.Int("issued", report.Issued),
		slog.Int("valid", report.Valid),
		slog.Int("invalid", report.Invalid),
		slog.Int("duplicate", report.Duplicate),
	)
	return report, nil
}

// scan fans the iterations out to the workers. Printer choices are drawn up
// front so a given seed always selects the same sequence of printers.
func scan(
	ctx context.Context,
	cfg Config,
	printers []ticketUseCase.IssuerUseCase,
	codes []string,
	c *counters,
	logger *slog.Logger,
) error {
	rng := rand.New(rand.NewPCG(cfg.Seed, ^cfg.Seed)) //nolint:gosec // emulation only
	choices := make([]int, cfg.Iterations)
	for i := range choices {
		choices[i] = rng.IntN(len(printers))
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := range choices {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range cfg.Workers {
		g.Go(func() error {
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := redeemOne(gctx, cfg, printers[choices[i]], i, codes, c, logger); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func redeemOne(
	ctx context.Context,
	cfg Config,
	printer ticketUseCase.IssuerUseCase,
	index int,
	codes []string,
	c *counters,
	logger *slog.Logger,
) error {
	code, err := printer.MakeRedemptionString(ctx)
	if err != nil {
		return fmt.Errorf("printer %s failed to issue: %w", printer.SerialNumber(), err)
	}
	codes[index] = code
	if n := c.issued.Add(1); n%redemptionLogBatchSize == 0 {
		logger.Debug("emulation progress", slog.Int64("issued", n))
	}

	result, err := cfg.Validator.ValidateTicket(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", code, err)
	}

	switch {
	case result.Duplicate:
		c.duplicate.Add(1)
	case result.Valid:
		c.valid.Add(1)
		return nil
	default:
		c.invalid.Add(1)
	}

	logger.Warn("ticket rejected",
		slog.String("code", code),
		slog.String("serial_number", printer.SerialNumber()),
		slog.Bool("valid", result.Valid),
		slog.Bool("duplicate", result.Duplicate),
	)
	if cfg.FailOnError {
		return fmt.Errorf("%w: %s valid=%t duplicate=%t", ErrEmulationFailure, code, result.Valid, result.Duplicate)
	}
	return nil
}

func buildFleet(cfg Config, logger *slog.Logger) ([]ticketUseCase.IssuerUseCase, error) {
	var clock ticketService.Clock = ticketService.NewSystemClock()
	if cfg.RandomClock {
		from, to := cfg.clockYears()
		randomClock, err := ticketService.NewRandomClock(cfg.Seed, from, to)
		if err != nil {
			return nil, err
		}
		clock = randomClock
	}
	cipher := cryptoService.NewCBCCipher(nil)

	printers := make([]ticketUseCase.IssuerUseCase, cfg.Printers)
	for i := range printers {
		payouts, security := cfg.Payouts, cfg.Security
		if payouts == nil || security == nil {
			source := rand.NewChaCha8(printerSeed(cfg.Seed, i))
			if payouts == nil {
				payouts = ticketService.NewRandomPayoutProvider(source)
			}
			if security == nil {
				security = ticketService.NewRandomSecurityProvider(source)
			}
		}

		issuer, err := ticketUseCase.NewIssuerUseCase(ticketUseCase.IssuerConfig{
			SerialNumber:     fmt.Sprintf("%09d", i+1),
			TimestampMode:    cfg.TimestampMode,
			PayoutProvider:   payouts,
			SecurityProvider: security,
			Clock:            clock,
			Cipher:           cipher,
		}, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Metrics != nil {
			issuer = ticketUseCase.NewIssuerUseCaseWithMetrics(issuer, cfg.Metrics)
		}
		printers[i] = issuer
	}
	return printers, nil
}

// printerSeed derives an independent ChaCha8 seed for printer index from seed.
func printerSeed(seed uint64, index int) [32]byte {
	var s [32]byte
	binary.BigEndian.PutUint64(s[0:8], seed)
	binary.BigEndian.PutUint64(s[8:16], uint64(index)) //nolint:gosec // index is non-negative
	return s
}

func newMemoryValidator(logger *slog.Logger) ticketUseCase.ValidatorUseCase {
	return ticketUseCase.NewValidatorUseCase(
		database.NewNoopTxManager(),
		ticketRepository.NewMemoryKeyStoreRepository(),
		ticketRepository.NewMemoryHistoryRepository(),
		cryptoService.NewCBCCipher(nil),
		ticketService.NewSHA224Fingerprinter(),
		ticketService.NewSystemClock(),
		logger,
	)
}

func writeCodes(root, dir, name string, codes []string) error {
	path := filepath.Join(root, dir)
	if err := os.MkdirAll(path, outputDirPermissions); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	f, err := os.OpenFile( //nolint:gosec // operator-supplied output directory
		filepath.Join(path, name),
		os.O_CREATE|os.O_WRONLY|os.O_TRUNC,
		outputFilePermissions,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	w := bufio.NewWriter(f)
	for _, code := range codes {
		if _, err := fmt.Fprintln(w, code); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return f.Close()
}
