package usecase

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/allisson/ticketsentry/internal/codec"
	cryptoService "github.com/allisson/ticketsentry/internal/crypto/service"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
	ticketService "github.com/allisson/ticketsentry/internal/ticket/service"
)

// IssuerConfig configures one issuer. Nil collaborators fall back to random
// providers, the system clock and a CBC cipher padded from crypto/rand.
type IssuerConfig struct {
	SerialNumber     string
	TimestampMode    bool
	PayoutProvider   ticketService.PayoutProvider
	SecurityProvider ticketService.SecurityProvider
	Clock            ticketService.Clock
	Cipher           cryptoService.TicketCipher
}

type issuerUseCase struct {
	mu              sync.Mutex
	cfg             IssuerConfig
	triplet         *ticketDomain.SecurityTriplet
	nonce           uint32
	lastPairingCode string
	logger          *slog.Logger
}

// NewIssuerUseCase creates an unpaired issuer.
func NewIssuerUseCase(cfg IssuerConfig, logger *slog.Logger) (IssuerUseCase, error) {
	if err := ticketDomain.ValidateSerialNumber(cfg.SerialNumber); err != nil {
		return nil, err
	}
	if cfg.PayoutProvider == nil {
		cfg.PayoutProvider = ticketService.NewRandomPayoutProvider(nil)
	}
	if cfg.SecurityProvider == nil {
		cfg.SecurityProvider = ticketService.NewRandomSecurityProvider(nil)
	}
	if cfg.Clock == nil {
		cfg.Clock = ticketService.NewSystemClock()
	}
	if cfg.Cipher == nil {
		cfg.Cipher = cryptoService.NewCBCCipher(nil)
	}

	return &issuerUseCase{cfg: cfg, logger: logger}, nil
}

func (i *issuerUseCase) SerialNumber() string {
	return i.cfg.SerialNumber
}

func (i *issuerUseCase) LastPairingCode() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastPairingCode
}

func (i *issuerUseCase) MakePairingString(ctx context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	triplet, err := i.cfg.SecurityProvider.Next()
	if err != nil {
		return "", err
	}

	code, err := ticketDomain.FormatPairingCode(i.cfg.SerialNumber, triplet)
	if err != nil {
		return "", err
	}

	// The nonce carries across pairings. A provider may hand back the same
	// triplet, and a reset would reissue codes that were already redeemed.
	i.triplet = &triplet
	i.lastPairingCode = code

	i.logger.InfoContext(ctx, "issuer generated new pairing code",
		slog.String("serial_number", i.cfg.SerialNumber),
		slog.String("printer_id", triplet.PrinterIDHex()),
	)

	return code, nil
}

func (i *issuerUseCase) MakeRedemptionString(ctx context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.triplet == nil {
		return "", ticketDomain.ErrNotPaired
	}
	if i.nonce == math.MaxUint32 {
		return "", ticketDomain.ErrNonceExhausted
	}

	// The nonce is consumed even if the rest of the build fails.
	i.nonce++

	payout, err := i.cfg.PayoutProvider.Next()
	if err != nil {
		return "", err
	}
	if err := ticketDomain.ValidatePayout(payout); err != nil {
		return "", err
	}

	tail := ticketDomain.NonTimestampTail
	if i.cfg.TimestampMode {
		tail, err = codec.EncodeTimestamp(i.cfg.Clock.Now())
		if err != nil {
			return "", err
		}
	}

	block, err := ticketDomain.NewPlaintext(payout, i.nonce, tail)
	if err != nil {
		return "", err
	}

	ciphertext, err := i.cfg.Cipher.Encrypt(i.triplet.Key, i.triplet.IV, block)
	if err != nil {
		return "", err
	}

	i.logger.DebugContext(ctx, "issuer made redemption",
		slog.String("serial_number", i.cfg.SerialNumber),
		slog.String("payout", ticketDomain.PrettyPayout(payout)),
	)

	rc := &ticketDomain.RedemptionCode{
		TimestampMode: i.cfg.TimestampMode,
		Payout:        payout,
		PrinterID:     i.triplet.PrinterID,
		Ciphertext:    ciphertext,
	}
	return rc.String(), nil
}
