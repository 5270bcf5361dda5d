package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/ticketsentry/internal/codec"
	cryptoService "github.com/allisson/ticketsentry/internal/crypto/service"
	"github.com/allisson/ticketsentry/internal/database"
	apperrors "github.com/allisson/ticketsentry/internal/errors"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
	ticketService "github.com/allisson/ticketsentry/internal/ticket/service"
)

type validatorUseCase struct {
	txManager     database.TxManager
	keyStore      KeyStoreRepository
	history       HistoryRepository
	cipher        cryptoService.TicketCipher
	fingerprinter ticketService.Fingerprinter
	clock         ticketService.Clock
	logger        *slog.Logger
}

func (v *validatorUseCase) Pair(ctx context.Context, code string) (*ticketDomain.KeyStoreEntry, error) {
	entry, err := v.entryFromCode(code)
	if err != nil {
		return nil, err
	}

	if err := v.keyStore.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	v.logger.DebugContext(ctx, "validator paired printer",
		slog.String("serial_number", entry.SerialNumber),
		slog.String("printer_id", entry.PrinterID),
	)
	return entry, nil
}

func (v *validatorUseCase) PairBatch(ctx context.Context, codes []string) ([]*ticketDomain.KeyStoreEntry, error) {
	// Decode everything first so a bad code never leaves a partial batch behind,
	// even on stores without transactions.
	entries := make([]*ticketDomain.KeyStoreEntry, 0, len(codes))
	for i, code := range codes {
		entry, err := v.entryFromCode(code)
		if err != nil {
			return nil, apperrors.Wrapf(err, "pairing code %d", i+1)
		}
		entries = append(entries, entry)
	}

	err := v.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, entry := range entries {
			if err := v.keyStore.Upsert(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	v.logger.InfoContext(ctx, "validator paired batch", slog.Int("count", len(entries)))
	return entries, nil
}

func (v *validatorUseCase) ValidateTicket(
	ctx context.Context,
	code string,
) (*ticketDomain.RedemptionResult, error) {
	rc, err := ticketDomain.ParseRedemptionCode(code)
	if err != nil {
		return nil, err
	}

	printerID := codec.HexEncode(rc.PrinterID)
	v.logger.DebugContext(ctx, "validator checking payout",
		slog.String("payout", ticketDomain.PrettyPayout(rc.Payout)),
		slog.String("printer_id", printerID),
	)

	entry, err := v.keyStore.Get(ctx, printerID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ticketDomain.ErrUnknownPrinter, printerID)
		}
		return nil, err
	}

	decrypted, err := v.cipher.Decrypt(entry.Key, entry.IV, rc.Ciphertext)
	if err != nil {
		return nil, err
	}

	plaintext, err := ticketDomain.SplitPlaintext(decrypted)
	if err != nil {
		return nil, err
	}

	// The tail is decoded in both modes; for marker codes the value is meaningless.
	timestamp, err := codec.DecodeTimestamp(plaintext.Tail)
	if err != nil {
		return nil, err
	}

	nonce := codec.HexEncode(plaintext.Nonce)
	valid := string(plaintext.Payout) == rc.Payout
	fingerprint := v.fingerprinter.Fingerprint(code, printerID, nonce)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate redemption id")
	}

	// Invalid codes are recorded too, so a forged code still occupies its fingerprint.
	duplicate, err := v.history.Add(ctx, &ticketDomain.RedemptionRecord{
		ID:            id,
		Fingerprint:   fingerprint,
		PrinterID:     printerID,
		Nonce:         nonce,
		Payout:        ticketDomain.RecordedPayout(rc.Payout),
		Valid:         valid,
		CodeTimestamp: timestamp,
		CreatedAt:     v.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	v.logger.DebugContext(ctx, "validator checked ticket",
		slog.String("printer_id", printerID),
		slog.String("nonce", nonce),
		slog.Bool("valid", valid),
		slog.Bool("duplicate", duplicate),
	)

	return &ticketDomain.RedemptionResult{
		Valid:         valid,
		Duplicate:     duplicate,
		Timestamp:     timestamp,
		TimestampMode: rc.TimestampMode,
		PrinterID:     printerID,
		Payout:        rc.Payout,
		Nonce:         nonce,
		Fingerprint:   fingerprint,
	}, nil
}

func (v *validatorUseCase) Parse(code string) string {
	return ticketDomain.Describe(code)
}

func (v *validatorUseCase) ListRedemptions(
	ctx context.Context,
	offset, limit int,
) ([]*ticketDomain.RedemptionRecord, error) {
	return v.history.List(ctx, offset, limit)
}

func (v *validatorUseCase) entryFromCode(code string) (*ticketDomain.KeyStoreEntry, error) {
	pc, err := ticketDomain.ParsePairingCode(code)
	if err != nil {
		return nil, err
	}
	return &ticketDomain.KeyStoreEntry{
		PrinterID:    pc.Triplet.PrinterIDHex(),
		SerialNumber: pc.SerialNumber,
		Key:          pc.Triplet.Key,
		IV:           pc.Triplet.IV,
		PairedAt:     v.clock.Now(),
	}, nil
}

// NewValidatorUseCase creates a ValidatorUseCase over the given stores.
func NewValidatorUseCase(
	txManager database.TxManager,
	keyStore KeyStoreRepository,
	history HistoryRepository,
	cipher cryptoService.TicketCipher,
	fingerprinter ticketService.Fingerprinter,
	clock ticketService.Clock,
	logger *slog.Logger,
) ValidatorUseCase {
	return &validatorUseCase{
		txManager:     txManager,
		keyStore:      keyStore,
		history:       history,
		cipher:        cipher,
		fingerprinter: fingerprinter,
		clock:         clock,
		logger:        logger,
	}
}
