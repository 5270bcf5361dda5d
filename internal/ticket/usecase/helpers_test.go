package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/allisson/ticketsentry/internal/codec"
	cryptoService "github.com/allisson/ticketsentry/internal/crypto/service"
	"github.com/allisson/ticketsentry/internal/database"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
	"github.com/allisson/ticketsentry/internal/ticket/repository"
	ticketService "github.com/allisson/ticketsentry/internal/ticket/service"
)

const (
	vectorPairingCode    = "X000000001VVVVVVVVISIjJBESExQVFhcYGRobHB0eHyA="
	vectorRedemptionCode = "Y00002700VVVVVVVVLFxhHx0Jemyb6etjL/Nn3Q=="
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := codec.HexDecode(s)
	require.NoError(t, err)
	return b
}

func vectorTriplet(t *testing.T) ticketDomain.SecurityTriplet {
	return ticketDomain.SecurityTriplet{
		PrinterID: mustHex(t, "555555555555"),
		Key:       mustHex(t, "1112131415161718191A1B1C1D1E1F20"),
		IV:        mustHex(t, "21222324"),
	}
}

type stubPayoutProvider struct {
	payout string
	err    error
}

func (s stubPayoutProvider) Next() (string, error) {
	return s.payout, s.err
}

func (s stubPayoutProvider) Restart() error {
	return nil
}

type stubCipher struct {
	plaintext []byte
}

func (s stubCipher) Encrypt(_, _, plaintext []byte) ([]byte, error) {
	return plaintext, nil
}

func (s stubCipher) Decrypt(_, _, _ []byte) ([]byte, error) {
	return s.plaintext, nil
}

// memoryValidator wires a validator over the in-memory stores.
type memoryValidator struct {
	ValidatorUseCase
	keyStore *repository.MemoryKeyStoreRepository
	history  *repository.MemoryHistoryRepository
}

func newMemoryValidator() *memoryValidator {
	keyStore := repository.NewMemoryKeyStoreRepository()
	history := repository.NewMemoryHistoryRepository()
	return &memoryValidator{
		ValidatorUseCase: NewValidatorUseCase(
			database.NewNoopTxManager(),
			keyStore,
			history,
			cryptoService.NewCBCCipher(nil),
			ticketService.NewSHA224Fingerprinter(),
			ticketService.FixedClock{T: fixedNow},
			discardLogger(),
		),
		keyStore: keyStore,
		history:  history,
	}
}
