package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/ticketsentry/internal/codec"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
	ticketService "github.com/allisson/ticketsentry/internal/ticket/service"
)

func newVectorIssuer(t *testing.T, timestampMode bool, payouts ...string) IssuerUseCase {
	t.Helper()
	if len(payouts) == 0 {
		payouts = []string{"00002700"}
	}

	payoutProvider, err := ticketService.NewSequencePayoutProvider(payouts)
	require.NoError(t, err)
	securityProvider, err := ticketService.NewSequenceSecurityProvider(
		[]ticketDomain.SecurityTriplet{vectorTriplet(t)},
	)
	require.NoError(t, err)

	issuer, err := NewIssuerUseCase(IssuerConfig{
		SerialNumber:     "000000001",
		TimestampMode:    timestampMode,
		PayoutProvider:   payoutProvider,
		SecurityProvider: securityProvider,
		Clock:            ticketService.FixedClock{T: fixedNow},
	}, discardLogger())
	require.NoError(t, err)
	return issuer
}

func TestNewIssuerUseCase(t *testing.T) {
	t.Run("invalid serial", func(t *testing.T) {
		_, err := NewIssuerUseCase(IssuerConfig{SerialNumber: "12345"}, discardLogger())
		assert.ErrorIs(t, err, ticketDomain.ErrInvalidSerialNumber)
	})

	t.Run("random defaults", func(t *testing.T) {
		issuer, err := NewIssuerUseCase(IssuerConfig{SerialNumber: "123456789", TimestampMode: true}, discardLogger())
		require.NoError(t, err)

		pairing, err := issuer.MakePairingString(context.Background())
		require.NoError(t, err)
		assert.Len(t, pairing, ticketDomain.PairingCodeLength)
		assert.Equal(t, "X123456789", pairing[:10])

		redemption, err := issuer.MakeRedemptionString(context.Background())
		require.NoError(t, err)
		assert.Len(t, redemption, ticketDomain.RedemptionCodeLength)
		assert.Equal(t, byte('Z'), redemption[0])
	})
}

func TestIssuerUseCase_MakePairingString(t *testing.T) {
	issuer := newVectorIssuer(t, false)
	assert.Empty(t, issuer.LastPairingCode())

	code, err := issuer.MakePairingString(context.Background())
	require.NoError(t, err)
	assert.Equal(t, vectorPairingCode, code)
	assert.Equal(t, vectorPairingCode, issuer.LastPairingCode())
	assert.Equal(t, "000000001", issuer.SerialNumber())
}

func TestIssuerUseCase_MakeRedemptionString(t *testing.T) {
	ctx := context.Background()

	t.Run("not paired", func(t *testing.T) {
		issuer := newVectorIssuer(t, false)
		_, err := issuer.MakeRedemptionString(ctx)
		assert.ErrorIs(t, err, ticketDomain.ErrNotPaired)
	})

	t.Run("marker mode is byte exact", func(t *testing.T) {
		issuer := newVectorIssuer(t, false)
		_, err := issuer.MakePairingString(ctx)
		require.NoError(t, err)

		code, err := issuer.MakeRedemptionString(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Y00002700VVVVVVVVxbYFiUXVYSjC1I6MFl6EPQ==", code)
	})

	t.Run("timestamp mode round trips through validator", func(t *testing.T) {
		issuer := newVectorIssuer(t, true)
		validator := newMemoryValidator()

		pairing, err := issuer.MakePairingString(ctx)
		require.NoError(t, err)
		_, err = validator.Pair(ctx, pairing)
		require.NoError(t, err)

		code, err := issuer.MakeRedemptionString(ctx)
		require.NoError(t, err)
		assert.Equal(t, byte('Z'), code[0])

		result, err := validator.ValidateTicket(ctx, code)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.False(t, result.Duplicate)
		assert.True(t, result.TimestampMode)
		assert.Equal(t, fixedNow, result.Timestamp)
	})

	t.Run("nonces strictly increase", func(t *testing.T) {
		issuer := newVectorIssuer(t, false, "00002700", "00000150", "12345678")
		validator := newMemoryValidator()

		pairing, err := issuer.MakePairingString(ctx)
		require.NoError(t, err)
		_, err = validator.Pair(ctx, pairing)
		require.NoError(t, err)

		var nonces []string
		for range 3 {
			code, err := issuer.MakeRedemptionString(ctx)
			require.NoError(t, err)
			result, err := validator.ValidateTicket(ctx, code)
			require.NoError(t, err)
			assert.True(t, result.Valid)
			nonces = append(nonces, result.Nonce)
		}
		assert.Equal(t, []string{"00000001", "00000002", "00000003"}, nonces)
	})

	t.Run("re-pairing with the same triplet keeps the nonce", func(t *testing.T) {
		issuer := newVectorIssuer(t, false)
		validator := newMemoryValidator()

		first, err := issuer.MakePairingString(ctx)
		require.NoError(t, err)
		_, err = validator.Pair(ctx, first)
		require.NoError(t, err)
		before, err := issuer.MakeRedemptionString(ctx)
		require.NoError(t, err)
		result, err := validator.ValidateTicket(ctx, before)
		require.NoError(t, err)
		require.True(t, result.Valid)

		second, err := issuer.MakePairingString(ctx)
		require.NoError(t, err)
		require.Equal(t, first, second)
		_, err = validator.Pair(ctx, second)
		require.NoError(t, err)

		after, err := issuer.MakeRedemptionString(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, before, after)

		result, err = validator.ValidateTicket(ctx, after)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.False(t, result.Duplicate)
		assert.Equal(t, "00000002", result.Nonce)
	})

	t.Run("invalid payout from provider", func(t *testing.T) {
		issuer, err := NewIssuerUseCase(IssuerConfig{
			SerialNumber:   "000000001",
			PayoutProvider: stubPayoutProvider{payout: "27.00"},
		}, discardLogger())
		require.NoError(t, err)
		_, err = issuer.MakePairingString(ctx)
		require.NoError(t, err)

		_, err = issuer.MakeRedemptionString(ctx)
		assert.ErrorIs(t, err, ticketDomain.ErrInvalidPayout)
		assert.Equal(t, uint32(1), issuer.(*issuerUseCase).nonce)
	})

	t.Run("provider error", func(t *testing.T) {
		providerErr := errors.New("payout file exhausted")
		issuer, err := NewIssuerUseCase(IssuerConfig{
			SerialNumber:   "000000001",
			PayoutProvider: stubPayoutProvider{err: providerErr},
		}, discardLogger())
		require.NoError(t, err)
		_, err = issuer.MakePairingString(ctx)
		require.NoError(t, err)

		_, err = issuer.MakeRedemptionString(ctx)
		assert.ErrorIs(t, err, providerErr)
	})

	t.Run("nonce exhausted", func(t *testing.T) {
		issuer := newVectorIssuer(t, false)
		_, err := issuer.MakePairingString(ctx)
		require.NoError(t, err)

		issuer.(*issuerUseCase).nonce = math.MaxUint32 - 1
		_, err = issuer.MakeRedemptionString(ctx)
		require.NoError(t, err)

		_, err = issuer.MakeRedemptionString(ctx)
		assert.ErrorIs(t, err, ticketDomain.ErrNonceExhausted)

		_, err = issuer.MakePairingString(ctx)
		require.NoError(t, err)
		_, err = issuer.MakeRedemptionString(ctx)
		assert.ErrorIs(t, err, ticketDomain.ErrNonceExhausted)
	})

	t.Run("timestamp out of range", func(t *testing.T) {
		issuer, err := NewIssuerUseCase(IssuerConfig{
			SerialNumber:  "000000001",
			TimestampMode: true,
			Clock:         ticketService.FixedClock{T: fixedNow.AddDate(-50, 0, 0)},
		}, discardLogger())
		require.NoError(t, err)
		_, err = issuer.MakePairingString(ctx)
		require.NoError(t, err)

		_, err = issuer.MakeRedemptionString(ctx)
		assert.ErrorIs(t, err, codec.ErrTimestampOutOfRange)
	})
}

func TestIssuerUseCase_ConcurrentRedemptions(t *testing.T) {
	ctx := context.Background()
	issuer, err := NewIssuerUseCase(IssuerConfig{SerialNumber: "000000042"}, discardLogger())
	require.NoError(t, err)
	validator := newMemoryValidator()

	pairing, err := issuer.MakePairingString(ctx)
	require.NoError(t, err)
	_, err = validator.Pair(ctx, pairing)
	require.NoError(t, err)

	const n = 50
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := issuer.MakeRedemptionString(ctx)
			assert.NoError(t, err)
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	nonces := make(map[string]bool)
	for code := range codes {
		result, err := validator.ValidateTicket(ctx, code)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.False(t, result.Duplicate)
		assert.False(t, nonces[result.Nonce])
		nonces[result.Nonce] = true
	}
	assert.Len(t, nonces, n)
}
