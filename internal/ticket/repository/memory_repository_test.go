package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/ticketsentry/internal/errors"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

func newEntry(printerID string) *ticketDomain.KeyStoreEntry {
	return &ticketDomain.KeyStoreEntry{
		PrinterID:    printerID,
		SerialNumber: "000000001",
		Key:          []byte("0123456789abcdef"),
		IV:           []byte{1, 2, 3, 4},
		PairedAt:     time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
	}
}

func newRecord(fingerprint string) *ticketDomain.RedemptionRecord {
	return &ticketDomain.RedemptionRecord{
		ID:            uuid.Must(uuid.NewV7()),
		Fingerprint:   fingerprint,
		PrinterID:     "555555555555",
		Nonce:         "00000001",
		Payout:        "00002700",
		Valid:         true,
		CodeTimestamp: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestMemoryKeyStoreRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryKeyStoreRepository()

	_, err := repo.Get(ctx, "555555555555")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	entry := newEntry("555555555555")
	require.NoError(t, repo.Upsert(ctx, entry))

	t.Run("stored copy is isolated", func(t *testing.T) {
		entry.Key[0] = 'X'
		got, err := repo.Get(ctx, "555555555555")
		require.NoError(t, err)
		assert.Equal(t, byte('0'), got.Key[0])

		got.IV[0] = 99
		again, err := repo.Get(ctx, "555555555555")
		require.NoError(t, err)
		assert.Equal(t, byte(1), again.IV[0])
	})

	t.Run("last pairing wins", func(t *testing.T) {
		replacement := newEntry("555555555555")
		replacement.Key = []byte("fedcba9876543210")
		replacement.SerialNumber = "000000002"
		require.NoError(t, repo.Upsert(ctx, replacement))

		got, err := repo.Get(ctx, "555555555555")
		require.NoError(t, err)
		assert.Equal(t, []byte("fedcba9876543210"), got.Key)
		assert.Equal(t, "000000002", got.SerialNumber)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestMemoryHistoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHistoryRepository()

	duplicate, err := repo.Add(ctx, newRecord("AAA"))
	require.NoError(t, err)
	assert.False(t, duplicate)

	duplicate, err = repo.Add(ctx, newRecord("AAA"))
	require.NoError(t, err)
	assert.True(t, duplicate)

	for i := range 4 {
		_, err := repo.Add(ctx, newRecord(fmt.Sprintf("F%d", i)))
		require.NoError(t, err)
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []string
	}{
		{name: "first page", offset: 0, limit: 2, want: []string{"AAA", "F0"}},
		{name: "last page", offset: 4, limit: 2, want: []string{"F3"}},
		{name: "past the end", offset: 10, limit: 2, want: []string{}},
		{name: "zero limit", offset: 0, limit: 0, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := repo.List(ctx, tt.offset, tt.limit)
			require.NoError(t, err)

			got := make([]string, 0, len(records))
			for _, r := range records {
				got = append(got, r.Fingerprint)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryHistoryRepository_ConcurrentAddIsAtMostOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHistoryRepository()

	var fresh atomic.Int32
	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			duplicate, err := repo.Add(ctx, newRecord("SAME"))
			assert.NoError(t, err)
			if !duplicate {
				fresh.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fresh.Load())
}
