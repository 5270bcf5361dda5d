// Package repository implements the validator's key store and redemption history
// in memory, PostgreSQL and MySQL.
//
// The SQL implementations never store printer keys in cleartext: key‖iv is sealed
// with the configured AEAD and bound to the printer id as associated data.
// All SQL repositories are transaction-aware via database.GetTx.
package repository

import (
	"context"
	"sync"

	apperrors "github.com/allisson/ticketsentry/internal/errors"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

// MemoryKeyStoreRepository keeps key-store entries in a mutex-guarded map.
type MemoryKeyStoreRepository struct {
	mu      sync.RWMutex
	entries map[string]ticketDomain.KeyStoreEntry
}

// Upsert stores a copy of entry, replacing any previous pairing.
func (m *MemoryKeyStoreRepository) Upsert(_ context.Context, entry *ticketDomain.KeyStoreEntry) error {
	stored := *entry
	stored.Key = append([]byte(nil), entry.Key...)
	stored.IV = append([]byte(nil), entry.IV...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.PrinterID] = stored
	return nil
}

// Get returns a copy of the entry or apperrors.ErrNotFound.
func (m *MemoryKeyStoreRepository) Get(_ context.Context, printerID string) (*ticketDomain.KeyStoreEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[printerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	entry.Key = append([]byte(nil), entry.Key...)
	entry.IV = append([]byte(nil), entry.IV...)
	return &entry, nil
}

// Count returns the number of paired printers.
func (m *MemoryKeyStoreRepository) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.entries)), nil
}

// NewMemoryKeyStoreRepository creates an empty MemoryKeyStoreRepository.
func NewMemoryKeyStoreRepository() *MemoryKeyStoreRepository {
	return &MemoryKeyStoreRepository{entries: make(map[string]ticketDomain.KeyStoreEntry)}
}

// MemoryHistoryRepository keeps the redemption history in memory. The
// fingerprint index and the ordered record list share one mutex, so Add is an
// atomic check-and-insert.
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	seen    map[string]struct{}
	records []ticketDomain.RedemptionRecord
}

// Add records the redemption unless its fingerprint is already known.
func (m *MemoryHistoryRepository) Add(_ context.Context, record *ticketDomain.RedemptionRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.seen[record.Fingerprint]; ok {
		return true, nil
	}
	m.seen[record.Fingerprint] = struct{}{}
	m.records = append(m.records, *record)
	return false, nil
}

// List returns up to limit records starting at offset, oldest first.
func (m *MemoryHistoryRepository) List(
	_ context.Context,
	offset, limit int,
) ([]*ticketDomain.RedemptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*ticketDomain.RedemptionRecord, 0)
	if offset < 0 || offset >= len(m.records) || limit <= 0 {
		return records, nil
	}

	end := min(offset+limit, len(m.records))
	for i := offset; i < end; i++ {
		record := m.records[i]
		records = append(records, &record)
	}
	return records, nil
}

// Count returns the number of recorded redemptions.
func (m *MemoryHistoryRepository) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// NewMemoryHistoryRepository creates an empty MemoryHistoryRepository.
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{seen: make(map[string]struct{})}
}
