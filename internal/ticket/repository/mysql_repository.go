package repository

import (
	"context"
	"database/sql"
	"errors"

	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
	cryptoService "github.com/allisson/ticketsentry/internal/crypto/service"
	"github.com/allisson/ticketsentry/internal/database"
	apperrors "github.com/allisson/ticketsentry/internal/errors"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

// MySQLKeyStoreRepository persists sealed printer keys in the printer_keys table.
type MySQLKeyStoreRepository struct {
	db     *sql.DB
	sealer cryptoService.KeySealer
}

// Upsert inserts or replaces the entry for its printer id.
func (m *MySQLKeyStoreRepository) Upsert(ctx context.Context, entry *ticketDomain.KeyStoreEntry) error {
	sealed, err := sealEntry(m.sealer, entry)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO printer_keys (printer_id, serial_number, algorithm, sealed_key, nonce, paired_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  serial_number = VALUES(serial_number),
			  algorithm = VALUES(algorithm),
			  sealed_key = VALUES(sealed_key),
			  nonce = VALUES(nonce),
			  paired_at = VALUES(paired_at)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.PrinterID,
		entry.SerialNumber,
		string(sealed.algorithm),
		sealed.ciphertext,
		sealed.nonce,
		entry.PairedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert printer key")
	}
	return nil
}

// Get loads and unseals the entry for printerID.
func (m *MySQLKeyStoreRepository) Get(ctx context.Context, printerID string) (*ticketDomain.KeyStoreEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT printer_id, serial_number, algorithm, sealed_key, nonce, paired_at
			  FROM printer_keys
			  WHERE printer_id = ?`

	var entry ticketDomain.KeyStoreEntry
	var sealed sealedKey
	var algorithm string
	err := querier.QueryRowContext(ctx, query, printerID).Scan(
		&entry.PrinterID,
		&entry.SerialNumber,
		&algorithm,
		&sealed.ciphertext,
		&sealed.nonce,
		&entry.PairedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get printer key")
	}
	sealed.algorithm = cryptoDomain.Algorithm(algorithm)

	if err := openEntry(m.sealer, &entry, &sealed); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Count returns the number of paired printers.
func (m *MySQLKeyStoreRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM printer_keys`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count printer keys")
	}
	return count, nil
}

// NewMySQLKeyStoreRepository creates a new MySQLKeyStoreRepository.
func NewMySQLKeyStoreRepository(db *sql.DB, sealer cryptoService.KeySealer) *MySQLKeyStoreRepository {
	return &MySQLKeyStoreRepository{db: db, sealer: sealer}
}

// MySQLHistoryRepository persists redemption records. IDs are stored as BINARY(16).
type MySQLHistoryRepository struct {
	db *sql.DB
}

// Add inserts the record with INSERT IGNORE; zero affected rows means the
// fingerprint was already present.
func (m *MySQLHistoryRepository) Add(ctx context.Context, record *ticketDomain.RedemptionRecord) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal redemption id")
	}

	query := `INSERT IGNORE INTO redemptions (id, fingerprint, printer_id, nonce, payout, valid, code_timestamp, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		id,
		record.Fingerprint,
		record.PrinterID,
		record.Nonce,
		record.Payout,
		record.Valid,
		record.CodeTimestamp,
		record.CreatedAt,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to add redemption")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows == 0, nil
}

// List returns records ordered by created_at then id.
func (m *MySQLHistoryRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*ticketDomain.RedemptionRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, fingerprint, printer_id, nonce, payout, valid, code_timestamp, created_at
			  FROM redemptions
			  ORDER BY created_at ASC, id ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list redemptions")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*ticketDomain.RedemptionRecord, 0)
	for rows.Next() {
		var record ticketDomain.RedemptionRecord
		var id []byte
		if err := rows.Scan(
			&id,
			&record.Fingerprint,
			&record.PrinterID,
			&record.Nonce,
			&record.Payout,
			&record.Valid,
			&record.CodeTimestamp,
			&record.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan redemption")
		}

		if err := record.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal redemption id")
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating redemptions")
	}
	return records, nil
}

// Count returns the number of recorded redemptions.
func (m *MySQLHistoryRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM redemptions`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count redemptions")
	}
	return count, nil
}

// NewMySQLHistoryRepository creates a new MySQLHistoryRepository.
func NewMySQLHistoryRepository(db *sql.DB) *MySQLHistoryRepository {
	return &MySQLHistoryRepository{db: db}
}
