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

// PostgreSQLKeyStoreRepository persists sealed printer keys in the printer_keys table.
type PostgreSQLKeyStoreRepository struct {
	db     *sql.DB
	sealer cryptoService.KeySealer
}

// Upsert inserts or replaces the entry for its printer id.
func (p *PostgreSQLKeyStoreRepository) Upsert(ctx context.Context, entry *ticketDomain.KeyStoreEntry) error {
	sealed, err := sealEntry(p.sealer, entry)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO printer_keys (printer_id, serial_number, algorithm, sealed_key, nonce, paired_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (printer_id) DO UPDATE SET
			  serial_number = EXCLUDED.serial_number,
			  algorithm = EXCLUDED.algorithm,
			  sealed_key = EXCLUDED.sealed_key,
			  nonce = EXCLUDED.nonce,
			  paired_at = EXCLUDED.paired_at`

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
func (p *PostgreSQLKeyStoreRepository) Get(ctx context.Context, printerID string) (*ticketDomain.KeyStoreEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT printer_id, serial_number, algorithm, sealed_key, nonce, paired_at
			  FROM printer_keys
			  WHERE printer_id = $1`

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

	if err := openEntry(p.sealer, &entry, &sealed); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Count returns the number of paired printers.
func (p *PostgreSQLKeyStoreRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM printer_keys`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count printer keys")
	}
	return count, nil
}

// NewPostgreSQLKeyStoreRepository creates a new PostgreSQLKeyStoreRepository.
func NewPostgreSQLKeyStoreRepository(
	db *sql.DB,
	sealer cryptoService.KeySealer,
) *PostgreSQLKeyStoreRepository {
	return &PostgreSQLKeyStoreRepository{db: db, sealer: sealer}
}

// PostgreSQLHistoryRepository persists redemption records in the redemptions table.
// The unique fingerprint constraint makes Add an atomic check-and-insert.
type PostgreSQLHistoryRepository struct {
	db *sql.DB
}

// Add inserts the record; a conflict on fingerprint reports a duplicate.
func (p *PostgreSQLHistoryRepository) Add(ctx context.Context, record *ticketDomain.RedemptionRecord) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO redemptions (id, fingerprint, printer_id, nonce, payout, valid, code_timestamp, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (fingerprint) DO NOTHING`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
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
func (p *PostgreSQLHistoryRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*ticketDomain.RedemptionRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, fingerprint, printer_id, nonce, payout, valid, code_timestamp, created_at
			  FROM redemptions
			  ORDER BY created_at ASC, id ASC
			  LIMIT $1 OFFSET $2`

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
		if err := rows.Scan(
			&record.ID,
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
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating redemptions")
	}
	return records, nil
}

// Count returns the number of recorded redemptions.
func (p *PostgreSQLHistoryRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM redemptions`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count redemptions")
	}
	return count, nil
}

// NewPostgreSQLHistoryRepository creates a new PostgreSQLHistoryRepository.
func NewPostgreSQLHistoryRepository(db *sql.DB) *PostgreSQLHistoryRepository {
	return &PostgreSQLHistoryRepository{db: db}
}
