package dto

import (
	"time"

	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

// PairResponse describes a stored key-store entry. Key material is never returned.
type PairResponse struct {
	PrinterID    string    `json:"printer_id"`
	SerialNumber string    `json:"serial_number"`
	PairedAt     time.Time `json:"paired_at"`
}

// MapKeyStoreEntryToResponse converts a key-store entry to its API form.
func MapKeyStoreEntryToResponse(entry *ticketDomain.KeyStoreEntry) PairResponse {
	return PairResponse{
		PrinterID:    entry.PrinterID,
		SerialNumber: entry.SerialNumber,
		PairedAt:     entry.PairedAt,
	}
}

// PairBatchResponse lists the entries stored by a batch.
type PairBatchResponse struct {
	Data []PairResponse `json:"data"`
}

// MapKeyStoreEntriesToBatchResponse converts entries to a batch response.
func MapKeyStoreEntriesToBatchResponse(entries []*ticketDomain.KeyStoreEntry) PairBatchResponse {
	data := make([]PairResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, MapKeyStoreEntryToResponse(entry))
	}
	return PairBatchResponse{Data: data}
}

// RedeemResponse is the outcome of a redemption scan.
type RedeemResponse struct {
	Valid         bool      `json:"valid"`
	Duplicate     bool      `json:"duplicate"`
	Timestamp     time.Time `json:"timestamp"`
	TimestampMode bool      `json:"timestamp_mode"`
	PrinterID     string    `json:"printer_id"`
	Payout        string    `json:"payout"`
	PrettyPayout  string    `json:"pretty_payout"`
	Nonce         string    `json:"nonce"`
	Fingerprint   string    `json:"fingerprint"`
}

// MapRedemptionResultToResponse converts a validation result to its API form.
func MapRedemptionResultToResponse(result *ticketDomain.RedemptionResult) RedeemResponse {
	return RedeemResponse{
		Valid:         result.Valid,
		Duplicate:     result.Duplicate,
		Timestamp:     result.Timestamp,
		TimestampMode: result.TimestampMode,
		PrinterID:     result.PrinterID,
		Payout:        result.Payout,
		PrettyPayout:  ticketDomain.PrettyPayout(result.Payout),
		Nonce:         result.Nonce,
		Fingerprint:   result.Fingerprint,
	}
}

// ParseResponse is the diagnostic description of a code.
type ParseResponse struct {
	Description string `json:"description"`
}

// RedemptionRecordResponse is one history entry.
type RedemptionRecordResponse struct {
	ID            string    `json:"id"`
	Fingerprint   string    `json:"fingerprint"`
	PrinterID     string    `json:"printer_id"`
	Nonce         string    `json:"nonce"`
	Payout        string    `json:"payout"`
	Valid         bool      `json:"valid"`
	CodeTimestamp time.Time `json:"code_timestamp"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListRedemptionsResponse is a page of history entries.
type ListRedemptionsResponse struct {
	Data []RedemptionRecordResponse `json:"data"`
}

// MapRedemptionRecordsToListResponse converts history records to a list response.
func MapRedemptionRecordsToListResponse(records []*ticketDomain.RedemptionRecord) ListRedemptionsResponse {
	data := make([]RedemptionRecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, RedemptionRecordResponse{
			ID:            record.ID.String(),
			Fingerprint:   record.Fingerprint,
			PrinterID:     record.PrinterID,
			Nonce:         record.Nonce,
			Payout:        record.Payout,
			Valid:         record.Valid,
			CodeTimestamp: record.CodeTimestamp,
			CreatedAt:     record.CreatedAt,
		})
	}
	return ListRedemptionsResponse{Data: data}
}
