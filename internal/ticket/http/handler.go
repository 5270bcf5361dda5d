// Package http exposes the validator over HTTP so networked scanners can pair
// printers and redeem tickets.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/ticketsentry/internal/httputil"
	"github.com/allisson/ticketsentry/internal/ticket/http/dto"
	ticketUseCase "github.com/allisson/ticketsentry/internal/ticket/usecase"
	customValidation "github.com/allisson/ticketsentry/internal/validation"
)

// SentryHandler handles scan requests against one validator.
type SentryHandler struct {
	validatorUseCase ticketUseCase.ValidatorUseCase
	logger           *slog.Logger
}

// NewSentryHandler creates a new sentry handler.
func NewSentryHandler(validatorUseCase ticketUseCase.ValidatorUseCase, logger *slog.Logger) *SentryHandler {
	return &SentryHandler{
		validatorUseCase: validatorUseCase,
		logger:           logger,
	}
}

// PairHandler stores the key carried by a pairing code.
// POST /v1/sentry/pairings - Returns 201 Created with the printer id and serial.
func (h *SentryHandler) PairHandler(c *gin.Context) {
	var req dto.PairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	entry, err := h.validatorUseCase.Pair(c.Request.Context(), req.Code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapKeyStoreEntryToResponse(entry))
}

// PairBatchHandler stores several pairing codes atomically.
// POST /v1/sentry/pairings/batch - Returns 201 Created with every stored entry.
func (h *SentryHandler) PairBatchHandler(c *gin.Context) {
	var req dto.PairBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	entries, err := h.validatorUseCase.PairBatch(c.Request.Context(), req.Codes)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapKeyStoreEntriesToBatchResponse(entries))
}

// RedeemHandler validates a redemption code. Invalid and duplicate tickets are
// reported in the body with 200; only malformed codes and unknown printers fail.
// POST /v1/sentry/redemptions
func (h *SentryHandler) RedeemHandler(c *gin.Context) {
	var req dto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.validatorUseCase.ValidateTicket(c.Request.Context(), req.Code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRedemptionResultToResponse(result))
}

// ParseHandler describes a code without changing any state.
// POST /v1/sentry/parse
func (h *SentryHandler) ParseHandler(c *gin.Context) {
	var req dto.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ParseResponse{Description: h.validatorUseCase.Parse(req.Code)})
}

// ListRedemptionsHandler pages through the redemption history.
// GET /v1/sentry/redemptions?offset=0&limit=50
func (h *SentryHandler) ListRedemptionsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	records, err := h.validatorUseCase.ListRedemptions(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRedemptionRecordsToListResponse(records))
}
