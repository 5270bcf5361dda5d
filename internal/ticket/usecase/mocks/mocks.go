// Package mocks provides testify mocks for the ticket use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

// TestingT is the subset of *testing.T the constructors need.
type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockKeyStoreRepository mocks usecase.KeyStoreRepository.
type MockKeyStoreRepository struct {
	mock.Mock
}

// NewMockKeyStoreRepository registers expectation checks on cleanup.
func NewMockKeyStoreRepository(t TestingT) *MockKeyStoreRepository {
	m := &MockKeyStoreRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockKeyStoreRepository) Upsert(ctx context.Context, entry *ticketDomain.KeyStoreEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockKeyStoreRepository) Get(ctx context.Context, printerID string) (*ticketDomain.KeyStoreEntry, error) {
	args := m.Called(ctx, printerID)
	entry, _ := args.Get(0).(*ticketDomain.KeyStoreEntry)
	return entry, args.Error(1)
}

func (m *MockKeyStoreRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockHistoryRepository mocks usecase.HistoryRepository.
type MockHistoryRepository struct {
	mock.Mock
}

// NewMockHistoryRepository registers expectation checks on cleanup.
func NewMockHistoryRepository(t TestingT) *MockHistoryRepository {
	m := &MockHistoryRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockHistoryRepository) Add(ctx context.Context, record *ticketDomain.RedemptionRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

func (m *MockHistoryRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*ticketDomain.RedemptionRecord, error) {
	args := m.Called(ctx, offset, limit)
	records, _ := args.Get(0).([]*ticketDomain.RedemptionRecord)
	return records, args.Error(1)
}

func (m *MockHistoryRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockIssuerUseCase mocks usecase.IssuerUseCase.
type MockIssuerUseCase struct {
	mock.Mock
}

// NewMockIssuerUseCase registers expectation checks on cleanup.
func NewMockIssuerUseCase(t TestingT) *MockIssuerUseCase {
	m := &MockIssuerUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockIssuerUseCase) SerialNumber() string {
	return m.Called().String(0)
}

func (m *MockIssuerUseCase) LastPairingCode() string {
	return m.Called().String(0)
}

func (m *MockIssuerUseCase) MakePairingString(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockIssuerUseCase) MakeRedemptionString(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockValidatorUseCase mocks usecase.ValidatorUseCase.
type MockValidatorUseCase struct {
	mock.Mock
}

// NewMockValidatorUseCase registers expectation checks on cleanup.
func NewMockValidatorUseCase(t TestingT) *MockValidatorUseCase {
	m := &MockValidatorUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockValidatorUseCase) Pair(ctx context.Context, code string) (*ticketDomain.KeyStoreEntry, error) {
	args := m.Called(ctx, code)
	entry, _ := args.Get(0).(*ticketDomain.KeyStoreEntry)
	return entry, args.Error(1)
}

func (m *MockValidatorUseCase) PairBatch(
	ctx context.Context,
	codes []string,
) ([]*ticketDomain.KeyStoreEntry, error) {
	args := m.Called(ctx, codes)
	entries, _ := args.Get(0).([]*ticketDomain.KeyStoreEntry)
	return entries, args.Error(1)
}

func (m *MockValidatorUseCase) ValidateTicket(
	ctx context.Context,
	code string,
) (*ticketDomain.RedemptionResult, error) {
	args := m.Called(ctx, code)
	result, _ := args.Get(0).(*ticketDomain.RedemptionResult)
	return result, args.Error(1)
}

func (m *MockValidatorUseCase) Parse(code string) string {
	return m.Called(code).String(0)
}

func (m *MockValidatorUseCase) ListRedemptions(
	ctx context.Context,
	offset, limit int,
) ([]*ticketDomain.RedemptionRecord, error) {
	args := m.Called(ctx, offset, limit)
	records, _ := args.Get(0).([]*ticketDomain.RedemptionRecord)
	return records, args.Error(1)
}
