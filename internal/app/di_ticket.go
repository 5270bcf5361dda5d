package app

import (
	"fmt"

	"github.com/allisson/ticketsentry/internal/config"
	ticketHTTP "github.com/allisson/ticketsentry/internal/ticket/http"
	ticketRepository "github.com/allisson/ticketsentry/internal/ticket/repository"
	ticketService "github.com/allisson/ticketsentry/internal/ticket/service"
	ticketUseCase "github.com/allisson/ticketsentry/internal/ticket/usecase"
)

// KeyStoreRepository returns the key store for the configured store driver.
func (c *Container) KeyStoreRepository() (ticketUseCase.KeyStoreRepository, error) {
	err := c.once(&c.keyStoreRepoInit, "keyStoreRepository", func() error {
		var err error
		c.keyStoreRepo, err = c.initKeyStoreRepository()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.keyStoreRepo, nil
}

// HistoryRepository returns the redemption history for the configured store driver.
func (c *Container) HistoryRepository() (ticketUseCase.HistoryRepository, error) {
	err := c.once(&c.historyRepoInit, "historyRepository", func() error {
		var err error
		c.historyRepo, err = c.initHistoryRepository()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.historyRepo, nil
}

// ValidatorUseCase returns the metrics-instrumented validator.
func (c *Container) ValidatorUseCase() (ticketUseCase.ValidatorUseCase, error) {
	err := c.once(&c.validatorUseCaseInit, "validatorUseCase", func() error {
		var err error
		c.validatorUseCase, err = c.initValidatorUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.validatorUseCase, nil
}

// SentryHandler returns the HTTP handler for the scan API.
func (c *Container) SentryHandler() (*ticketHTTP.SentryHandler, error) {
	err := c.once(&c.sentryHandlerInit, "sentryHandler", func() error {
		validator, err := c.ValidatorUseCase()
		if err != nil {
			return fmt.Errorf("failed to get validator use case for sentry handler: %w", err)
		}
		c.sentryHandler = ticketHTTP.NewSentryHandler(validator, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.sentryHandler, nil
}

// NewIssuer builds a fresh, unpaired issuer with the container's cipher,
// metrics and TIMESTAMP_MODE. Issuers are not cached: each call is one terminal.
func (c *Container) NewIssuer(
	serialNumber string,
	payouts ticketService.PayoutProvider,
	security ticketService.SecurityProvider,
) (ticketUseCase.IssuerUseCase, error) {
	issuer, err := ticketUseCase.NewIssuerUseCase(ticketUseCase.IssuerConfig{
		SerialNumber:     serialNumber,
		TimestampMode:    c.config.TimestampMode,
		PayoutProvider:   payouts,
		SecurityProvider: security,
		Clock:            ticketService.NewSystemClock(),
		Cipher:           c.TicketCipher(),
	}, c.Logger())
	if err != nil {
		return nil, err
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for issuer: %w", err)
	}
	return ticketUseCase.NewIssuerUseCaseWithMetrics(issuer, businessMetrics), nil
}

func (c *Container) initKeyStoreRepository() (ticketUseCase.KeyStoreRepository, error) {
	if c.config.StoreDriver == config.StoreMemory {
		return ticketRepository.NewMemoryKeyStoreRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key store repository: %w", err)
	}
	sealer, err := c.KeySealer()
	if err != nil {
		return nil, fmt.Errorf("failed to get key sealer for key store repository: %w", err)
	}

	switch c.config.StoreDriver {
	case config.StorePostgres:
		return ticketRepository.NewPostgreSQLKeyStoreRepository(db, sealer), nil
	case config.StoreMySQL:
		return ticketRepository.NewMySQLKeyStoreRepository(db, sealer), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", c.config.StoreDriver)
	}
}

func (c *Container) initHistoryRepository() (ticketUseCase.HistoryRepository, error) {
	switch c.config.StoreDriver {
	case config.StoreMemory:
		return ticketRepository.NewMemoryHistoryRepository(), nil
	case config.StorePostgres, config.StoreMySQL:
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", c.config.StoreDriver)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for history repository: %w", err)
	}
	if c.config.StoreDriver == config.StorePostgres {
		return ticketRepository.NewPostgreSQLHistoryRepository(db), nil
	}
	return ticketRepository.NewMySQLHistoryRepository(db), nil
}

func (c *Container) initValidatorUseCase() (ticketUseCase.ValidatorUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for validator use case: %w", err)
	}
	keyStore, err := c.KeyStoreRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store repository for validator use case: %w", err)
	}
	history, err := c.HistoryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get history repository for validator use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for validator use case: %w", err)
	}

	validator := ticketUseCase.NewValidatorUseCase(
		txManager,
		keyStore,
		history,
		c.TicketCipher(),
		ticketService.NewSHA224Fingerprinter(),
		ticketService.NewSystemClock(),
		c.Logger(),
	)
	return ticketUseCase.NewValidatorUseCaseWithMetrics(validator, businessMetrics), nil
}
