package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
	cryptoService "github.com/allisson/ticketsentry/internal/crypto/service"
)

// KMSService returns the gocloud secrets opener used to unwrap SEALING_KEY.
func (c *Container) KMSService() cryptoDomain.KMSOpener {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeySealer returns the sealer protecting printer keys in the SQL stores.
// The sealing key is zeroed once the cipher is built.
func (c *Container) KeySealer() (cryptoService.KeySealer, error) {
	err := c.once(&c.keySealerInit, "keySealer", func() error {
		sealer, err := c.initKeySealer()
		if err != nil {
			return err
		}
		c.keySealer = sealer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.keySealer, nil
}

// TicketCipher returns the AES-128-CBC engine shared by issuers and the validator.
func (c *Container) TicketCipher() cryptoService.TicketCipher {
	return cryptoService.NewCBCCipher(nil)
}

func (c *Container) initKeySealer() (cryptoService.KeySealer, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.SealingAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid sealing algorithm: %w", err)
	}

	sealingKey, err := cryptoDomain.LoadSealingKey(
		context.Background(),
		alg,
		c.config.SealingKey,
		c.config.KMSKeyURI,
		c.KMSService(),
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load sealing key: %w", err)
	}
	defer sealingKey.Close()

	sealer, err := cryptoService.NewKeySealer(c.AEADManager(), sealingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create key sealer: %w", err)
	}
	return sealer, nil
}
