package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
)

// KMSKeeper unwraps key material encrypted by an external KMS.
// *secrets.Keeper from gocloud.dev satisfies it.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSOpener opens a KMSKeeper for a gocloud secrets URL.
type KMSOpener interface {
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}

// SealingKey is the root key the validator uses to protect printer keys at rest.
type SealingKey struct {
	Algorithm Algorithm
	Key       []byte
}

// Close zeroes the key material.
func (s *SealingKey) Close() {
	Zero(s.Key)
	s.Key = nil
}

// LoadSealingKey decodes encodedKey (standard base64). When kmsKeyURI is not empty
// the decoded bytes are KMS ciphertext and are unwrapped through the opened keeper.
func LoadSealingKey(
	ctx context.Context,
	alg Algorithm,
	encodedKey string,
	kmsKeyURI string,
	kms KMSOpener,
	logger *slog.Logger,
) (*SealingKey, error) {
	if _, err := ParseAlgorithm(string(alg)); err != nil {
		return nil, err
	}
	if encodedKey == "" {
		return nil, ErrSealingKeyNotSet
	}

	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSealingKeyBase64, err)
	}

	if kmsKeyURI != "" {
		keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return nil, err
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Warn("failed to close kms keeper", slog.Any("error", closeErr))
			}
		}()

		unwrapped, err := keeper.Decrypt(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap sealing key: %w", err)
		}
		raw = unwrapped
		logger.Info("sealing key unwrapped with kms")
	}

	if len(raw) != SealingKeySize {
		size := len(raw)
		Zero(raw)
		return nil, fmt.Errorf("%w: sealing key must be %d bytes, got %d", ErrInvalidKeySize, SealingKeySize, size)
	}

	return &SealingKey{Algorithm: alg, Key: raw}, nil
}
