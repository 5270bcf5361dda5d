package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/ticketsentry/internal/crypto/domain"
)

func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("local secrets", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		assert.IsType(t, &secrets.Keeper{}, keeper)
		assert.NoError(t, keeper.Close())
	})

	t.Run("unknown scheme", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "invalid://uri")
		assert.ErrorContains(t, err, "failed to open KMS keeper")
		assert.Nil(t, keeper)
	})
}

func TestKMSService_UnwrapsSealingKey(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()
	keyURI := generateLocalSecretsURI(t)

	opened, err := kmsService.OpenKeeper(ctx, keyURI)
	require.NoError(t, err)
	keeper := opened.(*secrets.Keeper)
	defer func() {
		assert.NoError(t, keeper.Close())
	}()

	sealingKey := make([]byte, cryptoDomain.SealingKeySize)
	_, err = rand.Read(sealingKey)
	require.NoError(t, err)

	wrapped, err := keeper.Encrypt(ctx, sealingKey)
	require.NoError(t, err)

	t.Run("matching keeper", func(t *testing.T) {
		loaded, err := cryptoDomain.LoadSealingKey(
			ctx,
			cryptoDomain.AESGCM,
			base64.StdEncoding.EncodeToString(wrapped),
			keyURI,
			kmsService,
			slog.Default(),
		)
		require.NoError(t, err)
		defer loaded.Close()
		assert.Equal(t, sealingKey, loaded.Key)

		sealer, err := NewKeySealer(NewAEADManager(), loaded)
		require.NoError(t, err)
		ciphertext, nonce, err := sealer.Seal([]byte("key"), nil)
		require.NoError(t, err)
		plaintext, err := sealer.Open(ciphertext, nonce, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte("key"), plaintext)
	})

	t.Run("different keeper", func(t *testing.T) {
		_, err := cryptoDomain.LoadSealingKey(
			ctx,
			cryptoDomain.AESGCM,
			base64.StdEncoding.EncodeToString(wrapped),
			generateLocalSecretsURI(t),
			kmsService,
			slog.Default(),
		)
		assert.ErrorContains(t, err, "failed to unwrap sealing key")
	})
}
