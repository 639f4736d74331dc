package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/localsecrets"

	apperrors "github.com/aicoder/backend/internal/errors"
	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
	secretsService "github.com/aicoder/backend/internal/secrets/service"
)

func newTestUseCase() SecretsUseCase {
	return NewSecretsUseCase(
		secretsService.NewKMSService(),
		secretsService.NewSHA256HashService(),
		secretsService.NewRandomTokenGenerator(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func newInitializedUseCase(t *testing.T) SecretsUseCase {
	t.Helper()
	uc := newTestUseCase()
	require.NoError(t, uc.Initialize(context.Background(), KeyConfig{}))
	return uc
}

func randomHexKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, secretsDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return hex.EncodeToString(key)
}

// flipHexAt replaces the hex digit at i with a different one.
func flipHexAt(envelope string, i int) string {
	b := []byte(envelope)
	if b[i] == '0' {
		b[i] = '1'
	} else {
		b[i] = '0'
	}
	return string(b)
}

func TestSecretsUseCase_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_EphemeralKeyOutsideProduction", func(t *testing.T) {
		uc := newTestUseCase()
		assert.Equal(t, secretsDomain.KeySourceNone, uc.KeySource())

		err := uc.Initialize(ctx, KeyConfig{Production: false, EncryptionKey: randomHexKey(t)})
		require.NoError(t, err)
		assert.Equal(t, secretsDomain.KeySourceEphemeral, uc.KeySource())
	})

	t.Run("Success_ProvidedKeyInProduction", func(t *testing.T) {
		uc := newTestUseCase()
		err := uc.Initialize(ctx, KeyConfig{Production: true, EncryptionKey: randomHexKey(t)})
		require.NoError(t, err)
		assert.Equal(t, secretsDomain.KeySourceProvided, uc.KeySource())
	})

	t.Run("Success_SameProvidedKeyDecryptsAcrossInstances", func(t *testing.T) {
		key := randomHexKey(t)
		first := newTestUseCase()
		require.NoError(t, first.Initialize(ctx, KeyConfig{Production: true, EncryptionKey: key}))
		second := newTestUseCase()
		require.NoError(t, second.Initialize(ctx, KeyConfig{Production: true, EncryptionKey: key}))

		envelope, err := first.Encrypt(ctx, "persisted secret")
		require.NoError(t, err)

		plaintext, err := second.Decrypt(ctx, envelope)
		require.NoError(t, err)
		assert.Equal(t, "persisted secret", plaintext)
	})

	t.Run("Error_ProductionWithoutKey", func(t *testing.T) {
		uc := newTestUseCase()
		err := uc.Initialize(ctx, KeyConfig{Production: true})
		assert.ErrorIs(t, err, secretsDomain.ErrEncryptionKeyRequired)
		assert.Contains(t, err.Error(), "ENCRYPTION_KEY environment variable required in production")

		// no random fallback: the service stays uninitialized
		assert.Equal(t, secretsDomain.KeySourceNone, uc.KeySource())
		_, err = uc.Encrypt(ctx, "x")
		assert.ErrorIs(t, err, secretsDomain.ErrUninitialized)
	})

	t.Run("Error_ProductionKeyNotHex", func(t *testing.T) {
		uc := newTestUseCase()
		err := uc.Initialize(ctx, KeyConfig{Production: true, EncryptionKey: strings.Repeat("zz", 32)})
		assert.ErrorIs(t, err, secretsDomain.ErrInvalidEncryptionKey)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_ProductionKeyWrongSize", func(t *testing.T) {
		uc := newTestUseCase()
		err := uc.Initialize(ctx, KeyConfig{Production: true, EncryptionKey: strings.Repeat("ab", 16)})
		assert.ErrorIs(t, err, secretsDomain.ErrInvalidKeySize)
		assert.Equal(t, secretsDomain.KeySourceNone, uc.KeySource())
	})

	t.Run("Error_ReinitializationKeepsExistingKey", func(t *testing.T) {
		uc := newTestUseCase()
		require.NoError(t, uc.Initialize(ctx, KeyConfig{Production: true, EncryptionKey: randomHexKey(t)}))

		envelope, err := uc.Encrypt(ctx, "before")
		require.NoError(t, err)

		err = uc.Initialize(ctx, KeyConfig{Production: true, EncryptionKey: randomHexKey(t)})
		assert.ErrorIs(t, err, secretsDomain.ErrAlreadyInitialized)
		assert.Equal(t, secretsDomain.KeySourceProvided, uc.KeySource())

		plaintext, err := uc.Decrypt(ctx, envelope)
		require.NoError(t, err)
		assert.Equal(t, "before", plaintext)
	})
}

func TestSecretsUseCase_Initialize_KMS(t *testing.T) {
	ctx := context.Background()

	masterKey := make([]byte, 32)
	_, err := rand.Read(masterKey)
	require.NoError(t, err)
	keyURI := "base64key://" + base64.URLEncoding.EncodeToString(masterKey)

	wrapKey := func(t *testing.T, plaintext []byte) string {
		t.Helper()
		keeper, err := secrets.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()
		ciphertext, err := keeper.Encrypt(ctx, plaintext)
		require.NoError(t, err)
		return hex.EncodeToString(ciphertext)
	}

	t.Run("Success_UnwrapsKey", func(t *testing.T) {
		dataKey := make([]byte, secretsDomain.KeySize)
		_, err := rand.Read(dataKey)
		require.NoError(t, err)

		uc := newTestUseCase()
		err = uc.Initialize(ctx, KeyConfig{
			Production:    true,
			EncryptionKey: wrapKey(t, dataKey),
			KMSKeyURI:     keyURI,
		})
		require.NoError(t, err)
		assert.Equal(t, secretsDomain.KeySourceKMS, uc.KeySource())

		// the unwrapped key matches a directly provided one
		direct := newTestUseCase()
		require.NoError(t, direct.Initialize(ctx, KeyConfig{
			Production:    true,
			EncryptionKey: hex.EncodeToString(dataKey),
		}))

		envelope, err := uc.Encrypt(ctx, "wrapped")
		require.NoError(t, err)
		plaintext, err := direct.Decrypt(ctx, envelope)
		require.NoError(t, err)
		assert.Equal(t, "wrapped", plaintext)
	})

	t.Run("Error_UnwrappedKeyWrongSize", func(t *testing.T) {
		uc := newTestUseCase()
		err := uc.Initialize(ctx, KeyConfig{
			Production:    true,
			EncryptionKey: wrapKey(t, []byte("short")),
			KMSKeyURI:     keyURI,
		})
		assert.ErrorIs(t, err, secretsDomain.ErrInvalidKeySize)
	})

	t.Run("Error_CiphertextFromOtherKeeper", func(t *testing.T) {
		uc := newTestUseCase()
		err := uc.Initialize(ctx, KeyConfig{
			Production:    true,
			EncryptionKey: randomHexKey(t),
			KMSKeyURI:     keyURI,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unwrap encryption key")
		assert.Equal(t, secretsDomain.KeySourceNone, uc.KeySource())
	})

	t.Run("Error_InvalidKMSURI", func(t *testing.T) {
		uc := newTestUseCase()
		err := uc.Initialize(ctx, KeyConfig{
			Production:    true,
			EncryptionKey: randomHexKey(t),
			KMSKeyURI:     "invalid://uri",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}

func TestSecretsUseCase_Uninitialized(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase()

	envelope, err := uc.Encrypt(ctx, "data")
	assert.ErrorIs(t, err, secretsDomain.ErrUninitialized)
	assert.Empty(t, envelope)

	plaintext, err := uc.Decrypt(ctx, strings.Repeat("00", 16)+":"+strings.Repeat("00", 16)+":")
	assert.ErrorIs(t, err, secretsDomain.ErrUninitialized)
	assert.Empty(t, plaintext)

	// hashing and tokens need no key
	assert.Len(t, uc.Hash("data"), 64)
	token, err := uc.GenerateToken(8)
	require.NoError(t, err)
	assert.Len(t, token, 16)
}

func TestSecretsUseCase_EncryptDecrypt(t *testing.T) {
	ctx := context.Background()
	uc := newInitializedUseCase(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "ascii", plaintext: "sk-live-1234567890"},
		{name: "empty", plaintext: ""},
		{name: "multibyte", plaintext: "héllo wörld 🔑 日本語"},
		{name: "contains separator", plaintext: "a:b:c"},
		{name: "long", plaintext: strings.Repeat("x", 64*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope, err := uc.Encrypt(ctx, tt.plaintext)
			require.NoError(t, err)

			parts := strings.Split(envelope, ":")
			require.Len(t, parts, 3)
			assert.Len(t, parts[0], 2*secretsDomain.IVSize)
			assert.Len(t, parts[1], 2*secretsDomain.TagSize)
			assert.Len(t, parts[2], 2*len(tt.plaintext))
			assert.Equal(t, strings.ToLower(envelope), envelope)

			plaintext, err := uc.Decrypt(ctx, envelope)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, plaintext)
		})
	}
}

func TestSecretsUseCase_Encrypt_NonDeterministic(t *testing.T) {
	ctx := context.Background()
	uc := newInitializedUseCase(t)

	first, err := uc.Encrypt(ctx, "same input")
	require.NoError(t, err)
	second, err := uc.Encrypt(ctx, "same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, strings.Split(first, ":")[0], strings.Split(second, ":")[0])
}

func TestSecretsUseCase_Decrypt_Tampered(t *testing.T) {
	ctx := context.Background()
	uc := newInitializedUseCase(t)

	envelope, err := uc.Encrypt(ctx, "tamper me")
	require.NoError(t, err)

	segments := []string{"iv", "tag", "ciphertext"}
	segment := 0
	for i := range envelope {
		if envelope[i] == ':' {
			segment++
			continue
		}

		tampered := flipHexAt(envelope, i)
		t.Run(fmt.Sprintf("%s/%d", segments[segment], i), func(t *testing.T) {
			plaintext, err := uc.Decrypt(ctx, tampered)
			assert.ErrorIs(t, err, secretsDomain.ErrAuthenticationFailed)
			assert.NotErrorIs(t, err, secretsDomain.ErrMalformedEnvelope)
			assert.Empty(t, plaintext)
		})
	}

	t.Run("other key", func(t *testing.T) {
		other := newInitializedUseCase(t)
		_, err := other.Decrypt(ctx, envelope)
		assert.ErrorIs(t, err, secretsDomain.ErrAuthenticationFailed)
	})
}

func TestSecretsUseCase_Decrypt_Malformed(t *testing.T) {
	ctx := context.Background()
	uc := newInitializedUseCase(t)

	iv := strings.Repeat("ab", 16)
	tag := strings.Repeat("cd", 16)

	tests := []struct {
		name     string
		envelope string
	}{
		{name: "empty", envelope: ""},
		{name: "missing delimiter", envelope: iv + tag + "00"},
		{name: "two parts", envelope: iv + ":" + tag},
		{name: "four parts", envelope: iv + ":" + tag + ":00:00"},
		{name: "non-hex iv", envelope: strings.Repeat("zz", 16) + ":" + tag + ":00"},
		{name: "non-hex ciphertext", envelope: iv + ":" + tag + ":xyz"},
		{name: "short iv", envelope: strings.Repeat("ab", 12) + ":" + tag + ":00"},
		{name: "short tag", envelope: iv + ":" + strings.Repeat("cd", 8) + ":00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := uc.Decrypt(ctx, tt.envelope)
			assert.ErrorIs(t, err, secretsDomain.ErrMalformedEnvelope)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Empty(t, plaintext)
		})
	}
}

func TestSecretsUseCase_Hash(t *testing.T) {
	uc := newTestUseCase()

	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", uc.Hash("hello"))
	assert.Equal(t, uc.Hash("hello"), uc.Hash("hello"))
	assert.NotEqual(t, uc.Hash("hello"), uc.Hash("hello "))
	assert.Len(t, uc.Hash(""), 64)
}

func TestSecretsUseCase_GenerateToken(t *testing.T) {
	uc := newTestUseCase()

	t.Run("Success_LengthScales", func(t *testing.T) {
		for _, n := range []int{1, 16, 32, 48} {
			token, err := uc.GenerateToken(n)
			require.NoError(t, err)
			assert.Len(t, token, 2*n)
		}
	})

	t.Run("Success_Unique", func(t *testing.T) {
		first, err := uc.GenerateToken(secretsDomain.DefaultTokenLength)
		require.NoError(t, err)
		second, err := uc.GenerateToken(secretsDomain.DefaultTokenLength)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("Error_ZeroLength", func(t *testing.T) {
		_, err := uc.GenerateToken(0)
		assert.ErrorIs(t, err, secretsDomain.ErrInvalidTokenLength)
	})
}

func TestSecretsUseCase_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	uc := newTestUseCase()

	var wg sync.WaitGroup
	initErrs := make([]error, 8)
	for i := range initErrs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			initErrs[i] = uc.Initialize(ctx, KeyConfig{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range initErrs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, secretsDomain.ErrAlreadyInitialized))
	}
	assert.Equal(t, 1, succeeded)

	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plaintext := strings.Repeat("p", i)
			envelope, err := uc.Encrypt(ctx, plaintext)
			if !assert.NoError(t, err) {
				return
			}
			decrypted, err := uc.Decrypt(ctx, envelope)
			assert.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		}(i)
	}
	wg.Wait()
}
