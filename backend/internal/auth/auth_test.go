package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-passphrase", hash)

	assert.True(t, CheckPasswordHash("s3cret-passphrase", hash))
	assert.False(t, CheckPasswordHash("wrong-passphrase", hash))
}

func TestGenerateAndValidateJWT(t *testing.T) {
	Init("test-secret", time.Hour)

	userID := uuid.New()
	token, err := GenerateJWT(userID, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "investrack", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	Init("secret-one", time.Hour)
	token, err := GenerateJWT(uuid.New(), "alice")
	require.NoError(t, err)

	Init("secret-two", time.Hour)
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	Init("test-secret", time.Hour)
	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestGenerateJWTRequiresInit(t *testing.T) {
	Init("", time.Hour)
	_, err := GenerateJWT(uuid.New(), "alice")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = ValidateJWT("whatever")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
