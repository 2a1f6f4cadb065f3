package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key-that-is-long-enough!!"

func TestNewTokenService_RejectsShortKey(t *testing.T) {
	_, err := NewTokenService("short")
	assert.Error(t, err)
}

func TestGenerateValidate_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(testSigningKey)
	require.NoError(t, err)

	userID := uuid.New()
	token, expiresAt, err := svc.GenerateToken(userID, "asha@example.com", "Asha")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, "kavach", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateToken_WrongKey(t *testing.T) {
	svc1, _ := NewTokenService(testSigningKey)
	svc2, _ := NewTokenService("a-completely-different-signing-key!!!!!")

	token, _, err := svc1.GenerateToken(uuid.New(), "a@b.c", "A")
	require.NoError(t, err)

	_, err = svc2.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Tampered(t *testing.T) {
	svc, _ := NewTokenService(testSigningKey)
	token, _, err := svc.GenerateToken(uuid.New(), "a@b.c", "A")
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	payload[0] ^= 1
	parts[1] = string(payload)

	_, err = svc.ValidateToken(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _ := NewTokenService(testSigningKey)
	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
