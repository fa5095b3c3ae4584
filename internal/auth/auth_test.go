package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	token, err := svc.IssueToken(42)
	require.NoError(t, err)

	userID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := NewService(testSecret, time.Hour).IssueToken(42)
	require.NoError(t, err)

	other := NewService("another-secret-another-secret-12", time.Hour)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	svc := NewService(testSecret, -time.Minute)

	token, err := svc.IssueToken(42)
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	_, err := svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	hash, err := svc.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, svc.CheckPassword(hash, "hunter2hunter2"))
	assert.False(t, svc.CheckPassword(hash, "wrong-password"))
}
