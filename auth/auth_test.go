package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, VerifyPassword("hunter2", hash))
	assert.False(t, VerifyPassword("wrong", hash))
	assert.False(t, VerifyPassword("hunter2", "not-a-hash"))
}

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewManager("test-secret", 30*time.Minute)
	require.NoError(t, err)

	token, err := m.CreateAccessToken("user@example.com")
	require.NoError(t, err)

	email, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestParseAccessToken_Rejections(t *testing.T) {
	m, err := NewManager("test-secret", 30*time.Minute)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ParseAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewManager("other-secret", 30*time.Minute)
		require.NoError(t, err)
		token, err := other.CreateAccessToken("user@example.com")
		require.NoError(t, err)

		_, err = m.ParseAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		short, err := NewManager("test-secret", time.Nanosecond)
		require.NoError(t, err)
		token, err := short.CreateAccessToken("user@example.com")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		_, err = short.ParseAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("", 30*time.Minute)
	require.Error(t, err)
}
