package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	token, err := manager.Issue("u1", "admin", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Issue("u1", "admin", "admin")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute)
	token, err := manager.Issue("u1", "admin", "admin")
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := NewManager("test-secret", time.Hour).Verify("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
