package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lasmate/Alisee/internal/model"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer([]byte("0123456789abcdef0123456789abcdef"))
	now := time.Now()

	token, err := iss.Issue(model.Session{ID: "sess-1", UserID: 42, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestParse_Expired(t *testing.T) {
	iss := NewIssuer([]byte("0123456789abcdef0123456789abcdef"))
	past := time.Now().Add(-2 * time.Hour)

	token, err := iss.Issue(model.Session{ID: "sess-1", UserID: 1, CreatedAt: past, ExpiresAt: past.Add(time.Hour)})
	require.NoError(t, err)

	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := iss.ParseExpired(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestParse_WrongKey(t *testing.T) {
	now := time.Now()
	token, err := NewIssuer([]byte("key-a")).Issue(model.Session{ID: "s", UserID: 1, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)

	_, err = NewIssuer([]byte("key-b")).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = NewIssuer([]byte("key-b")).ParseExpired(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewIssuer([]byte("key-a")).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
	assert.False(t, CheckPassword("plaintext", "plaintext"))
}
