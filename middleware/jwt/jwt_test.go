package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndResolve(t *testing.T) {
	r := NewResolver("test-secret", 1)

	token, err := r.IssueToken("u1", "Alice", "alice@example.com", "https://img.example/a.png")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := r.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "https://img.example/a.png", claims.ImageURL)
}

func TestResolveRejectsWrongSecret(t *testing.T) {
	issuer := NewResolver("secret-a", 1)
	verifier := NewResolver("secret-b", 1)

	token, err := issuer.IssueToken("u1", "Alice", "a@example.com", "")
	require.NoError(t, err)

	_, err = verifier.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	r := NewResolver("test-secret", -1)

	token, err := r.IssueToken("u1", "Alice", "a@example.com", "")
	require.NoError(t, err)

	_, err = r.Resolve(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestResolveRejectsGarbage(t *testing.T) {
	r := NewResolver("test-secret", 1)

	_, err := r.Resolve("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveRejectsEmptyUserID(t *testing.T) {
	r := NewResolver("test-secret", 1)

	token, err := r.IssueToken("", "Nobody", "n@example.com", "")
	require.NoError(t, err)

	_, err = r.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
