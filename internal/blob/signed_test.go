package blob

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hrportal/internal/errors"
)

func tokenOf(t *testing.T, link string) (string, string) {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	ref := strings.TrimSuffix(strings.TrimPrefix(u.Path, "/file/d/"), "/view")
	return ref, u.Query().Get("token")
}

func TestNewSignedLinker(t *testing.T) {
	_, err := NewSignedLinker("localhost:8080", []byte("k"), 0)
	assert.Error(t, err, "scheme is required")

	_, err = NewSignedLinker("http://localhost:8080", nil, 0)
	assert.Error(t, err)

	l, err := NewSignedLinker("http://localhost:8080/", []byte("k"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPresignExpiry, l.expiry)
}

func TestSignedLinker_LinkAndVerify(t *testing.T) {
	ctx := context.Background()
	l, err := NewSignedLinker("https://portal.example.com/", []byte("secret"), time.Minute)
	require.NoError(t, err)

	link, err := l.Link(ctx, "3f1c-ref")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://portal.example.com/file/d/3f1c-ref/view?token="))

	ref, token := tokenOf(t, link)
	assert.Equal(t, "3f1c-ref", ref)
	assert.NoError(t, l.Verify(ref, token))

	_, err = l.Link(ctx, "")
	assert.Error(t, err)

	t.Run("token is bound to its ref", func(t *testing.T) {
		assert.ErrorIs(t, l.Verify("other-ref", token), apperrors.ErrForbidden)
	})

	t.Run("missing or tampered token", func(t *testing.T) {
		assert.ErrorIs(t, l.Verify(ref, ""), apperrors.ErrForbidden)
		assert.ErrorIs(t, l.Verify(ref, token+"x"), apperrors.ErrForbidden)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewSignedLinker("https://portal.example.com", []byte("another"), time.Minute)
		require.NoError(t, err)
		assert.ErrorIs(t, other.Verify(ref, token), apperrors.ErrForbidden)
	})

	t.Run("expired", func(t *testing.T) {
		l.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		defer func() { l.now = time.Now }()
		assert.ErrorIs(t, l.Verify(ref, token), apperrors.ErrForbidden)
	})

	t.Run("session tokens signed with the same secret are refused", func(t *testing.T) {
		session, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   ref,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}).SignedString([]byte("secret"))
		require.NoError(t, err)
		assert.ErrorIs(t, l.Verify(ref, session), apperrors.ErrForbidden)
	})
}
