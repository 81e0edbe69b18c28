package blob

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "hrportal/internal/errors"
)

const signedLinkAudience = "document-link"

// SignedLinker hands out expiring links to content the portal serves itself,
// of the form <base>/file/d/<ref>/view?token=<signature>.
type SignedLinker struct {
	baseURL string
	secret  []byte
	expiry  time.Duration
	now     func() time.Time
}

// NewSignedLinker returns a SignedLinker rooted at baseURL. expiry <= 0
// selects DefaultPresignExpiry.
func NewSignedLinker(baseURL string, secret []byte, expiry time.Duration) (*SignedLinker, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("public url %q must be absolute", baseURL)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("link signing secret is required")
	}
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &SignedLinker{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		secret:  secret,
		expiry:  expiry,
		now:     time.Now,
	}, nil
}

func (l *SignedLinker) Link(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("blob reference is required")
	}
	now := l.now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   ref,
		Audience:  jwt.ClaimStrings{signedLinkAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(l.expiry)),
	}).SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("sign link: %w", err)
	}
	return fmt.Sprintf("%s/file/d/%s/view?token=%s", l.baseURL, url.PathEscape(ref), url.QueryEscape(token)), nil
}

// Verify checks that token was issued by Link for ref and has not expired.
// Any failure reads as ErrForbidden.
func (l *SignedLinker) Verify(ref, token string) error {
	if ref == "" || token == "" {
		return apperrors.ErrForbidden
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return l.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(signedLinkAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil || claims.Subject != ref {
		return apperrors.ErrForbidden
	}
	return nil
}
