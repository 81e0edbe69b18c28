package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrportal/internal/auth"
	apperrors "hrportal/internal/errors"
	"hrportal/internal/model"
	"hrportal/internal/repository"
)

// AuthService verifies credentials and manages session tokens.
type AuthService interface {
	Authenticate(ctx context.Context, identifier, password string) (*model.Identity, error)
	Login(ctx context.Context, identifier, password string) (*auth.TokenPair, *model.Identity, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Authenticate looks the identifier up and checks the password against the
// stored bcrypt hash. It fails with ErrUserNotFound, ErrInvalidCredential or
// a store error.
func (s *authService) Authenticate(ctx context.Context, identifier, password string) (*model.Identity, error) {
	user, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredential
	}
	return user.Identity(), nil
}

// Login authenticates and returns an access/refresh token pair.
func (s *authService) Login(ctx context.Context, identifier, password string) (*auth.TokenPair, *model.Identity, error) {
	identity, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := s.issueTokens(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	return tokens, identity, nil
}

func (s *authService) issueTokens(ctx context.Context, identity *model.Identity) (*auth.TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(identity)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, identity.Identifier, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &auth.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshToken validates a stored refresh token and returns a new access
// token. The user row is read again so the new token reflects the current
// admin flag.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" || claims.TokenType != auth.TokenTypeRefresh {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedIdentifier, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedIdentifier != claims.Identifier {
		return "", apperrors.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByIdentifier(ctx, claims.Identifier)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return "", apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return "", err
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.Identity())
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout deletes the refresh token and blacklists the current access token
// for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	if refreshToken != "" {
		claims, err := s.jwtService.ValidateToken(refreshToken)
		if err != nil || claims.ID == "" || claims.TokenType != auth.TokenTypeRefresh {
			return apperrors.ErrInvalidRefreshToken
		}
		if access != nil && claims.Identifier != access.Identifier {
			return apperrors.ErrInvalidRefreshToken
		}
		if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}
	}

	if access != nil && access.ID != "" && access.ExpiresAt != nil {
		ttl := time.Until(access.ExpiresAt.Time)
		if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, ttl); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}
