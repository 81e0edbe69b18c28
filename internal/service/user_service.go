package service

import (
	"context"
	"fmt"

	"hrportal/internal/auth"
	apperrors "hrportal/internal/errors"
	"hrportal/internal/model"
	"hrportal/internal/repository"
)

// NewUser is the input of CreateUser.
type NewUser struct {
	Identifier string
	Name       string
	Password   string
	Admin      bool
}

// UserService provisions and lists users.
type UserService interface {
	CreateUser(ctx context.Context, in NewUser) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	policy auth.PasswordPolicy
}

// NewUserService builds a UserService enforcing policy on new passwords.
func NewUserService(repo repository.UserRepository, policy auth.PasswordPolicy) UserService {
	return &userService{repo: repo, policy: policy}
}

// CreateUser rejects an identifier that is already registered before any
// write, then appends the user with a bcrypt hash of the password.
func (s *userService) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	identifier := model.NormalizeIdentifier(in.Identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", apperrors.ErrInvalidInput)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrInvalidInput)
	}
	if err := s.policy.Validate(in.Password); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateIdentifier
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Identifier:   identifier,
		Name:         in.Name,
		PasswordHash: hash,
		AdminFlag:    model.FormatAdminFlag(in.Admin),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}
