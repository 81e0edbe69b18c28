package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "hrportal/internal/errors"
	"hrportal/internal/model"
)

const recordStore = "record"

// UserRepository defines persistence operations on the users table.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	ExistsByIdentifier(ctx context.Context, identifier string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create appends a user row. A unique-index violation is reported as
// ErrDuplicateIdentifier.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if isDuplicateKey(err) {
		return apperrors.ErrDuplicateIdentifier
	}
	return apperrors.NewStoreError(recordStore, "create user", err)
}

// isDuplicateKey recognises unique-index violations. The pure-Go sqlite
// driver is not covered by GORM's error translation, hence the message check.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// FindByIdentifier returns the first user whose identifier equals identifier.
// Rows are compared again in Go because a case- or accent-insensitive
// collation lets the database match variants of the identifier.
func (r *userRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = model.NormalizeIdentifier(identifier)
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("identifier = ?", identifier).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.NewStoreError(recordStore, "find user", err)
	}
	for i := range users {
		if users[i].Identifier == identifier {
			return &users[i], nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *userRepository) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	identifier = model.NormalizeIdentifier(identifier)
	var identifiers []string
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("identifier = ?", identifier).
		Pluck("identifier", &identifiers).Error
	if err != nil {
		return false, apperrors.NewStoreError(recordStore, "check identifier", err)
	}
	for _, existing := range identifiers {
		if existing == identifier {
			return true, nil
		}
	}
	return false, nil
}

// List returns every user in insertion order.
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, apperrors.NewStoreError(recordStore, "list users", err)
	}
	return users, nil
}
