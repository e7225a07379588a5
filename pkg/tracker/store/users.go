package store

import (
	"context"
	"fmt"

	"github.com/peerdex/peerdex/pkg/tracker/models"
)

// FetchUser retrieves an account by name. Returns models.ErrUserNotFound if
// no such account exists.
func (s *Store) FetchUser(ctx context.Context, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.WithContext(ctx).Where("user_name = ?", name).First(&user).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrUserNotFound)
	}
	return &user, nil
}

// InsertUser creates a new account row. Returns models.ErrDuplicateUser if
// the name is already taken.
func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUserIP rewrites the stored transfer address of the account.
func (s *Store) UpdateUserIP(ctx context.Context, name, ip string) error {
	return s.updateUserColumn(ctx, name, "user_ip", ip)
}

// UpdateUserPort rewrites the stored transfer port of the account.
func (s *Store) UpdateUserPort(ctx context.Context, name string, port int) error {
	return s.updateUserColumn(ctx, name, "user_port", port)
}

func (s *Store) updateUserColumn(ctx context.Context, name, column string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_name = ?", name).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
