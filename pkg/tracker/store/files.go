package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"gorm.io/gorm"

	"github.com/peerdex/peerdex/pkg/tracker/models"
)

// CountFiles returns how many files the owner currently has registered.
func (s *Store) CountFiles(ctx context.Context, owner string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.SharedFile{}).
		Where("user_name = ?", owner).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

// TotalFiles returns the catalog-wide row count.
func (s *Store) TotalFiles(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.SharedFile{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count catalog: %w", err)
	}
	return count, nil
}

// FileExists reports whether the owner already registered the exact
// (name, type, path) tuple.
func (s *Store) FileExists(ctx context.Context, owner, name, fileType, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.SharedFile{}).
		Where("user_name = ? AND file_name = ? AND file_type = ? AND file_path = ?",
			owner, name, fileType, path).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check file: %w", err)
	}
	return count > 0, nil
}

// FileIDInUse reports whether any catalog row carries the identifier.
func (s *Store) FileIDInUse(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.SharedFile{}).
		Where("file_id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check file id: %w", err)
	}
	return count > 0, nil
}

// RegisterFile enforces the per-owner quota, rejects duplicates, draws an
// unused random identifier and inserts the row, all in one transaction.
// On success file.ID carries the assigned identifier.
func (s *Store) RegisterFile(ctx context.Context, file *models.SharedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SharedFile{}).
			Where("user_name = ?", file.Owner).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count files: %w", err)
		}
		if count >= models.MaxFilesPerUser {
			return models.ErrQuotaExceeded
		}

		var dup int64
		if err := tx.Model(&models.SharedFile{}).
			Where("user_name = ? AND file_name = ? AND file_type = ? AND file_path = ?",
				file.Owner, file.Name, file.Type, file.Path).
			Count(&dup).Error; err != nil {
			return fmt.Errorf("failed to check file: %w", err)
		}
		if dup > 0 {
			return models.ErrDuplicateFile
		}

		// Draw identifiers until one is free. With a million-slot space and
		// at most MaxFilesPerUser rows per owner, collisions are rare.
		for {
			id := rand.IntN(models.MaxFileID)
			var taken int64
			if err := tx.Model(&models.SharedFile{}).
				Where("file_id = ?", id).
				Count(&taken).Error; err != nil {
				return fmt.Errorf("failed to check file id: %w", err)
			}
			if taken == 0 {
				file.ID = id
				break
			}
		}

		if err := tx.Create(file).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.ErrDuplicateFile
			}
			return fmt.Errorf("failed to create file: %w", err)
		}
		return nil
	})
}

// DeleteFile removes the owner's exact (name, type, path) row. Returns
// models.ErrFileNotFound unless exactly one row was removed.
func (s *Store) DeleteFile(ctx context.Context, owner, name, fileType, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).
		Where("user_name = ? AND file_name = ? AND file_type = ? AND file_path = ?",
			owner, name, fileType, path).
		Delete(&models.SharedFile{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete file: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return models.ErrFileNotFound
	}
	return nil
}

// FilesOf returns every file registered by the owner.
func (s *Store) FilesOf(ctx context.Context, owner string) ([]models.SharedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var files []models.SharedFile
	if err := db.WithContext(ctx).
		Where("user_name = ?", owner).
		Order("file_id").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// escapeLike neutralizes LIKE metacharacters so the query only ever
// matches literally. Without this a query of "%" would match the whole
// catalog.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SearchFiles matches query as a literal case-insensitive substring of
// the concatenated file name and type, excluding rows owned by requester.
func (s *Store) SearchFiles(ctx context.Context, requester, query string) ([]models.SharedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var files []models.SharedFile
	if err := db.WithContext(ctx).
		Where(`lower(file_name || file_type) LIKE ? ESCAPE '\' AND user_name <> ?`, pattern, requester).
		Order("file_id").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}
	return files, nil
}

// HostsOf resolves the file identifier to the owning peers' transfer
// endpoints, excluding the requester's own rows.
func (s *Store) HostsOf(ctx context.Context, requester string, fileID int) ([]models.HostAddr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var hosts []models.HostAddr
	if err := db.WithContext(ctx).
		Model(&models.SharedFile{}).
		Select("users.user_name AS owner, users.user_ip AS ip, users.user_port AS port, user_files.file_path AS path").
		Joins("JOIN users ON users.user_name = user_files.user_name").
		Where("user_files.file_id = ? AND user_files.user_name <> ?", fileID, requester).
		Scan(&hosts).Error; err != nil {
		return nil, fmt.Errorf("failed to look up hosts: %w", err)
	}
	return hosts, nil
}
