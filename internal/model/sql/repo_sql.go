package sql

import (
	"errors"

	"studenthub/internal/entity"

	"gorm.io/gorm"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db    *gorm.DB
	pages entity.PageBounds
}

// NewGormRepository creates a new repository instance with the configured
// pagination bounds.
func NewGormRepository(db *gorm.DB, pages entity.PageBounds) *GormRepository {
	if pages.Min <= 0 && pages.Default <= 0 && pages.Max <= 0 {
		pages = entity.DefaultPageBounds()
	}
	return &GormRepository{db: db, pages: pages}
}

// translateError maps driver sentinels onto the repository error vocabulary.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return entity.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return entity.ErrConflict
	default:
		return err
	}
}
