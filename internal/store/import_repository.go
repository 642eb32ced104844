package store

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
)

// GormImportRepository implements declaration.ImportRepository using GORM
type GormImportRepository struct {
	db *gorm.DB
}

// NewGormImportRepository creates a new GormImportRepository
func NewGormImportRepository(db *gorm.DB) *GormImportRepository {
	return &GormImportRepository{db: db}
}

// Save inserts or updates an import session
func (r *GormImportRepository) Save(ctx context.Context, s *models.ImportSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	var model ImportSessionModel
	model.FromDomain(s)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return errors.StorageError(errors.CodeStorageFailure, "import_session", s.ID, err)
	}
	return nil
}

// FindByID finds an import session by its id
func (r *GormImportRepository) FindByID(ctx context.Context, id string) (*models.ImportSession, error) {
	var model ImportSessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.StorageError(errors.CodeNotFound, "import_session", id, nil)
		}
		return nil, errors.StorageError(errors.CodeStorageFailure, "import_session", id, err)
	}
	return model.ToDomain(), nil
}
