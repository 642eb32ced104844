package store

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"golang-dsf-service/internal/declaration"
	"golang-dsf-service/pkg/errors"
)

// GormDeclarationRepository implements declaration.DeclarationRepository using GORM.
// Only the latest declaration of a folder is kept.
type GormDeclarationRepository struct {
	db *gorm.DB
}

// NewGormDeclarationRepository creates a new GormDeclarationRepository
func NewGormDeclarationRepository(db *gorm.DB) *GormDeclarationRepository {
	return &GormDeclarationRepository{db: db}
}

// Save replaces the folder's declaration with d and bumps its version
func (r *GormDeclarationRepository) Save(ctx context.Context, d *declaration.Declaration) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing DeclarationModel
		err := tx.Where("folder_id = ?", d.FolderID).First(&existing).Error
		switch {
		case err == nil:
			d.ID = existing.ID
			d.Version = existing.Version + 1
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			if d.ID == "" {
				d.ID = uuid.NewString()
			}
			d.Version = 1
		default:
			return err
		}

		var model DeclarationModel
		model.FromDomain(d)
		return tx.Save(&model).Error
	})
	if err != nil {
		return errors.StorageError(errors.CodeStorageFailure, "declaration", d.FolderID, err)
	}
	return nil
}

// FindLatest returns the declaration of a folder
func (r *GormDeclarationRepository) FindLatest(ctx context.Context, folderID string) (*declaration.Declaration, error) {
	var model DeclarationModel
	if err := r.db.WithContext(ctx).Where("folder_id = ?", folderID).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.StorageError(errors.CodeNotFound, "declaration", folderID, nil)
		}
		return nil, errors.StorageError(errors.CodeStorageFailure, "declaration", folderID, err)
	}
	return model.ToDomain(), nil
}
