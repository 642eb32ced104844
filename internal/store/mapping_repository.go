package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
)

// GormMappingRepository implements mapping.Store using GORM
type GormMappingRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormMappingRepository creates a new GormMappingRepository
func NewGormMappingRepository(db *gorm.DB) *GormMappingRepository {
	return &GormMappingRepository{db: db, now: time.Now}
}

// FindActive returns every active configuration of a category, most recent first
func (r *GormMappingRepository) FindActive(ctx context.Context, category string) ([]models.MappingConfig, error) {
	var rows []MappingConfigModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND active = ?", category, true).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, errors.StorageError(errors.CodeStorageFailure, "mapping_config", category, err)
	}

	configs := make([]models.MappingConfig, len(rows))
	for i := range rows {
		configs[i] = rows[i].ToDomain()
	}
	return configs, nil
}

// FindByID finds a configuration by its id
func (r *GormMappingRepository) FindByID(ctx context.Context, id string) (*models.MappingConfig, error) {
	var model MappingConfigModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.StorageError(errors.CodeNotFound, "mapping_config", id, nil)
		}
		return nil, errors.StorageError(errors.CodeStorageFailure, "mapping_config", id, err)
	}
	cfg := model.ToDomain()
	return &cfg, nil
}

// Save inserts or updates cfg. An active ACCOUNTANT configuration replaces
// the previous active one for the same owner, category, scope and target;
// the replaced row is kept inactive and cfg takes the next version.
func (r *GormMappingRepository) Save(ctx context.Context, cfg *models.MappingConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Version < 1 {
		cfg.Version = 1
	}
	if cfg.UpdatedAt.IsZero() {
		cfg.UpdatedAt = r.now()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cfg.Active && cfg.OwnerType == models.OwnerAccountant {
			var previous []MappingConfigModel
			if err := tx.Where("category = ? AND owner_type = ? AND owner_id = ? AND scope = ? AND scope_target_id = ? AND active = ? AND id <> ?",
				cfg.Category, string(cfg.OwnerType), cfg.OwnerID, string(cfg.Scope), cfg.ScopeTargetID, true, cfg.ID).
				Find(&previous).Error; err != nil {
				return err
			}
			for _, p := range previous {
				if p.Version >= cfg.Version {
					cfg.Version = p.Version + 1
				}
				if err := tx.Model(&MappingConfigModel{}).
					Where("id = ?", p.ID).
					Update("active", false).Error; err != nil {
					return err
				}
			}
		}

		var model MappingConfigModel
		model.FromDomain(cfg)
		return tx.Save(&model).Error
	})
	if err != nil {
		return errors.StorageError(errors.CodeStorageFailure, "mapping_config", cfg.ID, err)
	}
	return nil
}

// Deactivate marks a configuration inactive
func (r *GormMappingRepository) Deactivate(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&MappingConfigModel{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return errors.StorageError(errors.CodeStorageFailure, "mapping_config", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.StorageError(errors.CodeNotFound, "mapping_config", id, nil)
	}
	return nil
}
