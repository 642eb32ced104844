package store

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"golang-dsf-service/internal/models"
	"golang-dsf-service/pkg/errors"
)

// GormBalanceRepository implements declaration.BalanceRepository using GORM
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// Save stores b. A new balance supersedes the earlier balances of the same
// folder and period; saving an existing balance keeps its superseded flag.
func (r *GormBalanceRepository) Save(ctx context.Context, b *models.Balance) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model BalanceModel
		model.FromDomain(b)

		var existing BalanceModel
		err := tx.Select("id", "superseded").Where("id = ?", b.ID).Take(&existing).Error
		switch {
		case err == nil:
			model.Superseded = existing.Superseded
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Model(&BalanceModel{}).
				Where("folder_id = ? AND period_type = ? AND id <> ?", b.FolderID, string(b.PeriodType), b.ID).
				Update("superseded", true).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return tx.Save(&model).Error
	})
	if err != nil {
		return errors.StorageError(errors.CodeStorageFailure, "balance", b.ID, err)
	}
	return nil
}

// UpdateIssues writes the issue list of a stored balance and nothing else
func (r *GormBalanceRepository) UpdateIssues(ctx context.Context, b *models.Balance) error {
	res := r.db.WithContext(ctx).
		Model(&BalanceModel{ID: b.ID}).
		Select("issues").
		Updates(&BalanceModel{Issues: b.Issues})
	if res.Error != nil {
		return errors.StorageError(errors.CodeStorageFailure, "balance", b.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.StorageError(errors.CodeNotFound, "balance", b.ID, nil)
	}
	return nil
}

// FindByID finds a balance by its id
func (r *GormBalanceRepository) FindByID(ctx context.Context, id string) (*models.Balance, error) {
	var model BalanceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.StorageError(errors.CodeNotFound, "balance", id, nil)
		}
		return nil, errors.StorageError(errors.CodeStorageFailure, "balance", id, err)
	}
	return model.ToDomain(), nil
}

// FindCurrent returns the balance of a folder and period that has not been superseded
func (r *GormBalanceRepository) FindCurrent(ctx context.Context, folderID string, period models.PeriodType) (*models.Balance, error) {
	key := fmt.Sprintf("%s/%s", folderID, period)

	var model BalanceModel
	if err := r.db.WithContext(ctx).
		Where("folder_id = ? AND period_type = ? AND superseded = ?", folderID, string(period), false).
		Order("uploaded_at DESC").
		First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.StorageError(errors.CodeNotFound, "balance", key, nil)
		}
		return nil, errors.StorageError(errors.CodeStorageFailure, "balance", key, err)
	}
	return model.ToDomain(), nil
}
