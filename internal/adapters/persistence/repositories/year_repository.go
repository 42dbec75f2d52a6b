package repositories

import (
	"context"

	"membership-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// yearConfigRepository implements YearConfigRepository interface
type yearConfigRepository struct {
	db *gorm.DB
}

// NewYearConfigRepository creates a new year config repository
func NewYearConfigRepository(db *gorm.DB) YearConfigRepository {
	return &yearConfigRepository{db: db}
}

// Create inserts a year
func (r *yearConfigRepository) Create(ctx context.Context, y *models.YearConfig) error {
	return r.db.WithContext(ctx).Create(y).Error
}

// GetByYear gets a year config
func (r *yearConfigRepository) GetByYear(ctx context.Context, year int) (*models.YearConfig, error) {
	var y models.YearConfig
	if err := r.db.WithContext(ctx).Where("year = ?", year).First(&y).Error; err != nil {
		return nil, err
	}
	return &y, nil
}

// GetActive gets the active year
func (r *yearConfigRepository) GetActive(ctx context.Context) (*models.YearConfig, error) {
	var y models.YearConfig
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("year DESC").
		First(&y).Error
	if err != nil {
		return nil, err
	}
	return &y, nil
}

// List lists every year, latest first
func (r *yearConfigRepository) List(ctx context.Context) ([]*models.YearConfig, error) {
	var list []*models.YearConfig
	if err := r.db.WithContext(ctx).Order("year DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DeactivateAll clears the active flag on every year
func (r *yearConfigRepository) DeactivateAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.YearConfig{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

// Activate sets the active flag on one year
func (r *yearConfigRepository) Activate(ctx context.Context, year int) error {
	result := r.db.WithContext(ctx).
		Model(&models.YearConfig{}).
		Where("year = ?", year).
		Update("is_active", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
