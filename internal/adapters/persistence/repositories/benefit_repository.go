package repositories

import (
	"context"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

// benefitRepository implements BenefitRepository interface
type benefitRepository struct {
	db *gorm.DB
}

// NewBenefitRepository creates a new benefit repository
func NewBenefitRepository(db *gorm.DB) BenefitRepository {
	return &benefitRepository{db: db}
}

// Create appends a benefit claim
func (r *benefitRepository) Create(ctx context.Context, b *models.BenefitUsage) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// GetByID gets a benefit claim by ID
func (r *benefitRepository) GetByID(ctx context.Context, id uint) (*models.BenefitUsage, error) {
	var b models.BenefitUsage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Update saves a benefit claim
func (r *benefitRepository) Update(ctx context.Context, b *models.BenefitUsage) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// Delete soft deletes a benefit claim
func (r *benefitRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.BenefitUsage{}, id).Error
}

// ListByMember lists a member's claims, most recent first
func (r *benefitRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.BenefitUsage, error) {
	var list []*models.BenefitUsage
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("date DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// TotalsByType sums paid amounts per benefit type for members inside scope
func (r *benefitRepository) TotalsByType(ctx context.Context, scope domain.Scope) (map[string]float64, error) {
	var rows []struct {
		Type  string
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.BenefitUsage{}).
		Joins("JOIN profiles ON profiles.id = user_benefits.member_id AND profiles.deleted_at IS NULL").
		Scopes(mandalamScope(scope, "profiles.mandalam")).
		Select("user_benefits.type AS type, COALESCE(SUM(user_benefits.amount_paid), 0) AS total").
		Group("user_benefits.type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.Type] = row.Total
	}
	return totals, nil
}
