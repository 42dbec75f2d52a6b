package repositories

import (
	"context"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

// changeRequestRepository implements ChangeRequestRepository interface
type changeRequestRepository struct {
	db *gorm.DB
}

// NewChangeRequestRepository creates a new change request repository
func NewChangeRequestRepository(db *gorm.DB) ChangeRequestRepository {
	return &changeRequestRepository{db: db}
}

// Create creates a change request
func (r *changeRequestRepository) Create(ctx context.Context, cr *models.ChangeRequest) error {
	return r.db.WithContext(ctx).Create(cr).Error
}

// GetByID gets a change request by ID
func (r *changeRequestRepository) GetByID(ctx context.Context, id uint) (*models.ChangeRequest, error) {
	var cr models.ChangeRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cr).Error; err != nil {
		return nil, err
	}
	return &cr, nil
}

// Update saves a change request
func (r *changeRequestRepository) Update(ctx context.Context, cr *models.ChangeRequest) error {
	return r.db.WithContext(ctx).Omit("Member").Save(cr).Error
}

// ListByMember lists a member's change requests, newest first
func (r *changeRequestRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.ChangeRequest, error) {
	var list []*models.ChangeRequest
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("id DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ListPending lists pending requests of members inside scope, oldest first
func (r *changeRequestRepository) ListPending(ctx context.Context, scope domain.Scope, offset, limit int) ([]*models.ChangeRequest, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.ChangeRequest{}).
			Joins("JOIN profiles ON profiles.id = change_requests.member_id AND profiles.deleted_at IS NULL").
			Scopes(mandalamScope(scope, "profiles.mandalam")).
			Where("change_requests.status = ?", string(domain.ChangePending))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []*models.ChangeRequest
	err := base().
		Preload("Member").
		Order("change_requests.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
