package repositories

import (
	"context"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

// roleRepository implements RoleRepository interface
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// GetByMemberID gets the role row of a member
func (r *roleRepository) GetByMemberID(ctx context.Context, memberID uint) (*models.UserRole, error) {
	var role models.UserRole
	err := r.db.WithContext(ctx).Where("member_id = ?", memberID).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Save creates or updates a role row
func (r *roleRepository) Save(ctx context.Context, role *models.UserRole) error {
	return r.db.WithContext(ctx).Save(role).Error
}

// ListAdmins lists every role row other than plain users
func (r *roleRepository) ListAdmins(ctx context.Context) ([]*models.UserRole, error) {
	var roles []*models.UserRole
	err := r.db.WithContext(ctx).
		Where("role <> ?", string(domain.RoleUser)).
		Order("member_id").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}
