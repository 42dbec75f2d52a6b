package repositories

import (
	"context"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByLogin gets a member by email or phone
func (r *memberRepository) GetByLogin(ctx context.Context, login string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("email = ? OR phone = ?", login, login).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Update saves every column of a member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// ExistsByIdentity checks whether any record (deleted ones included) uses the email, phone or emirates id
func (r *memberRepository) ExistsByIdentity(ctx context.Context, email, phone, emiratesID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&models.Member{}).
		Where("email = ? OR phone = ? OR emirates_id = ?", email, phone, emiratesID).
		Count(&count).Error
	return count > 0, err
}

// ExistsByPhone checks whether another member already uses phone
func (r *memberRepository) ExistsByPhone(ctx context.Context, phone string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&models.Member{}).
		Where("phone = ? AND id <> ?", phone, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *memberRepository) filtered(ctx context.Context, f MemberFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Scopes(mandalamScope(f.Scope, "mandalam"))

	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR phone LIKE ? OR reg_no LIKE ? OR emirates_id LIKE ?",
			like, like, like, like, like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Paid != nil {
		q = q.Where("payment_status = ?", *f.Paid)
	}
	if f.PaymentApproval != "" {
		q = q.Where("payment_approval_status = ?", f.PaymentApproval)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	return q
}

// List lists members matching the filter, newest first
func (r *memberRepository) List(ctx context.Context, f MemberFilter) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.filtered(ctx, f).Order("id DESC")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	if err := q.Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// ListIDs returns the id of every member
func (r *memberRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Member{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// MarkRenewalPending moves every approved member into renewal and clears the yearly payment state
func (r *memberRepository) MarkRenewalPending(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("status = ?", string(domain.StatusApproved)).
		Updates(map[string]interface{}{
			"status":                   string(domain.StatusRenewalPending),
			"is_reregistration":        true,
			"payment_status":           false,
			"payment_amount":           0,
			"payment_submitted":        false,
			"payment_approval_status":  string(domain.PaymentNotSubmitted),
			"payment_user_remarks":     "",
			"payment_admin_remarks":    "",
			"payment_submitted_amount": 0,
			"payment_submitted_at":     nil,
			"payment_year":             0,
			"payment_recipient_id":     nil,
		})
	return result.RowsAffected, result.Error
}

// Stats counts members by status and payment state inside scope
func (r *memberRepository) Stats(ctx context.Context, scope domain.Scope) (*MemberStats, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Member{}).Scopes(mandalamScope(scope, "mandalam"))
	}

	stats := &MemberStats{ByStatus: map[string]int64{}}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := base().Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}

	if err := base().Where("payment_status = ?", true).Count(&stats.Paid).Error; err != nil {
		return nil, err
	}
	stats.Unpaid = stats.Total - stats.Paid

	if err := base().
		Where("payment_approval_status = ?", string(domain.PaymentPending)).
		Count(&stats.PendingPayments).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
