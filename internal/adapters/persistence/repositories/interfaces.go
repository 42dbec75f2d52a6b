package repositories

import (
	"context"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"
)

// Store groups every repository behind one transactional boundary.
// Repositories obtained from the Store passed to WithTx's callback run inside
// the transaction; the callback's error rolls it back.
type Store interface {
	Members() MemberRepository
	Roles() RoleRepository
	Notifications() NotificationRepository
	Benefits() BenefitRepository
	ChangeRequests() ChangeRequestRepository
	Years() YearConfigRepository
	Templates() MessageTemplateRepository
	Recipients() PaymentRecipientRepository
	Questions() QuestionRepository
	CardTemplates() CardTemplateRepository
	RefreshTokens() RefreshTokenRepository
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// MemberFilter narrows member queries. Scope is applied first and always.
type MemberFilter struct {
	Scope           domain.Scope
	Search          string
	Status          string
	Paid            *bool
	PaymentApproval string
	IDs             []uint
	Offset          int
	Limit           int // 0 means no limit
}

// MemberStats aggregates member counts for dashboards
type MemberStats struct {
	Total           int64            `json:"total"`
	ByStatus        map[string]int64 `json:"by_status"`
	Paid            int64            `json:"paid"`
	Unpaid          int64            `json:"unpaid"`
	PendingPayments int64            `json:"pending_payments"`
}

// MemberRepository defines member (profiles) repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByLogin(ctx context.Context, login string) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	ExistsByIdentity(ctx context.Context, email, phone, emiratesID string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string, excludeID uint) (bool, error)
	List(ctx context.Context, filter MemberFilter) ([]*models.Member, int64, error)
	ListIDs(ctx context.Context) ([]uint, error)
	MarkRenewalPending(ctx context.Context) (int64, error)
	Stats(ctx context.Context, scope domain.Scope) (*MemberStats, error)
}

// RoleRepository defines user_roles repository interface
type RoleRepository interface {
	GetByMemberID(ctx context.Context, memberID uint) (*models.UserRole, error)
	Save(ctx context.Context, role *models.UserRole) error
	ListAdmins(ctx context.Context) ([]*models.UserRole, error)
}

// NotificationRepository defines notification repository interface
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, list []*models.Notification) error
	ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, memberID uint) (int64, error)
	MarkRead(ctx context.Context, memberID, id uint) (bool, error)
	MarkAllRead(ctx context.Context, memberID uint) (int64, error)
}

// BenefitRepository defines user_benefits repository interface
type BenefitRepository interface {
	Create(ctx context.Context, b *models.BenefitUsage) error
	GetByID(ctx context.Context, id uint) (*models.BenefitUsage, error)
	Update(ctx context.Context, b *models.BenefitUsage) error
	Delete(ctx context.Context, id uint) error
	ListByMember(ctx context.Context, memberID uint) ([]*models.BenefitUsage, error)
	TotalsByType(ctx context.Context, scope domain.Scope) (map[string]float64, error)
}

// ChangeRequestRepository defines change_requests repository interface
type ChangeRequestRepository interface {
	Create(ctx context.Context, cr *models.ChangeRequest) error
	GetByID(ctx context.Context, id uint) (*models.ChangeRequest, error)
	Update(ctx context.Context, cr *models.ChangeRequest) error
	ListByMember(ctx context.Context, memberID uint) ([]*models.ChangeRequest, error)
	ListPending(ctx context.Context, scope domain.Scope, offset, limit int) ([]*models.ChangeRequest, int64, error)
}

// YearConfigRepository defines year_configs repository interface
type YearConfigRepository interface {
	Create(ctx context.Context, y *models.YearConfig) error
	GetByYear(ctx context.Context, year int) (*models.YearConfig, error)
	GetActive(ctx context.Context) (*models.YearConfig, error)
	List(ctx context.Context) ([]*models.YearConfig, error)
	DeactivateAll(ctx context.Context) error
	Activate(ctx context.Context, year int) error
}

// MessageTemplateRepository defines message_templates repository interface
type MessageTemplateRepository interface {
	Create(ctx context.Context, t *models.MessageTemplate) error
	GetByID(ctx context.Context, id uint) (*models.MessageTemplate, error)
	Update(ctx context.Context, t *models.MessageTemplate) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.MessageTemplate, error)
}

// PaymentRecipientRepository defines payment_recipients repository interface
type PaymentRecipientRepository interface {
	Create(ctx context.Context, r *models.PaymentRecipient) error
	GetByID(ctx context.Context, id uint) (*models.PaymentRecipient, error)
	Update(ctx context.Context, r *models.PaymentRecipient) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, activeOnly bool) ([]*models.PaymentRecipient, error)
}

// QuestionRepository defines registration_questions repository interface
type QuestionRepository interface {
	Create(ctx context.Context, q *models.RegistrationQuestion) error
	GetByID(ctx context.Context, id uint) (*models.RegistrationQuestion, error)
	Update(ctx context.Context, q *models.RegistrationQuestion) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, activeOnly bool) ([]*models.RegistrationQuestion, error)
}

// CardTemplateRepository defines card_templates repository interface
type CardTemplateRepository interface {
	Create(ctx context.Context, t *models.CardTemplate) error
	GetByID(ctx context.Context, id uint) (*models.CardTemplate, error)
	Update(ctx context.Context, t *models.CardTemplate) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.CardTemplate, error)
	GetActive(ctx context.Context) (*models.CardTemplate, error)
	DeactivateAll(ctx context.Context) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByMemberID(ctx context.Context, memberID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}
