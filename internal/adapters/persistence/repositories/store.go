package repositories

import (
	"context"
	"strings"

	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

// gormStore implements Store on top of a *gorm.DB (or an open transaction)
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM backed store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Members() MemberRepository             { return NewMemberRepository(s.db) }
func (s *gormStore) Roles() RoleRepository                 { return NewRoleRepository(s.db) }
func (s *gormStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }
func (s *gormStore) Benefits() BenefitRepository           { return NewBenefitRepository(s.db) }
func (s *gormStore) ChangeRequests() ChangeRequestRepository {
	return NewChangeRequestRepository(s.db)
}
func (s *gormStore) Years() YearConfigRepository          { return NewYearConfigRepository(s.db) }
func (s *gormStore) Templates() MessageTemplateRepository { return NewMessageTemplateRepository(s.db) }
func (s *gormStore) Recipients() PaymentRecipientRepository {
	return NewPaymentRecipientRepository(s.db)
}
func (s *gormStore) Questions() QuestionRepository         { return NewQuestionRepository(s.db) }
func (s *gormStore) CardTemplates() CardTemplateRepository { return NewCardTemplateRepository(s.db) }
func (s *gormStore) RefreshTokens() RefreshTokenRepository { return NewRefreshTokenRepository(s.db) }

// WithTx runs fn inside a database transaction
func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// mandalamScope returns a GORM scope restricting column to the mandalams of scope.
// An empty scope matches nothing.
func mandalamScope(scope domain.Scope, column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.All {
			return db
		}
		if len(scope.Mandalams) == 0 {
			return db.Where("1 = 0")
		}
		lowered := make([]string, len(scope.Mandalams))
		for i, m := range scope.Mandalams {
			lowered[i] = strings.ToLower(strings.TrimSpace(m))
		}
		return db.Where("LOWER("+column+") IN ?", lowered)
	}
}
