package repositories

import (
	"context"

	"membership-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ============================================================
// Message templates
// ============================================================

type messageTemplateRepository struct {
	db *gorm.DB
}

// NewMessageTemplateRepository creates a new message template repository
func NewMessageTemplateRepository(db *gorm.DB) MessageTemplateRepository {
	return &messageTemplateRepository{db: db}
}

func (r *messageTemplateRepository) Create(ctx context.Context, t *models.MessageTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *messageTemplateRepository) GetByID(ctx context.Context, id uint) (*models.MessageTemplate, error) {
	var t models.MessageTemplate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *messageTemplateRepository) Update(ctx context.Context, t *models.MessageTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *messageTemplateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MessageTemplate{}, id).Error
}

func (r *messageTemplateRepository) List(ctx context.Context) ([]*models.MessageTemplate, error) {
	var list []*models.MessageTemplate
	if err := r.db.WithContext(ctx).Order("name").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ============================================================
// Payment recipients
// ============================================================

type paymentRecipientRepository struct {
	db *gorm.DB
}

// NewPaymentRecipientRepository creates a new payment recipient repository
func NewPaymentRecipientRepository(db *gorm.DB) PaymentRecipientRepository {
	return &paymentRecipientRepository{db: db}
}

func (r *paymentRecipientRepository) Create(ctx context.Context, p *models.PaymentRecipient) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRecipientRepository) GetByID(ctx context.Context, id uint) (*models.PaymentRecipient, error) {
	var p models.PaymentRecipient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRecipientRepository) Update(ctx context.Context, p *models.PaymentRecipient) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *paymentRecipientRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentRecipient{}, id).Error
}

func (r *paymentRecipientRepository) List(ctx context.Context, activeOnly bool) ([]*models.PaymentRecipient, error) {
	var list []*models.PaymentRecipient
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("name").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ============================================================
// Registration questions
// ============================================================

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new registration question repository
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, q *models.RegistrationQuestion) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.RegistrationQuestion, error) {
	var q models.RegistrationQuestion
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) Update(ctx context.Context, q *models.RegistrationQuestion) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.RegistrationQuestion{}, id).Error
}

// List lists questions in form order
func (r *questionRepository) List(ctx context.Context, activeOnly bool) ([]*models.RegistrationQuestion, error) {
	var list []*models.RegistrationQuestion
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("sort_order, id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ============================================================
// Card templates
// ============================================================

type cardTemplateRepository struct {
	db *gorm.DB
}

// NewCardTemplateRepository creates a new card template repository
func NewCardTemplateRepository(db *gorm.DB) CardTemplateRepository {
	return &cardTemplateRepository{db: db}
}

func (r *cardTemplateRepository) Create(ctx context.Context, t *models.CardTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *cardTemplateRepository) GetByID(ctx context.Context, id uint) (*models.CardTemplate, error) {
	var t models.CardTemplate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *cardTemplateRepository) Update(ctx context.Context, t *models.CardTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *cardTemplateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CardTemplate{}, id).Error
}

func (r *cardTemplateRepository) List(ctx context.Context) ([]*models.CardTemplate, error) {
	var list []*models.CardTemplate
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// GetActive gets the template used for member cards
func (r *cardTemplateRepository) GetActive(ctx context.Context) (*models.CardTemplate, error) {
	var t models.CardTemplate
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *cardTemplateRepository) DeactivateAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.CardTemplate{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}
