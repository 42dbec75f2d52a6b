package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Settings errors
var (
	ErrQuestionNotFound = errors.New("registration question not found")
	ErrQuestionInvalid  = errors.New("invalid registration question")
	ErrRecipientInvalid = errors.New("payment recipient needs a name")
)

// ============================================================
// Registration questions
// ============================================================

// QuestionService manages the dynamic registration form
type QuestionService struct {
	store repositories.Store
}

// NewQuestionService creates a new question service
func NewQuestionService(store repositories.Store) *QuestionService {
	return &QuestionService{store: store}
}

// QuestionInput represents a registration question
type QuestionInput struct {
	Key               string                   `json:"key"`
	Label             string                   `json:"label"`
	FieldType         domain.FieldType         `json:"field_type"`
	Options           []string                 `json:"options"`
	DependentOn       string                   `json:"dependent_on"`
	DependentOptions  []domain.DependentOption `json:"dependent_options"`
	Required          bool                     `json:"required"`
	MinLength         int                      `json:"min_length"`
	MaxLength         int                      `json:"max_length"`
	ValidationPattern string                   `json:"validation_pattern"`
	ShowWhenField     string                   `json:"show_when_field"`
	ShowWhenValue     string                   `json:"show_when_value"`
	SortOrder         int                      `json:"sort_order"`
	IsActive          bool                     `json:"is_active"`
}

// ListActive lists the questions of the public registration form
func (s *QuestionService) ListActive(ctx context.Context) ([]*models.RegistrationQuestion, error) {
	return s.store.Questions().List(ctx, true)
}

// ListAll lists every question including inactive ones
func (s *QuestionService) ListAll(ctx context.Context, actorID uint) ([]*models.RegistrationQuestion, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return nil, err
	}
	return s.store.Questions().List(ctx, false)
}

// Create adds a question
func (s *QuestionService) Create(ctx context.Context, actorID uint, in QuestionInput) (*models.RegistrationQuestion, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return nil, err
	}
	q := &models.RegistrationQuestion{}
	if err := applyQuestion(q, in); err != nil {
		return nil, err
	}
	if err := s.store.Questions().Create(ctx, q); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: key %q is taken", ErrQuestionInvalid, q.Key)
		}
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// Update replaces a question
func (s *QuestionService) Update(ctx context.Context, actorID, id uint, in QuestionInput) (*models.RegistrationQuestion, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return nil, err
	}
	q, err := s.store.Questions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if err := applyQuestion(q, in); err != nil {
		return nil, err
	}
	if err := s.store.Questions().Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// Delete removes a question
func (s *QuestionService) Delete(ctx context.Context, actorID, id uint) error {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return err
	}
	if _, err := s.store.Questions().GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}
	return s.store.Questions().Delete(ctx, id)
}

func applyQuestion(q *models.RegistrationQuestion, in QuestionInput) error {
	key := strings.TrimSpace(in.Key)
	label := strings.TrimSpace(in.Label)
	switch {
	case key == "" || label == "":
		return fmt.Errorf("%w: key and label are required", ErrQuestionInvalid)
	case !in.FieldType.Valid():
		return fmt.Errorf("%w: unknown field type %q", ErrQuestionInvalid, in.FieldType)
	case in.FieldType == domain.FieldSelect && len(in.Options) == 0:
		return fmt.Errorf("%w: select needs options", ErrQuestionInvalid)
	case in.FieldType == domain.FieldDependentSelect && (in.DependentOn == "" || len(in.DependentOptions) == 0):
		return fmt.Errorf("%w: dependent select needs a parent and options", ErrQuestionInvalid)
	case in.MinLength < 0 || in.MaxLength < 0 || (in.MaxLength > 0 && in.MinLength > in.MaxLength):
		return fmt.Errorf("%w: bad length bounds", ErrQuestionInvalid)
	case (in.ShowWhenField == "") != (in.ShowWhenValue == ""):
		return fmt.Errorf("%w: show_when needs both field and value", ErrQuestionInvalid)
	}
	if in.ValidationPattern != "" {
		if _, err := regexp.Compile(in.ValidationPattern); err != nil {
			return fmt.Errorf("%w: bad pattern", ErrQuestionInvalid)
		}
	}

	q.Key = key
	q.Label = label
	q.FieldType = string(in.FieldType)
	q.Options = datatypes.NewJSONType(in.Options)
	q.DependentOn = strings.TrimSpace(in.DependentOn)
	q.DependentOptions = datatypes.NewJSONType(in.DependentOptions)
	q.Required = in.Required
	q.MinLength = in.MinLength
	q.MaxLength = in.MaxLength
	q.ValidationPattern = in.ValidationPattern
	q.ShowWhenField = strings.TrimSpace(in.ShowWhenField)
	q.ShowWhenValue = strings.TrimSpace(in.ShowWhenValue)
	q.SortOrder = in.SortOrder
	q.IsActive = in.IsActive
	return nil
}

// ============================================================
// Payment recipients
// ============================================================

// RecipientService manages the accounts members pay their fee to
type RecipientService struct {
	store repositories.Store
}

// NewRecipientService creates a new recipient service
func NewRecipientService(store repositories.Store) *RecipientService {
	return &RecipientService{store: store}
}

// RecipientInput represents a payment recipient
type RecipientInput struct {
	Name          string `json:"name"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IBAN          string `json:"iban"`
	Phone         string `json:"phone"`
	Mandalam      string `json:"mandalam"`
	IsActive      bool   `json:"is_active"`
}

// ListActive lists recipients shown to members
func (s *RecipientService) ListActive(ctx context.Context) ([]*models.PaymentRecipient, error) {
	return s.store.Recipients().List(ctx, true)
}

// ListAll lists every recipient
func (s *RecipientService) ListAll(ctx context.Context, actorID uint) ([]*models.PaymentRecipient, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return nil, err
	}
	return s.store.Recipients().List(ctx, false)
}

// Create adds a recipient
func (s *RecipientService) Create(ctx context.Context, actorID uint, in RecipientInput) (*models.PaymentRecipient, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return nil, err
	}
	p := &models.PaymentRecipient{}
	if err := applyRecipient(p, in); err != nil {
		return nil, err
	}
	if err := s.store.Recipients().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create recipient: %w", err)
	}
	return p, nil
}

// Update replaces a recipient
func (s *RecipientService) Update(ctx context.Context, actorID, id uint, in RecipientInput) (*models.PaymentRecipient, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return nil, err
	}
	p, err := s.store.Recipients().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	if err := applyRecipient(p, in); err != nil {
		return nil, err
	}
	if err := s.store.Recipients().Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update recipient: %w", err)
	}
	return p, nil
}

// Delete removes a recipient
func (s *RecipientService) Delete(ctx context.Context, actorID, id uint) error {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return err
	}
	if _, err := s.store.Recipients().GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipientNotFound
		}
		return err
	}
	return s.store.Recipients().Delete(ctx, id)
}

func applyRecipient(p *models.PaymentRecipient, in RecipientInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrRecipientInvalid
	}
	p.Name = name
	p.BankName = strings.TrimSpace(in.BankName)
	p.AccountNumber = strings.TrimSpace(in.AccountNumber)
	p.IBAN = strings.ToUpper(strings.ReplaceAll(in.IBAN, " ", ""))
	p.Phone = strings.TrimSpace(in.Phone)
	p.Mandalam = strings.TrimSpace(in.Mandalam)
	p.IsActive = in.IsActive
	return nil
}
