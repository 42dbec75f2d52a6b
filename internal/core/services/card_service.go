package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Card errors
var (
	ErrCardNotAvailable     = errors.New("membership card is available once approved and paid")
	ErrCardTemplateNotFound = errors.New("card template not found")
	ErrCardTemplateInvalid  = errors.New("card template needs a name, image, size and every field position")
)

// CardService exposes membership card data and manages card templates.
// Rendering the card image is left to clients.
type CardService struct {
	store repositories.Store
}

// NewCardService creates a new card service
func NewCardService(store repositories.Store) *CardService {
	return &CardService{store: store}
}

// CardQR is the payload encoded into the card's QR code
type CardQR struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	RegNo string `json:"regNo"`
	Year  int    `json:"year"`
}

// CardData is everything a client needs to draw a member card
type CardData struct {
	Template  *models.CardTemplate `json:"template,omitempty"`
	Values    map[string]string    `json:"values"`
	QRPayload string               `json:"qr_payload"`
}

// CardTemplateInput represents a card template
type CardTemplateInput struct {
	Name     string                              `json:"name"`
	ImageURL string                              `json:"image_url"`
	Width    int                                 `json:"width"`
	Height   int                                 `json:"height"`
	Fields   map[string]models.CardFieldPosition `json:"fields"`
	IsActive bool                                `json:"is_active"`
}

// CardData returns card field values and the QR payload for an approved, paid member
func (s *CardService) CardData(ctx context.Context, actorID, memberID uint) (*CardData, error) {
	var member *models.Member
	var err error
	if actorID == memberID {
		member, err = loadMember(ctx, s.store, memberID)
	} else {
		_, member, err = authorizeOnMember(ctx, s.store, actorID, memberID, domain.CanViewUsers)
	}
	if err != nil {
		return nil, err
	}
	if member.Status != string(domain.StatusApproved) || !member.PaymentStatus {
		return nil, ErrCardNotAvailable
	}

	qr, err := json.Marshal(CardQR{
		ID:    member.ID,
		Name:  member.Name,
		RegNo: member.RegNo,
		Year:  member.RegistrationYear,
	})
	if err != nil {
		return nil, err
	}

	data := &CardData{
		Values: map[string]string{
			models.CardFieldPhoto:    member.PhotoURL,
			models.CardFieldName:     member.Name,
			models.CardFieldRegNo:    member.RegNo,
			models.CardFieldEmirate:  member.Emirate,
			models.CardFieldMobile:   member.Phone,
			models.CardFieldMandalam: member.Mandalam,
		},
		QRPayload: string(qr),
	}

	tmpl, err := s.store.CardTemplates().GetActive(ctx)
	switch {
	case err == nil:
		data.Template = tmpl
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("load card template: %w", err)
	}
	return data, nil
}

// ListTemplates lists card templates
func (s *CardService) ListTemplates(ctx context.Context, actorID uint) ([]*models.CardTemplate, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return nil, err
	}
	return s.store.CardTemplates().List(ctx)
}

// CreateTemplate stores a card template. An active template replaces the previous one.
func (s *CardService) CreateTemplate(ctx context.Context, actorID uint, in CardTemplateInput) (*models.CardTemplate, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return nil, err
	}
	t := &models.CardTemplate{}
	if err := applyCardTemplate(t, in); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if t.IsActive {
			if err := tx.CardTemplates().DeactivateAll(ctx); err != nil {
				return err
			}
		}
		return tx.CardTemplates().Create(ctx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("create card template: %w", err)
	}
	return t, nil
}

// UpdateTemplate replaces a card template
func (s *CardService) UpdateTemplate(ctx context.Context, actorID, id uint, in CardTemplateInput) (*models.CardTemplate, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return nil, err
	}

	var t *models.CardTemplate
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		t, err = tx.CardTemplates().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardTemplateNotFound
			}
			return err
		}
		if err := applyCardTemplate(t, in); err != nil {
			return err
		}
		if t.IsActive {
			if err := tx.CardTemplates().DeactivateAll(ctx); err != nil {
				return err
			}
		}
		return tx.CardTemplates().Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTemplate removes a card template
func (s *CardService) DeleteTemplate(ctx context.Context, actorID, id uint) error {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageSettings); err != nil {
		return err
	}
	if _, err := s.store.CardTemplates().GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCardTemplateNotFound
		}
		return err
	}
	return s.store.CardTemplates().Delete(ctx, id)
}

func applyCardTemplate(t *models.CardTemplate, in CardTemplateInput) error {
	name := strings.TrimSpace(in.Name)
	image := strings.TrimSpace(in.ImageURL)
	if name == "" || image == "" || in.Width <= 0 || in.Height <= 0 {
		return ErrCardTemplateInvalid
	}
	for _, f := range models.CardFieldNames {
		if _, ok := in.Fields[f]; !ok {
			return fmt.Errorf("%w: missing %s", ErrCardTemplateInvalid, f)
		}
	}
	t.Name = name
	t.ImageURL = image
	t.Width = in.Width
	t.Height = in.Height
	t.Fields = datatypes.NewJSONType(in.Fields)
	t.IsActive = in.IsActive
	return nil
}
