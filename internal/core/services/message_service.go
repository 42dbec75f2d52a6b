package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Message errors
var (
	ErrSubjectRequired      = errors.New("subject and message are required")
	ErrTemplateNotFound     = errors.New("message template not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidPaymentFilter = errors.New("payment filter must be paid or unpaid")
)

// Payment filter values
const (
	PaymentFilterPaid   = "paid"
	PaymentFilterUnpaid = "unpaid"
)

// MessageService sends templated messages to members and serves their inbox
type MessageService struct {
	store repositories.Store
}

// NewMessageService creates a new message service
func NewMessageService(store repositories.Store) *MessageService {
	return &MessageService{store: store}
}

// MessageFilter selects the recipients of a message. Empty fields do not filter.
type MessageFilter struct {
	Mandalam  string `json:"mandalam"`
	Payment   string `json:"payment"`
	Status    string `json:"status"`
	MemberIDs []uint `json:"member_ids"`
}

// SendMessageInput represents a message to fan out
type SendMessageInput struct {
	Filter  MessageFilter `json:"filter"`
	Subject string        `json:"subject"`
	Body    string        `json:"body"`
}

// TemplateInput represents a message template
type TemplateInput struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendMessage renders subject and body for every member matching the filter
// inside the actor's scope and appends one notification per recipient.
// It returns the number of recipients.
func (s *MessageService) SendMessage(ctx context.Context, actorID uint, filter MessageFilter, subject, bodyTemplate string) (int, error) {
	subject = strings.TrimSpace(subject)
	bodyTemplate = strings.TrimSpace(bodyTemplate)
	if subject == "" || bodyTemplate == "" {
		return 0, ErrSubjectRequired
	}

	actor, err := requireCapability(ctx, s.store, actorID, domain.CanSendNotifications)
	if err != nil {
		return 0, err
	}
	scope := domain.ScopeFor(actor).Narrow(filter.Mandalam)
	if scope.Empty() {
		return 0, nil
	}

	mf := repositories.MemberFilter{Scope: scope, Status: filter.Status, IDs: filter.MemberIDs}
	if filter.Status != "" && !domain.MemberStatus(filter.Status).Valid() {
		return 0, ErrInvalidStatus
	}
	switch filter.Payment {
	case "":
	case PaymentFilterPaid:
		paid := true
		mf.Paid = &paid
	case PaymentFilterUnpaid:
		paid := false
		mf.Paid = &paid
	default:
		return 0, ErrInvalidPaymentFilter
	}

	year := 0
	if y, err := activeYear(ctx, s.store); err == nil {
		year = y.Year
	} else if !errors.Is(err, ErrNoActiveYear) {
		return 0, err
	}

	var sent int
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		members, _, err := tx.Members().List(ctx, mf)
		if err != nil {
			return fmt.Errorf("select recipients: %w", err)
		}

		batch := make([]*models.Notification, 0, len(members))
		for _, m := range members {
			data := domain.TemplateData{
				Name:     m.Name,
				Mandalam: m.Mandalam,
				Year:     year,
				RegNo:    m.RegNo,
				Phone:    m.Phone,
				Emirate:  m.Emirate,
			}
			batch = append(batch, &models.Notification{
				MemberID: m.ID,
				Title:    domain.RenderTemplate(subject, data),
				Message:  domain.RenderTemplate(bodyTemplate, data),
				Type:     string(domain.NotifyMessage),
				SentBy:   uintPtr(actorID),
			})
		}
		if err := tx.Notifications().CreateBatch(ctx, batch); err != nil {
			return fmt.Errorf("insert notifications: %w", err)
		}
		sent = len(batch)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{"actor_id": actorID, "recipients": sent}).Info("message sent")
	return sent, nil
}

// ListTemplates lists stored message templates
func (s *MessageService) ListTemplates(ctx context.Context, actorID uint) ([]*models.MessageTemplate, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanSendNotifications); err != nil {
		return nil, err
	}
	return s.store.Templates().List(ctx)
}

// CreateTemplate stores a message template
func (s *MessageService) CreateTemplate(ctx context.Context, actorID uint, in TemplateInput) (*models.MessageTemplate, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanSendNotifications); err != nil {
		return nil, err
	}
	t := &models.MessageTemplate{CreatedBy: actorID}
	if err := applyTemplate(t, in); err != nil {
		return nil, err
	}
	if err := s.store.Templates().Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

// UpdateTemplate replaces a message template
func (s *MessageService) UpdateTemplate(ctx context.Context, actorID, id uint, in TemplateInput) (*models.MessageTemplate, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanSendNotifications); err != nil {
		return nil, err
	}
	t, err := s.store.Templates().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if err := applyTemplate(t, in); err != nil {
		return nil, err
	}
	if err := s.store.Templates().Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return t, nil
}

// DeleteTemplate removes a message template
func (s *MessageService) DeleteTemplate(ctx context.Context, actorID, id uint) error {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanSendNotifications); err != nil {
		return err
	}
	if _, err := s.store.Templates().GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return s.store.Templates().Delete(ctx, id)
}

func applyTemplate(t *models.MessageTemplate, in TemplateInput) error {
	name := strings.TrimSpace(in.Name)
	subject := strings.TrimSpace(in.Subject)
	body := strings.TrimSpace(in.Body)
	if name == "" || subject == "" || body == "" {
		return ErrSubjectRequired
	}
	t.Name, t.Subject, t.Body = name, subject, body
	return nil
}

// Inbox lists the member's notifications, newest first
func (s *MessageService) Inbox(ctx context.Context, memberID uint, offset, limit int) ([]*models.Notification, int64, error) {
	list, total, err := s.store.Notifications().ListByMember(ctx, memberID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return list, total, nil
}

// UnreadCount counts the member's unread notifications
func (s *MessageService) UnreadCount(ctx context.Context, memberID uint) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, memberID)
}

// MarkRead marks one of the member's notifications as read
func (s *MessageService) MarkRead(ctx context.Context, memberID, id uint) error {
	ok, err := s.store.Notifications().MarkRead(ctx, memberID, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every notification of the member as read
func (s *MessageService) MarkAllRead(ctx context.Context, memberID uint) (int64, error) {
	return s.store.Notifications().MarkAllRead(ctx, memberID)
}
