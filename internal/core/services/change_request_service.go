package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Change request errors
var (
	ErrRequestNotFound   = errors.New("change request not found")
	ErrRequestNotPending = errors.New("change request was already reviewed")
	ErrValueRequired     = errors.New("new value is required")
	ErrValueUnchanged    = errors.New("new value equals the current value")
)

// ChangeRequestService handles member profile edits that need admin review
type ChangeRequestService struct {
	store repositories.Store
}

// NewChangeRequestService creates a new change request service
func NewChangeRequestService(store repositories.Store) *ChangeRequestService {
	return &ChangeRequestService{store: store}
}

// UpdateProfileInput represents a member's edit of one field
type UpdateProfileInput struct {
	Field  string `json:"field" validate:"required"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// ReviewInput represents an admin's decision on a change request
type ReviewInput struct {
	Approved bool   `json:"approved"`
	Remarks  string `json:"remarks"`
}

// UpdateResult says whether an edit was applied or queued for review
type UpdateResult struct {
	Applied bool                   `json:"applied"`
	Member  *models.MemberResponse `json:"member,omitempty"`
	Request *models.ChangeRequest  `json:"request,omitempty"`
}

// UpdateProfile writes an empty field straight away. A field that already
// holds a value is only changed through an approved change request.
func (s *ChangeRequestService) UpdateProfile(ctx context.Context, memberID uint, field, value, reason string) (*UpdateResult, error) {
	field = strings.TrimSpace(field)
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrValueRequired
	}

	keys, err := questionKeys(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if !domain.IsEditableProfileField(field) && !keys[field] {
		return nil, ErrUnknownField
	}

	member, err := loadMember(ctx, s.store, memberID)
	if err != nil {
		return nil, err
	}

	current := member.ProfileField(field)
	if current == value {
		return nil, ErrValueUnchanged
	}

	if field == "phone" {
		taken, err := s.store.Members().ExistsByPhone(ctx, value, member.ID)
		if err != nil {
			return nil, fmt.Errorf("check phone: %w", err)
		}
		if taken {
			return nil, ErrPhoneTaken
		}
	}

	if current == "" {
		member.SetProfileField(field, value)
		if err := s.store.Members().Update(ctx, member); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		logrus.WithFields(logrus.Fields{"member_id": memberID, "field": field}).Info("profile field filled")
		return &UpdateResult{Applied: true, Member: member.ToResponse()}, nil
	}

	cr := &models.ChangeRequest{
		MemberID:  memberID,
		FieldName: field,
		OldValue:  current,
		NewValue:  value,
		Reason:    strings.TrimSpace(reason),
		Status:    string(domain.ChangePending),
	}
	if err := s.store.ChangeRequests().Create(ctx, cr); err != nil {
		return nil, fmt.Errorf("create change request: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"member_id":  memberID,
		"field":      field,
		"request_id": cr.ID,
	}).Info("change request created")
	return &UpdateResult{Applied: false, Request: cr}, nil
}

// Review approves or rejects a pending change request. Approval re-reads the
// member inside the transaction and overwrites exactly the requested field.
func (s *ChangeRequestService) Review(ctx context.Context, actorID, requestID uint, approved bool, remarks string) (*models.ChangeRequest, error) {
	var reviewed *models.ChangeRequest
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		cr, err := tx.ChangeRequests().GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("load change request: %w", err)
		}

		actor, member, err := authorizeOnMember(ctx, tx, actorID, cr.MemberID, domain.CanEditUsers)
		if err != nil {
			return err
		}
		if !cr.IsPending() {
			return ErrRequestNotPending
		}

		now := time.Now()
		cr.ReviewedAt = &now
		cr.ReviewedBy = uintPtr(actorID)
		cr.AdminRemarks = strings.TrimSpace(remarks)

		title := "Profile change rejected"
		if approved {
			// moving a member requires scope over the destination too
			if cr.FieldName == "mandalam" && !domain.CanAccessMandalam(actor, cr.NewValue) {
				return domain.ErrOutOfScope
			}
			cr.Status = string(domain.ChangeApproved)
			member.SetProfileField(cr.FieldName, cr.NewValue)
			if err := tx.Members().Update(ctx, member); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrPhoneTaken
				}
				return fmt.Errorf("apply change: %w", err)
			}
			title = "Profile change approved"
		} else {
			cr.Status = string(domain.ChangeRejected)
		}

		if err := tx.ChangeRequests().Update(ctx, cr); err != nil {
			return fmt.Errorf("update change request: %w", err)
		}

		body := fmt.Sprintf("Your request to change %s was %s.", cr.FieldName, cr.Status)
		if cr.AdminRemarks != "" {
			body += " Remarks: " + cr.AdminRemarks
		}
		if err := notify(ctx, tx, cr.MemberID, uintPtr(actorID), domain.NotifyChangeRequest, title, body); err != nil {
			return fmt.Errorf("notify member: %w", err)
		}
		reviewed = cr
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"actor_id":   actorID,
		"approved":   approved,
	}).Info("change request reviewed")
	return reviewed, nil
}

// ListMine lists the member's own change requests, newest first
func (s *ChangeRequestService) ListMine(ctx context.Context, memberID uint) ([]*models.ChangeRequest, error) {
	list, err := s.store.ChangeRequests().ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return list, nil
}

// ListPending lists pending requests of members inside the actor's scope
func (s *ChangeRequestService) ListPending(ctx context.Context, actorID uint, offset, limit int) ([]*models.ChangeRequest, int64, error) {
	actor, err := requireCapability(ctx, s.store, actorID, domain.CanEditUsers)
	if err != nil {
		return nil, 0, err
	}
	scope := domain.ScopeFor(actor)
	if scope.Empty() {
		return []*models.ChangeRequest{}, 0, nil
	}

	list, total, err := s.store.ChangeRequests().ListPending(ctx, scope, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending change requests: %w", err)
	}
	return list, total, nil
}
