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

// Payment errors
var (
	ErrRemarksRequired         = errors.New("payment remarks are required")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrMemberNotApproved       = errors.New("membership must be approved before paying")
	ErrPaymentAlreadySubmitted = errors.New("payment already submitted for this year")
	ErrNoPendingPayment        = errors.New("no pending payment to review")
	ErrRecipientNotFound       = errors.New("payment recipient not found")
)

// PaymentService handles fee submission by members and review by admins
type PaymentService struct {
	store repositories.Store
}

// NewPaymentService creates a new payment service
func NewPaymentService(store repositories.Store) *PaymentService {
	return &PaymentService{store: store}
}

// FeeQuote is the fee a member owes for the active year
type FeeQuote struct {
	Amount    int  `json:"amount"`
	Year      int  `json:"year"`
	IsRenewal bool `json:"is_renewal"`
	Paid      bool `json:"paid"`
}

// SubmitPaymentInput represents a member's payment submission
type SubmitPaymentInput struct {
	Amount      float64 `json:"amount"`
	Remarks     string  `json:"remarks"`
	RecipientID *uint   `json:"recipient_id"`
}

// ResolvePaymentInput represents an admin's payment decision
type ResolvePaymentInput struct {
	Approved     bool   `json:"approved"`
	AdminRemarks string `json:"admin_remarks"`
}

// FeeFor returns the fee owed by the member for the active year
func (s *PaymentService) FeeFor(ctx context.Context, memberID uint) (*FeeQuote, error) {
	member, err := loadMember(ctx, s.store, memberID)
	if err != nil {
		return nil, err
	}
	year, err := activeYear(ctx, s.store)
	if err != nil {
		return nil, err
	}

	renewal := member.IsReregistration || member.IsImported
	return &FeeQuote{
		Amount:    domain.RegistrationFee(member.IsReregistration, member.IsImported),
		Year:      year.Year,
		IsRenewal: renewal,
		Paid:      member.PaymentStatus,
	}, nil
}

// SubmitPayment records a member's payment for the active year and queues it
// for review
func (s *PaymentService) SubmitPayment(ctx context.Context, memberID uint, amount float64, remarks string, recipientID *uint) (*models.MemberResponse, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return nil, ErrRemarksRequired
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	member, err := loadMember(ctx, s.store, memberID)
	if err != nil {
		return nil, err
	}
	switch domain.MemberStatus(member.Status) {
	case domain.StatusApproved, domain.StatusRenewalPending:
	default:
		return nil, ErrMemberNotApproved
	}

	year, err := activeYear(ctx, s.store)
	if err != nil {
		return nil, err
	}

	if member.PaymentYear == year.Year {
		switch domain.PaymentApproval(member.PaymentApprovalStatus) {
		case domain.PaymentPending, domain.PaymentApproved:
			return nil, ErrPaymentAlreadySubmitted
		}
	}

	if recipientID != nil {
		if _, err := s.store.Recipients().GetByID(ctx, *recipientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRecipientNotFound
			}
			return nil, fmt.Errorf("load recipient: %w", err)
		}
	}

	now := time.Now()
	member.PaymentSubmitted = true
	member.PaymentApprovalStatus = string(domain.PaymentPending)
	member.PaymentSubmittedAmount = amount
	member.PaymentUserRemarks = remarks
	member.PaymentAdminRemarks = ""
	member.PaymentSubmittedAt = &now
	member.PaymentYear = year.Year
	member.PaymentRecipientID = recipientID

	if err := s.store.Members().Update(ctx, member); err != nil {
		return nil, fmt.Errorf("save payment submission: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"member_id": memberID,
		"year":      year.Year,
		"amount":    amount,
	}).Info("payment submitted")
	return member.ToResponse(), nil
}

// ResolvePayment approves or declines a pending submission. Approval marks the
// member paid and completes a pending renewal.
func (s *PaymentService) ResolvePayment(ctx context.Context, actorID, memberID uint, approved bool, adminRemarks string) (*models.MemberResponse, error) {
	var updated *models.Member
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		_, member, err := authorizeOnMember(ctx, tx, actorID, memberID, domain.CanManagePayments)
		if err != nil {
			return err
		}
		if !member.PaymentSubmitted || member.PaymentApprovalStatus != string(domain.PaymentPending) {
			return ErrNoPendingPayment
		}

		member.PaymentAdminRemarks = strings.TrimSpace(adminRemarks)
		title, body := "Payment declined", "Your membership payment was declined."
		if approved {
			member.PaymentApprovalStatus = string(domain.PaymentApproved)
			member.PaymentStatus = true
			member.PaymentAmount = member.PaymentSubmittedAmount
			if member.Status == string(domain.StatusRenewalPending) {
				member.Status = string(domain.StatusApproved)
				member.RegistrationYear = member.PaymentYear
			}
			title, body = "Payment approved", fmt.Sprintf("Your membership payment for %d has been approved.", member.PaymentYear)
		} else {
			member.PaymentApprovalStatus = string(domain.PaymentDeclined)
			member.PaymentStatus = false
		}
		if member.PaymentAdminRemarks != "" {
			body += " Remarks: " + member.PaymentAdminRemarks
		}

		if err := tx.Members().Update(ctx, member); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		if err := notify(ctx, tx, member.ID, uintPtr(actorID), domain.NotifyPayment, title, body); err != nil {
			return fmt.Errorf("notify member: %w", err)
		}
		updated = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"member_id": memberID,
		"actor_id":  actorID,
		"approved":  approved,
	}).Info("payment resolved")
	return updated.ToResponse(), nil
}

// ListPending lists members with a pending payment inside the actor's scope
func (s *PaymentService) ListPending(ctx context.Context, actorID uint, mandalam string, offset, limit int) ([]*models.MemberResponse, int64, error) {
	actor, err := requireCapability(ctx, s.store, actorID, domain.CanManagePayments)
	if err != nil {
		return nil, 0, err
	}
	scope := domain.ScopeFor(actor).Narrow(mandalam)
	if scope.Empty() {
		return []*models.MemberResponse{}, 0, nil
	}

	members, total, err := s.store.Members().List(ctx, repositories.MemberFilter{
		Scope:           scope,
		PaymentApproval: string(domain.PaymentPending),
		Offset:          offset,
		Limit:           limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list pending payments: %w", err)
	}

	out := make([]*models.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, m.ToResponse())
	}
	return out, total, nil
}
