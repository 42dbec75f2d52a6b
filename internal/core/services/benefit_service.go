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

// Benefit errors
var (
	ErrBenefitNotFound    = errors.New("benefit record not found")
	ErrInvalidBenefitType = errors.New("invalid benefit type")
)

// BenefitService maintains the benefit usage ledger of members
type BenefitService struct {
	store repositories.Store
}

// NewBenefitService creates a new benefit service
func NewBenefitService(store repositories.Store) *BenefitService {
	return &BenefitService{store: store}
}

// BenefitInput represents one benefit claim
type BenefitInput struct {
	Type       domain.BenefitType `json:"type"`
	AmountPaid float64            `json:"amount_paid"`
	Remarks    string             `json:"remarks"`
	Date       time.Time          `json:"date"`
}

// BenefitSummary totals a member's claims per type
type BenefitSummary struct {
	Totals map[domain.BenefitType]float64 `json:"totals"`
	Count  map[domain.BenefitType]int     `json:"count"`
	Total  float64                        `json:"total"`
}

func (in *BenefitInput) check() error {
	if !in.Type.Valid() {
		return ErrInvalidBenefitType
	}
	if in.AmountPaid <= 0 {
		return ErrInvalidAmount
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	return nil
}

// Add records a benefit claim for an approved member
func (s *BenefitService) Add(ctx context.Context, actorID, memberID uint, in BenefitInput) (*models.BenefitUsage, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	_, member, err := authorizeOnMember(ctx, s.store, actorID, memberID, domain.CanManageBenefits)
	if err != nil {
		return nil, err
	}
	if member.Status != string(domain.StatusApproved) {
		return nil, ErrMemberNotApproved
	}

	b := &models.BenefitUsage{
		MemberID:   memberID,
		Type:       string(in.Type),
		Remarks:    strings.TrimSpace(in.Remarks),
		AmountPaid: in.AmountPaid,
		Date:       in.Date,
		CreatedBy:  actorID,
	}
	if err := s.store.Benefits().Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create benefit: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"member_id": memberID,
		"actor_id":  actorID,
		"type":      in.Type,
		"amount":    in.AmountPaid,
	}).Info("benefit recorded")
	return b, nil
}

// loadBenefit loads a claim of memberID and authorizes the actor over that member.
// A claim owned by another member is reported as not found.
func (s *BenefitService) loadBenefit(ctx context.Context, actorID, memberID, benefitID uint) (*models.BenefitUsage, error) {
	b, err := s.store.Benefits().GetByID(ctx, benefitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBenefitNotFound
		}
		return nil, fmt.Errorf("load benefit: %w", err)
	}
	if b.MemberID != memberID {
		return nil, ErrBenefitNotFound
	}
	if _, _, err := authorizeOnMember(ctx, s.store, actorID, b.MemberID, domain.CanManageBenefits); err != nil {
		return nil, err
	}
	return b, nil
}

// Update corrects a benefit claim
func (s *BenefitService) Update(ctx context.Context, actorID, memberID, benefitID uint, in BenefitInput) (*models.BenefitUsage, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	b, err := s.loadBenefit(ctx, actorID, memberID, benefitID)
	if err != nil {
		return nil, err
	}

	b.Type = string(in.Type)
	b.AmountPaid = in.AmountPaid
	b.Remarks = strings.TrimSpace(in.Remarks)
	b.Date = in.Date
	if err := s.store.Benefits().Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update benefit: %w", err)
	}
	return b, nil
}

// Delete removes a benefit claim
func (s *BenefitService) Delete(ctx context.Context, actorID, memberID, benefitID uint) error {
	b, err := s.loadBenefit(ctx, actorID, memberID, benefitID)
	if err != nil {
		return err
	}
	if err := s.store.Benefits().Delete(ctx, b.ID); err != nil {
		return fmt.Errorf("delete benefit: %w", err)
	}
	logrus.WithFields(logrus.Fields{"benefit_id": benefitID, "actor_id": actorID}).Info("benefit deleted")
	return nil
}

// ListForMember lists a member's claims. Members may read their own ledger.
func (s *BenefitService) ListForMember(ctx context.Context, actorID, memberID uint) ([]*models.BenefitUsage, error) {
	if actorID != memberID {
		if _, _, err := authorizeOnMember(ctx, s.store, actorID, memberID, domain.CanViewUsers); err != nil {
			return nil, err
		}
	}
	list, err := s.store.Benefits().ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list benefits: %w", err)
	}
	return list, nil
}

// Summary totals a member's claims per benefit type
func (s *BenefitService) Summary(ctx context.Context, actorID, memberID uint) (*BenefitSummary, error) {
	list, err := s.ListForMember(ctx, actorID, memberID)
	if err != nil {
		return nil, err
	}

	sum := &BenefitSummary{
		Totals: make(map[domain.BenefitType]float64, len(domain.BenefitTypes)),
		Count:  make(map[domain.BenefitType]int, len(domain.BenefitTypes)),
	}
	for _, t := range domain.BenefitTypes {
		sum.Totals[t] = 0
		sum.Count[t] = 0
	}
	for _, b := range list {
		t := domain.BenefitType(b.Type)
		sum.Totals[t] += b.AmountPaid
		sum.Count[t]++
		sum.Total += b.AmountPaid
	}
	return sum, nil
}
