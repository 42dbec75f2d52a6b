package services

import (
	"context"
	"errors"
	"fmt"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Year errors
var (
	ErrYearExists   = errors.New("year already exists")
	ErrYearNotFound = errors.New("year not found")
	ErrInvalidYear  = errors.New("year or fees are out of range")
)

// YearService manages membership years and the yearly rollover
type YearService struct {
	store repositories.Store
}

// NewYearService creates a new year service
func NewYearService(store repositories.Store) *YearService {
	return &YearService{store: store}
}

// CreateYearInput represents a new membership year
type CreateYearInput struct {
	Year            int     `json:"year"`
	RegistrationFee float64 `json:"registration_fee"`
	RenewalFee      float64 `json:"renewal_fee"`
}

// RolloverResult summarizes a year rollover
type RolloverResult struct {
	Year           *models.YearConfig `json:"year"`
	Notified       int                `json:"notified"`
	MovedToRenewal int64              `json:"moved_to_renewal"`
}

// CreateNewYear opens a new membership year. In one transaction every other
// year is deactivated, approved members move to renewal with their payment
// state cleared and each member receives one renewal notification. Any failure
// rolls the whole rollover back.
func (s *YearService) CreateNewYear(ctx context.Context, actorID uint, year int, registrationFee, renewalFee float64) (*RolloverResult, error) {
	if year < 2000 || year > 2999 || registrationFee < 0 || renewalFee < 0 {
		return nil, ErrInvalidYear
	}
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageYears); err != nil {
		return nil, err
	}

	result := &RolloverResult{}
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Years().GetByYear(ctx, year); err == nil {
			return ErrYearExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check year: %w", err)
		}

		if err := tx.Years().DeactivateAll(ctx); err != nil {
			return fmt.Errorf("deactivate years: %w", err)
		}

		cfg := &models.YearConfig{
			Year:            year,
			IsActive:        true,
			RegistrationFee: registrationFee,
			RenewalFee:      renewalFee,
			CreatedBy:       uintPtr(actorID),
		}
		if err := tx.Years().Create(ctx, cfg); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrYearExists
			}
			return fmt.Errorf("create year: %w", err)
		}

		moved, err := tx.Members().MarkRenewalPending(ctx)
		if err != nil {
			return fmt.Errorf("mark renewals: %w", err)
		}

		ids, err := tx.Members().ListIDs(ctx)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}

		title := fmt.Sprintf("Membership renewal for %d", year)
		body := fmt.Sprintf("The %d membership year has started. Please renew your membership by submitting the renewal fee.", year)
		batch := make([]*models.Notification, 0, len(ids))
		for _, id := range ids {
			batch = append(batch, &models.Notification{
				MemberID: id,
				Title:    title,
				Message:  body,
				Type:     string(domain.NotifyRenewal),
				SentBy:   uintPtr(actorID),
			})
		}
		if err := tx.Notifications().CreateBatch(ctx, batch); err != nil {
			return fmt.Errorf("notify members: %w", err)
		}

		result.Year = cfg
		result.Notified = len(batch)
		result.MovedToRenewal = moved
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"year":     year,
		"actor_id": actorID,
		"notified": result.Notified,
		"renewals": result.MovedToRenewal,
	}).Info("membership year created")
	return result, nil
}

// ListYears lists every configured year, latest first
func (s *YearService) ListYears(ctx context.Context) ([]*models.YearConfig, error) {
	years, err := s.store.Years().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return years, nil
}

// ActiveYear returns the active year
func (s *YearService) ActiveYear(ctx context.Context) (*models.YearConfig, error) {
	return activeYear(ctx, s.store)
}

// ActivateYear switches the active year without touching members
func (s *YearService) ActivateYear(ctx context.Context, actorID uint, year int) error {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanManageYears); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Years().GetByYear(ctx, year); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrYearNotFound
			}
			return fmt.Errorf("load year: %w", err)
		}
		if err := tx.Years().DeactivateAll(ctx); err != nil {
			return fmt.Errorf("deactivate years: %w", err)
		}
		return tx.Years().Activate(ctx, year)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"year": year, "actor_id": actorID}).Info("active year switched")
	return nil
}
