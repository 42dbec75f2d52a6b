package config

import (
	"context"
	"errors"
	"fmt"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"
	"membership-portal/internal/pkg/password"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Seeder handles first-start data: the master admin, the first active year
// and the default settings rows
type Seeder struct {
	store repositories.Store
	cfg   *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(store repositories.Store, cfg *Config) *Seeder {
	return &Seeder{store: store, cfg: cfg}
}

// Run executes all seeders. Each step is idempotent.
func (s *Seeder) Run(ctx context.Context) error {
	logrus.Info("running database seeders")

	if err := s.seedInitialYear(ctx); err != nil {
		return fmt.Errorf("seed year: %w", err)
	}
	if err := s.seedMasterAdmin(ctx); err != nil {
		return fmt.Errorf("seed master admin: %w", err)
	}
	if err := SeedDefaultSettings(ctx, s.store); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	logrus.Info("database seeding completed")
	return nil
}

// seedInitialYear activates INITIAL_YEAR when no year is active yet
func (s *Seeder) seedInitialYear(ctx context.Context) error {
	if _, err := s.store.Years().GetActive(ctx); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	fee := float64(domain.RegistrationFee(false, false))
	renewal := float64(domain.RegistrationFee(true, false))
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		year, err := tx.Years().GetByYear(ctx, s.cfg.InitialYear)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			year = &models.YearConfig{
				Year:            s.cfg.InitialYear,
				RegistrationFee: fee,
				RenewalFee:      renewal,
			}
			if err := tx.Years().Create(ctx, year); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		if err := tx.Years().Activate(ctx, year.Year); err != nil {
			return err
		}
		logrus.WithField("year", year.Year).Info("initial year activated")
		return nil
	})
}

// seedMasterAdmin creates the configured master admin account. Without
// MASTER_ADMIN_EMAIL and MASTER_ADMIN_PASSWORD nothing is seeded and the
// first master admin has to be promoted by hand.
func (s *Seeder) seedMasterAdmin(ctx context.Context) error {
	ma := s.cfg.MasterAdmin
	if ma.Email == "" || ma.Password == "" {
		logrus.Warn("master admin seed skipped: MASTER_ADMIN_EMAIL or MASTER_ADMIN_PASSWORD not set")
		return nil
	}

	if _, err := s.store.Members().GetByLogin(ctx, ma.Email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if !password.ValidatePassword(ma.Password) {
		return fmt.Errorf("MASTER_ADMIN_PASSWORD must be at least %d characters", password.MinLength)
	}
	hashed, err := password.Hash(ma.Password)
	if err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		admin := &models.Member{
			Name:             ma.Name,
			Email:            ma.Email,
			Phone:            ma.Phone,
			EmiratesID:       "000000000000000",
			Password:         hashed,
			Status:           string(domain.StatusApproved),
			RegistrationYear: s.cfg.InitialYear,
		}
		if err := tx.Members().Create(ctx, admin); err != nil {
			return err
		}
		admin.RegNo = domain.RegistrationNumber(admin.RegistrationYear, admin.ID)
		if err := tx.Members().Update(ctx, admin); err != nil {
			return err
		}
		if err := tx.Roles().Save(ctx, &models.UserRole{
			MemberID: admin.ID,
			Role:     string(domain.RoleMasterAdmin),
		}); err != nil {
			return err
		}
		logrus.WithField("email", admin.Email).Info("master admin created")
		return nil
	})
}
