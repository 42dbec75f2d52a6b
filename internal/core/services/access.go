package services

import (
	"context"
	"errors"
	"fmt"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"gorm.io/gorm"
)

// Shared lookup errors
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrNoActiveYear   = errors.New("no active year configured")
)

// loadActor resolves the role row of memberID into a domain actor.
// A member without a role row is a plain user.
func loadActor(ctx context.Context, store repositories.Store, memberID uint) (domain.Actor, error) {
	role, err := store.Roles().GetByMemberID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserActor{ID: memberID}, nil
		}
		return nil, fmt.Errorf("load role: %w", err)
	}
	return role.Actor()
}

func loadMember(ctx context.Context, store repositories.Store, memberID uint) (*models.Member, error) {
	member, err := store.Members().GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("load member: %w", err)
	}
	return member, nil
}

// authorizeOnMember loads actor and target and checks capability c against the
// target's mandalam
func authorizeOnMember(ctx context.Context, store repositories.Store, actorID, memberID uint, c domain.Capability) (domain.Actor, *models.Member, error) {
	actor, err := loadActor(ctx, store, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !domain.HasPermission(actor, c) {
		return nil, nil, domain.ErrForbidden
	}
	member, err := loadMember(ctx, store, memberID)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.Authorize(actor, c, member.Mandalam); err != nil {
		return nil, nil, err
	}
	return actor, member, nil
}

// requireCapability loads the actor and checks a region-free capability
func requireCapability(ctx context.Context, store repositories.Store, actorID uint, c domain.Capability) (domain.Actor, error) {
	actor, err := loadActor(ctx, store, actorID)
	if err != nil {
		return nil, err
	}
	if !domain.HasPermission(actor, c) {
		return nil, domain.ErrForbidden
	}
	return actor, nil
}

func activeYear(ctx context.Context, store repositories.Store) (*models.YearConfig, error) {
	y, err := store.Years().GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveYear
		}
		return nil, fmt.Errorf("load active year: %w", err)
	}
	return y, nil
}

func notify(ctx context.Context, store repositories.Store, memberID uint, sentBy *uint, typ domain.NotificationType, title, message string) error {
	return store.Notifications().Create(ctx, &models.Notification{
		MemberID: memberID,
		Title:    title,
		Message:  message,
		Type:     string(typ),
		SentBy:   sentBy,
	})
}

func uintPtr(v uint) *uint { return &v }
