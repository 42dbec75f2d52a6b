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

// Member service errors
var (
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
	ErrInvalidStatus       = errors.New("invalid member status")
	ErrRenewalInProgress   = errors.New("member is awaiting a renewal payment")
	ErrPhoneTaken          = errors.New("phone number is already in use")
	ErrUnknownField        = errors.New("field cannot be edited")
)

// MemberService handles member administration: listing, approval and roles
type MemberService struct {
	store repositories.Store
}

// NewMemberService creates a new member service
func NewMemberService(store repositories.Store) *MemberService {
	return &MemberService{store: store}
}

// MemberQuery filters the admin member list
type MemberQuery struct {
	Search   string
	Status   string
	Mandalam string
	Paid     *bool
	Offset   int
	Limit    int
}

// RoleAssignment is the role a master admin gives to a member
type RoleAssignment struct {
	Role              domain.Role               `json:"role" validate:"required"`
	MandalamAccess    string                    `json:"mandalam_access"`
	CustomPermissions *domain.CustomPermissions `json:"custom_permissions"`
}

// AdminUpdateInput edits profile fields of a member on their behalf. The fee
// flags are only set here; registrants cannot claim them.
type AdminUpdateInput struct {
	Fields           map[string]string `json:"fields"`
	IsImported       *bool             `json:"is_imported"`
	IsReregistration *bool             `json:"is_reregistration"`
}

// AdminView pairs an admin member with their role row
type AdminView struct {
	Member *models.MemberResponse `json:"member"`
	Role   *models.UserRole       `json:"role"`
}

// Get returns one member. Members may read themselves; anyone else needs
// CanViewUsers over the member's mandalam.
func (s *MemberService) Get(ctx context.Context, actorID, memberID uint) (*models.MemberResponse, error) {
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

	resp := member.ToResponse()
	actor, err := loadActor(ctx, s.store, memberID)
	if err != nil {
		return nil, err
	}
	resp.Role = string(actor.Role())
	return resp, nil
}

// List returns members inside the actor's region scope. A mandalam filter
// narrows the scope and never widens it.
func (s *MemberService) List(ctx context.Context, actorID uint, q MemberQuery) ([]*models.MemberResponse, int64, error) {
	actor, err := requireCapability(ctx, s.store, actorID, domain.CanViewUsers)
	if err != nil {
		return nil, 0, err
	}

	scope := domain.ScopeFor(actor).Narrow(q.Mandalam)
	if scope.Empty() {
		return []*models.MemberResponse{}, 0, nil
	}
	if q.Status != "" && !domain.MemberStatus(q.Status).Valid() {
		return nil, 0, ErrInvalidStatus
	}

	members, total, err := s.store.Members().List(ctx, repositories.MemberFilter{
		Scope:  scope,
		Search: strings.TrimSpace(q.Search),
		Status: q.Status,
		Paid:   q.Paid,
		Offset: q.Offset,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}

	out := make([]*models.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, m.ToResponse())
	}
	return out, total, nil
}

// SetApprovalStatus approves or rejects a member's registration. A member in
// renewal_pending returns to approved only through an approved renewal payment.
func (s *MemberService) SetApprovalStatus(ctx context.Context, actorID, memberID uint, approved bool) (*models.MemberResponse, error) {
	status := domain.StatusRejected
	if approved {
		status = domain.StatusApproved
	}
	return s.setStatus(ctx, actorID, memberID, status, domain.CanApproveUsers)
}

// SetStatus sets any member status. Moving a member back to pending or into
// renewal also needs CanEditUsers.
func (s *MemberService) SetStatus(ctx context.Context, actorID, memberID uint, status domain.MemberStatus) (*models.MemberResponse, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if status == domain.StatusApproved || status == domain.StatusRejected {
		return s.setStatus(ctx, actorID, memberID, status, domain.CanApproveUsers)
	}

	actor, err := loadActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	if !domain.HasPermission(actor, domain.CanEditUsers) {
		return nil, domain.ErrForbidden
	}
	return s.setStatus(ctx, actorID, memberID, status, domain.CanApproveUsers)
}

func (s *MemberService) setStatus(ctx context.Context, actorID, memberID uint, status domain.MemberStatus, c domain.Capability) (*models.MemberResponse, error) {
	var updated *models.Member
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		_, member, err := authorizeOnMember(ctx, tx, actorID, memberID, c)
		if err != nil {
			return err
		}
		decision := status == domain.StatusApproved || status == domain.StatusRejected
		if decision && member.Status == string(domain.StatusRenewalPending) {
			return ErrRenewalInProgress
		}

		member.Status = string(status)
		if err := tx.Members().Update(ctx, member); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		title, body := statusNotice(status)
		if title != "" {
			if err := notify(ctx, tx, member.ID, uintPtr(actorID), domain.NotifyApproval, title, body); err != nil {
				return fmt.Errorf("notify member: %w", err)
			}
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
		"status":    status,
	}).Info("member status changed")
	return updated.ToResponse(), nil
}

func statusNotice(status domain.MemberStatus) (string, string) {
	switch status {
	case domain.StatusApproved:
		return "Registration approved", "Your membership registration has been approved. You can now submit your membership fee."
	case domain.StatusRejected:
		return "Registration rejected", "Your membership registration was not approved. Please contact your mandalam committee."
	}
	return "", ""
}

// AssignRole sets the role of a member. Only holders of CanAssignRoles may do
// this and nobody may change their own role.
func (s *MemberService) AssignRole(ctx context.Context, actorID, memberID uint, in RoleAssignment) error {
	if actorID == memberID {
		return ErrCannotChangeOwnRole
	}
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanAssignRoles); err != nil {
		return err
	}

	mandalam := strings.TrimSpace(in.MandalamAccess)
	if err := domain.ValidateRoleAssignment(in.Role, mandalam, in.CustomPermissions); err != nil {
		return err
	}
	if _, err := loadMember(ctx, s.store, memberID); err != nil {
		return err
	}

	role, err := s.store.Roles().GetByMemberID(ctx, memberID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load role: %w", err)
		}
		role = &models.UserRole{MemberID: memberID}
	}

	role.Role = string(in.Role)
	role.MandalamAccess = mandalam
	if err := role.SetPermissions(in.CustomPermissions); err != nil {
		return err
	}
	if err := s.store.Roles().Save(ctx, role); err != nil {
		return fmt.Errorf("save role: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"member_id": memberID,
		"actor_id":  actorID,
		"role":      in.Role,
	}).Info("role assigned")
	return nil
}

// ListAdmins lists every member holding an admin role
func (s *MemberService) ListAdmins(ctx context.Context, actorID uint) ([]*AdminView, error) {
	if _, err := requireCapability(ctx, s.store, actorID, domain.CanAssignRoles); err != nil {
		return nil, err
	}

	roles, err := s.store.Roles().ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}

	out := make([]*AdminView, 0, len(roles))
	for _, r := range roles {
		m, err := loadMember(ctx, s.store, r.MemberID)
		if err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				continue
			}
			return nil, err
		}
		resp := m.ToResponse()
		resp.Role = r.Role
		out = append(out, &AdminView{Member: resp, Role: r})
	}
	return out, nil
}

// AdminUpdate edits profile fields directly, bypassing change requests.
// Moving a member to another mandalam requires scope over both.
func (s *MemberService) AdminUpdate(ctx context.Context, actorID, memberID uint, in AdminUpdateInput) (*models.MemberResponse, error) {
	actor, member, err := authorizeOnMember(ctx, s.store, actorID, memberID, domain.CanEditUsers)
	if err != nil {
		return nil, err
	}

	keys, err := questionKeys(ctx, s.store)
	if err != nil {
		return nil, err
	}

	for field, value := range in.Fields {
		if !domain.IsEditableProfileField(field) && !keys[field] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		value = strings.TrimSpace(value)
		switch field {
		case "mandalam":
			if !domain.CanAccessMandalam(actor, value) {
				return nil, domain.ErrOutOfScope
			}
		case "phone":
			taken, err := s.store.Members().ExistsByPhone(ctx, value, member.ID)
			if err != nil {
				return nil, fmt.Errorf("check phone: %w", err)
			}
			if taken {
				return nil, ErrPhoneTaken
			}
		}
		member.SetProfileField(field, value)
	}
	if in.IsImported != nil {
		member.IsImported = *in.IsImported
	}
	if in.IsReregistration != nil {
		member.IsReregistration = *in.IsReregistration
	}

	if err := s.store.Members().Update(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("update member: %w", err)
	}

	logrus.WithFields(logrus.Fields{"member_id": memberID, "actor_id": actorID}).Info("member updated by admin")
	return member.ToResponse(), nil
}

// questionKeys returns the keys of active registration questions
func questionKeys(ctx context.Context, store repositories.Store) (map[string]bool, error) {
	questions, err := store.Questions().List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	keys := make(map[string]bool, len(questions))
	for _, q := range questions {
		keys[q.Key] = true
	}
	return keys, nil
}
