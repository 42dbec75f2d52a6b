package domain

import "strings"

// Role represents a member's role in the system
type Role string

const (
	RoleUser          Role = "user"
	RoleAdmin         Role = "admin"
	RoleMasterAdmin   Role = "master_admin"
	RoleMandalamAdmin Role = "mandalam_admin"
	RoleCustomAdmin   Role = "custom_admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleMasterAdmin, RoleMandalamAdmin, RoleCustomAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r carries any admin capability
func (r Role) IsAdmin() bool {
	return r.Valid() && r != RoleUser
}

// Capability names a single admin permission
type Capability string

const (
	CanViewUsers         Capability = "canViewUsers"
	CanEditUsers         Capability = "canEditUsers"
	CanApproveUsers      Capability = "canApproveUsers"
	CanManagePayments    Capability = "canManagePayments"
	CanManageBenefits    Capability = "canManageBenefits"
	CanSendNotifications Capability = "canSendNotifications"

	// Not grantable to custom admins.
	CanManageSettings Capability = "canManageSettings"
	CanAssignRoles    Capability = "canAssignRoles"
	CanManageYears    Capability = "canManageYears"
)

// CustomPermissions is the explicit capability set of a custom admin
type CustomPermissions struct {
	CanViewUsers         bool     `json:"canViewUsers"`
	CanEditUsers         bool     `json:"canEditUsers"`
	CanApproveUsers      bool     `json:"canApproveUsers"`
	CanManagePayments    bool     `json:"canManagePayments"`
	CanManageBenefits    bool     `json:"canManageBenefits"`
	CanSendNotifications bool     `json:"canSendNotifications"`
	MandalamAccess       []string `json:"mandalamAccess,omitempty"`
}

// Has reports whether the named capability flag is set
func (p CustomPermissions) Has(c Capability) bool {
	switch c {
	case CanViewUsers:
		return p.CanViewUsers
	case CanEditUsers:
		return p.CanEditUsers
	case CanApproveUsers:
		return p.CanApproveUsers
	case CanManagePayments:
		return p.CanManagePayments
	case CanManageBenefits:
		return p.CanManageBenefits
	case CanSendNotifications:
		return p.CanSendNotifications
	}
	return false
}

// Actor is the caller of a service operation. The set of variants is closed:
// UserActor, AdminActor, MasterAdminActor, MandalamAdminActor, CustomAdminActor.
type Actor interface {
	MemberID() uint
	Role() Role
	isActor()
}

// UserActor is a regular member without admin capabilities
type UserActor struct{ ID uint }

// AdminActor has every member capability in every mandalam
type AdminActor struct{ ID uint }

// MasterAdminActor is an AdminActor that can also assign roles and roll the year over
type MasterAdminActor struct{ ID uint }

// MandalamAdminActor can view and approve members of a single mandalam
type MandalamAdminActor struct {
	ID       uint
	Mandalam string
}

// CustomAdminActor holds an explicit capability set, optionally limited to some mandalams
type CustomAdminActor struct {
	ID          uint
	Permissions CustomPermissions
}

func (a UserActor) MemberID() uint          { return a.ID }
func (a AdminActor) MemberID() uint         { return a.ID }
func (a MasterAdminActor) MemberID() uint   { return a.ID }
func (a MandalamAdminActor) MemberID() uint { return a.ID }
func (a CustomAdminActor) MemberID() uint   { return a.ID }

func (UserActor) Role() Role          { return RoleUser }
func (AdminActor) Role() Role         { return RoleAdmin }
func (MasterAdminActor) Role() Role   { return RoleMasterAdmin }
func (MandalamAdminActor) Role() Role { return RoleMandalamAdmin }
func (CustomAdminActor) Role() Role   { return RoleCustomAdmin }

func (UserActor) isActor()          {}
func (AdminActor) isActor()         {}
func (MasterAdminActor) isActor()   {}
func (MandalamAdminActor) isActor() {}
func (CustomAdminActor) isActor()   {}

// NewActor builds the actor variant for a stored role row
func NewActor(id uint, role Role, mandalamAccess string, perms *CustomPermissions) (Actor, error) {
	if err := checkRoleShape(role, mandalamAccess, perms); err != nil {
		return nil, err
	}
	switch role {
	case RoleUser:
		return UserActor{ID: id}, nil
	case RoleAdmin:
		return AdminActor{ID: id}, nil
	case RoleMasterAdmin:
		return MasterAdminActor{ID: id}, nil
	case RoleMandalamAdmin:
		return MandalamAdminActor{ID: id, Mandalam: mandalamAccess}, nil
	case RoleCustomAdmin:
		return CustomAdminActor{ID: id, Permissions: *perms}, nil
	}
	return nil, ErrInvalidRole
}

// ValidateRoleAssignment checks that only mandalam_admin carries mandalamAccess,
// only custom_admin carries customPermissions, and a custom_admin names at
// least one mandalam.
func ValidateRoleAssignment(role Role, mandalamAccess string, perms *CustomPermissions) error {
	if err := checkRoleShape(role, mandalamAccess, perms); err != nil {
		return err
	}
	if role == RoleCustomAdmin && !perms.hasMandalam() {
		return ErrMandalamAccessMissing
	}
	return nil
}

func (p *CustomPermissions) hasMandalam() bool {
	for _, m := range p.MandalamAccess {
		if strings.TrimSpace(m) != "" {
			return true
		}
	}
	return false
}

// checkRoleShape is the structural part of ValidateRoleAssignment. Stored rows
// are loaded with it so a custom_admin saved without regions still resolves,
// to an actor with an empty scope.
func checkRoleShape(role Role, mandalamAccess string, perms *CustomPermissions) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	mandalamAccess = strings.TrimSpace(mandalamAccess)

	switch role {
	case RoleMandalamAdmin:
		if mandalamAccess == "" {
			return ErrMandalamAccessMissing
		}
		if perms != nil {
			return ErrRoleScopeMismatch
		}
	case RoleCustomAdmin:
		if perms == nil || mandalamAccess != "" {
			return ErrRoleScopeMismatch
		}
	default:
		if mandalamAccess != "" || perms != nil {
			return ErrRoleScopeMismatch
		}
	}
	return nil
}

// HasPermission reports whether the actor holds capability c, ignoring region scope
func HasPermission(a Actor, c Capability) bool {
	switch v := a.(type) {
	case MasterAdminActor:
		return true
	case AdminActor:
		return c != CanAssignRoles && c != CanManageYears
	case MandalamAdminActor:
		return c == CanViewUsers || c == CanApproveUsers
	case CustomAdminActor:
		return v.Permissions.Has(c)
	case UserActor:
		return false
	}
	return false
}

// CanAccessMandalam reports whether the actor's region scope includes mandalam
func CanAccessMandalam(a Actor, mandalam string) bool {
	return ScopeFor(a).Allows(mandalam)
}

// Authorize checks the capability and then the region scope for a target member
func Authorize(a Actor, c Capability, mandalam string) error {
	if a == nil || !HasPermission(a, c) {
		return ErrForbidden
	}
	if !CanAccessMandalam(a, mandalam) {
		return ErrOutOfScope
	}
	return nil
}

// Scope is the set of mandalams an actor may see. All overrides Mandalams.
type Scope struct {
	All       bool
	Mandalams []string
}

// ScopeFor returns the region scope of an actor. Users get an empty scope.
func ScopeFor(a Actor) Scope {
	switch v := a.(type) {
	case MasterAdminActor, AdminActor:
		return Scope{All: true}
	case MandalamAdminActor:
		return Scope{Mandalams: []string{v.Mandalam}}
	case CustomAdminActor:
		return Scope{Mandalams: append([]string(nil), v.Permissions.MandalamAccess...)}
	}
	return Scope{}
}

// Allows reports whether mandalam is inside the scope
func (s Scope) Allows(mandalam string) bool {
	if s.All {
		return true
	}
	for _, m := range s.Mandalams {
		if strings.EqualFold(m, mandalam) {
			return true
		}
	}
	return false
}

// Empty reports whether the scope admits no mandalam at all
func (s Scope) Empty() bool {
	return !s.All && len(s.Mandalams) == 0
}

// Narrow intersects the scope with a single requested mandalam.
// An empty mandalam leaves the scope unchanged; one outside the scope yields an empty scope.
func (s Scope) Narrow(mandalam string) Scope {
	mandalam = strings.TrimSpace(mandalam)
	if mandalam == "" {
		return s
	}
	if !s.Allows(mandalam) {
		return Scope{}
	}
	return Scope{Mandalams: []string{mandalam}}
}

// AllCapabilities lists every capability in display order
var AllCapabilities = []Capability{
	CanViewUsers, CanEditUsers, CanApproveUsers, CanManagePayments,
	CanManageBenefits, CanSendNotifications, CanManageSettings,
	CanAssignRoles, CanManageYears,
}

// CapabilitiesOf returns the capabilities the actor holds
func CapabilitiesOf(a Actor) []Capability {
	caps := make([]Capability, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if HasPermission(a, c) {
			caps = append(caps, c)
		}
	}
	return caps
}
