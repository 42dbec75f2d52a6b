package models

import (
	"encoding/json"
	"time"

	"membership-portal/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Members & Roles
// ============================================================

// Member represents the profiles table
type Member struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	RegNo           string `gorm:"size:20;index" json:"reg_no"`
	Name            string `gorm:"size:150;not null" json:"name"`
	Email           string `gorm:"uniqueIndex;size:150;not null" json:"email"`
	Phone           string `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	WhatsApp        string `gorm:"column:whatsapp;size:20" json:"whatsapp"`
	EmiratesID      string `gorm:"uniqueIndex;size:15;not null" json:"emirates_id"`
	Emirate         string `gorm:"size:50;index" json:"emirate"`
	Mandalam        string `gorm:"size:100;index" json:"mandalam"`
	Address         string `gorm:"type:text" json:"address"`
	KeralaAddress   string `gorm:"type:text" json:"kerala_address"`
	Profession      string `gorm:"size:100" json:"profession"`
	BloodGroup      string `gorm:"size:5" json:"blood_group"`
	NomineeName     string `gorm:"size:150" json:"nominee_name"`
	NomineeRelation string `gorm:"size:50" json:"nominee_relation"`
	PhotoURL        string `gorm:"size:500" json:"photo_url"`

	CustomFields datatypes.JSONType[map[string]string] `json:"custom_fields"`

	Password string `gorm:"size:255;not null" json:"-"`

	// Lifecycle
	Status           string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RegistrationYear int    `gorm:"index" json:"registration_year"`
	IsReregistration bool   `gorm:"default:false" json:"is_reregistration"`
	IsImported       bool   `gorm:"default:false" json:"is_imported"`

	// Payment
	PaymentStatus          bool       `gorm:"default:false;index" json:"payment_status"`
	PaymentAmount          float64    `gorm:"type:decimal(10,2);default:0" json:"payment_amount"`
	PaymentSubmitted       bool       `gorm:"default:false" json:"payment_submitted"`
	PaymentApprovalStatus  string     `gorm:"size:20;index" json:"payment_approval_status"`
	PaymentUserRemarks     string     `gorm:"type:text" json:"payment_user_remarks"`
	PaymentAdminRemarks    string     `gorm:"type:text" json:"payment_admin_remarks"`
	PaymentSubmittedAmount float64    `gorm:"type:decimal(10,2);default:0" json:"payment_submitted_amount"`
	PaymentSubmittedAt     *time.Time `json:"payment_submitted_at"`
	PaymentYear            int        `json:"payment_year"`
	PaymentRecipientID     *uint      `json:"payment_recipient_id"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "profiles"
}

// ProfileField returns the current value of an editable profile field or
// registration answer
func (m *Member) ProfileField(field string) string {
	switch field {
	case "name":
		return m.Name
	case "phone":
		return m.Phone
	case "whatsapp":
		return m.WhatsApp
	case "emirate":
		return m.Emirate
	case "mandalam":
		return m.Mandalam
	case "address":
		return m.Address
	case "kerala_address":
		return m.KeralaAddress
	case "profession":
		return m.Profession
	case "blood_group":
		return m.BloodGroup
	case "nominee_name":
		return m.NomineeName
	case "nominee_relation":
		return m.NomineeRelation
	case "photo_url":
		return m.PhotoURL
	}
	return m.CustomFields.Data()[field]
}

// SetProfileField overwrites exactly one profile field or registration answer
func (m *Member) SetProfileField(field, value string) {
	switch field {
	case "name":
		m.Name = value
	case "phone":
		m.Phone = value
	case "whatsapp":
		m.WhatsApp = value
	case "emirate":
		m.Emirate = value
	case "mandalam":
		m.Mandalam = value
	case "address":
		m.Address = value
	case "kerala_address":
		m.KeralaAddress = value
	case "profession":
		m.Profession = value
	case "blood_group":
		m.BloodGroup = value
	case "nominee_name":
		m.NomineeName = value
	case "nominee_relation":
		m.NomineeRelation = value
	case "photo_url":
		m.PhotoURL = value
	default:
		fields := make(map[string]string, len(m.CustomFields.Data())+1)
		for k, v := range m.CustomFields.Data() {
			fields[k] = v
		}
		fields[field] = value
		m.CustomFields = datatypes.NewJSONType(fields)
	}
}

// ClearPaymentSubmission resets the per-year payment state
func (m *Member) ClearPaymentSubmission() {
	m.PaymentStatus = false
	m.PaymentAmount = 0
	m.PaymentSubmitted = false
	m.PaymentApprovalStatus = string(domain.PaymentNotSubmitted)
	m.PaymentUserRemarks = ""
	m.PaymentAdminRemarks = ""
	m.PaymentSubmittedAmount = 0
	m.PaymentSubmittedAt = nil
	m.PaymentYear = 0
	m.PaymentRecipientID = nil
}

// PaymentSubmission DTO
type PaymentSubmission struct {
	Submitted      bool       `json:"submitted"`
	ApprovalStatus string     `json:"approvalStatus"`
	UserRemarks    string     `json:"userRemarks,omitempty"`
	AdminRemarks   string     `json:"adminRemarks,omitempty"`
	Amount         float64    `json:"amount"`
	Year           int        `json:"year,omitempty"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
	RecipientID    *uint      `json:"recipientId,omitempty"`
}

// MemberResponse DTO
type MemberResponse struct {
	ID                uint              `json:"id"`
	RegNo             string            `json:"reg_no"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	WhatsApp          string            `json:"whatsapp,omitempty"`
	EmiratesID        string            `json:"emirates_id"`
	Emirate           string            `json:"emirate"`
	Mandalam          string            `json:"mandalam"`
	Address           string            `json:"address,omitempty"`
	KeralaAddress     string            `json:"kerala_address,omitempty"`
	Profession        string            `json:"profession,omitempty"`
	BloodGroup        string            `json:"blood_group,omitempty"`
	NomineeName       string            `json:"nominee_name,omitempty"`
	NomineeRelation   string            `json:"nominee_relation,omitempty"`
	PhotoURL          string            `json:"photo_url,omitempty"`
	CustomFields      map[string]string `json:"custom_fields,omitempty"`
	Status            string            `json:"status"`
	RegistrationYear  int               `json:"registration_year"`
	IsReregistration  bool              `json:"is_reregistration"`
	IsImported        bool              `json:"is_imported"`
	PaymentStatus     bool              `json:"payment_status"`
	PaymentAmount     float64           `json:"payment_amount"`
	PaymentSubmission PaymentSubmission `json:"payment_submission"`
	Role              string            `json:"role,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:               m.ID,
		RegNo:            m.RegNo,
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		WhatsApp:         m.WhatsApp,
		EmiratesID:       m.EmiratesID,
		Emirate:          m.Emirate,
		Mandalam:         m.Mandalam,
		Address:          m.Address,
		KeralaAddress:    m.KeralaAddress,
		Profession:       m.Profession,
		BloodGroup:       m.BloodGroup,
		NomineeName:      m.NomineeName,
		NomineeRelation:  m.NomineeRelation,
		PhotoURL:         m.PhotoURL,
		CustomFields:     m.CustomFields.Data(),
		Status:           m.Status,
		RegistrationYear: m.RegistrationYear,
		IsReregistration: m.IsReregistration,
		IsImported:       m.IsImported,
		PaymentStatus:    m.PaymentStatus,
		PaymentAmount:    m.PaymentAmount,
		PaymentSubmission: PaymentSubmission{
			Submitted:      m.PaymentSubmitted,
			ApprovalStatus: m.PaymentApprovalStatus,
			UserRemarks:    m.PaymentUserRemarks,
			AdminRemarks:   m.PaymentAdminRemarks,
			Amount:         m.PaymentSubmittedAmount,
			Year:           m.PaymentYear,
			SubmittedAt:    m.PaymentSubmittedAt,
			RecipientID:    m.PaymentRecipientID,
		},
		CreatedAt: m.CreatedAt,
	}
}

// UserRole represents the user_roles table
type UserRole struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	MemberID          uint           `gorm:"uniqueIndex;not null" json:"member_id"`
	Role              string         `gorm:"size:30;not null;default:'user'" json:"role"`
	MandalamAccess    string         `gorm:"size:100" json:"mandalam_access,omitempty"`
	CustomPermissions datatypes.JSON `json:"custom_permissions,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// Permissions decodes the custom permission set, nil when none is stored
func (r *UserRole) Permissions() (*domain.CustomPermissions, error) {
	if len(r.CustomPermissions) == 0 || string(r.CustomPermissions) == "null" {
		return nil, nil
	}
	var p domain.CustomPermissions
	if err := json.Unmarshal(r.CustomPermissions, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPermissions stores the custom permission set, nil clears it
func (r *UserRole) SetPermissions(p *domain.CustomPermissions) error {
	if p == nil {
		r.CustomPermissions = nil
		return nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	r.CustomPermissions = datatypes.JSON(b)
	return nil
}

// Actor builds the domain actor for this role row
func (r *UserRole) Actor() (domain.Actor, error) {
	perms, err := r.Permissions()
	if err != nil {
		return nil, err
	}
	return domain.NewActor(r.MemberID, domain.Role(r.Role), r.MandalamAccess, perms)
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	MemberID  uint       `gorm:"index;not null" json:"member_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates every table the service owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Member{},
		&UserRole{},
		&RefreshToken{},
		&Notification{},
		&BenefitUsage{},
		&ChangeRequest{},
		&YearConfig{},
		&MessageTemplate{},
		&PaymentRecipient{},
		&RegistrationQuestion{},
		&CardTemplate{},
	)
}
