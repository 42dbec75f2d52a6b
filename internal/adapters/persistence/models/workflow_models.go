package models

import (
	"time"

	"membership-portal/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Member workflow tables
// ============================================================

// Notification represents notifications table
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	MemberID  uint       `gorm:"index;not null" json:"member_id"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Type      string     `gorm:"size:30;default:'message'" json:"type"`
	SentBy    *uint      `json:"sent_by,omitempty"`
	IsRead    bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// BenefitUsage represents user_benefits table
type BenefitUsage struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MemberID   uint           `gorm:"index;not null" json:"member_id"`
	Type       string         `gorm:"size:30;not null;index" json:"type"`
	Remarks    string         `gorm:"type:text" json:"remarks"`
	AmountPaid float64        `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	Date       time.Time      `gorm:"type:date;not null" json:"date"`
	CreatedBy  uint           `gorm:"not null" json:"created_by"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BenefitUsage) TableName() string {
	return "user_benefits"
}

// ChangeRequest represents change_requests table
type ChangeRequest struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	MemberID     uint       `gorm:"index;not null" json:"member_id"`
	FieldName    string     `gorm:"size:100;not null" json:"field_name"`
	OldValue     string     `gorm:"type:text" json:"old_value"`
	NewValue     string     `gorm:"type:text;not null" json:"new_value"`
	Reason       string     `gorm:"type:text" json:"reason"`
	Status       string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AdminRemarks string     `gorm:"type:text" json:"admin_remarks,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy   *uint      `json:"reviewed_by,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (ChangeRequest) TableName() string {
	return "change_requests"
}

// IsPending reports whether the request still awaits review
func (cr *ChangeRequest) IsPending() bool {
	return cr.Status == string(domain.ChangePending)
}

// YearConfig represents year_configs table
type YearConfig struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Year            int       `gorm:"uniqueIndex;not null" json:"year"`
	IsActive        bool      `gorm:"default:false;index" json:"is_active"`
	RegistrationFee float64   `gorm:"type:decimal(10,2);not null" json:"registration_fee"`
	RenewalFee      float64   `gorm:"type:decimal(10,2);not null" json:"renewal_fee"`
	CreatedBy       *uint     `json:"created_by,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (YearConfig) TableName() string {
	return "year_configs"
}

// ============================================================
// Settings tables
// ============================================================

// MessageTemplate represents message_templates table
type MessageTemplate struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Subject   string         `gorm:"size:200;not null" json:"subject"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedBy uint           `json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (MessageTemplate) TableName() string {
	return "message_templates"
}

// PaymentRecipient represents payment_recipients table
type PaymentRecipient struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:150;not null" json:"name"`
	BankName      string         `gorm:"size:100" json:"bank_name"`
	AccountNumber string         `gorm:"size:50" json:"account_number"`
	IBAN          string         `gorm:"column:iban;size:50" json:"iban"`
	Phone         string         `gorm:"size:20" json:"phone"`
	Mandalam      string         `gorm:"size:100;index" json:"mandalam"`
	IsActive      bool           `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PaymentRecipient) TableName() string {
	return "payment_recipients"
}

// RegistrationQuestion represents registration_questions table
type RegistrationQuestion struct {
	ID                uint                                         `gorm:"primaryKey" json:"id"`
	Key               string                                       `gorm:"column:question_key;uniqueIndex;size:100;not null" json:"key"`
	Label             string                                       `gorm:"size:200;not null" json:"label"`
	FieldType         string                                       `gorm:"size:30;not null" json:"field_type"`
	Options           datatypes.JSONType[[]string]                 `json:"options"`
	DependentOn       string                                       `gorm:"size:100" json:"dependent_on,omitempty"`
	DependentOptions  datatypes.JSONType[[]domain.DependentOption] `json:"dependent_options"`
	Required          bool                                         `gorm:"default:false" json:"required"`
	MinLength         int                                          `gorm:"default:0" json:"min_length"`
	MaxLength         int                                          `gorm:"default:0" json:"max_length"`
	ValidationPattern string                                       `gorm:"size:255" json:"validation_pattern,omitempty"`
	ShowWhenField     string                                       `gorm:"size:100" json:"show_when_field,omitempty"`
	ShowWhenValue     string                                       `gorm:"size:100" json:"show_when_value,omitempty"`
	SortOrder         int                                          `gorm:"default:0;index" json:"sort_order"`
	IsActive          bool                                         `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time                                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                                    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RegistrationQuestion) TableName() string {
	return "registration_questions"
}

// ToDomain converts the row to the validation descriptor
func (q *RegistrationQuestion) ToDomain() domain.Question {
	return domain.Question{
		Key:               q.Key,
		Label:             q.Label,
		FieldType:         domain.FieldType(q.FieldType),
		Options:           q.Options.Data(),
		DependentOn:       q.DependentOn,
		DependentOptions:  q.DependentOptions.Data(),
		Required:          q.Required,
		MinLength:         q.MinLength,
		MaxLength:         q.MaxLength,
		ValidationPattern: q.ValidationPattern,
		ShowWhenField:     q.ShowWhenField,
		ShowWhenValue:     q.ShowWhenValue,
	}
}

// CardFieldPosition places one member field on a card template
type CardFieldPosition struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Size int `json:"size"`
}

// Card field names
const (
	CardFieldPhoto    = "photo"
	CardFieldName     = "name"
	CardFieldRegNo    = "reg_no"
	CardFieldEmirate  = "emirate"
	CardFieldMobile   = "mobile"
	CardFieldMandalam = "mandalam"
	CardFieldQRCode   = "qr_code"
)

// CardFieldNames lists the positions every card template must define
var CardFieldNames = []string{
	CardFieldPhoto, CardFieldName, CardFieldRegNo, CardFieldEmirate,
	CardFieldMobile, CardFieldMandalam, CardFieldQRCode,
}

// CardTemplate represents card_templates table
type CardTemplate struct {
	ID        uint                                             `gorm:"primaryKey" json:"id"`
	Name      string                                           `gorm:"size:100;not null" json:"name"`
	ImageURL  string                                           `gorm:"size:500;not null" json:"image_url"`
	Width     int                                              `gorm:"not null" json:"width"`
	Height    int                                              `gorm:"not null" json:"height"`
	Fields    datatypes.JSONType[map[string]CardFieldPosition] `json:"fields"`
	IsActive  bool                                             `gorm:"default:false;index" json:"is_active"`
	CreatedAt time.Time                                        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                                        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CardTemplate) TableName() string {
	return "card_templates"
}
