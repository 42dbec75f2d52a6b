package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/config"
	"membership-portal/internal/core/domain"
	"membership-portal/internal/pkg/jwt"
	"membership-portal/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("account already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrOldPasswordWrong   = errors.New("old password is incorrect")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// AuthService handles registration, login and token rotation
type AuthService struct {
	store repositories.Store
	cfg   *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(store repositories.Store, cfg *config.Config) *AuthService {
	return &AuthService{store: store, cfg: cfg}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name            string            `json:"name" validate:"required,min=2,max=150"`
	Email           string            `json:"email" validate:"required,email,max=150"`
	Phone           string            `json:"phone" validate:"required,min=7,max=20"`
	WhatsApp        string            `json:"whatsapp" validate:"omitempty,max=20"`
	EmiratesID      string            `json:"emirates_id" validate:"required"`
	Emirate         string            `json:"emirate" validate:"required,max=50"`
	Mandalam        string            `json:"mandalam" validate:"required,max=100"`
	Address         string            `json:"address"`
	KeralaAddress   string            `json:"kerala_address"`
	Profession      string            `json:"profession" validate:"max=100"`
	BloodGroup      string            `json:"blood_group" validate:"max=5"`
	NomineeName     string            `json:"nominee_name" validate:"max=150"`
	NomineeRelation string            `json:"nominee_relation" validate:"max=50"`
	PhotoURL        string            `json:"photo_url" validate:"omitempty,max=500"`
	Password        string            `json:"password" validate:"required,min=8"`
	ConfirmPassword string            `json:"confirm_password" validate:"required,eqfield=Password"`
	Answers         map[string]string `json:"answers"`
}

// LoginInput represents login input. Login is an email or a phone number.
type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Member       *models.MemberResponse `json:"member"`
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
}

// SessionInfo describes the signed-in member and what they may do
type SessionInfo struct {
	Member       *models.MemberResponse `json:"member"`
	Role         domain.Role            `json:"role"`
	Capabilities []domain.Capability    `json:"capabilities"`
	AllMandalams bool                   `json:"all_mandalams"`
	Mandalams    []string               `json:"mandalams,omitempty"`
}

// Register validates a registration and creates a pending member with a user role
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Shape
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	// 2. Emirates ID, before anything touches the store
	emiratesID, err := domain.NormalizeEmiratesID(input.EmiratesID)
	if err != nil {
		return nil, err
	}

	// 3. Dynamic questions
	questions, err := s.store.Questions().List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	descriptors := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		descriptors = append(descriptors, q.ToDomain())
	}
	answers, err := domain.ValidateAnswers(descriptors, input.Answers)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	phone := strings.TrimSpace(input.Phone)

	// 4. Duplicates, reported without naming the field
	exists, err := s.store.Members().ExistsByIdentity(ctx, email, phone, emiratesID)
	if err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	year := time.Now().Year()
	if active, err := activeYear(ctx, s.store); err == nil {
		year = active.Year
	} else if !errors.Is(err, ErrNoActiveYear) {
		return nil, err
	}

	member := &models.Member{
		Name:             strings.TrimSpace(input.Name),
		Email:            email,
		Phone:            phone,
		WhatsApp:         strings.TrimSpace(input.WhatsApp),
		EmiratesID:       emiratesID,
		Emirate:          strings.TrimSpace(input.Emirate),
		Mandalam:         strings.TrimSpace(input.Mandalam),
		Address:          input.Address,
		KeralaAddress:    input.KeralaAddress,
		Profession:       input.Profession,
		BloodGroup:       input.BloodGroup,
		NomineeName:      input.NomineeName,
		NomineeRelation:  input.NomineeRelation,
		PhotoURL:         input.PhotoURL,
		CustomFields:     datatypes.NewJSONType(answers),
		Password:         hashedPassword,
		Status:           string(domain.StatusPending),
		RegistrationYear: year,
	}

	// 5. Member, registration number and role in one transaction
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Members().Create(ctx, member); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("create member: %w", err)
		}
		member.RegNo = domain.RegistrationNumber(year, member.ID)
		if err := tx.Members().Update(ctx, member); err != nil {
			return fmt.Errorf("set reg no: %w", err)
		}
		return tx.Roles().Save(ctx, &models.UserRole{MemberID: member.ID, Role: string(domain.RoleUser)})
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.issue(ctx, member, domain.UserActor{ID: member.ID})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"member_id": member.ID, "reg_no": member.RegNo}).Info("member registered")
	return resp, nil
}

// Login authenticates a member by email or phone
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	login := strings.TrimSpace(input.Login)
	if strings.Contains(login, "@") {
		login = strings.ToLower(login)
	}

	member, err := s.store.Members().GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, member.Password) {
		return nil, ErrInvalidCredentials
	}

	actor, err := loadActor(ctx, s.store, member.ID)
	if err != nil {
		return nil, err
	}

	resp, err := s.issue(ctx, member, actor)
	if err != nil {
		return nil, err
	}

	logrus.WithField("member_id", member.ID).Info("member logged in")
	return resp, nil
}

// Refresh rotates a refresh token and issues a new pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Signature and expiry
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Stored and still live
	tokenHash := password.HashToken(refreshToken)
	stored, err := s.store.RefreshTokens().GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}
	if stored.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if stored.IsExpired() {
		return nil, ErrTokenExpired
	}
	if stored.MemberID != claims.MemberID {
		return nil, ErrInvalidToken
	}

	member, err := loadMember(ctx, s.store, claims.MemberID)
	if err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.store, member.ID)
	if err != nil {
		return nil, err
	}

	// 3. Rotate
	if err := s.store.RefreshTokens().RevokeByTokenHash(ctx, tokenHash); err != nil {
		return nil, err
	}

	return s.issue(ctx, member, actor)
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.store.RefreshTokens().RevokeByTokenHash(ctx, password.HashToken(refreshToken))
}

// LogoutAll revokes every refresh token of the member
func (s *AuthService) LogoutAll(ctx context.Context, memberID uint) error {
	if err := s.store.RefreshTokens().RevokeAllByMemberID(ctx, memberID); err != nil {
		return err
	}
	logrus.WithField("member_id", memberID).Info("all sessions revoked")
	return nil
}

// Me returns the member with role, capabilities and region scope
func (s *AuthService) Me(ctx context.Context, memberID uint) (*SessionInfo, error) {
	member, err := loadMember(ctx, s.store, memberID)
	if err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.store, memberID)
	if err != nil {
		return nil, err
	}

	scope := domain.ScopeFor(actor)
	resp := member.ToResponse()
	resp.Role = string(actor.Role())

	return &SessionInfo{
		Member:       resp,
		Role:         actor.Role(),
		Capabilities: domain.CapabilitiesOf(actor),
		AllMandalams: scope.All,
		Mandalams:    scope.Mandalams,
	}, nil
}

// ChangePassword replaces the member's password and revokes other sessions
func (s *AuthService) ChangePassword(ctx context.Context, memberID uint, input *ChangePasswordInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}
	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	member, err := loadMember(ctx, s.store, memberID)
	if err != nil {
		return err
	}
	if !password.Verify(input.OldPassword, member.Password) {
		return ErrOldPasswordWrong
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	member.Password = hashed
	if err := s.store.Members().Update(ctx, member); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.store.RefreshTokens().RevokeAllByMemberID(ctx, memberID)
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// issue generates a token pair, stores the refresh hash and builds the response
func (s *AuthService) issue(ctx context.Context, member *models.Member, actor domain.Actor) (*AuthResponse, error) {
	tokens, err := s.generateTokens(member, actor)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, member.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	resp := member.ToResponse()
	resp.Role = string(actor.Role())
	return &AuthResponse{
		Member:       resp,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(member *models.Member, actor domain.Actor) (*TokenPair, error) {
	in := jwt.AccessInput{
		MemberID: member.ID,
		RegNo:    member.RegNo,
		Email:    member.Email,
		Role:     string(actor.Role()),
	}
	if ma, ok := actor.(domain.MandalamAdminActor); ok {
		in.Mandalam = ma.Mandalam
	}

	accessToken, err := jwt.GenerateAccessToken(in, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		member.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores the hash of a refresh token
func (s *AuthService) storeRefreshToken(ctx context.Context, memberID uint, refreshToken string) error {
	return s.store.RefreshTokens().Create(ctx, &models.RefreshToken{
		MemberID:  memberID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	})
}
