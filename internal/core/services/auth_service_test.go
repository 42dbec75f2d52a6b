package services

import (
	"errors"
	"testing"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"

	"gorm.io/datatypes"
)

func validRegistration() *RegisterInput {
	return &RegisterInput{
		Name:            "Rahul K",
		Email:           "Rahul@Example.com",
		Phone:           "0501234567",
		EmiratesID:      "784-1990-1234567-1",
		Emirate:         "Dubai",
		Mandalam:        "VADAKARA",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestRegisterCreatesPendingMember(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewAuthService(f.store, testConfig())

	resp, err := svc.Register(f.ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected a token pair")
	}

	m := f.reload(resp.Member.ID)
	if m.Status != string(domain.StatusPending) {
		t.Errorf("status = %s, want pending", m.Status)
	}
	if m.EmiratesID != "784199012345671" {
		t.Errorf("emirates id = %q, want separators stripped", m.EmiratesID)
	}
	if m.Email != "rahul@example.com" {
		t.Errorf("email = %q, want lower-cased", m.Email)
	}
	if want := domain.RegistrationNumber(2025, m.ID); m.RegNo != want {
		t.Errorf("reg no = %q, want %q", m.RegNo, want)
	}
	if resp.Member.Role != string(domain.RoleUser) {
		t.Errorf("role = %q, want user", resp.Member.Role)
	}
}

func TestRegisterRejectsShortEmiratesIDWithoutWrites(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewAuthService(f.store, testConfig())

	in := validRegistration()
	in.EmiratesID = "78419901234567" // 14 digits
	if _, err := svc.Register(f.ctx, in); !errors.Is(err, domain.ErrInvalidEmiratesID) {
		t.Fatalf("err = %v, want ErrInvalidEmiratesID", err)
	}
	if n := f.countMembers(); n != 0 {
		t.Errorf("members = %d, want no writes", n)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store, testConfig())

	if _, err := svc.Register(f.ctx, validRegistration()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"same email", func(in *RegisterInput) { in.Phone = "0509999999"; in.EmiratesID = "784000000000009" }},
		{"same phone", func(in *RegisterInput) { in.Email = "other@example.com"; in.EmiratesID = "784000000000009" }},
		{"same emirates id", func(in *RegisterInput) { in.Email = "other@example.com"; in.Phone = "0509999999" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(in)
			if _, err := svc.Register(f.ctx, in); !errors.Is(err, ErrAlreadyExists) {
				t.Fatalf("err = %v, want ErrAlreadyExists", err)
			}
		})
	}
}

func TestRegisterValidatesShape(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store, testConfig())

	in := validRegistration()
	in.ConfirmPassword = "different1"
	in.Email = "not-an-email"
	_, err := svc.Register(f.ctx, in)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Fields["email"] == "" || ve.Fields["confirm_password"] == "" {
		t.Errorf("fields = %v, want email and confirm_password", ve.Fields)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}
}

func TestRegisterDynamicQuestions(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store, testConfig())

	questions := []*models.RegistrationQuestion{
		{Key: "is_norka_member", Label: "NORKA member", FieldType: string(domain.FieldCheckbox), IsActive: true, SortOrder: 1},
		{
			Key: "norka_id", Label: "NORKA ID", FieldType: string(domain.FieldText), Required: true,
			ShowWhenField: "is_norka_member", ShowWhenValue: "true", ValidationPattern: `^[0-9]{6,12}$`,
			IsActive: true, SortOrder: 2,
		},
		{
			Key: "constituency", Label: "Constituency", FieldType: string(domain.FieldSelect),
			Options: datatypes.NewJSONType([]string{"Vadakara", "Kuttiadi"}), IsActive: true, SortOrder: 3,
		},
	}
	for _, q := range questions {
		if err := f.store.Questions().Create(f.ctx, q); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("hidden question not required", func(t *testing.T) {
		in := validRegistration()
		in.Answers = map[string]string{"constituency": "Vadakara"}
		resp, err := svc.Register(f.ctx, in)
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if got := resp.Member.CustomFields["constituency"]; got != "Vadakara" {
			t.Errorf("constituency = %q", got)
		}
	})

	t.Run("visible question enforced", func(t *testing.T) {
		in := validRegistration()
		in.Email, in.Phone, in.EmiratesID = "n@example.com", "0502222222", "784000000000002"
		in.Answers = map[string]string{"is_norka_member": "true", "norka_id": "12ab"}
		_, err := svc.Register(f.ctx, in)
		var ae *domain.AnswerError
		if !errors.As(err, &ae) || ae.Key != "norka_id" {
			t.Fatalf("err = %v, want AnswerError on norka_id", err)
		}
	})

	t.Run("unknown option", func(t *testing.T) {
		in := validRegistration()
		in.Email, in.Phone, in.EmiratesID = "o@example.com", "0503333333", "784000000000003"
		in.Answers = map[string]string{"constituency": "Elsewhere"}
		if _, err := svc.Register(f.ctx, in); !errors.Is(err, domain.ErrAnswerOption) {
			t.Fatalf("err = %v, want ErrAnswerOption", err)
		}
	})
}

func TestLoginAndRefreshRotation(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store, testConfig())
	if _, err := svc.Register(f.ctx, validRegistration()); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(f.ctx, &LoginInput{Login: "rahul@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	byPhone, err := svc.Login(f.ctx, &LoginInput{Login: "0501234567", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login by phone: %v", err)
	}

	rotated, err := svc.Refresh(f.ctx, byPhone.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == byPhone.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if _, err := svc.Refresh(f.ctx, byPhone.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("reusing old token: err = %v, want ErrTokenRevoked", err)
	}

	if err := svc.LogoutAll(f.ctx, rotated.Member.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Refresh(f.ctx, rotated.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("after logout-all: err = %v, want ErrTokenRevoked", err)
	}
}

func TestMeReportsCapabilities(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store, testConfig())
	admin := f.admin(domain.RoleMandalamAdmin, "VADAKARA", nil)

	info, err := svc.Me(f.ctx, admin.ID)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if info.Role != domain.RoleMandalamAdmin || info.AllMandalams {
		t.Errorf("info = %+v", info)
	}
	if len(info.Capabilities) != 2 {
		t.Errorf("capabilities = %v, want view and approve", info.Capabilities)
	}
	if len(info.Mandalams) != 1 || info.Mandalams[0] != "VADAKARA" {
		t.Errorf("mandalams = %v", info.Mandalams)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store, testConfig())
	resp, err := svc.Register(f.ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}
	id := resp.Member.ID

	if err := svc.ChangePassword(f.ctx, id, &ChangePasswordInput{OldPassword: "nope-nope", NewPassword: "newsecret1"}); !errors.Is(err, ErrOldPasswordWrong) {
		t.Fatalf("err = %v, want ErrOldPasswordWrong", err)
	}
	if err := svc.ChangePassword(f.ctx, id, &ChangePasswordInput{OldPassword: "secret123", NewPassword: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
	if err := svc.ChangePassword(f.ctx, id, &ChangePasswordInput{OldPassword: "secret123", NewPassword: "newsecret1"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Login(f.ctx, &LoginInput{Login: "rahul@example.com", Password: "newsecret1"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, err := svc.Refresh(f.ctx, resp.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("old session still valid: %v", err)
	}
}
