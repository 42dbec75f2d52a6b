package services

import (
	"errors"
	"testing"

	"membership-portal/internal/core/domain"
)

func TestQuestionCRUD(t *testing.T) {
	f := newFixture(t)
	svc := NewQuestionService(f.store)
	master := f.admin(domain.RoleMasterAdmin, "", nil)

	q, err := svc.Create(f.ctx, master.ID, QuestionInput{
		Key:       "constituency",
		Label:     "Constituency",
		FieldType: domain.FieldSelect,
		Options:   []string{"Vadakara", "Kuttiadi"},
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(f.ctx, master.ID, QuestionInput{Key: "hidden", Label: "Hidden", FieldType: domain.FieldText}); err != nil {
		t.Fatal(err)
	}

	active, err := svc.ListActive(f.ctx)
	if err != nil || len(active) != 1 {
		t.Fatalf("active = %d, %v", len(active), err)
	}
	all, err := svc.ListAll(f.ctx, master.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("all = %d, %v", len(all), err)
	}

	if err := svc.Delete(f.ctx, master.ID, q.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(f.ctx, master.ID, q.ID, QuestionInput{Key: "k", Label: "l", FieldType: domain.FieldText}); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("update deleted: err = %v", err)
	}
}

func TestQuestionValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewQuestionService(f.store)
	master := f.admin(domain.RoleMasterAdmin, "", nil)

	tests := []struct {
		name string
		in   QuestionInput
	}{
		{"missing label", QuestionInput{Key: "k", FieldType: domain.FieldText}},
		{"unknown type", QuestionInput{Key: "k", Label: "L", FieldType: "slider"}},
		{"select without options", QuestionInput{Key: "k", Label: "L", FieldType: domain.FieldSelect}},
		{"dependent without parent", QuestionInput{Key: "k", Label: "L", FieldType: domain.FieldDependentSelect}},
		{"inverted lengths", QuestionInput{Key: "k", Label: "L", FieldType: domain.FieldText, MinLength: 5, MaxLength: 2}},
		{"half show-when", QuestionInput{Key: "k", Label: "L", FieldType: domain.FieldText, ShowWhenField: "x"}},
		{"bad pattern", QuestionInput{Key: "k", Label: "L", FieldType: domain.FieldText, ValidationPattern: "(["}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(f.ctx, master.ID, tt.in); !errors.Is(err, ErrQuestionInvalid) {
				t.Errorf("err = %v, want ErrQuestionInvalid", err)
			}
		})
	}
}

func TestSettingsNeedMasterLevelCapability(t *testing.T) {
	f := newFixture(t)
	questions := NewQuestionService(f.store)
	recipients := NewRecipientService(f.store)

	// custom admins can never hold canManageSettings
	custom := f.admin(domain.RoleCustomAdmin, "", &domain.CustomPermissions{
		CanViewUsers: true, CanEditUsers: true, CanApproveUsers: true,
		CanManagePayments: true, CanManageBenefits: true, CanSendNotifications: true,
	})
	if _, err := questions.ListAll(f.ctx, custom.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("questions: err = %v", err)
	}
	if _, err := recipients.Create(f.ctx, custom.ID, RecipientInput{Name: "Treasurer"}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("recipients: err = %v", err)
	}
}

func TestRecipients(t *testing.T) {
	f := newFixture(t)
	svc := NewRecipientService(f.store)
	admin := f.admin(domain.RoleAdmin, "", nil)

	p, err := svc.Create(f.ctx, admin.ID, RecipientInput{Name: " Treasurer ", IBAN: "ae07 0331 2345", IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "Treasurer" || p.IBAN != "AE0703312345" {
		t.Errorf("recipient = %+v", p)
	}
	if _, err := svc.Create(f.ctx, admin.ID, RecipientInput{Name: ""}); !errors.Is(err, ErrRecipientInvalid) {
		t.Errorf("blank name: err = %v", err)
	}
	if _, err := svc.Update(f.ctx, admin.ID, p.ID, RecipientInput{Name: "Treasurer", IsActive: false}); err != nil {
		t.Fatal(err)
	}
	active, _ := svc.ListActive(f.ctx)
	if len(active) != 0 {
		t.Errorf("active = %d, want 0", len(active))
	}
	if err := svc.Delete(f.ctx, admin.ID, 404); !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("delete missing: err = %v", err)
	}
}
