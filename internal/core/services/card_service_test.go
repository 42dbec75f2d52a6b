package services

import (
	"encoding/json"
	"errors"
	"testing"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"
)

func cardTemplateInput(name string, active bool) CardTemplateInput {
	fields := map[string]models.CardFieldPosition{}
	for i, f := range models.CardFieldNames {
		fields[f] = models.CardFieldPosition{X: 10 * i, Y: 20 * i, Size: 14}
	}
	return CardTemplateInput{Name: name, ImageURL: "https://cdn.example.com/card.png", Width: 1016, Height: 638, Fields: fields, IsActive: active}
}

func TestCardData(t *testing.T) {
	f := newFixture(t)
	svc := NewCardService(f.store)
	master := f.admin(domain.RoleMasterAdmin, "", nil)

	m := f.member("VADAKARA", domain.StatusApproved)
	if _, err := svc.CardData(f.ctx, m.ID, m.ID); !errors.Is(err, ErrCardNotAvailable) {
		t.Fatalf("unpaid member: err = %v, want ErrCardNotAvailable", err)
	}

	m.PaymentStatus = true
	if err := f.store.Members().Update(f.ctx, m); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTemplate(f.ctx, master.ID, cardTemplateInput("2025", true)); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	data, err := svc.CardData(f.ctx, m.ID, m.ID)
	if err != nil {
		t.Fatalf("CardData: %v", err)
	}
	if data.Template == nil || data.Template.Name != "2025" {
		t.Errorf("template = %+v", data.Template)
	}
	if data.Values[models.CardFieldRegNo] != m.RegNo || data.Values[models.CardFieldMandalam] != "VADAKARA" {
		t.Errorf("values = %v", data.Values)
	}

	var qr CardQR
	if err := json.Unmarshal([]byte(data.QRPayload), &qr); err != nil {
		t.Fatalf("qr payload: %v", err)
	}
	if qr.ID != m.ID || qr.RegNo != m.RegNo || qr.Year != 2025 {
		t.Errorf("qr = %+v", qr)
	}
}

func TestCardTemplatesSingleActive(t *testing.T) {
	f := newFixture(t)
	svc := NewCardService(f.store)
	master := f.admin(domain.RoleMasterAdmin, "", nil)
	admin := f.admin(domain.RoleAdmin, "", nil)

	first, err := svc.CreateTemplate(f.ctx, master.ID, cardTemplateInput("old", true))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTemplate(f.ctx, master.ID, cardTemplateInput("new", true)); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListTemplates(f.ctx, master.ID)
	if err != nil {
		t.Fatal(err)
	}
	active := 0
	for _, tmpl := range list {
		if tmpl.IsActive {
			active++
			if tmpl.Name != "new" {
				t.Errorf("active template = %s, want new", tmpl.Name)
			}
		}
	}
	if active != 1 {
		t.Errorf("active templates = %d, want 1", active)
	}

	bad := cardTemplateInput("broken", false)
	delete(bad.Fields, models.CardFieldQRCode)
	if _, err := svc.UpdateTemplate(f.ctx, master.ID, first.ID, bad); !errors.Is(err, ErrCardTemplateInvalid) {
		t.Errorf("missing field: err = %v", err)
	}
	if _, err := svc.CreateTemplate(f.ctx, admin.ID, cardTemplateInput("x", false)); err != nil {
		t.Errorf("admin holds settings capability: %v", err)
	}

	user := f.member("VADAKARA", domain.StatusApproved)
	if _, err := svc.ListTemplates(f.ctx, user.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("user: err = %v", err)
	}
}
