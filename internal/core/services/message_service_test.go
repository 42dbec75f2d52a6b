package services

import (
	"errors"
	"testing"

	"membership-portal/internal/core/domain"
)

func TestSendMessageRendersPerRecipient(t *testing.T) {
	f := newFixture(t)
	f.activeYear(2025)
	svc := NewMessageService(f.store)
	admin := f.admin(domain.RoleAdmin, "", nil)

	a := f.member("VADAKARA", domain.StatusApproved)
	b := f.member("VADAKARA", domain.StatusApproved)
	f.member("BALUSHERI", domain.StatusApproved)

	n, err := svc.SendMessage(f.ctx, admin.ID, MessageFilter{Mandalam: "VADAKARA"}, "Hello {{name}}", "Your number {{regNo}} for {{year}} in {{mandalam}}. {{unknown}}")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if n != 2 {
		t.Fatalf("recipients = %d, want 2", n)
	}

	for _, m := range []*struct {
		id          uint
		name, regNo string
	}{{a.ID, a.Name, a.RegNo}, {b.ID, b.Name, b.RegNo}} {
		list := f.notifications(m.id)
		if len(list) != 1 {
			t.Fatalf("member %d notifications = %d", m.id, len(list))
		}
		if want := "Hello " + m.name; list[0].Title != want {
			t.Errorf("title = %q, want %q", list[0].Title, want)
		}
		want := "Your number " + m.regNo + " for 2025 in VADAKARA. {{unknown}}"
		if list[0].Message != want {
			t.Errorf("message = %q, want %q", list[0].Message, want)
		}
		if list[0].SentBy == nil || *list[0].SentBy != admin.ID {
			t.Error("sent_by not recorded")
		}
	}
}

func TestSendMessageFilters(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store)
	admin := f.admin(domain.RoleAdmin, "", nil)

	paid := f.member("VADAKARA", domain.StatusApproved)
	paid.PaymentStatus = true
	if err := f.store.Members().Update(f.ctx, paid); err != nil {
		t.Fatal(err)
	}
	unpaid := f.member("VADAKARA", domain.StatusApproved)
	f.member("VADAKARA", domain.StatusPending)

	tests := []struct {
		name   string
		filter MessageFilter
		want   int
	}{
		{"paid", MessageFilter{Payment: PaymentFilterPaid}, 1},
		{"pending status", MessageFilter{Status: string(domain.StatusPending)}, 1},
		{"explicit ids", MessageFilter{MemberIDs: []uint{unpaid.ID}}, 1},
		{"nobody", MessageFilter{Mandalam: "NOWHERE"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := svc.SendMessage(f.ctx, admin.ID, tt.filter, "s", "b")
			if err != nil {
				t.Fatalf("SendMessage: %v", err)
			}
			if n != tt.want {
				t.Errorf("recipients = %d, want %d", n, tt.want)
			}
		})
	}

	if _, err := svc.SendMessage(f.ctx, admin.ID, MessageFilter{Payment: "maybe"}, "s", "b"); !errors.Is(err, ErrInvalidPaymentFilter) {
		t.Errorf("bad payment filter: err = %v", err)
	}
	if _, err := svc.SendMessage(f.ctx, admin.ID, MessageFilter{}, " ", "b"); !errors.Is(err, ErrSubjectRequired) {
		t.Errorf("blank subject: err = %v", err)
	}
}

func TestSendMessageScopeAndPermission(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store)
	f.member("VADAKARA", domain.StatusApproved)
	inScope := f.member("BALUSHERI", domain.StatusApproved)

	ma := f.admin(domain.RoleMandalamAdmin, "VADAKARA", nil)
	if _, err := svc.SendMessage(f.ctx, ma.ID, MessageFilter{}, "s", "b"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("mandalam admin: err = %v, want ErrForbidden", err)
	}

	custom := f.admin(domain.RoleCustomAdmin, "", &domain.CustomPermissions{
		CanSendNotifications: true,
		MandalamAccess:       []string{"BALUSHERI"},
	})
	n, err := svc.SendMessage(f.ctx, custom.ID, MessageFilter{}, "s", "b")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(f.notifications(inScope.ID)) != 1 {
		t.Errorf("recipients = %d, want only BALUSHERI", n)
	}
}

func TestSendMessageRollsBack(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store)
	admin := f.admin(domain.RoleAdmin, "", nil)
	m := f.member("VADAKARA", domain.StatusApproved)

	f.store.FailOn["notifications.CreateBatch"] = errors.New("insert failed")
	if _, err := svc.SendMessage(f.ctx, admin.ID, MessageFilter{}, "s", "b"); err == nil {
		t.Fatal("expected an error")
	}
	if n := len(f.notifications(m.ID)); n != 0 {
		t.Errorf("notifications = %d, want none", n)
	}
}

func TestInbox(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store)
	admin := f.admin(domain.RoleAdmin, "", nil)
	m := f.member("VADAKARA", domain.StatusApproved)
	other := f.member("VADAKARA", domain.StatusApproved)

	for i := 0; i < 3; i++ {
		if _, err := svc.SendMessage(f.ctx, admin.ID, MessageFilter{MemberIDs: []uint{m.ID}}, "s", "b"); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := svc.UnreadCount(f.ctx, m.ID); n != 3 {
		t.Fatalf("unread = %d, want 3", n)
	}

	list, total, err := svc.Inbox(f.ctx, m.ID, 0, 2)
	if err != nil || total != 3 || len(list) != 2 {
		t.Fatalf("inbox = %d/%d, %v", len(list), total, err)
	}
	if err := svc.MarkRead(f.ctx, m.ID, list[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := svc.MarkRead(f.ctx, other.ID, list[1].ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("marking someone else's notification: err = %v", err)
	}
	if n, _ := svc.MarkAllRead(f.ctx, m.ID); n != 2 {
		t.Errorf("marked = %d, want 2", n)
	}
	if n, _ := svc.UnreadCount(f.ctx, m.ID); n != 0 {
		t.Errorf("unread = %d, want 0", n)
	}
}

func TestMessageTemplates(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store)
	admin := f.admin(domain.RoleAdmin, "", nil)

	tmpl, err := svc.CreateTemplate(f.ctx, admin.ID, TemplateInput{Name: "Reminder", Subject: "Fee due", Body: "Dear {{name}}"})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if _, err := svc.UpdateTemplate(f.ctx, admin.ID, tmpl.ID, TemplateInput{Name: "Reminder", Subject: "Fee due soon", Body: "Dear {{name}}"}); err != nil {
		t.Fatalf("UpdateTemplate: %v", err)
	}
	list, err := svc.ListTemplates(f.ctx, admin.ID)
	if err != nil || len(list) != 1 || list[0].Subject != "Fee due soon" {
		t.Fatalf("templates = %+v, %v", list, err)
	}
	if err := svc.DeleteTemplate(f.ctx, admin.ID, tmpl.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteTemplate(f.ctx, admin.ID, tmpl.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("delete twice: err = %v", err)
	}
}
