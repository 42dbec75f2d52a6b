package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/core/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens a private in-memory sqlite database with every table migrated
func newTestStore(t *testing.T) (Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db), db
}

var memberSeq int

func createMember(t *testing.T, s Store, mandalam, status string) *models.Member {
	t.Helper()
	memberSeq++
	m := &models.Member{
		Name:                  fmt.Sprintf("Member %d", memberSeq),
		Email:                 fmt.Sprintf("m%d@example.com", memberSeq),
		Phone:                 fmt.Sprintf("050%07d", memberSeq),
		EmiratesID:            fmt.Sprintf("784%012d", memberSeq),
		Mandalam:              mandalam,
		Status:                status,
		PaymentApprovalStatus: string(domain.PaymentNotSubmitted),
	}
	if err := s.Members().Create(context.Background(), m); err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

func TestDuplicateIdentityIsTranslated(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	first := createMember(t, s, "VADAKARA", string(domain.StatusPending))

	tests := []struct {
		name   string
		mutate func(m *models.Member)
	}{
		{"email", func(m *models.Member) { m.Email = first.Email }},
		{"phone", func(m *models.Member) { m.Phone = first.Phone }},
		{"emirates id", func(m *models.Member) { m.EmiratesID = first.EmiratesID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &models.Member{
				Name:       "Second",
				Email:      "second@example.com",
				Phone:      "0559999999",
				EmiratesID: "784999999999999",
				Status:     string(domain.StatusPending),
			}
			tt.mutate(m)
			err := s.Members().Create(ctx, m)
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				t.Fatalf("err = %v, want gorm.ErrDuplicatedKey", err)
			}
		})
	}

	y := &models.YearConfig{Year: 2025, RegistrationFee: 60, RenewalFee: 50}
	if err := s.Years().Create(ctx, y); err != nil {
		t.Fatalf("create year: %v", err)
	}
	dup := &models.YearConfig{Year: 2025, RegistrationFee: 70, RenewalFee: 55}
	if err := s.Years().Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate year err = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestMissingRowIsRecordNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Members().GetByID(context.Background(), 404); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestGormWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	m := createMember(t, s, "VADAKARA", string(domain.StatusPending))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Store) error {
		m.Name = "changed"
		if err := tx.Members().Update(ctx, m); err != nil {
			return err
		}
		if err := tx.Notifications().Create(ctx, &models.Notification{MemberID: m.ID, Title: "t", Message: "x"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, err := s.Members().GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name == "changed" {
		t.Error("member update was not rolled back")
	}
	if n, _ := s.Notifications().CountUnread(ctx, m.ID); n != 0 {
		t.Errorf("unread = %d, notification was not rolled back", n)
	}

	err = s.WithTx(ctx, func(tx Store) error {
		return tx.Notifications().Create(ctx, &models.Notification{MemberID: m.ID, Title: "t", Message: "kept"})
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if n, _ := s.Notifications().CountUnread(ctx, m.ID); n != 1 {
		t.Errorf("unread = %d, want 1 after commit", n)
	}
}

func TestNotificationBatchAndReadState(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	a := createMember(t, s, "VADAKARA", string(domain.StatusApproved))
	b := createMember(t, s, "BALUSHERI", string(domain.StatusApproved))

	batch := []*models.Notification{
		{MemberID: a.ID, Title: "one", Message: "m"},
		{MemberID: a.ID, Title: "two", Message: "m"},
		{MemberID: b.ID, Title: "three", Message: "m"},
	}
	if err := s.Notifications().CreateBatch(ctx, batch); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	for _, n := range batch {
		if n.ID == 0 {
			t.Fatalf("notification %q has no id after batch insert", n.Title)
		}
	}

	// another member's notification is not theirs to mark
	if ok, err := s.Notifications().MarkRead(ctx, a.ID, batch[2].ID); err != nil || ok {
		t.Errorf("MarkRead foreign = %v, %v; want false", ok, err)
	}
	if ok, err := s.Notifications().MarkRead(ctx, a.ID, batch[0].ID); err != nil || !ok {
		t.Errorf("MarkRead own = %v, %v; want true", ok, err)
	}
	if n, _ := s.Notifications().CountUnread(ctx, a.ID); n != 1 {
		t.Errorf("unread = %d, want 1", n)
	}
	if n, err := s.Notifications().MarkAllRead(ctx, a.ID); err != nil || n != 1 {
		t.Errorf("MarkAllRead = %d, %v; want 1", n, err)
	}
	if n, _ := s.Notifications().CountUnread(ctx, b.ID); n != 1 {
		t.Errorf("other member unread = %d, want 1", n)
	}
}
