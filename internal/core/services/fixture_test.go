package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"membership-portal/internal/adapters/persistence/memstore"
	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/config"
	"membership-portal/internal/core/domain"
	"membership-portal/internal/pkg/password"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	password.Cost = bcrypt.MinCost
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

var allMembers = repositories.MemberFilter{Scope: domain.Scope{All: true}}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memstore.Store
	seq   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, ctx: context.Background(), store: memstore.New()}
}

// member inserts a member directly, bypassing registration
func (f *fixture) member(mandalam string, status domain.MemberStatus) *models.Member {
	f.t.Helper()
	f.seq++
	m := &models.Member{
		Name:             fmt.Sprintf("Member %d", f.seq),
		Email:            fmt.Sprintf("member%d@example.com", f.seq),
		Phone:            fmt.Sprintf("05000000%02d", f.seq),
		EmiratesID:       fmt.Sprintf("7841990000000%02d", f.seq),
		Emirate:          "Dubai",
		Mandalam:         mandalam,
		Status:           string(status),
		RegistrationYear: 2025,
	}
	if err := f.store.Members().Create(f.ctx, m); err != nil {
		f.t.Fatalf("create member: %v", err)
	}
	m.RegNo = domain.RegistrationNumber(2025, m.ID)
	if err := f.store.Members().Update(f.ctx, m); err != nil {
		f.t.Fatalf("set reg no: %v", err)
	}
	return m
}

// admin inserts an approved member holding role
func (f *fixture) admin(role domain.Role, mandalam string, perms *domain.CustomPermissions) *models.Member {
	f.t.Helper()
	m := f.member("KOZHIKODE", domain.StatusApproved)
	r := &models.UserRole{MemberID: m.ID, Role: string(role), MandalamAccess: mandalam}
	if err := r.SetPermissions(perms); err != nil {
		f.t.Fatal(err)
	}
	if err := f.store.Roles().Save(f.ctx, r); err != nil {
		f.t.Fatalf("save role: %v", err)
	}
	return m
}

func (f *fixture) activeYear(year int) {
	f.t.Helper()
	if err := f.store.Years().Create(f.ctx, &models.YearConfig{Year: year, IsActive: true, RegistrationFee: 60, RenewalFee: 50}); err != nil {
		f.t.Fatalf("create year: %v", err)
	}
}

func (f *fixture) reload(id uint) *models.Member {
	f.t.Helper()
	m, err := f.store.Members().GetByID(f.ctx, id)
	if err != nil {
		f.t.Fatalf("reload member %d: %v", id, err)
	}
	return m
}

func (f *fixture) notifications(memberID uint) []*models.Notification {
	f.t.Helper()
	list, _, err := f.store.Notifications().ListByMember(f.ctx, memberID, 0, 0)
	if err != nil {
		f.t.Fatal(err)
	}
	return list
}

func (f *fixture) countMembers() int64 {
	f.t.Helper()
	_, total, err := f.store.Members().List(f.ctx, allMembers)
	if err != nil {
		f.t.Fatal(err)
	}
	return total
}
