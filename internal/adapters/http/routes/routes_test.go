package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"membership-portal/internal/adapters/http/middleware"
	"membership-portal/internal/adapters/persistence/memstore"
	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/config"
	"membership-portal/internal/core/domain"
	"membership-portal/internal/pkg/password"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	password.Cost = bcrypt.MinCost
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Data    json.RawMessage   `json:"data"`
	Fields  map[string]string `json:"fields"`
	Meta    *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

type testServer struct {
	t     *testing.T
	app   *fiber.App
	store *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		AppMode:  "dev",
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		JWT: config.JWTConfig{
			Secret:           "routes-access-secret",
			RefreshSecret:    "routes-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	store := memstore.New()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, store, cfg)
	return &testServer{t: t, app: app, store: store}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		s.t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func (s *testServer) login(login, pass string) string {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"login": login, "password": pass})
	if status != http.StatusOK {
		s.t.Fatalf("login %s: status %d (%s)", login, status, env.Error)
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		s.t.Fatal(err)
	}
	return data.AccessToken
}

// setRole rewrites the role row created at registration
func (s *testServer) setRole(memberID uint, role domain.Role, mandalam string) {
	s.t.Helper()
	ctx := context.Background()
	row, err := s.store.Roles().GetByMemberID(ctx, memberID)
	if err != nil {
		s.t.Fatalf("load role: %v", err)
	}
	row.Role = string(role)
	row.MandalamAccess = mandalam
	if err := s.store.Roles().Save(ctx, row); err != nil {
		s.t.Fatalf("save role: %v", err)
	}
}

func registration(email, phone, eid string) map[string]interface{} {
	return map[string]interface{}{
		"name":             "Anil Kumar",
		"email":            email,
		"phone":            phone,
		"emirates_id":      eid,
		"emirate":          "Dubai",
		"mandalam":         "VADAKARA",
		"password":         "secret-pass",
		"confirm_password": "secret-pass",
	}
}

func TestHealthCheckReportsMemoryStore(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Checks["database"] != "in-memory" {
		t.Errorf("checks = %v", body.Checks)
	}
}

func TestRegisterLoginAndProfile(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodPost, "/api/v1/auth/register", "", registration("Anil@Example.com", "0501234567", "784-1990-1234567-1"))
	if status != http.StatusCreated {
		t.Fatalf("register: status %d (%s %v)", status, env.Error, env.Fields)
	}

	status, env = s.do(http.MethodPost, "/api/v1/auth/register", "", registration("anil@example.com", "0507654321", "784199076543210"))
	if status != http.StatusConflict {
		t.Errorf("duplicate email: status %d, want 409", status)
	}

	status, env = s.do(http.MethodPost, "/api/v1/auth/register", "", registration("other@example.com", "0507654321", "78419901234"))
	if status != http.StatusBadRequest {
		t.Errorf("short emirates id: status %d, want 400", status)
	}

	token := s.login("anil@example.com", "secret-pass")
	status, env = s.do(http.MethodGet, "/api/v1/profile", token, nil)
	if status != http.StatusOK {
		t.Fatalf("profile: status %d (%s)", status, env.Error)
	}
	var profile models.MemberResponse
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatal(err)
	}
	if profile.Status != string(domain.StatusPending) || profile.EmiratesID != "784199012345671" {
		t.Errorf("profile = status %q eid %q", profile.Status, profile.EmiratesID)
	}

	status, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"login": "anil@example.com", "password": "wrong-pass"})
	if status != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/profile", "/api/v1/notifications", "/api/v1/admin/members"} {
		if status, _ := s.do(http.MethodGet, path, "", nil); status != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want 401", path, status)
		}
	}
	if status, _ := s.do(http.MethodGet, "/api/v1/profile", "not-a-jwt", nil); status != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", status)
	}
}

func TestAdminRoutesFollowTokenRole(t *testing.T) {
	s := newTestServer(t)

	if status, env := s.do(http.MethodPost, "/api/v1/auth/register", "", registration("lead@example.com", "0501111111", "784199011111111")); status != http.StatusCreated {
		t.Fatalf("register: status %d (%s)", status, env.Error)
	}
	token := s.login("lead@example.com", "secret-pass")
	if status, _ := s.do(http.MethodGet, "/api/v1/admin/members", token, nil); status != http.StatusForbidden {
		t.Fatalf("user on admin route: status %d, want 403", status)
	}

	ctx := context.Background()
	member, err := s.store.Members().GetByLogin(ctx, "lead@example.com")
	if err != nil {
		t.Fatal(err)
	}
	s.setRole(member.ID, domain.RoleAdmin, "")

	// the old token still carries the user role
	if status, _ := s.do(http.MethodGet, "/api/v1/admin/members", token, nil); status != http.StatusForbidden {
		t.Errorf("stale token: status %d, want 403", status)
	}

	token = s.login("lead@example.com", "secret-pass")
	status, env := s.do(http.MethodGet, "/api/v1/admin/members", token, nil)
	if status != http.StatusOK {
		t.Fatalf("admin list: status %d (%s)", status, env.Error)
	}
	if env.Meta == nil || env.Meta.Total != 1 {
		t.Errorf("meta = %+v, want total 1", env.Meta)
	}

	// admins cannot manage years
	if status, _ := s.do(http.MethodPost, "/api/v1/admin/years", token, map[string]int{"year": 2027}); status != http.StatusForbidden {
		t.Errorf("create year as admin: status %d, want 403", status)
	}
}

func TestPublicFormData(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/questions", "/api/v1/payment-recipients"} {
		if status, env := s.do(http.MethodGet, path, "", nil); status != http.StatusOK {
			t.Errorf("%s: status %d (%s)", path, status, env.Error)
		}
	}
}

func (s *testServer) register(email, phone, eid string) uint {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/v1/auth/register", "", registration(email, phone, eid))
	if status != http.StatusCreated {
		s.t.Fatalf("register %s: status %d (%s %v)", email, status, env.Error, env.Fields)
	}
	var data struct {
		Member struct {
			ID uint `json:"id"`
		} `json:"member"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		s.t.Fatal(err)
	}
	return data.Member.ID
}

func TestRegistrationApprovalPaymentScenario(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	if err := s.store.Years().Create(ctx, &models.YearConfig{Year: 2025, IsActive: true, RegistrationFee: 60, RenewalFee: 50}); err != nil {
		t.Fatal(err)
	}

	adminID := s.register("admin@example.com", "0502222222", "784199022222222")
	s.setRole(adminID, domain.RoleMandalamAdmin, "VADAKARA")
	adminToken := s.login("admin@example.com", "secret-pass")

	// a registrant cannot claim the renewal fee
	body := registration("member@example.com", "0503333333", "784199033333333")
	body["is_reregistration"] = true
	status, env := s.do(http.MethodPost, "/api/v1/auth/register", "", body)
	if status != http.StatusCreated {
		t.Fatalf("register: status %d (%s %v)", status, env.Error, env.Fields)
	}
	var registered struct {
		Member struct {
			ID uint `json:"id"`
		} `json:"member"`
	}
	if err := json.Unmarshal(env.Data, &registered); err != nil {
		t.Fatal(err)
	}
	memberID := registered.Member.ID
	memberToken := s.login("member@example.com", "secret-pass")
	memberPath := "/api/v1/admin/members/" + strconv.FormatUint(uint64(memberID), 10)

	payment := map[string]interface{}{"amount": 60, "remarks": "bank transfer ref 991"}
	if status, _ := s.do(http.MethodPost, "/api/v1/profile/payment", memberToken, payment); status == http.StatusOK {
		t.Fatal("pending member submitted a payment")
	}

	if status, env := s.do(http.MethodPut, memberPath+"/approval", adminToken, map[string]bool{"approved": true}); status != http.StatusOK {
		t.Fatalf("approve: status %d (%s)", status, env.Error)
	}

	status, env = s.do(http.MethodGet, "/api/v1/profile/fee", memberToken, nil)
	if status != http.StatusOK {
		t.Fatalf("fee: status %d (%s)", status, env.Error)
	}
	var fee struct {
		Amount int `json:"amount"`
	}
	if err := json.Unmarshal(env.Data, &fee); err != nil {
		t.Fatal(err)
	}
	if fee.Amount != 60 {
		t.Errorf("fee = %d, want 60", fee.Amount)
	}

	if status, env := s.do(http.MethodPost, "/api/v1/profile/payment", memberToken, payment); status != http.StatusOK {
		t.Fatalf("submit payment: status %d (%s)", status, env.Error)
	}
	if status, _ := s.do(http.MethodGet, "/api/v1/profile/card", memberToken, nil); status != http.StatusConflict {
		t.Errorf("card before payment approval: status %d, want 409", status)
	}

	// mandalam admins approve registrations but not payments
	if status, _ := s.do(http.MethodPut, memberPath+"/payment", adminToken, map[string]bool{"approved": true}); status != http.StatusForbidden {
		t.Errorf("mandalam admin payment review: status %d, want 403", status)
	}
	s.setRole(adminID, domain.RoleAdmin, "")
	if status, env := s.do(http.MethodPut, memberPath+"/payment", adminToken, map[string]bool{"approved": true}); status != http.StatusOK {
		t.Fatalf("approve payment: status %d (%s)", status, env.Error)
	}

	status, env = s.do(http.MethodGet, "/api/v1/profile/card", memberToken, nil)
	if status != http.StatusOK {
		t.Fatalf("card: status %d (%s)", status, env.Error)
	}

	status, env = s.do(http.MethodGet, "/api/v1/notifications/unread-count", memberToken, nil)
	if status != http.StatusOK {
		t.Fatalf("unread count: status %d (%s)", status, env.Error)
	}
	var unread struct {
		Unread int64 `json:"unread"`
	}
	if err := json.Unmarshal(env.Data, &unread); err != nil {
		t.Fatal(err)
	}
	if unread.Unread != 2 {
		t.Errorf("unread = %d, want approval and payment notices", unread.Unread)
	}

	status, env = s.do(http.MethodPost, memberPath+"/benefits", adminToken, map[string]interface{}{"type": "hospital", "amount_paid": 750})
	if status != http.StatusCreated {
		t.Fatalf("add benefit: status %d (%s %v)", status, env.Error, env.Fields)
	}
	var benefit struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &benefit); err != nil {
		t.Fatal(err)
	}
	// the claim is only reachable under its own member
	wrongPath := "/api/v1/admin/members/" + strconv.FormatUint(uint64(adminID), 10) + "/benefits/" + strconv.FormatUint(uint64(benefit.ID), 10)
	if status, _ := s.do(http.MethodDelete, wrongPath, adminToken, nil); status != http.StatusNotFound {
		t.Errorf("delete under another member: status %d, want 404", status)
	}
	rightPath := memberPath + "/benefits/" + strconv.FormatUint(uint64(benefit.ID), 10)
	if status, env := s.do(http.MethodDelete, rightPath, adminToken, nil); status != http.StatusOK {
		t.Errorf("delete: status %d (%s)", status, env.Error)
	}
}
