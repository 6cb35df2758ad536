package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rolegate/rolegate/internal/api/handler"
	"github.com/rolegate/rolegate/internal/api/sessioncookie"
	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/core/service"
	"github.com/rolegate/rolegate/internal/infrastructure/hashing"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// ---------------------------------------------------------------------------
// In-memory stores
// ---------------------------------------------------------------------------

type memCredentials struct {
	mu   sync.Mutex
	byID map[string]domain.Identity
}

func (m *memCredentials) Create(_ context.Context, i *domain.Identity) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == i.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	created := *i
	created.ID = "id-" + strconv.Itoa(len(m.byID)+1)
	m.byID[created.ID] = created
	return &created, nil
}

func (m *memCredentials) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.byID {
		if i.Email == email {
			found := i
			return &found, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (m *memCredentials) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return &i, nil
}

type memSessions struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *memSessions) Save(_ context.Context, id, identityID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = identityID
	return nil
}

func (s *memSessions) Lookup(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[id]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return v, nil
}

func (s *memSessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type harness struct {
	e         *echo.Echo
	registrar *service.Registrar
	sessions  *memSessions
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zerolog.Nop()
	creds := &memCredentials{byID: make(map[string]domain.Identity)}
	sessions := &memSessions{m: make(map[string]string)}
	hasher := hashing.NewBcrypt(bcrypt.MinCost)

	manager := service.NewSessionManager(sessions, creds, time.Hour, log)
	registrar := service.NewRegistrar(creds, hasher, log)
	login := service.NewLoginService(service.NewAuthenticator(creds, hasher, log), manager, log)

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Login:      login,
		Registrar:  registrar,
		Sessions:   manager,
		Codec:      sessioncookie.NewCodec("sid", testSecret, false),
		Health:     []handler.Dependency{{Name: "memory", Ping: func(context.Context) error { return nil }}},
		Log:        log,
		Registerer: reg,
		Gatherer:   reg,
	})
	return &harness{e: e, registrar: registrar, sessions: sessions}
}

func (h *harness) seed(t *testing.T, name, email, password string, role domain.Role) {
	t.Helper()
	if _, err := h.registrar.Register(context.Background(), domain.Registration{Name: name, Email: email, Password: password, Role: role}); err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
}

func (h *harness) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range cookies {
		if ck != nil {
			req.AddCookie(ck)
		}
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(t *testing.T, email, password string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	rec := h.do(http.MethodPost, "/login", url.Values{"email": {email}, "password": {password}})
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "sid" && ck.Value != "" {
			return rec, ck
		}
	}
	return rec, nil
}

func location(rec *httptest.ResponseRecorder) string {
	return rec.Header().Get(echo.HeaderLocation)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRouter_StaffLoginScenario(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "Ann", "a@x.com", "secret1", domain.RoleStaff)

	rec, sid := h.login(t, "a@x.com", "secret1")
	if rec.Code != http.StatusFound || location(rec) != "/staff" {
		t.Fatalf("expected redirect to /staff, got %d %q", rec.Code, location(rec))
	}
	if sid == nil {
		t.Fatalf("expected session cookie")
	}

	if rec := h.do(http.MethodGet, "/staff", nil, sid); rec.Code != http.StatusOK {
		t.Fatalf("staff area: expected 200, got %d", rec.Code)
	}
	if rec := h.do(http.MethodGet, "/", nil, sid); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Ann"`) {
		t.Fatalf("index: expected 200 with name, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(http.MethodGet, "/admin", nil, sid); rec.Code != http.StatusFound || location(rec) != "/login" {
		t.Fatalf("admin area: expected redirect to /login, got %d %q", rec.Code, location(rec))
	}
	if rec := h.do(http.MethodGet, "/login", nil, sid); rec.Code != http.StatusFound || location(rec) != "/staff" {
		t.Fatalf("login page while authenticated: expected redirect to /staff, got %d %q", rec.Code, location(rec))
	}
}

func TestRouter_WrongPassword(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "Ann", "a@x.com", "secret1", domain.RoleStaff)

	rec, sid := h.login(t, "a@x.com", "wrong")
	if rec.Code != http.StatusFound || location(rec) != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, location(rec))
	}
	if sid != nil {
		t.Fatalf("no session cookie expected")
	}

	var flash *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "rolegate_flash" {
			flash = ck
		}
	}
	page := h.do(http.MethodGet, "/login", nil, flash)
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), "invalid email or password") {
		t.Fatalf("expected login page with flash, got %d %s", page.Code, page.Body.String())
	}

	// Unknown email yields the same message.
	rec, _ = h.login(t, "ghost@x.com", "secret1")
	if rec.Code != http.StatusFound || location(rec) != "/login" {
		t.Fatalf("expected redirect to /login, got %d", rec.Code)
	}
}

func TestRouter_LandingByRole(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "Root", "root@x.com", "secret1", domain.RoleAdmin)
	h.seed(t, "Gus", "gus@x.com", "secret1", domain.RoleGuest)

	rec, admin := h.login(t, "root@x.com", "secret1")
	if location(rec) != "/admin" {
		t.Fatalf("admin: expected /admin, got %q", location(rec))
	}
	if rec := h.do(http.MethodGet, "/admin", nil, admin); rec.Code != http.StatusOK {
		t.Fatalf("admin area: expected 200, got %d", rec.Code)
	}
	if rec := h.do(http.MethodGet, "/staff", nil, admin); rec.Code != http.StatusOK {
		t.Fatalf("staff area for admin: expected 200, got %d", rec.Code)
	}

	rec, guest := h.login(t, "gus@x.com", "secret1")
	if location(rec) != "/" {
		t.Fatalf("guest: expected /, got %q", location(rec))
	}
	if rec := h.do(http.MethodGet, "/staff", nil, guest); rec.Code != http.StatusFound {
		t.Fatalf("staff area for guest: expected redirect, got %d", rec.Code)
	}
}

func TestRouter_AnonymousRedirects(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/", "/admin", "/staff"} {
		rec := h.do(http.MethodGet, path, nil)
		if rec.Code != http.StatusFound || location(rec) != "/login" {
			t.Fatalf("%s: expected redirect to /login, got %d %q", path, rec.Code, location(rec))
		}
	}
	if rec := h.do(http.MethodGet, "/login", nil); rec.Code != http.StatusOK {
		t.Fatalf("login page: expected 200, got %d", rec.Code)
	}
	if rec := h.do(http.MethodGet, "/register", nil); rec.Code != http.StatusOK {
		t.Fatalf("register page: expected 200, got %d", rec.Code)
	}
}

func TestRouter_RegisterCreatesGuest(t *testing.T) {
	h := newHarness(t)

	form := url.Values{"name": {"Eve"}, "email": {"eve@x.com"}, "password": {"secret1"}, "role": {"admin"}}
	rec := h.do(http.MethodPost, "/register", form)
	if rec.Code != http.StatusFound || location(rec) != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, location(rec))
	}

	rec, sid := h.login(t, "eve@x.com", "secret1")
	if location(rec) != "/" {
		t.Fatalf("self-registered identity must land as guest, got %q", location(rec))
	}
	if rec := h.do(http.MethodGet, "/admin", nil, sid); rec.Code != http.StatusFound {
		t.Fatalf("self-registered identity must not reach admin area, got %d", rec.Code)
	}

	dup := h.do(http.MethodPost, "/register", form)
	if dup.Code != http.StatusFound || location(dup) != "/register" {
		t.Fatalf("duplicate: expected redirect to /register, got %d %q", dup.Code, location(dup))
	}
}

func TestRouter_LogoutViaMethodOverride(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "Ann", "a@x.com", "secret1", domain.RoleStaff)
	_, sid := h.login(t, "a@x.com", "secret1")

	rec := h.do(http.MethodPost, "/logout", url.Values{"_method": {"DELETE"}}, sid)
	if rec.Code != http.StatusSeeOther || location(rec) != "/login" {
		t.Fatalf("expected 303 to /login, got %d %q", rec.Code, location(rec))
	}
	if len(h.sessions.m) != 0 {
		t.Fatalf("expected session store to be empty, got %d", len(h.sessions.m))
	}

	// The old cookie no longer authenticates.
	if rec := h.do(http.MethodGet, "/", nil, sid); rec.Code != http.StatusFound || location(rec) != "/login" {
		t.Fatalf("expected redirect after logout, got %d", rec.Code)
	}
	// Logging out again is harmless.
	if rec := h.do(http.MethodDelete, "/logout", nil, sid); rec.Code != http.StatusSeeOther {
		t.Fatalf("repeated logout: expected 303, got %d", rec.Code)
	}
}

func TestRouter_AdminCreatesIdentity(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "Root", "root@x.com", "secret1", domain.RoleAdmin)
	h.seed(t, "Ann", "a@x.com", "secret1", domain.RoleStaff)
	_, admin := h.login(t, "root@x.com", "secret1")
	_, staff := h.login(t, "a@x.com", "secret1")

	post := func(body string, ck *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/identities", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(ck)
		rec := httptest.NewRecorder()
		h.e.ServeHTTP(rec, req)
		return rec
	}

	body := `{"name":"Sam","email":"sam@x.com","password":"secret1","role":"staff"}`
	if rec := post(body, staff); rec.Code != http.StatusFound {
		t.Fatalf("staff must not create identities, got %d", rec.Code)
	}
	if rec := post(body, admin); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := post(body, admin); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}
	if rec := post(`{"name":"Sam","email":"sam2@x.com","password":"secret1","role":"root"}`, admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on bad role, got %d", rec.Code)
	}

	rec, _ := h.login(t, "sam@x.com", "secret1")
	if location(rec) != "/staff" {
		t.Fatalf("created staff should land on /staff, got %q", location(rec))
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	if rec := h.do(http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := h.do(http.MethodGet, "/health/ready", nil); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
	h.do(http.MethodGet, "/login", nil)
	rec := h.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "rolegate_requests_total") {
		t.Fatalf("metrics: expected request counter, got %d", rec.Code)
	}
}
