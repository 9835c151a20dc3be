package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge/taskforge-api/internal/api/handler"
	"github.com/taskforge/taskforge-api/internal/api/middleware"
	"github.com/taskforge/taskforge-api/internal/core/domain"
	"github.com/taskforge/taskforge-api/internal/core/ports"
	"github.com/taskforge/taskforge-api/internal/core/service"
	"github.com/taskforge/taskforge-api/internal/pkg/hash"
	"github.com/taskforge/taskforge-api/internal/pkg/token"
)

// memoryIdentityRepo is an in-memory ports.IdentityRepository with the same
// uniqueness semantics as the Mongo implementation.
type memoryIdentityRepo struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Identity
	nextID int
}

func newMemoryIdentityRepo() *memoryIdentityRepo {
	return &memoryIdentityRepo{byID: make(map[string]*domain.Identity)}
}

func (r *memoryIdentityRepo) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == identity.Username || existing.Email == identity.Email {
			return nil, domain.NewDuplicateError("username or email already taken")
		}
	}
	r.nextID++
	created := *identity
	created.ID = fmt.Sprintf("id-%d", r.nextID)
	r.byID[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *memoryIdentityRepo) FindByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, identity := range r.byID {
		if identity.Username == username {
			clone := *identity
			return &clone, nil
		}
	}
	return nil, domain.NewNotFoundError("identity not found")
}

func (r *memoryIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if identity, ok := r.byID[id]; ok {
		clone := *identity
		return &clone, nil
	}
	return nil, domain.NewNotFoundError("identity not found")
}

func (r *memoryIdentityRepo) List(_ context.Context) ([]domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identities := make([]domain.Identity, 0, len(r.byID))
	for _, identity := range r.byID {
		identities = append(identities, *identity)
	}
	return identities, nil
}

func (r *memoryIdentityRepo) Update(_ context.Context, id string, update ports.IdentityUpdate) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("identity not found")
	}
	if update.Email != nil {
		for otherID, other := range r.byID {
			if otherID != id && other.Email == *update.Email {
				return nil, domain.NewDuplicateError("email already taken")
			}
		}
		identity.Email = *update.Email
	}
	if update.Role != nil {
		identity.Role = *update.Role
	}
	if update.IsActive != nil {
		identity.IsActive = *update.IsActive
	}
	if update.PasswordHash != nil {
		identity.PasswordHash = *update.PasswordHash
	}
	identity.UpdatedAt = time.Now().UTC()
	clone := *identity
	return &clone, nil
}

func (r *memoryIdentityRepo) RecordLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byID[id]
	if !ok {
		return domain.NewNotFoundError("identity not found")
	}
	if identity.LastLoginAt == nil || at.After(*identity.LastLoginAt) {
		identity.LastLoginAt = &at
	}
	return nil
}

// newTestServer assembles the real handler/middleware/service stack on top of
// the in-memory repository, mirroring NewRouter minus the external stores.
func newTestServer(t *testing.T, repo ports.IdentityRepository, tokens *token.Manager) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	authService := service.NewAuthService(repo, hash.NewBcrypt(bcrypt.MinCost), tokens, nil, nil, log)
	identityService := service.NewIdentityService(repo, log)

	authHandler := handler.NewAuthHandler(authService)
	identityHandler := handler.NewIdentityHandler(identityService, authService)
	resourceHandler := handler.NewResourceHandler()

	gate := middleware.Auth(tokens, repo, log)

	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	protected := e.Group("/api", gate)
	protected.GET("/me", identityHandler.Me)
	protected.PUT("/me/password", identityHandler.ChangePassword)
	protected.GET("/projects", resourceHandler.Projects, middleware.RequireRole(domain.RoleEmployee))
	protected.GET("/reports", resourceHandler.Reports, middleware.RequireRole(domain.RoleAdmin))

	users := protected.Group("/users", middleware.RequireRole(domain.RoleAdmin))
	users.GET("", identityHandler.List)
	users.GET("/:id", identityHandler.Get)
	users.PATCH("/:id", identityHandler.Update)

	return e
}

func doJSON(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestEndToEndEmployeeFlow(t *testing.T) {
	repo := newMemoryIdentityRepo()
	tokens := token.NewManager("e2e-secret", time.Hour)
	e := newTestServer(t, repo, tokens)

	// Register alice as an employee.
	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"username":"alice01","email":"a@x.com","password":"secret1","name":"A","surname":"L","role":"employee"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Login returns identity + token.
	rec = doJSON(e, http.MethodPost, "/auth/login", `{"username":"alice01","password":"secret1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Identity struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"identity"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("login response: %v", err)
	}
	if login.Token == "" {
		t.Fatalf("login response missing token")
	}

	claims, err := tokens.Verify(login.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.IdentityID != login.Identity.ID {
		t.Fatalf("token identity %s != created identity %s", claims.IdentityID, login.Identity.ID)
	}

	// Admin-only endpoint: forbidden for an employee.
	rec = doJSON(e, http.MethodGet, "/api/reports", "", login.Token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("reports: expected 403, got %d", rec.Code)
	}

	// Employee-or-higher endpoint: admitted.
	rec = doJSON(e, http.MethodGet, "/api/projects", "", login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("projects: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Self endpoint reflects the gate-attached identity.
	rec = doJSON(e, http.MethodGet, "/api/me", "", login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"alice01"`) {
		t.Fatalf("me: unexpected body %s", rec.Body.String())
	}
}

func TestEndToEndAdminAccess(t *testing.T) {
	repo := newMemoryIdentityRepo()
	tokens := token.NewManager("e2e-secret", time.Hour)
	e := newTestServer(t, repo, tokens)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"username":"root01","email":"r@x.com","password":"secret1","name":"R","surname":"T","role":"admin"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/auth/login", `{"username":"root01","password":"secret1"}`, "")
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("login response: %v", err)
	}

	// Admin passes both the admin gate and the employee-or-higher gate.
	if rec = doJSON(e, http.MethodGet, "/api/reports", "", login.Token); rec.Code != http.StatusOK {
		t.Fatalf("reports: expected 200, got %d", rec.Code)
	}
	if rec = doJSON(e, http.MethodGet, "/api/projects", "", login.Token); rec.Code != http.StatusOK {
		t.Fatalf("projects: expected 200, got %d", rec.Code)
	}
	if rec = doJSON(e, http.MethodGet, "/api/users", "", login.Token); rec.Code != http.StatusOK {
		t.Fatalf("users: expected 200, got %d", rec.Code)
	}
}

func TestEndToEndUnauthenticated(t *testing.T) {
	repo := newMemoryIdentityRepo()
	tokens := token.NewManager("e2e-secret", time.Hour)
	e := newTestServer(t, repo, tokens)

	// No credential.
	if rec := doJSON(e, http.MethodGet, "/api/projects", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}
	// Garbage credential.
	if rec := doJSON(e, http.MethodGet, "/api/projects", "", "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}
	// Expired credential for an identity that does exist, so the rejection
	// can only come from the token's timestamps.
	if rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"username":"alice01","email":"a@x.com","password":"secret1","name":"A","surname":"L"}`, ""); rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}
	expired, err := token.NewManager("e2e-secret", -time.Minute).Issue("id-1", domain.RoleEmployee)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if rec := doJSON(e, http.MethodGet, "/api/projects", "", expired); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", rec.Code)
	}
}

func TestEndToEndDeactivationTakesImmediateEffect(t *testing.T) {
	repo := newMemoryIdentityRepo()
	tokens := token.NewManager("e2e-secret", time.Hour)
	e := newTestServer(t, repo, tokens)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"username":"alice01","email":"a@x.com","password":"secret1","name":"A","surname":"L"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/auth/login", `{"username":"alice01","password":"secret1"}`, "")
	var login struct {
		Identity struct {
			ID string `json:"id"`
		} `json:"identity"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("login response: %v", err)
	}

	// Deactivate behind the API's back, as an admin would.
	inactive := false
	if _, err := repo.Update(context.Background(), login.Identity.ID, ports.IdentityUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// The still-unexpired token no longer admits.
	if rec := doJSON(e, http.MethodGet, "/api/projects", "", login.Token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated: expected 401, got %d", rec.Code)
	}

	// And a fresh login with correct credentials fails generically.
	rec = doJSON(e, http.MethodPost, "/auth/login", `{"username":"alice01","password":"secret1"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login deactivated: expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Fatalf("login failure must stay generic, got %s", rec.Body.String())
	}
}

func TestEndToEndDuplicateRegistration(t *testing.T) {
	repo := newMemoryIdentityRepo()
	tokens := token.NewManager("e2e-secret", time.Hour)
	e := newTestServer(t, repo, tokens)

	body := `{"username":"alice01","email":"a@x.com","password":"secret1","name":"A","surname":"L"}`
	if rec := doJSON(e, http.MethodPost, "/auth/register", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", rec.Code)
	}
	second := `{"username":"alice01","email":"other@x.com","password":"secret1","name":"A","surname":"L"}`
	if rec := doJSON(e, http.MethodPost, "/auth/register", second, ""); rec.Code != http.StatusConflict {
		t.Fatalf("second register: expected 409, got %d", rec.Code)
	}
}
