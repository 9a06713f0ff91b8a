package httpserver

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

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/metrics"
	"github.com/Skotchmaster/charity/internal/models"
	"github.com/Skotchmaster/charity/internal/repo"
	"github.com/Skotchmaster/charity/internal/service"
	"github.com/Skotchmaster/charity/pkg/hash"
	authmw "github.com/Skotchmaster/charity/pkg/middleware/auth"
	"github.com/Skotchmaster/charity/pkg/tokens"
)

type captureMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *captureMailer) SendVerification(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[email] = token
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, token string) error {
	return m.SendVerification(context.Background(), email, token)
}

func (m *captureMailer) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type testServer struct {
	e      *echo.Echo
	repo   *repo.GormRepo
	mail   *captureMailer
	hasher hash.Hasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	r := repo.New(gdb)
	mail := &captureMailer{tokens: map[string]string{}}
	hasher := &hash.Bcrypt{Cost: bcrypt.MinCost}

	authSvc := &service.AuthService{
		Users:  r,
		Tokens: r,
		Hasher: hasher,
		Issuer: &tokens.Issuer{
			AccessSecret:  []byte("access-secret"),
			RefreshSecret: []byte("refresh-secret"),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
		},
	}
	m := metrics.New("charity-test")

	e := echo.New()
	Register(e, &Deps{
		Auth: &AuthHTTP{Svc: authSvc, Metrics: m},
		Users: &UsersHTTP{
			Svc:      &service.UserService{Users: r, Roles: r, Hasher: hasher, Mailer: mail, Sessions: r},
			Recovery: &service.RecoveryService{Users: r, Recovery: r, Hasher: hasher, Mailer: mail, Sessions: r, TTL: 24 * time.Hour},
		},
		Categories:   &CategoriesHTTP{Svc: &service.CategoryService{Store: r}},
		Institutions: &InstitutionsHTTP{Svc: &service.InstitutionService{Store: r}},
		Donations: &DonationsHTTP{Svc: &service.DonationService{
			Donations: r, Categories: r, Institutions: r, Users: r,
		}},
		Admin: &AdminHTTP{Svc: &service.AdminService{
			Users: r, Roles: r, Categories: r, Institutions: r, Hasher: hasher, Sessions: r,
		}},
		AuthMW:  authmw.New(authSvc),
		Metrics: m,
		Ready:   func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
	})

	return &testServer{e: e, repo: r, mail: mail, hasher: hasher}
}

func (s *testServer) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) addUser(t *testing.T, email string, roles ...string) *domain.User {
	t.Helper()
	ctx := context.Background()
	pw, err := s.hasher.Hash("secret1")
	require.NoError(t, err)
	u := &domain.User{
		Email:        email,
		Name:         "Jan",
		LastName:     "Kowalski",
		PasswordHash: pw,
		Enabled:      true,
		Token:        domain.VerifiedToken,
		CreatedAt:    time.Now().UTC(),
	}
	for _, name := range roles {
		role, err := s.repo.EnsureRole(ctx, name)
		require.NoError(t, err)
		u.Roles = append(u.Roles, *role)
	}
	require.NoError(t, s.repo.CreateUser(ctx, u))
	return u
}

type loginBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message"`
}

func (s *testServer) login(t *testing.T, email string) loginBody {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/login", fmt.Sprintf(`{"username":%q,"password":"secret1"}`, email), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out loginBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)
	return out
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", "").Code)

	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRegistrationActivationAndSession(t *testing.T) {
	s := newTestServer(t)
	const email = "ola@example.com"

	rec := s.do(t, http.MethodPost, "/api/users/registration",
		`{"email":"ola@example.com","name":"Ola","lastName":"Nowak","password":"secret1","repeatPassword":"secret1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reg := decode[map[string]any](t, rec)
	assert.Equal(t, true, reg["successful"])
	assert.Equal(t, service.MsgRegistered, reg["message"])
	assert.NotContains(t, rec.Body.String(), "secret1")

	rec = s.do(t, http.MethodPost, "/login", `{"username":"ola@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	refused := decode[loginBody](t, rec)
	assert.Equal(t, service.MsgNotActivated, refused.Message)
	assert.Empty(t, refused.AccessToken)

	token := s.mail.token(email)
	require.NotEmpty(t, token)
	rec = s.do(t, http.MethodGet, "/api/users/verification?token="+token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	act := decode[map[string]any](t, rec)
	assert.Equal(t, true, act["successful"])
	assert.Equal(t, service.MsgActivated, act["message"])

	pair := s.login(t, email)
	assert.Equal(t, service.MsgLoginSuccessful, pair.Message)

	rec = s.do(t, http.MethodGet, "/api/users/me", "", pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), email)

	rec = s.do(t, http.MethodPost, "/logout", "", pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users/me", "", pair.AccessToken).Code)
}

func TestRegistrationValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/users/registration",
		`{"email":"not-an-email","name":" ","lastName":"Nowak","password":"secret1","repeatPassword":"secret1"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[struct {
		Message string               `json:"message"`
		Errors  []service.FieldError `json:"errors"`
	}](t, rec)
	assert.Equal(t, "validation failed", body.Message)
	fields := map[string]bool{}
	for _, f := range body.Errors {
		fields[f.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["name"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "jan@example.com", domain.RoleUser)

	for name, body := range map[string]string{
		"wrong password": `{"username":"jan@example.com","password":"nope"}`,
		"unknown user":   `{"username":"ghost@example.com","password":"secret1"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/login", body, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid username or password")
		})
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "jan@example.com", domain.RoleUser)
	first := s.login(t, "jan@example.com")

	rec := s.do(t, http.MethodPost, "/refresh_token", "", first.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decode[loginBody](t, rec)
	assert.Equal(t, service.MsgTokenRefreshed, second.Message)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/refresh_token", "", first.RefreshToken).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users/me", "", first.AccessToken).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/users/me", "", second.AccessToken).Code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "user@example.com", domain.RoleUser)
	s.addUser(t, "admin@example.com", domain.RoleUser, domain.RoleAdmin)
	s.addUser(t, "root@example.com", domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin)

	user := s.login(t, "user@example.com").AccessToken
	admin := s.login(t, "admin@example.com").AccessToken
	root := s.login(t, "root@example.com").AccessToken

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/categories/add", `{"name":"Toys"}`, "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/categories/add", `{"name":"Toys"}`, user).Code)

	rec := s.do(t, http.MethodPost, "/api/categories/add", `{"name":"Toys"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cat := decode[map[string]any](t, rec)
	path := fmt.Sprintf("/api/categories/%v", cat["id"])

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, path, "", admin).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, path, "", root).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, "", "").Code)
}

func TestAccountChangesReachLiveSessions(t *testing.T) {
	s := newTestServer(t)
	admin := s.addUser(t, "admin@example.com", domain.RoleUser, domain.RoleAdmin)
	s.addUser(t, "root@example.com", domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin)
	userRole, err := s.repo.EnsureRole(context.Background(), domain.RoleUser)
	require.NoError(t, err)

	adminTok := s.login(t, "admin@example.com").AccessToken
	root := s.login(t, "root@example.com").AccessToken
	adminPath := fmt.Sprintf("/api/users/%d", admin.ID)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/users", "", adminTok).Code)

	rec := s.do(t, http.MethodPut, adminPath, fmt.Sprintf(`{"roleIdList":[%d]}`, userRole.ID), root)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/users", "", adminTok).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/users/me", "", adminTok).Code)

	rec = s.do(t, http.MethodPut, adminPath, `{"enabled":false}`, root)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users/me", "", adminTok).Code)

	rec = s.do(t, http.MethodPut, adminPath, `{"enabled":true}`, root)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fresh := s.login(t, "admin@example.com").AccessToken
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/users/me", "", fresh).Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/password", admin.ID),
		`{"password":"newpass1","repeatPassword":"newpass1"}`, root)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users/me", "", fresh).Code)
}

func TestSelfDeleteIsForbidden(t *testing.T) {
	s := newTestServer(t)
	root := s.addUser(t, "root@example.com", domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin)
	victim := s.addUser(t, "jan@example.com", domain.RoleUser)
	token := s.login(t, "root@example.com").AccessToken

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", root.ID), "", token).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", victim.ID), "", token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/users/abc", "", token).Code)
}

func TestDonations(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	s.addUser(t, "jan@example.com", domain.RoleUser)
	token := s.login(t, "jan@example.com").AccessToken

	cat := &domain.Category{Name: "Clothes"}
	require.NoError(t, s.repo.CreateCategory(ctx, cat))
	inst := &domain.Institution{Name: "Shelter", Description: "Help for the homeless"}
	require.NoError(t, s.repo.CreateInstitution(ctx, inst))

	donation := func(qty int) string {
		return fmt.Sprintf(`{"quantity":%d,"categoryIdList":[%d],"institutionId":%d,"donationAddress":{
			"street":"Main 1","city":"Warsaw","zipCode":"00-001","phoneNumber":"123456789",
			"pickUpDate":"2030-05-01","pickUpTime":"10:30","pickUpComment":""}}`, qty, cat.ID, inst.ID)
	}

	t.Run("zero quantity is rejected", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/donations/add", donation(0), token)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "quantity")
	})

	t.Run("created for the caller", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/donations/add", donation(3), token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		d := decode[map[string]any](t, rec)
		assert.Equal(t, false, d["received"])
		assert.EqualValues(t, 3, d["quantity"])

		mine := s.do(t, http.MethodGet, "/api/donations/mine", "", token)
		require.Equal(t, http.StatusOK, mine.Code)
		assert.Len(t, decode[[]map[string]any](t, mine), 1)
	})

	t.Run("public stats", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/stats", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		st := decode[map[string]int64](t, rec)
		assert.Equal(t, int64(1), st["donations"])
		assert.Equal(t, int64(3), st["bags"])
	})

	t.Run("listing all needs an admin", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/donations", "", token).Code)
	})
}

func TestRecoveryRoutes(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "jan@example.com", domain.RoleUser)

	rec := s.do(t, http.MethodPost, "/api/users/recovery/ghost@example.com", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.MsgWrongEmail, decode[map[string]any](t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/api/users/recovery/jan@example.com", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.MsgResetLinkSent, decode[map[string]any](t, rec)["message"])
	token := s.mail.token("jan@example.com")
	require.NotEmpty(t, token)

	rec = s.do(t, http.MethodGet, "/api/users/recovery/password?token="+token, "", "")
	assert.Equal(t, service.MsgTokenValid, decode[map[string]any](t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/api/users/recovery/password",
		fmt.Sprintf(`{"token":%q,"password":"newpass1","repeatPassword":"newpass1"}`, token), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.MsgPasswordChanged, decode[map[string]any](t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/login", `{"username":"jan@example.com","password":"newpass1"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleName(t *testing.T) {
	assert.Equal(t, domain.RoleAdmin, roleName("admin"))
	assert.Equal(t, domain.RoleSuperAdmin, roleName("ROLE_SUPER_ADMIN"))
}
