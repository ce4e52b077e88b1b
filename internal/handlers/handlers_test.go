package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/analytics/analyticstest"
	"github.com/boostmysites25/zippty-backend/internal/api"
	"github.com/boostmysites25/zippty-backend/internal/auth"
	"github.com/boostmysites25/zippty-backend/internal/config"
	"github.com/boostmysites25/zippty-backend/internal/handlers"
	"github.com/boostmysites25/zippty-backend/internal/metrics"
	"github.com/boostmysites25/zippty-backend/internal/repository"
	"github.com/boostmysites25/zippty-backend/internal/service"
	"github.com/boostmysites25/zippty-backend/internal/service/admin"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ref = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

// fakeStore backs every service the router needs.
type fakeStore struct {
	admin       repository.Admin
	users       map[primitive.ObjectID]repository.User
	orderCounts map[primitive.ObjectID]int64
	recentLimit int
	pingErr     error
	lookupErr   error
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) AdminExists(_ context.Context, id string) (bool, error) {
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	return id == f.admin.ID.Hex(), nil
}

func (f *fakeStore) FindAdminByEmail(_ context.Context, email string) (repository.Admin, error) {
	if email != f.admin.Email {
		return repository.Admin{}, repository.ErrNotFound
	}
	return f.admin, nil
}

func (f *fakeStore) FindAdminByID(_ context.Context, id string) (repository.Admin, error) {
	if id != f.admin.ID.Hex() {
		return repository.Admin{}, repository.ErrNotFound
	}
	return f.admin, nil
}

func (f *fakeStore) UpdateAdminProfile(_ context.Context, id string, set map[string]any) (repository.Admin, error) {
	if id != f.admin.ID.Hex() {
		return repository.Admin{}, repository.ErrNotFound
	}
	if v, ok := set["name"].(string); ok {
		f.admin.Name = v
	}
	if v, ok := set["email"].(string); ok {
		f.admin.Email = v
	}
	return f.admin.Sanitized(), nil
}

func (f *fakeStore) UpdateAdminPassword(_ context.Context, id, hash string) error {
	f.admin.Password = hash
	return nil
}

func (f *fakeStore) RecentOrders(_ context.Context, limit int) ([]repository.OrderView, error) {
	f.recentLimit = limit
	return nil, nil
}

func (f *fakeStore) FindUserByID(_ context.Context, id primitive.ObjectID) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) OrderStatsForUser(context.Context, primitive.ObjectID) (repository.OrderStats, error) {
	return repository.OrderStats{}, nil
}

func (f *fakeStore) RecentOrdersForUser(context.Context, primitive.ObjectID, int) ([]repository.OrderView, error) {
	return nil, nil
}

func (f *fakeStore) SetUserBlocked(_ context.Context, id primitive.ObjectID, blocked bool) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	u.IsBlocked = blocked
	f.users[id] = u
	return u, nil
}

func (f *fakeStore) CountUserOrders(_ context.Context, id primitive.ObjectID) (int64, error) {
	return f.orderCounts[id], nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) UserStats(context.Context, time.Time) (repository.UserStats, error) {
	return repository.UserStats{TotalUsers: int64(len(f.users)), TopCustomers: []repository.TopCustomer{}}, nil
}

type fixture struct {
	store   *fakeStore
	source  *analyticstest.Source
	tokens  *auth.TokenManager
	handler http.Handler
	user    repository.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hash, err := auth.HashPassword("secret123", 4)
	require.NoError(t, err)

	user := repository.User{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com"}
	store := &fakeStore{
		admin:       repository.Admin{ID: primitive.NewObjectID(), Name: "Root", Email: "admin@zippty.com", Password: hash},
		users:       map[primitive.ObjectID]repository.User{user.ID: user},
		orderCounts: map[primitive.ObjectID]int64{},
	}
	src := analyticstest.New()
	tokens := auth.NewTokenManager([]byte("test-secret-test-secret-test-secret"), time.Hour)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	dash := service.NewDashboardService(src, store, config.DefaultConfig().Dashboard, m)
	dash.SetClock(func() time.Time { return ref })

	v, err := api.NewValidator()
	require.NoError(t, err)

	h := handlers.API{
		Auth:       service.NewAuthService(store, tokens, m),
		Dashboard:  dash,
		Profile:    admin.NewProfileService(store, tokens, 4),
		Users:      admin.NewUsersService(store),
		Store:      store,
		ServerName: "Zippty Admin",
		StartedAt:  time.Now(),
	}
	router := handlers.NewRouter(h, handlers.RouterOptions{
		Authenticator: auth.NewAuthenticator(tokens, store),
		Metrics:       m,
		Gatherer:      reg,
		Validator:     v,
	})
	return &fixture{store: store, source: src, tokens: tokens, handler: router, user: user}
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	tok, _, err := f.tokens.Issue(auth.Principal{ID: f.store.admin.ID.Hex(), Email: f.store.admin.Email, IsAdmin: true})
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *fixture) do(t *testing.T, method, path, body string, authed bool) (int, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token(t))
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body: %s", rr.Body.String())
	return rr.Code, env
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/admin/login", `{"email":" Admin@Zippty.com ","password":"secret123"}`, false)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)
	assert.Equal(t, "Admin login successful", env.Message)

	var data struct {
		Token string         `json:"token"`
		Admin map[string]any `json:"admin"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "admin@zippty.com", data.Admin["email"])
	assert.NotContains(t, data.Admin, "password")

	claims, err := f.tokens.Parse(context.Background(), data.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"wrong password", `{"email":"admin@zippty.com","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown email", `{"email":"who@zippty.com","password":"secret123"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"missing password", `{"email":"admin@zippty.com"}`, http.StatusBadRequest, "Email and password are required"},
		{"empty body", `{}`, http.StatusBadRequest, "Email and password are required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := f.do(t, http.MethodPost, "/api/admin/login", tc.body, false)
			assert.Equal(t, tc.status, code)
			assert.False(t, env.Status)
			assert.Equal(t, tc.message, env.Message)
		})
	}
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	paid := map[string]any{"paymentStatus": "paid", "totalAmount": 50.0}
	f.source.Add(repository.CollectionOrders, ref.Add(-10*24*time.Hour), paid)
	f.source.Add(repository.CollectionOrders, ref.Add(-5*24*time.Hour), paid)
	f.source.Add(repository.CollectionOrders, ref.Add(-40*24*time.Hour), paid)

	code, env := f.do(t, http.MethodGet, "/api/admin/dashboard/stats", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Dashboard stats retrieved successfully", env.Message)

	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 2.0, snap.Orders.Current)
	assert.Equal(t, 1.0, snap.Orders.Previous)
	assert.Equal(t, 100.0, snap.Orders.PercentageChange)
	assert.Equal(t, 100.0, snap.Revenue.Current)
	assert.Equal(t, 0.0, snap.Users.PercentageChange)
	require.Len(t, snap.Sales, 2)
	assert.Equal(t, "2024-05", snap.Sales[0].PeriodKey)
	assert.Equal(t, "2024-06", snap.Sales[1].PeriodKey)
}

func TestDashboardStats_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/admin/dashboard/stats", "", false)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access denied. No token provided.", env.Message)
	assert.Empty(t, f.source.Calls)
}

func TestDashboardStats_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.source.Err = errors.New("mongo: connection reset")

	code, env := f.do(t, http.MethodGet, "/api/admin/dashboard/stats", "", true)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, env.Status)
	assert.Equal(t, "Failed to fetch dashboard statistics", env.Message)
	assert.Empty(t, env.Data)
}

func TestSalesAnalytics_MonthsValidation(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/admin/dashboard/sales-analytics?months=0", "", true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, `Invalid query parameter "months"`, env.Message)

	code, env = f.do(t, http.MethodGet, "/api/admin/dashboard/sales-analytics?months=99", "", true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "months must be between 1 and 24", env.Message)

	code, env = f.do(t, http.MethodGet, "/api/admin/dashboard/sales-analytics?months=3", "", true)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sales analytics retrieved successfully", env.Message)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestRecentOrders_DefaultLimit(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/admin/dashboard/recent-orders", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 10, f.store.recentLimit)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, env = f.do(t, http.MethodGet, "/api/admin/dashboard/recent-orders?limit=101", "", true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "limit must be between 1 and 100", env.Message)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/admin/profile", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Admin profile retrieved successfully", env.Message)
	assert.NotContains(t, string(env.Data), "password")

	code, env = f.do(t, http.MethodPut, "/api/admin/profile", `{"name":"  New Name ","email":null}`, true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Admin profile updated successfully", env.Message)
	assert.Equal(t, "New Name", f.store.admin.Name)
	assert.Equal(t, "admin@zippty.com", f.store.admin.Email)

	code, env = f.do(t, http.MethodPut, "/api/admin/profile", `{"email":"not-an-email"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid email address", env.Message)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodPut, "/api/admin/change-password", `{"currentPassword":"secret123"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Current password and new password are required", env.Message)

	code, env = f.do(t, http.MethodPut, "/api/admin/change-password", `{"currentPassword":"wrong","newPassword":"another1"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Current password is incorrect", env.Message)

	code, env = f.do(t, http.MethodPut, "/api/admin/change-password", `{"currentPassword":"secret123","newPassword":"another1"}`, true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Password changed successfully", env.Message)

	ok, err := auth.ComparePassword(f.store.admin.Password, "another1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserStatus(t *testing.T) {
	f := newFixture(t)
	path := "/api/admin/users/" + f.user.ID.Hex() + "/status"

	code, env := f.do(t, http.MethodPatch, path, `{"isBlocked":"yes"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "isBlocked must be a boolean value", env.Message)

	code, env = f.do(t, http.MethodPatch, path, `{"isBlocked":true}`, true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User blocked successfully", env.Message)
	assert.True(t, f.store.users[f.user.ID].IsBlocked)

	code, env = f.do(t, http.MethodPatch, path, `{"isBlocked":false}`, true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User unblocked successfully", env.Message)

	code, env = f.do(t, http.MethodPatch, "/api/admin/users/"+primitive.NewObjectID().Hex()+"/status", `{"isBlocked":true}`, true)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", env.Message)
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/admin/users/"+f.user.ID.Hex(), "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User details retrieved successfully", env.Message)

	var detail admin.UserDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Asha", detail.User.Name)

	code, env = f.do(t, http.MethodGet, "/api/admin/users/not-an-id", "", true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid user id", env.Message)
}

func TestUserStats_NotShadowedByUserID(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/admin/users/stats", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User statistics retrieved successfully", env.Message)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	f.store.orderCounts[f.user.ID] = 2
	path := "/api/admin/users/" + f.user.ID.Hex()

	code, env := f.do(t, http.MethodDelete, path, "", true)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Cannot delete user with existing orders", env.Message)

	f.store.orderCounts[f.user.ID] = 0
	code, env = f.do(t, http.MethodDelete, path, "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User deleted successfully", env.Message)

	code, _ = f.do(t, http.MethodDelete, path, "", true)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/health", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, env.Data)

	// A bad token on the optional route is ignored rather than rejected.
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	code, env = f.do(t, http.MethodGet, "/api/health", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"server":"Zippty Admin"`)

	f.store.pingErr = errors.New("no primary")
	code, env = f.do(t, http.MethodGet, "/api/health", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Database unavailable", env.Message)
}

func TestAuthLookupFailure_Returns500(t *testing.T) {
	f := newFixture(t)
	f.store.lookupErr = errors.New("mongo down")

	code, env := f.do(t, http.MethodGet, "/api/admin/profile", "", true)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error.", env.Message)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/admin/nope", "", true)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", env.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/health", "", false)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, bytes.Contains(rr.Body.Bytes(), []byte(`zippty_admin_http_requests_total{method="GET",route="/api/health",status_code="200"} 1`)))
}
