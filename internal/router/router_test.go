package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gym_club_backend/internal/middleware"
	"gym_club_backend/internal/models"
	"gym_club_backend/internal/notify"
	"gym_club_backend/internal/repositories/memory"
	"gym_club_backend/internal/services"
	"gym_club_backend/internal/storage"
	"gym_club_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct{ to []string }

func (m *recordingMailer) SendEmail(to, subject, body string) error {
	m.to = append(m.to, to)
	return nil
}

type testServer struct {
	engine     *gin.Engine
	dispatcher *services.Dispatcher
	users      services.UserService
	mailer     *recordingMailer
}

func newTestServer(t *testing.T, now time.Time) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	clock := services.Clock(func() time.Time { return now })
	tokens, err := utils.NewTokenManager("router-test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	local, err := storage.NewLocalStore(t.TempDir(), "http://localhost")
	require.NoError(t, err)

	// a single worker keeps notification writes ordered for assertions
	dispatcher := services.NewDispatcher(1)
	mailer := &recordingMailer{}
	notifications := services.NewNotificationService(store, mailer, notify.NewTwilioWhatsApp("", "", ""), "54")

	svc := Services{
		Auth:          services.NewAuthService(store.Users, tokens),
		Users:         services.NewUserService(store.Users),
		Memberships:   services.NewMembershipService(store.Memberships, notifications, dispatcher, clock),
		Attendance:    services.NewAttendanceService(store.Attendance, store.Memberships, clock),
		Blog:          services.NewBlogService(store.Posts, clock),
		Products:      services.NewProductService(store.Products, clock),
		Notifications: notifications,
		Uploads:       services.NewUploadService(local, nil, 0),
		Dashboard:     services.NewDashboardService(store, clock),
	}
	engine := New(svc, Options{Metrics: middleware.NewMetrics("gym_test")})
	return &testServer{engine: engine, dispatcher: dispatcher, users: svc.Users, mailer: mailer}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res services.AuthResponse
	decode(t, w, &res)
	return res.Token
}

func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	_, err := s.users.Create(services.CreateUserRequest{
		Email: "admin@gym.example", Password: "admin123", FirstName: "Admin", LastName: "Gym", IsAdmin: true,
	})
	require.NoError(t, err)
	return s.login(t, "admin@gym.example", "admin123")
}

func TestMembershipLifecycleEndToEnd(t *testing.T) {
	s := newTestServer(t, time.Date(2025, 2, 5, 9, 0, 0, 0, time.UTC))
	adminToken := s.admin(t)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "ana@example.com", "password": "secreto1", "confirmPassword": "secreto1",
		"first_name": "Ana", "last_name": "Pérez",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered services.AuthResponse
	decode(t, w, &registered)
	memberToken := s.login(t, "ana@example.com", "secreto1")

	w = s.do(t, http.MethodPost, "/api/memberships", adminToken, gin.H{
		"user_id": registered.User.ID, "type": "monthly", "start_date": "2025-01-01", "price": 5000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var membership models.Membership
	decode(t, w, &membership)
	assert.Equal(t, "2025-01-31", membership.EndDate.Format("2006-01-02"))
	assert.Equal(t, models.MembershipStatusActive, membership.Status)

	w = s.do(t, http.MethodPost, "/api/attendance/register", memberToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var visit models.Attendance
	decode(t, w, &visit)
	require.NotNil(t, visit.MembershipID)
	assert.Equal(t, membership.ID, *visit.MembershipID)

	w = s.do(t, http.MethodPost, "/api/attendance/register", memberToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/attendance/"+visit.ID+"/check-out", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/attendance/"+visit.ID+"/check-out", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/memberships/check-expired", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var expired struct {
		Expired int `json:"expired"`
	}
	decode(t, w, &expired)
	assert.Equal(t, 1, expired.Expired)
	s.dispatcher.Wait()

	w = s.do(t, http.MethodGet, "/api/memberships/"+membership.ID, memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &membership)
	assert.Equal(t, models.MembershipStatusExpired, membership.Status)

	w = s.do(t, http.MethodGet, "/api/notifications/logs?membership_id="+membership.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var logs struct {
		Data  []models.Notification `json:"data"`
		Total int                   `json:"total"`
	}
	decode(t, w, &logs)
	require.Equal(t, 1, logs.Total)
	assert.Equal(t, models.NotificationEmail, logs.Data[0].Type)
	assert.Equal(t, "ana@example.com", logs.Data[0].Recipient)
	assert.Equal(t, []string{"ana@example.com"}, s.mailer.to)
}

func TestUnauthorizedAccess(t *testing.T) {
	s := newTestServer(t, time.Date(2025, 2, 5, 9, 0, 0, 0, time.UTC))
	_, err := s.users.Create(services.CreateUserRequest{Email: "ana@example.com", Password: "secreto1", FirstName: "Ana", LastName: "Pérez"})
	require.NoError(t, err)
	memberToken := s.login(t, "ana@example.com", "secreto1")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/memberships", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", "garbage", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/memberships", memberToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/dashboard/stats", memberToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/products", memberToken, gin.H{"name": "x"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth/me", memberToken, nil).Code)
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t, time.Date(2025, 2, 5, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/blog", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/products/categories", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/nope", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/diagnostico", "", nil).Code)

	w := s.do(t, http.MethodGet, "/api/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gym_test_http_requests_total")
}

func TestQRCheckInIsPublic(t *testing.T) {
	s := newTestServer(t, time.Date(2025, 2, 5, 9, 0, 0, 0, time.UTC))
	user, err := s.users.Create(services.CreateUserRequest{Email: "ana@example.com", Password: "secreto1", FirstName: "Ana", LastName: "Pérez"})
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/attendance/check-in?user_id="+user.ID, "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/attendance/check-in", "", gin.H{"data": `{"userId":"` + user.ID + `"}`})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/attendance/check-in?foo=bar", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
