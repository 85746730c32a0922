package sandbox

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-console/utils"
	"gorm.io/gorm"
)

var (
	testNow    = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	testSecret = []byte("test-secret")
)

func openTestDB(t *testing.T, seed bool) *gorm.DB {
	t.Helper()
	db, err := OpenDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	if seed {
		require.NoError(t, Seed(db, testNow))
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func setupServer(t *testing.T, seed, strict bool) (*server, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := newServer(openTestDB(t, seed), Options{
		JWTSecret:       testSecret,
		StrictDateRange: strict,
		Now:             func() time.Time { return testNow },
	})
	return s, s.routes()
}

func perform(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func login(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	w := perform(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			Token string `json:"token"`
			User  struct {
				ID    uint   `json:"id"`
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	require.True(t, resp.Status)
	require.Equal(t, email, resp.Data.User.Email)
	return resp.Data.Token
}

func TestLogin(t *testing.T) {
	_, h := setupServer(t, true, false)

	token := login(t, h, "admin@resto.id", "admin123")
	claims, err := utils.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin@resto.id", claims.Email)

	w := perform(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@resto.id", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
	assert.NotContains(t, w.Body.String(), "password\"")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	_, h := setupServer(t, true, false)

	for _, path := range []string{"/api/reservations", "/api/activity-logs", "/api/orders"} {
		w := perform(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := perform(t, h, http.MethodGet, "/api/reservations", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReservationLifecycle(t *testing.T) {
	_, h := setupServer(t, true, false)
	token := login(t, h, "staff@resto.id", "staff123")

	w := perform(t, h, http.MethodPost, "/api/reservations", token, map[string]interface{}{
		"tableId":         "2",
		"customerName":    "Sari",
		"customerPhone":   "0812",
		"reservationTime": "2024-06-03T19:00:00",
		"specialRequest":  "Dekat jendela",
		"statusId":        1,
		"createdBy":       "2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &created)
	assert.Equal(t, "Sari", created.Data["customer_name"])
	assert.Equal(t, "2024-06-03T19:00:00", created.Data["reservation_time"])
	assert.Equal(t, "Dekat jendela", created.Data["special_requests"])
	assert.EqualValues(t, 1, created.Data["status_id"])
	id := created.Data["id"]

	path := "/api/reservations/" + jsonNumber(id)

	w = perform(t, h, http.MethodPut, path+"/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bare map[string]interface{}
	decodeBody(t, w, &bare)
	assert.EqualValues(t, statusCompleted, bare["status_id"])

	w = perform(t, h, http.MethodPut, path+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(t, h, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reservation deleted", w.Body.String())

	w = perform(t, h, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, h, http.MethodGet, "/api/activity-logs/entity/reservation/"+jsonNumber(id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []map[string]interface{}
	decodeBody(t, w, &logs)
	require.Len(t, logs, 3)
	assert.Equal(t, "DELETE", logs[0]["action_type"])
	assert.Equal(t, "staff@resto.id", logs[0]["user_email"])
	assert.Equal(t, "2024-06-01 15:00:00.000000", logs[0]["created_at"])
}

func jsonNumber(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestCancelAnswersPlainText(t *testing.T) {
	_, h := setupServer(t, true, false)
	token := login(t, h, "admin@resto.id", "admin123")

	w := perform(t, h, http.MethodPut, "/api/reservations/1/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reservation cancelled", w.Body.String())

	w = perform(t, h, http.MethodPut, "/api/reservations/abc/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateWithoutStatusKeepsStoredValues(t *testing.T) {
	_, h := setupServer(t, true, false)
	token := login(t, h, "admin@resto.id", "admin123")

	w := perform(t, h, http.MethodPut, "/api/reservations/2", token, map[string]interface{}{
		"tableId":         "2",
		"customerName":    "Dewi Lestari",
		"customerPhone":   "0899",
		"reservationTime": "2024-06-02T12:00:00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &updated)
	assert.Equal(t, "0899", updated.Data["customer_phone"])
	assert.EqualValues(t, 2, updated.Data["status_id"])
	assert.EqualValues(t, 2, updated.Data["created_by"])
}

func TestCreateReservationValidation(t *testing.T) {
	_, h := setupServer(t, true, false)
	token := login(t, h, "admin@resto.id", "admin123")

	w := perform(t, h, http.MethodPost, "/api/reservations", token, map[string]interface{}{
		"tableId":         "2",
		"customerName":    "Sari",
		"reservationTime": "2024-06-03T19:00:00",
		"createdBy":       "1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"customerPhone is required"}`, w.Body.String())
}

func TestReservationLookups(t *testing.T) {
	_, h := setupServer(t, true, false)
	token := login(t, h, "admin@resto.id", "admin123")

	count := func(path string) int {
		w := perform(t, h, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		var list []map[string]interface{}
		decodeBody(t, w, &list)
		return len(list)
	}

	assert.Equal(t, 1, count("/api/reservations/today"))
	assert.Equal(t, 1, count("/api/reservations/table/1"))
	assert.Equal(t, 1, count("/api/reservations/salon/terrace"))
	assert.Equal(t, 1, count("/api/reservations/status/2"))
	assert.Equal(t, 2, count("/api/reservations/date-range?startDate=2024-06-01&endDate=2024-06-02"))

	w := perform(t, h, http.MethodGet, "/api/reservations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Status bool                     `json:"status"`
		Data   []map[string]interface{} `json:"data"`
	}
	decodeBody(t, w, &env)
	assert.True(t, env.Status)
	assert.Len(t, env.Data, 3)
}

func TestStrictDateRange(t *testing.T) {
	_, h := setupServer(t, true, true)
	token := login(t, h, "admin@resto.id", "admin123")

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{name: "plain dates", query: "startDate=2024-06-01&endDate=2024-06-02", code: http.StatusBadRequest},
		{name: "T separated", query: "startDate=2024-06-01T00:00:00&endDate=2024-06-02T23:59:59", code: http.StatusBadRequest},
		{name: "space separated", query: "startDate=2024-06-01+00:00:00&endDate=2024-06-02+23:59:59", code: http.StatusOK},
		{name: "missing end", query: "startDate=2024-06-01+00:00:00", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, h, http.MethodGet, "/api/reservations/date-range?"+tt.query, token, nil)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestActivityLogQueries(t *testing.T) {
	_, h := setupServer(t, true, false)
	token := login(t, h, "admin@resto.id", "admin123")

	fetch := func(path string) []map[string]interface{} {
		w := perform(t, h, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		var list []map[string]interface{}
		decodeBody(t, w, &list)
		return list
	}

	all := fetch("/api/activity-logs")
	assert.Len(t, all, 4)

	recent := fetch("/api/activity-logs/recent?limit=2")
	require.Len(t, recent, 2)
	assert.Equal(t, "LOGIN", recent[0]["action_type"])

	assert.Len(t, fetch("/api/activity-logs/action/login"), 2)
	assert.Len(t, fetch("/api/activity-logs/entity/order/1"), 1)
	assert.Len(t, fetch("/api/activity-logs/user/3"), 1)
	assert.Len(t, fetch("/api/activity-logs/date-range?startDate=2024-06-01T14:00:00&endDate=2024-06-01T15:00:00"), 2)

	w := perform(t, h, http.MethodGet, "/api/activity-logs/recent?limit=zero", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrdersPreloadRelations(t *testing.T) {
	_, h := setupServer(t, true, false)
	token := login(t, h, "admin@resto.id", "admin123")

	w := perform(t, h, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			TotalAmount string `json:"total_amount"`
			Chef        *struct {
				Name string `json:"name"`
			} `json:"chef"`
			OrderItems []struct {
				Quantity int `json:"quantity"`
				Menu     struct {
					Name string `json:"name"`
				} `json:"menu"`
			} `json:"order_items"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Data, 2)

	first := resp.Data[0]
	assert.Equal(t, "60000", first.TotalAmount)
	require.NotNil(t, first.Chef)
	assert.Equal(t, "Rina", first.Chef.Name)
	require.Len(t, first.OrderItems, 2)
	assert.Equal(t, "Nasi Goreng", first.OrderItems[0].Menu.Name)
	assert.Nil(t, resp.Data[1].Chef)
}

func TestBootstrapAndReset(t *testing.T) {
	s, h := setupServer(t, false, false)

	w := perform(t, h, http.MethodGet, "/api/auth/user-count", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userCount":0}`, w.Body.String())

	body := map[string]string{"email": "owner@resto.id", "name": "Owner", "frontendUrl": "http://localhost:3000"}
	w = perform(t, h, http.MethodPost, "/api/auth/bootstrap-admin", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = perform(t, h, http.MethodPost, "/api/auth/bootstrap-admin", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(t, h, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "nobody@resto.id"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "If the email is registered, a reset link has been sent.", w.Body.String())

	var owner User
	require.NoError(t, s.db.Where("email = ?", "owner@resto.id").First(&owner).Error)
	resetToken := s.issueReset(owner, "http://localhost:3000")

	w = perform(t, h, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": resetToken, "password": "rahasia123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(t, h, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": resetToken, "password": "rahasia123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := login(t, h, "owner@resto.id", "rahasia123")

	w = perform(t, h, http.MethodPost, "/api/auth/change-password", token, map[string]string{"currentPassword": "salah", "newPassword": "baru12345"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, h, http.MethodPost, "/api/auth/change-password", token, map[string]string{"currentPassword": "rahasia123", "newPassword": "baru12345"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login(t, h, "owner@resto.id", "baru12345")
}

func TestResetTicketExpires(t *testing.T) {
	s, _ := setupServer(t, true, false)
	var staff User
	require.NoError(t, s.db.Where("email = ?", "staff@resto.id").First(&staff).Error)

	token := s.issueReset(staff, "")
	s.opts.Now = func() time.Time { return testNow.Add(2 * time.Hour) }

	_, ok := s.takeReset(token)
	assert.False(t, ok)
}
