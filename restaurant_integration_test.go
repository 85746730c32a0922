package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-console/config"
	"github.com/yeremiapane/restaurant-console/hub"
	"github.com/yeremiapane/restaurant-console/router"
	"github.com/yeremiapane/restaurant-console/sandbox"
	"github.com/yeremiapane/restaurant-console/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger("warn")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type page struct {
	Items      []map[string]interface{} `json:"items"`
	TotalItems int                      `json:"totalItems"`
}

// setupStack starts a seeded sandbox API and a console pointed at it.
func setupStack(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()

	db, err := sandbox.OpenDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, sandbox.Migrate(db))
	require.NoError(t, sandbox.Seed(db, time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)))

	api := httptest.NewServer(sandbox.NewRouter(db, sandbox.Options{
		JWTSecret:       []byte("integration-secret"),
		StrictDateRange: true,
	}))
	t.Cleanup(api.Close)

	cfg := &config.Config{
		API:        config.APIConfig{BaseURL: api.URL, BasePath: "/api", Timeout: 5 * time.Second},
		PageSize:   100,
		CORSOrigin: "http://localhost:3000",
	}
	live := hub.New()
	console := httptest.NewServer(router.SetupRouter(cfg, live))
	t.Cleanup(func() {
		live.CloseAll()
		console.Close()
	})
	return console, live
}

func call(t *testing.T, server *httptest.Server, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func consoleLogin(t *testing.T, console *httptest.Server, email, password string) string {
	t.Helper()
	code, env := call(t, console, http.MethodPost, "/console/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, env.Message)

	var res struct {
		Token string `json:"token"`
		User  struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

// TestEndToEndIntegration menguji flow utama console terhadap sandbox API:
// login, daftar reservasi, buat, batalkan, hapus (dengan event live), log aktivitas, order, logout.
func TestEndToEndIntegration(t *testing.T) {
	console, live := setupStack(t)

	code, env := call(t, console, http.MethodGet, "/console/bootstrap-status", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"bootstrapNeeded":false}`, string(env.Data))

	code, env = call(t, console, http.MethodPost, "/console/login", "", map[string]string{"email": "staff@resto.id", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", env.Message)

	token := consoleLogin(t, console, "staff@resto.id", "staff123")

	// 1. Daftar reservasi dengan pencarian lokal
	code, env = call(t, console, http.MethodGet, "/console/reservations?search=budi", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var list page
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.TotalItems)
	assert.Equal(t, "Budi Santoso", list.Items[0]["customerName"])

	// 2. Validasi lokal tidak memanggil API
	code, env = call(t, console, http.MethodPost, "/console/reservations", token, map[string]interface{}{
		"tableId":      "2",
		"customerName": "Sari",
		"date":         "2024-06-03",
		"time":         "19:00",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"field":"customerPhone"}`, string(env.Data))

	// 3. Buat reservasi; createdBy diambil dari sesi
	code, env = call(t, console, http.MethodPost, "/console/reservations", token, map[string]interface{}{
		"tableId":        "2",
		"customerName":   "Sari Wulandari",
		"customerPhone":  "081200001111",
		"date":           "2024-06-03",
		"time":           "19:00",
		"specialRequest": "Dekat jendela",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)
	assert.Equal(t, "2024-06-03T19:00:00", created["reservationTime"])
	assert.Equal(t, "2", created["createdBy"])
	assert.Equal(t, "pending", created["status"])

	// 4. Cancel dijawab teks biasa; status diterapkan secara lokal
	code, env = call(t, console, http.MethodPost, "/console/reservations/"+id+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = call(t, console, http.MethodGet, "/console/reservations?status=cancelled", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.TotalItems)
	assert.Equal(t, id, list.Items[0]["id"])

	// 5. Hapus; view live sesi ini menerima reservations_refresh
	wsURL := "ws" + strings.TrimPrefix(console.URL, "http") + "/console/ws?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return live.Count(token) == 1 }, 2*time.Second, 10*time.Millisecond)

	code, env = call(t, console, http.MethodDelete, "/console/reservations/"+id, token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Event string `json:"event"`
		Data  struct {
			ReservationID string `json:"reservationId"`
		} `json:"data"`
	}
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, "reservations_refresh", msg.Event)
	assert.Equal(t, id, msg.Data.ReservationID)

	// 6. Rentang tanggal: sandbox hanya menerima "YYYY-MM-DD HH:MM:SS", console mencoba sampai cocok
	code, env = call(t, console, http.MethodGet, "/console/activity-logs?startDate=2024-06-01&endDate=2024-06-01", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var logs page
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	assert.Equal(t, 3, logs.TotalItems)

	code, env = call(t, console, http.MethodGet, "/console/activity-logs?entityType=reservation&entityId="+id, token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	assert.Equal(t, 3, logs.TotalItems)
	assert.Equal(t, "staff@resto.id", logs.Items[0]["userEmail"])

	// 7. Order dengan relasi chef dan item
	code, env = call(t, console, http.MethodGet, "/console/orders?search=nasi", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var orders page
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Equal(t, 1, orders.TotalItems)
	assert.Equal(t, "Rp 60.000", orders.Items[0]["totalFormatted"])
	assert.Equal(t, "Rina", orders.Items[0]["assignedStaff"])
	assert.Equal(t, []interface{}{"2x Nasi Goreng (Pedas)", "2x Es Teh"}, orders.Items[0]["contents"])

	// 8. Logout: token tidak dipakai lagi oleh console
	code, _ = call(t, console, http.MethodPost, "/console/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, console, http.MethodGet, "/console/reservations", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestConsoleReportsUnreachableAPI(t *testing.T) {
	api := httptest.NewServer(http.NotFoundHandler())
	api.Close()

	cfg := &config.Config{
		API:      config.APIConfig{BaseURL: api.URL, BasePath: "/api", Timeout: time.Second},
		PageSize: 100,
	}
	console := httptest.NewServer(router.SetupRouter(cfg, hub.New()))
	defer console.Close()

	code, env := call(t, console, http.MethodGet, "/console/orders", "", nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, env.Message, "server unreachable")
}
