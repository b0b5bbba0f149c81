package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/city-watch/user-management/internal/auth"
	"github.com/city-watch/user-management/internal/handler"
	"github.com/city-watch/user-management/internal/repository/sqlite"
	"github.com/city-watch/user-management/internal/service"
)

// newTestRouter assembles the real stack — in-memory SQLite, bcrypt cost 4,
// a fixed JWT secret — behind the same routes the server mounts.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceWithCost(4)

	authService := service.NewAuthService(db, tokens, passwords, logger)
	pointsService := service.NewPointsService(db, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(authService, logger)
	eventsHandler := handler.NewEventsHandler(pointsService, logger)
	healthHandler := handler.NewHealthHandler(db, logger)

	r := chi.NewRouter()
	r.Get("/", healthHandler.HandleRoot)
	r.Get("/health/live", healthHandler.HandleLive)
	r.Get("/health/ready", healthHandler.HandleReady)
	r.Get("/db-check", healthHandler.HandleDBCheck)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/leaderboard", leaderboardHandler.HandleLeaderboard)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/profile/me", authHandler.HandleMe)
		})
	})
	r.Post("/internal/events", eventsHandler.HandleEvent)

	return r
}

func doJSON(t *testing.T, router *chi.Mux, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// registerUser registers a user through the API and returns the response body.
func registerUser(t *testing.T, router *chi.Mux, name, email string) map[string]any {
	t.Helper()

	body := `{"name":"` + name + `","email":"` + email + `","password":"password"}`
	rr := doJSON(t, router, http.MethodPost, "/api/v1/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code, "register body: %s", rr.Body.String())

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestHandleRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := newTestRouter(t)

		rr := doJSON(t, router, http.MethodPost, "/api/v1/register",
			`{"name":"Test User","email":"test@example.com","password":"password","role":"citizen"}`, "")

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp map[string]any
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "test@example.com", resp["email"])
		assert.Equal(t, "citizen", resp["role"])
		assert.NotEmpty(t, resp["token"])
		assert.NotZero(t, resp["user_id"])
		assert.NotContains(t, resp, "password_hash")
	})

	t.Run("duplicate email", func(t *testing.T) {
		router := newTestRouter(t)
		registerUser(t, router, "Existing User", "test@example.com")

		rr := doJSON(t, router, http.MethodPost, "/api/v1/register",
			`{"name":"Another User","email":"test@example.com","password":"password"}`, "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Email already registered")
	})

	t.Run("missing fields", func(t *testing.T) {
		router := newTestRouter(t)

		for _, body := range []string{
			`{"email":"a@example.com","password":"pw"}`,
			`{"name":"A","password":"pw"}`,
			`{"name":"A","email":"a@example.com"}`,
			`{"name":"A","email":"not-an-email","password":"pw"}`,
			`{not json`,
		} {
			rr := doJSON(t, router, http.MethodPost, "/api/v1/register", body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
		}
	})
}

func TestHandleLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := newTestRouter(t)
		registerUser(t, router, "Test User", "test@example.com")

		rr := doJSON(t, router, http.MethodPost, "/api/v1/login",
			`{"email":"test@example.com","password":"password"}`, "")

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]any
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "test@example.com", resp["email"])
		assert.NotEmpty(t, resp["token"])
	})

	t.Run("wrong password and unknown email are identical", func(t *testing.T) {
		router := newTestRouter(t)
		registerUser(t, router, "Test User", "test@example.com")

		wrongPw := doJSON(t, router, http.MethodPost, "/api/v1/login",
			`{"email":"test@example.com","password":"wrongpassword"}`, "")
		noUser := doJSON(t, router, http.MethodPost, "/api/v1/login",
			`{"email":"wrong@example.com","password":"wrongpassword"}`, "")

		assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
		assert.Equal(t, http.StatusUnauthorized, noUser.Code)
		// No information leak: the two failures are byte-identical.
		assert.Equal(t, wrongPw.Body.String(), noUser.Body.String())
	})
}

func TestHandleMe(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := newTestRouter(t)
		reg := registerUser(t, router, "Test User", "test@example.com")
		token := reg["token"].(string)

		rr := doJSON(t, router, http.MethodGet, "/api/v1/profile/me", "", token)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]any
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "Test User", resp["name"])
		assert.Equal(t, float64(0), resp["total_points"])
		assert.Equal(t, float64(0), resp["spendable_points"])
	})

	t.Run("no token", func(t *testing.T) {
		router := newTestRouter(t)

		rr := doJSON(t, router, http.MethodGet, "/api/v1/profile/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		router := newTestRouter(t)

		rr := doJSON(t, router, http.MethodGet, "/api/v1/profile/me", "", "bogus.token.here")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Civic User Management Service is running.")

	rr = doJSON(t, router, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "alive")

	rr = doJSON(t, router, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ready")

	rr = doJSON(t, router, http.MethodGet, "/db-check", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "connected")
	assert.Contains(t, rr.Body.String(), "users")
}
