package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-onboard/internal/config"
	"go-onboard/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "test_jwt_secret"
	return cfg
}

// testRedis returns a client pointed at nothing. Handlers under test ignore
// session-store write failures, so no live redis is needed.
func testRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "localhost:6399", DB: 15})
}

func TestLoginHandler_NeedSetup(t *testing.T) {
	setupUserDB(t)
	resetTables(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/login", LoginHandler(testConfig(), testRedis()))

	b, _ := json.Marshal(map[string]string{"username": "nobody", "password": "x"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when no users exist, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("need_setup")) {
		t.Errorf("expected need_setup flag, got: %s", w.Body.String())
	}
}

func TestLoginHandler_Success(t *testing.T) {
	setupUserDB(t)
	resetTables(t)
	seedUser(t, "sarah", user.RoleOwner)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/login", LoginHandler(testConfig(), testRedis()))

	b, _ := json.Marshal(map[string]string{"username": "sarah", "password": "secret123"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Errorf("expected a token")
	}
	if resp.Username != "sarah" || resp.Role != string(user.RoleOwner) {
		t.Errorf("unexpected login response: %+v", resp)
	}
	if resp.Onboarded {
		t.Errorf("fresh user should not be onboarded")
	}
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	setupUserDB(t)
	resetTables(t)
	seedUser(t, "sarah", user.RoleOwner)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/login", LoginHandler(testConfig(), testRedis()))

	b, _ := json.Marshal(map[string]string{"username": "sarah", "password": "wrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", w.Code)
	}
}

func TestMeHandler_ReturnsUser(t *testing.T) {
	setupUserDB(t)
	resetTables(t)
	u := seedUser(t, "member1", user.RoleMember)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", u.ID)
		c.Next()
	})
	r.GET("/auth/me", MeHandler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["username"] != "member1" {
		t.Errorf("unexpected user: %+v", resp)
	}
}
