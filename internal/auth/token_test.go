package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token := SignToken("secret", userID)

	got, err := VerifyToken("secret", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Fatalf("expected %s, got %s", userID, got)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	userID := uuid.New()
	token := SignToken("secret", userID)

	if _, err := VerifyToken("secret", token+"x"); err == nil {
		t.Fatalf("expected error for tampered signature")
	}
	if _, err := VerifyToken("other-secret", token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
	if _, err := VerifyToken("secret", "not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestUserMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	var seen uuid.UUID

	r := gin.New()
	r.Use(UserMiddleware("secret"))
	r.GET("/ping", func(c *gin.Context) {
		seen = UserID(c)
		c.Status(http.StatusOK)
	})

	// Valid token
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+SignToken("secret", userID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if seen != userID {
		t.Fatalf("expected user id %s in context, got %s", userID, seen)
	}

	// Missing header
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// Garbage token
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", w.Code)
	}
}

func TestAdminKeyMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AdminKeyMiddleware("topsecret"))
	r.POST("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("X-API-Key", "topsecret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with correct key, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", w.Code)
	}

	// Disabled admin API when no key is configured
	disabled := gin.New()
	disabled.Use(AdminKeyMiddleware(""))
	disabled.POST("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	req = httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("X-API-Key", "anything")
	w = httptest.NewRecorder()
	disabled.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when admin API disabled, got %d", w.Code)
	}
}
