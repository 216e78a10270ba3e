package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ssorelay/core/internal/models"
	jwtpkg "github.com/ssorelay/core/internal/pkg/jwt"
	"go.uber.org/zap"
)

func newHandlerTest(t *testing.T) (*gin.Engine, *MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewMemoryStore()
	router := gin.New()
	NewHandler(store, zap.NewNop()).RegisterRoutes(router.Group("/api"))
	return router, store
}

func signAssertion(t *testing.T, identity string) string {
	t.Helper()
	token, err := jwtpkg.Sign(identity, "sid-"+identity, time.Hour)
	if err != nil {
		t.Fatalf("sign assertion: %v", err)
	}
	return token
}

func doGet(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCurrentUserRequiresAssertion(t *testing.T) {
	router, _ := newHandlerTest(t)

	if w := doGet(router, "/api/user", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without assertion, got %d", w.Code)
	}
}

func TestCurrentUserRequiresActiveSession(t *testing.T) {
	router, _ := newHandlerTest(t)

	// Valid assertion, but the registry no longer tracks the identity.
	w := doGet(router, "/api/user", signAssertion(t, "alice"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without registry record, got %d", w.Code)
	}
}

func TestCurrentUserAppliesProfileFallbacks(t *testing.T) {
	router, store := newHandlerTest(t)

	err := store.Put(context.Background(), &models.SessionRecord{
		Identity:      "alice",
		SessionToken:  "sid-1",
		EstablishedAt: time.Now(),
		Profile: models.Profile{
			Subject:    "alice",
			GivenName:  "Alice",
			FamilyName: "Park",
			Emails:     []string{"alice@example.com"},
		},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doGet(router, "/api/user", signAssertion(t, "alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		User struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.User.ID != "alice" {
		t.Fatalf("expected id alice, got %q", body.User.ID)
	}
	if body.User.Name != "Alice Park" {
		t.Fatalf("expected composed name, got %q", body.User.Name)
	}
	if body.User.Email != "alice@example.com" {
		t.Fatalf("expected first email entry, got %q", body.User.Email)
	}
}

func TestListSessionsShape(t *testing.T) {
	router, store := newHandlerTest(t)

	loginTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := store.Put(context.Background(), &models.SessionRecord{
		Identity:      "alice",
		SessionToken:  "sid-1",
		EstablishedAt: loginTime,
		Profile:       models.Profile{Subject: "alice", Username: "alice"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doGet(router, "/api/sessions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Sessions []struct {
			UserID    string `json:"userId"`
			SessionID string `json:"sessionId"`
			LoginTime string `json:"loginTime"`
			UserName  string `json:"userName"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(body.Sessions))
	}
	got := body.Sessions[0]
	if got.UserID != "alice" || got.SessionID != "sid-1" || got.UserName != "alice" {
		t.Fatalf("unexpected session item %+v", got)
	}
	if got.LoginTime != loginTime.Format(time.RFC3339) {
		t.Fatalf("expected RFC3339 login time, got %q", got.LoginTime)
	}
}

func TestSessionStatusDegradesGracefully(t *testing.T) {
	router, _ := newHandlerTest(t)

	// No assertion at all still answers 200.
	w := doGet(router, "/api/session-status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Authenticated bool   `json:"authenticated"`
		SessionActive bool   `json:"sessionActive"`
		UserID        string `json:"userId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Authenticated || body.SessionActive || body.UserID != "" {
		t.Fatalf("expected anonymous status, got %+v", body)
	}
}
