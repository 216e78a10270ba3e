package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ssorelay/core/internal/pkg/jwt"
)

func newAuthTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/protected", Auth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": CurrentUserID(c), "sid": CurrentSessionID(c)})
	})
	router.GET("/open", OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authed": IsAuthenticated(c), "uid": CurrentUserID(c)})
	})
	return router
}

func TestNormalizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"abc", "abc"},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"  Bearer   abc  ", "abc"},
	}
	for _, tc := range cases {
		if got := NormalizeToken(tc.in); got != tc.want {
			t.Fatalf("NormalizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAuthRejectsMissingOrInvalidToken(t *testing.T) {
	router := newAuthTest(t)

	for _, header := range []string{"", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestAuthSetsIdentityFromHeader(t *testing.T) {
	router := newAuthTest(t)

	token, err := jwt.Sign("alice", "sid-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if body != `{"sid":"sid-1","uid":"alice"}` {
		t.Fatalf("unexpected identity payload %s", body)
	}
}

func TestAuthAcceptsCookieToken(t *testing.T) {
	router := newAuthTest(t)

	token, err := jwt.Sign("alice", "sid-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 via cookie, got %d", w.Code)
	}
}

func TestOptionalAuthNeverBlocks(t *testing.T) {
	router := newAuthTest(t)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"authed":false,"uid":""}` {
		t.Fatalf("expected anonymous payload, got %s", body)
	}
}
