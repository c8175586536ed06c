package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"QROLY_BACK-END/internal/dto"
	"QROLY_BACK-END/internal/middleware"
	"QROLY_BACK-END/internal/models"
	"QROLY_BACK-END/internal/services"
)

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookieName {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	auth := &fakeAuth{}
	h := NewAuthHandler(auth, testJWT())

	body := `{"username":"kishor","email":"kishor@example.com","password":"secret1"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp dto.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Username != "kishor" || resp.Token == "" {
		t.Errorf("response = %+v", resp)
	}
	claims, err := middleware.ValidateToken(resp.Token, testJWT())
	if err != nil || claims.Username != "kishor" {
		t.Errorf("token claims = %+v, %v", claims, err)
	}
	if c := tokenCookie(rec); c == nil || !c.HttpOnly || c.Value != resp.Token {
		t.Errorf("token cookie = %+v", c)
	}
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"malformed json", `{`, nil, http.StatusBadRequest},
		{"missing password", `{"username":"kishor","email":"k@example.com"}`, nil, http.StatusBadRequest},
		{"bad username", `{"username":"a/b","email":"k@example.com","password":"secret1"}`, nil, http.StatusBadRequest},
		{"duplicate", `{"username":"kishor","email":"k@example.com","password":"secret1"}`, services.ErrUserExists, http.StatusConflict},
		{"storage failure", `{"username":"kishor","email":"k@example.com","password":"secret1"}`, errStorage, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeAuth{err: tt.serviceErr}, testJWT())
			rec := httptest.NewRecorder()
			h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tokenCookie(rec) != nil {
				t.Error("failed registration must not set a cookie")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "kishor", Email: "kishor@example.com", Provider: models.ProviderCredentials}
	auth := &fakeAuth{user: user}
	h := NewAuthHandler(auth, testJWT())

	body := `{"identifier":"  kishor  ","password":"secret1"}`
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if auth.lastIdentifier != "kishor" {
		t.Errorf("identifier = %q, want trimmed", auth.lastIdentifier)
	}
	if tokenCookie(rec) == nil {
		t.Error("login must set the token cookie")
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		serviceErr  error
		wantStatus  int
		wantMessage string
	}{
		{"missing identifier", `{"password":"x"}`, nil, http.StatusBadRequest, ""},
		{"unknown user", `{"identifier":"ghost","password":"x"}`, services.ErrUserNotFound, http.StatusUnauthorized, "No user found"},
		{"oauth-only account", `{"identifier":"g@example.com","password":"x"}`, services.ErrPasswordNotSet, http.StatusUnauthorized, "Use OAuth provider to login"},
		{"wrong password", `{"identifier":"kishor","password":"x"}`, services.ErrInvalidPassword, http.StatusUnauthorized, "Invalid password"},
		{"storage failure", `{"identifier":"kishor","password":"x"}`, fmt.Errorf("lookup user: %w", errStorage), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeAuth{err: tt.serviceErr}, testJWT())
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tt.wantMessage != "" && resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}
			if tokenCookie(rec) != nil {
				t.Error("failed login must not set a cookie")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{}, testJWT())
	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	c := tokenCookie(rec)
	if c == nil || c.Value != "" || c.MaxAge >= 0 {
		t.Errorf("logout cookie = %+v, want expired", c)
	}
}

func TestMe(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "kishor", Email: "kishor@example.com", Provider: models.ProviderGoogle}
	auth := &fakeAuth{user: user}
	h := NewAuthHandler(auth, testJWT())

	id := middleware.Identity{UserID: user.ID, Username: user.Username}
	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), id)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if auth.lastLookupID != user.ID {
		t.Errorf("looked up %v, want %v", auth.lastLookupID, user.ID)
	}
	var resp dto.UserResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Username != "kishor" || resp.HasPassword {
		t.Errorf("response = %+v", resp)
	}

	h = NewAuthHandler(&fakeAuth{err: services.ErrUserNotFound}, testJWT())
	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), id)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing user: status = %d, want 404", rec.Code)
	}
}
