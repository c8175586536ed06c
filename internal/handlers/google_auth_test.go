package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"QROLY_BACK-END/internal/config"
	"QROLY_BACK-END/internal/dto"
	"QROLY_BACK-END/internal/middleware"
	"QROLY_BACK-END/internal/models"
)

func newTestGoogleHandler(t *testing.T, auth *fakeAuth, info *dto.GoogleUserInfo) *GoogleAuthHandler {
	t.Helper()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"google-access","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenServer.Close)

	cfg := &config.Config{
		JWT: *testJWT(),
		GoogleOAuth: config.GoogleOAuthConfig{
			ClientID:            "client-123",
			ClientSecret:        "shh",
			RedirectURL:         "http://localhost:8080/api/auth/google/callback",
			FrontendCallbackURL: "http://localhost:3000/callback",
		},
	}
	h := NewGoogleAuthHandler(auth, cfg)
	h.oauth2Config.Endpoint = oauth2.Endpoint{
		AuthURL:  "https://accounts.example.com/auth",
		TokenURL: tokenServer.URL,
	}
	h.userInfo = func(_ context.Context, tok *oauth2.Token) (*dto.GoogleUserInfo, error) {
		if tok.AccessToken != "google-access" {
			t.Errorf("access token = %q", tok.AccessToken)
		}
		return info, nil
	}
	return h
}

func callbackRequest(query, stateCookie string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?"+query, nil)
	if stateCookie != "" {
		r.AddCookie(&http.Cookie{Name: oauthStateCookieName, Value: stateCookie})
	}
	return r
}

func TestGoogleLogin(t *testing.T) {
	h := newTestGoogleHandler(t, &fakeAuth{}, nil)

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dto.GoogleLoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	u, err := url.Parse(resp.AuthURL)
	if err != nil {
		t.Fatalf("auth url: %v", err)
	}
	if u.Query().Get("client_id") != "client-123" || u.Query().Get("state") != resp.State {
		t.Errorf("auth url = %s", resp.AuthURL)
	}

	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauthStateCookieName {
			stateCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value != resp.State || !stateCookie.HttpOnly {
		t.Errorf("state cookie = %+v", stateCookie)
	}
}

func TestGoogleCallback(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "kishor", Email: "kishor@gmail.com", Provider: models.ProviderGoogle}
	auth := &fakeAuth{user: user}
	h := newTestGoogleHandler(t, auth, &dto.GoogleUserInfo{Email: "kishor@gmail.com", Verified: true})

	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, callbackRequest("code=good-code&state=s1", "s1"))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302: %s", rec.Code, rec.Body.String())
	}
	if len(auth.googleEmails) != 1 || auth.googleEmails[0] != "kishor@gmail.com" {
		t.Errorf("GoogleSignIn calls = %v", auth.googleEmails)
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if !strings.HasPrefix(loc.String(), "http://localhost:3000/callback?") {
		t.Errorf("Location = %s", loc)
	}
	claims, err := middleware.ValidateToken(loc.Query().Get("token"), testJWT())
	if err != nil || claims.UserID != user.ID {
		t.Errorf("token claims = %+v, %v", claims, err)
	}
	if tokenCookie(rec) == nil {
		t.Error("callback must set the token cookie")
	}
}

func TestGoogleCallback_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		cookie     string
		info       *dto.GoogleUserInfo
		wantStatus int
	}{
		{"missing code", "state=s1", "s1", nil, http.StatusBadRequest},
		{"missing state cookie", "code=good-code&state=s1", "", nil, http.StatusBadRequest},
		{"state mismatch", "code=good-code&state=s2", "s1", nil, http.StatusBadRequest},
		{"bad code", "code=bad&state=s1", "s1", nil, http.StatusUnauthorized},
		{"unverified email", "code=good-code&state=s1", "s1", &dto.GoogleUserInfo{Email: "x@gmail.com"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{}
			h := newTestGoogleHandler(t, auth, tt.info)

			rec := httptest.NewRecorder()
			h.GoogleCallback(rec, callbackRequest(tt.query, tt.cookie))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if len(auth.googleEmails) != 0 {
				t.Error("sign-in must not be attempted")
			}
		})
	}
}
