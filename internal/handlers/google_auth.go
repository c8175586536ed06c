package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"QROLY_BACK-END/internal/config"
	"QROLY_BACK-END/internal/dto"
	"QROLY_BACK-END/internal/metrics"
	"QROLY_BACK-END/internal/middleware"
	"QROLY_BACK-END/internal/models"
	"QROLY_BACK-END/internal/services"
	"QROLY_BACK-END/internal/utils"
)

const oauthStateCookieName = "oauth_state"

// GoogleAuthHandler handles Google OAuth authentication
type GoogleAuthHandler struct {
	auth         services.AuthServiceProvider
	oauth2Config *oauth2.Config
	jwt          *config.JWTConfig
	frontendURL  string
	userInfo     func(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error)
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(auth services.AuthServiceProvider, cfg *config.Config) *GoogleAuthHandler {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleOAuth.ClientID,
		ClientSecret: cfg.GoogleOAuth.ClientSecret,
		RedirectURL:  cfg.GoogleOAuth.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	h := &GoogleAuthHandler{
		auth:         auth,
		oauth2Config: oauth2Config,
		jwt:          &cfg.JWT,
		frontendURL:  cfg.GoogleOAuth.FrontendCallbackURL,
	}
	h.userInfo = h.getGoogleUserInfo
	return h
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Start the Google OAuth flow. The state is also stored in a short-lived cookie and checked on callback.
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse "Google OAuth URL"
// @Router /api/auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.jwt.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	utils.WriteJSONResponse(w, http.StatusOK, dto.GoogleLoginResponse{
		AuthURL: h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline),
		State:   state,
	})
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Exchange the authorization code, sign the user in (creating the account on first use) and redirect to the dashboard with the token.
// @Tags authentication
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State returned by /api/auth/google/login"
// @Success 302 "Redirect to the dashboard callback with ?token="
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing authorization code", "Authorization code is required")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid state", "OAuth state does not match")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookieName, Path: "/api/auth/google", MaxAge: -1})

	token, err := h.oauth2Config.Exchange(r.Context(), code)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(models.ProviderGoogle, "rejected").Inc()
		log.Warn().Err(err).Msg("google code exchange failed")
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid authorization code", "")
		return
	}

	info, err := h.userInfo(r.Context(), token)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(models.ProviderGoogle, "error").Inc()
		log.Error().Err(err).Msg("google userinfo failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to get user info", "")
		return
	}
	if info.Email == "" || !info.Verified {
		metrics.LoginAttempts.WithLabelValues(models.ProviderGoogle, "rejected").Inc()
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Email not verified", "Google account has no verified email")
		return
	}

	user, err := h.auth.GoogleSignIn(r.Context(), info.Email)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(models.ProviderGoogle, "error").Inc()
		if errors.Is(err, services.ErrUserExists) {
			utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Could not allocate a username")
			return
		}
		log.Error().Err(err).Msg("google sign-in failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create user", "")
		return
	}

	jwtToken, err := middleware.GenerateToken(user, h.jwt)
	if err != nil {
		log.Error().Err(err).Msg("generate token failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", "")
		return
	}
	metrics.LoginAttempts.WithLabelValues(models.ProviderGoogle, "ok").Inc()

	target, err := url.Parse(h.frontendURL)
	if err != nil {
		log.Error().Err(err).Str("url", h.frontendURL).Msg("invalid frontend callback url")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	q := target.Query()
	q.Set("token", jwtToken)
	q.Set("username", user.Username)
	q.Set("provider", user.Provider)
	target.RawQuery = q.Encode()

	setTokenCookie(w, jwtToken, h.jwt)
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// getGoogleUserInfo fetches user information from Google
func (h *GoogleAuthHandler) getGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error) {
	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(h.oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if userInfo.VerifiedEmail != nil {
		verified = *userInfo.VerifiedEmail
	}

	return &dto.GoogleUserInfo{
		ID:       userInfo.Id,
		Email:    userInfo.Email,
		Name:     userInfo.Name,
		Picture:  userInfo.Picture,
		Verified: verified,
	}, nil
}
