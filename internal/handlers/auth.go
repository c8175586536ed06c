package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"QROLY_BACK-END/internal/config"
	"QROLY_BACK-END/internal/dto"
	"QROLY_BACK-END/internal/metrics"
	"QROLY_BACK-END/internal/middleware"
	"QROLY_BACK-END/internal/models"
	"QROLY_BACK-END/internal/services"
	"QROLY_BACK-END/internal/utils"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth services.AuthServiceProvider
	jwt  *config.JWTConfig
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(auth services.AuthServiceProvider, jwtCfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwtCfg}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new account with username, email, and password. An empty link profile is created with it.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.AuthResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "User already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", err.Error())
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Email or username already registered")
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("register failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create user", "")
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with an email address or username and a password. The token is also set as an HttpOnly cookie.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", err.Error())
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		var message string
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			message = "No user found"
		case errors.Is(err, services.ErrPasswordNotSet):
			message = "Use OAuth provider to login"
		case errors.Is(err, services.ErrInvalidPassword):
			message = "Invalid password"
		default:
			metrics.LoginAttempts.WithLabelValues(models.ProviderCredentials, "error").Inc()
			log.Error().Err(err).Msg("login failed")
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
			return
		}
		metrics.LoginAttempts.WithLabelValues(models.ProviderCredentials, "rejected").Inc()
		log.Warn().Str("identifier", req.Identifier).Msg(message)
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", message)
		return
	}

	metrics.LoginAttempts.WithLabelValues(models.ProviderCredentials, "ok").Inc()
	h.respondWithToken(w, http.StatusOK, user)
}

// Logout clears the session cookie
// @Summary Logout user
// @Description Clear the token cookie. Bearer tokens stay valid until they expire.
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.jwt.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

// Me returns the current user's account
// @Summary Get current user
// @Description Get the authenticated user's account information
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, id middleware.Identity) {
	user, err := h.auth.GetUser(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "User not found", "")
			return
		}
		log.Error().Err(err).Str("user_id", id.UserID.String()).Msg("load user failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.NewUserResponse(user))
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := middleware.GenerateToken(user, h.jwt)
	if err != nil {
		log.Error().Err(err).Msg("generate token failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", "")
		return
	}

	setTokenCookie(w, token, h.jwt)
	utils.WriteJSONResponse(w, status, dto.AuthResponse{
		User:  dto.NewUserResponse(user),
		Token: token,
	})
}

func setTokenCookie(w http.ResponseWriter, token string, cfg *config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
