package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"QROLY_BACK-END/internal/dto"
	"QROLY_BACK-END/internal/middleware"
	"QROLY_BACK-END/internal/services"
	"QROLY_BACK-END/internal/utils"
)

// RedirectsHandler serves the dashboard's link document for the signed-in user.
type RedirectsHandler struct {
	profiles services.ProfileServiceProvider
}

func NewRedirectsHandler(profiles services.ProfileServiceProvider) *RedirectsHandler {
	return &RedirectsHandler{profiles: profiles}
}

// Get godoc
// @Summary      Get redirect links
// @Description  Social links, payment entries and default redirect of the signed-in user
// @Tags         redirects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.RedirectsResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/redirects [get]
func (h *RedirectsHandler) Get(w http.ResponseWriter, r *http.Request, id middleware.Identity) {
	profile, err := h.profiles.Load(r.Context(), id.Username)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Profile not found", "")
			return
		}
		log.Error().Err(err).Str("username", id.Username).Msg("load profile failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.NewRedirectsResponse(profile))
}

// Save godoc
// @Summary      Save redirect links
// @Description  Replace the whole link document. Payment accepts entries keyed by app or the legacy flat {upiid,amount,currency,payer} object.
// @Tags         redirects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      dto.RedirectsRequest  true  "Link document"
// @Success      200      {object}  dto.MessageResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /api/redirects [post]
func (h *RedirectsHandler) Save(w http.ResponseWriter, r *http.Request, id middleware.Identity) {
	var req dto.RedirectsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := h.profiles.Save(r.Context(), id.Username, req.ToLinks(), req.DefaultRedirect); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Profile not found", "")
			return
		}
		log.Error().Err(err).Str("username", id.Username).Msg("save profile failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Redirects updated"})
}
