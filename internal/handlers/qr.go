package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"QROLY_BACK-END/internal/middleware"
	"QROLY_BACK-END/internal/models"
	"QROLY_BACK-END/internal/qr"
	"QROLY_BACK-END/internal/services"
	"QROLY_BACK-END/internal/upi"
	"QROLY_BACK-END/internal/utils"
)

// QRHandler renders QR codes for the signed-in user.
type QRHandler struct {
	profiles services.ProfileServiceProvider
	baseURL  string
	size     int
}

func NewQRHandler(profiles services.ProfileServiceProvider, baseURL string, size int) *QRHandler {
	return &QRHandler{profiles: profiles, baseURL: baseURL, size: size}
}

// UPILinksResponse maps payment app keys to their upi:// links.
type UPILinksResponse struct {
	Links map[string]string `json:"links"`
}

// Personal godoc
// @Summary      Personal link QR code
// @Description  PNG QR code of the signed-in user's public link
// @Tags         qr
// @Produce      png
// @Security     BearerAuth
// @Param        size  query  int  false  "Image size in pixels (128-1024)"
// @Success      200  {file}    binary
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/qr [get]
func (h *QRHandler) Personal(w http.ResponseWriter, r *http.Request, id middleware.Identity) {
	writePNG(w, r, personalLink(h.baseURL, id.Username), h.size)
}

// Payment godoc
// @Summary      Payment QR code
// @Description  PNG QR code of the UPI link stored for a payment app
// @Tags         qr
// @Produce      png
// @Security     BearerAuth
// @Param        app   path   string  true   "Payment app key (gpay, phonepe, paytm, ...)"
// @Param        size  query  int     false  "Image size in pixels (128-1024)"
// @Success      200  {file}    binary
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/qr/payment/{app} [get]
func (h *QRHandler) Payment(w http.ResponseWriter, r *http.Request, id middleware.Identity) {
	profile, ok := h.loadProfile(w, r, id)
	if !ok {
		return
	}

	app := chi.URLParam(r, "app")
	uri := upiURI(profile.Links.Payment[app])
	if uri == "" {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Payment not configured", "No UPI ID saved for "+app)
		return
	}
	writePNG(w, r, uri, h.size)
}

// UPILinks godoc
// @Summary      UPI links
// @Description  upi://pay links for every payment app that has a UPI ID
// @Tags         qr
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.UPILinksResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/upi-links [get]
func (h *QRHandler) UPILinks(w http.ResponseWriter, r *http.Request, id middleware.Identity) {
	profile, ok := h.loadProfile(w, r, id)
	if !ok {
		return
	}

	links := make(map[string]string, len(profile.Links.Payment))
	for app, entry := range profile.Links.Payment {
		if uri := upiURI(entry); uri != "" {
			links[app] = uri
		}
	}
	utils.WriteJSONResponse(w, http.StatusOK, UPILinksResponse{Links: links})
}

func (h *QRHandler) loadProfile(w http.ResponseWriter, r *http.Request, id middleware.Identity) (*models.Profile, bool) {
	profile, err := h.profiles.Load(r.Context(), id.Username)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Profile not found", "")
			return nil, false
		}
		log.Error().Err(err).Str("username", id.Username).Msg("load profile failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
		return nil, false
	}
	return profile, true
}

func upiURI(e models.PaymentEntry) string {
	return upi.BuildURI(upi.Entry{
		UPIID:     e.UPIID,
		PayerName: e.PayerName,
		Amount:    e.Amount,
		Currency:  e.Currency,
	})
}

func personalLink(baseURL, username string) string {
	return baseURL + "/r/" + url.PathEscape(username)
}

// writePNG renders content as a QR code. ?size= overrides the configured size.
func writePNG(w http.ResponseWriter, r *http.Request, content string, size int) {
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid size", "size must be an integer")
			return
		}
		size = n
	}

	png, err := qr.PNG(content, qr.ClampSize(size))
	if err != nil {
		log.Error().Err(err).Msg("render qr failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to render QR code", "")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Debug().Err(err).Msg("write qr png")
	}
}
