package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"QROLY_BACK-END/internal/services"
	"QROLY_BACK-END/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var statusPage = template.Must(template.ParseFS(templateFS, "templates/status.html"))

type statusPageData struct {
	Title   string
	Heading string
	Message string
}

// PublicHandler serves the unauthenticated /r/{username} surface.
type PublicHandler struct {
	redirects services.RedirectServiceProvider
	baseURL   string
	qrSize    int
}

// NewPublicHandler creates a PublicHandler. baseURL prefixes personal links
// encoded into QR codes.
func NewPublicHandler(redirects services.RedirectServiceProvider, baseURL string, qrSize int) *PublicHandler {
	return &PublicHandler{redirects: redirects, baseURL: baseURL, qrSize: qrSize}
}

// Redirect godoc
// @Summary      Follow a personal link
// @Description  Redirects to the user's default destination exactly as stored. Renders an HTML page when the user has no destination or does not exist.
// @Tags         public
// @Produce      html
// @Param        username  path  string  true  "Username"
// @Success      302  "Location is the stored default redirect"
// @Success      200  {string}  string  "No destination configured"
// @Failure      404  {string}  string  "User not found"
// @Failure      500  {string}  string  "Temporarily unavailable"
// @Router       /r/{username} [get]
func (h *PublicHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	destination, err := h.redirects.Resolve(r.Context(), username)
	switch {
	case err == nil:
		// Set verbatim; http.Redirect would rewrite non-http schemes such as upi ids.
		w.Header().Set("Location", destination)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusFound)
	case errors.Is(err, services.ErrNoDestination):
		renderStatus(w, http.StatusOK, statusPageData{
			Title:   username,
			Heading: "No destination configured",
			Message: "@" + username + " has not chosen where this link goes yet.",
		})
	case errors.Is(err, services.ErrProfileNotFound):
		renderStatus(w, http.StatusNotFound, statusPageData{
			Title:   "User not found",
			Heading: "User not found",
			Message: "There is no Qroly profile named @" + username + ".",
		})
	default:
		log.Error().Err(err).Str("username", username).Msg("resolve redirect failed")
		renderStatus(w, http.StatusInternalServerError, statusPageData{
			Title:   "Unavailable",
			Heading: "Something went wrong",
			Message: "This link is temporarily unavailable. Please try again.",
		})
	}
}

// QRCode godoc
// @Summary      Personal link QR code
// @Description  PNG QR code of {PUBLIC_BASE_URL}/r/{username}
// @Tags         public
// @Produce      png
// @Param        username  path   string  true   "Username"
// @Param        size      query  int     false  "Image size in pixels (128-1024)"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /r/{username}/qr.png [get]
func (h *PublicHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	exists, err := h.redirects.Exists(r.Context(), username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("profile lookup failed")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	if !exists {
		utils.WriteErrorResponse(w, http.StatusNotFound, "User not found", "")
		return
	}

	writePNG(w, r, personalLink(h.baseURL, username), h.qrSize)
}

func renderStatus(w http.ResponseWriter, status int, data statusPageData) {
	var buf bytes.Buffer
	if err := statusPage.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("render status page failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Msg("write status page")
	}
}
