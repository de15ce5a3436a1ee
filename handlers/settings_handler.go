package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tcghub/poke-tournaments/services"
	"github.com/tcghub/poke-tournaments/session"
)

type SettingsHandler struct {
	settingsService     services.SettingsService
	authService         services.AuthService
	verificationService services.VerificationService
	sessions            *session.Manager
	publicURL           string
}

func NewSettingsHandler(
	settingsService services.SettingsService,
	authService services.AuthService,
	verificationService services.VerificationService,
	sessions *session.Manager,
	publicURL string,
) *SettingsHandler {
	return &SettingsHandler{
		settingsService:     settingsService,
		authService:         authService,
		verificationService: verificationService,
		sessions:            sessions,
		publicURL:           publicURL,
	}
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	view, err := h.settingsService.LoadView(r.Context(), s.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"settings": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.ProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.settingsService.UpdateProfile(r.Context(), s.UserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"profile": profile,
		"message": "Profile updated successfully",
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SettingsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.ChangePasswordInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), s.UserID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "Password updated successfully"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadVerificationImage handles the dependent file-upload sub-step of the
// shop verification form.
func (h *SettingsHandler) UploadVerificationImage(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	// Parse limit is above the validation cap so an oversized file reaches
	// the typed size check instead of a generic multipart error.
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("file field is required"))
		return
	}
	defer file.Close()

	url, err := h.verificationService.UploadImage(r.Context(), s.UserID, services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"shop_image": url,
		"message":    "Image uploaded successfully.",
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SettingsHandler) SubmitVerification(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.VerificationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	request, err := h.verificationService.Submit(r.Context(), s.UserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"request": request,
		"message": "Verification request submitted successfully. We'll review your application and get back to you.",
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VerificationStatus reports the derived display status for the signed-in
// user: verified beats pending beats none.
func (h *SettingsHandler) VerificationStatus(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	status, err := h.verificationService.Status(r.Context(), s.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteAccount runs the confirmation-gated deletion sequence and revokes
// the session as its final step.
func (h *SettingsHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.DeleteAccountInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.settingsService.DeleteAccount(r.Context(), s.UserID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.sessions.Revoke(w)

	response := jsonResponse{
		"message":     "Your profile data has been removed and your account marked for deletion.",
		"redirect_to": "/",
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SettingsHandler) LinkProvider(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	provider := chi.URLParam(r, "provider")
	authorizeURL, err := h.settingsService.ProviderAuthorizeURL(provider, h.publicURL+"/dashboard/settings")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"authorize_url": authorizeURL}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SettingsHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	provider := chi.URLParam(r, "provider")
	if err := h.settingsService.CompleteProviderLink(r.Context(), s.UserID, provider); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard/settings", http.StatusSeeOther)
}
