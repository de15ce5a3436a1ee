package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tcghub/poke-tournaments/services"
	"github.com/tcghub/poke-tournaments/session"
)

type AuthHandler struct {
	authService  services.AuthService
	emailService *services.EmailService
	sessions     *session.Manager
	logger       *slog.Logger
}

func NewAuthHandler(authService services.AuthService, emailService *services.EmailService, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		emailService: emailService,
		sessions:     sessions,
		logger:       logger,
	}
}

// SignUpPage and SignInPage describe the forms for clients that fetch the
// auth routes with GET. The guard already bounced signed-in users to home.
func (h *AuthHandler) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.formPage(w, r, "sign-up")
}

func (h *AuthHandler) SignInPage(w http.ResponseWriter, r *http.Request) {
	h.formPage(w, r, "sign-in")
}

func (h *AuthHandler) formPage(w http.ResponseWriter, r *http.Request, mode string) {
	response := jsonResponse{
		"mode":        mode,
		"redirect_to": redirectTarget(r),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	user, confirmationToken, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Sign-up never establishes a session; the account stays unusable until
	// the emailed confirmation link is followed.
	if err := h.emailService.SendConfirmationEmail(user.Email, confirmationToken); err != nil {
		h.logger.Error("failed to send confirmation email", slog.String("email", user.Email), slog.Any("error", err))
	}

	response := jsonResponse{
		"user":    user,
		"message": "Please check your email to verify your account",
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.sessions.Issue(w, user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"token":       token,
		"user":        user,
		"redirect_to": redirectTarget(r),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SignOut always succeeds from the caller's perspective.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.Revoke(w)

	response := jsonResponse{"redirect_to": "/"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		badRequestResponse(w, r, errors.New("confirmation token is required"))
		return
	}

	if err := h.authService.ConfirmEmail(r.Context(), token); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "Email confirmed. You can now sign in."}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// redirectTarget reads the return path the route guard preserved. Only
// same-site relative paths are honored.
func redirectTarget(r *http.Request) string {
	redirectTo := r.URL.Query().Get("redirectTo")
	if redirectTo == "" || redirectTo[0] != '/' {
		return "/"
	}
	return redirectTo
}
