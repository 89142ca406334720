package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"coachpath/internal/models"
	"coachpath/internal/security"
	"coachpath/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *service.AuthService
	coaching     *service.CoachingService
	emailService *service.EmailService
	csrf         *security.CSRFGenerator
	isAdmin      func(email string) bool

	googleOAuth          *oauth2.Config
	googleUserInfoURL    string
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler. googleOAuth may be nil to disable Google sign-in.
func NewAuthHandler(
	authService *service.AuthService,
	coaching *service.CoachingService,
	emailService *service.EmailService,
	csrf *security.CSRFGenerator,
	isAdmin func(email string) bool,
	googleOAuth *oauth2.Config,
	oauthRedirectBaseURL string,
) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		coaching:             coaching,
		emailService:         emailService,
		csrf:                 csrf,
		isAdmin:              isAdmin,
		googleOAuth:          googleOAuth,
		googleUserInfoURL:    googleUserInfoURL,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	HasPathway       bool   `json:"has_pathway"`
	IsAdmin          bool   `json:"is_admin"`
	RemindersEnabled bool   `json:"reminders_enabled"`
	CSRFToken        string `json:"csrf_token,omitempty"`
}

// Register creates a password account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.authService.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		respondWithServiceError(w, "Failed to register user", err)
		return
	}

	session, _, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Failed to sign in new user", err)
		return
	}

	h.sendWelcome(user)
	h.startSession(w, r, session, user, http.StatusCreated)
}

// Login handles email and password sign in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	session, user, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Failed to login", err)
		return
	}

	h.startSession(w, r, session, user, http.StatusOK)
}

// Logout ends the current session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := security.SessionIDFromRequest(r); sessionID != "" {
		if err := h.authService.Logout(r.Context(), sessionID); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r))
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// Me reports who is signed in and whether the quiz was taken
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := h.describe(ctx, user, security.SessionIDFromRequest(r))
	if err != nil {
		respondWithServiceError(w, "Failed to load account", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, session *models.Session, user *models.User, status int) {
	http.SetCookie(w, security.CreateSessionCookie(r, session.ID, session.ExpiresAt))

	resp, err := h.describe(r.Context(), user, session.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to load account", err)
		return
	}
	respondWithJSON(w, status, resp)
}

func (h *AuthHandler) describe(ctx context.Context, user *models.User, sessionID string) (userResponse, error) {
	status, err := h.coaching.QuizStatus(ctx, user.ID)
	if err != nil {
		return userResponse{}, err
	}

	resp := userResponse{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		HasPathway:       status.Completed,
		IsAdmin:          h.isAdmin != nil && h.isAdmin(user.Email),
		RemindersEnabled: user.RemindersEnabled,
	}
	if sessionID != "" {
		token, err := h.csrf.GenerateToken(sessionID)
		if err != nil {
			return userResponse{}, err
		}
		resp.CSRFToken = token
	}
	return resp, nil
}

// sendWelcome mails the welcome message in the background
func (h *AuthHandler) sendWelcome(user *models.User) {
	if h.emailService == nil || !h.emailService.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.emailService.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}()
}
