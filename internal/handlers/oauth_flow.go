package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"coachpath/internal/security"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateCookie  = "oauth_state"
	oauthStateTTL     = 10 * time.Minute
)

type oauthUserInfo struct {
	Subject string
	Email   string
	Name    string
}

func (h *AuthHandler) googleEnabled() bool {
	return h.googleOAuth != nil && h.googleOAuth.ClientID != "" && h.googleOAuth.ClientSecret != ""
}

// StartGoogleOAuth redirects to the Google consent screen
func (h *AuthHandler) StartGoogleOAuth(w http.ResponseWriter, r *http.Request) {
	if !h.googleEnabled() {
		respondWithError(w, http.StatusNotFound, "Google sign-in is not configured", "", nil)
		return
	}

	state := security.GenerateSessionID()
	h.setTempCookie(w, r, oauthStateCookie, state, oauthStateTTL)

	config := *h.googleOAuth
	config.RedirectURL = h.oauthRedirectURL(r)

	http.Redirect(w, r, config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// GoogleOAuthCallback completes the Google sign-in and starts a session
func (h *AuthHandler) GoogleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.googleEnabled() {
		respondWithError(w, http.StatusNotFound, "Google sign-in is not configured", "", nil)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}
	h.clearTempCookie(w, r, oauthStateCookie)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *h.googleOAuth
	config.RedirectURL = h.oauthRedirectURL(r)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to exchange OAuth code", "OAuth exchange failed", err)
		return
	}

	info, err := h.fetchGoogleUser(ctx, &config, token)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to fetch Google profile", "Google userinfo failed", err)
		return
	}

	session, user, created, err := h.authService.OAuthLogin(ctx, "google", info.Subject, info.Email, info.Name)
	if err != nil {
		respondWithServiceError(w, "Failed to sign in with Google", err)
		return
	}
	if created {
		h.sendWelcome(user)
	}

	http.SetCookie(w, security.CreateSessionCookie(r, session.ID, session.ExpiresAt))

	target := "/dashboard"
	if status, err := h.coaching.QuizStatus(ctx, user.ID); err != nil {
		log.Printf("Failed to read quiz status after OAuth login: %v", err)
	} else if !status.Completed {
		target = quizPath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AuthHandler) fetchGoogleUser(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (oauthUserInfo, error) {
	client := config.Client(ctx, token)
	resp, err := client.Get(h.googleUserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("google user info returned %d", resp.StatusCode)
	}

	var payload struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse Google user info: %w", err)
	}
	if payload.ID == "" || payload.Email == "" {
		return oauthUserInfo{}, errors.New("google profile has no id or email")
	}
	if !payload.VerifiedEmail {
		return oauthUserInfo{}, errors.New("google email is not verified")
	}

	return oauthUserInfo{Subject: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return strings.TrimRight(baseURL, "/") + "/auth/google/callback"
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
