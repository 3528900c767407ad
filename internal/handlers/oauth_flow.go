package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

type oauthUserInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// StartOAuth handles GET /auth/google/start. It stashes an anti-forgery state
// in a short-lived cookie and sends the browser to Google's consent screen.
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	if h.googleOAuth == nil {
		respondWithError(w, http.StatusBadRequest, "oauth_unconfigured", "Google sign-in is not configured")
		return
	}

	state, err := randomState()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
		return
	}

	setTempCookie(w, "oauth_state", state, 10*time.Minute)

	config := *h.googleOAuth
	config.RedirectURL = h.oauthRedirectURL()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback handles GET /auth/google/callback. On success the browser is
// redirected back into the app with an access token in the URL fragment, which
// keeps the token out of server logs along the way.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.googleOAuth == nil {
		respondWithError(w, http.StatusBadRequest, "oauth_unconfigured", "Google sign-in is not configured")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "missing authorization code")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid OAuth state")
		return
	}
	clearTempCookie(w, "oauth_state")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *h.googleOAuth
	config.RedirectURL = h.oauthRedirectURL()

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "oauth_exchange_failed", "could not complete Google sign-in")
		return
	}

	info, err := fetchGoogleUserInfo(ctx, &config, token)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "oauth_userinfo_failed", "could not read Google profile")
		return
	}

	accessToken, _, err := h.authService.OAuthLogin("google", info.Subject, info.Email, info.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	redirect := fmt.Sprintf("%s/oauth/complete#token=%s", h.appBaseURL, url.QueryEscape(accessToken))
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (h *AuthHandler) oauthRedirectURL() string {
	return h.redirectBase + "/auth/google/callback"
}

func fetchGoogleUserInfo(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*oauthUserInfo, error) {
	client := config.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned %d", resp.StatusCode)
	}

	var info oauthUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Subject == "" || info.Email == "" {
		return nil, fmt.Errorf("userinfo response missing subject or email")
	}
	return &info, nil
}

func setTempCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTempCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func randomState() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
