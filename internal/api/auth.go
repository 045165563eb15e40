package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"condoflow/internal/metrics"
)

type loginRequest struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=128"`
}

type profileRequest struct {
	Name   string `json:"name" validate:"required,max=120"`
	Email  string `json:"email" validate:"required,max=254"`
	Phone  string `json:"phone" validate:"max=40"`
	Bio    string `json:"bio" validate:"max=500"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

type passwordRequest struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"max=128"`
	Confirm string `json:"confirm_password" validate:"max=128"`
}

// handleLogin checks the credentials and opens a session. The token is both
// set as cookie and returned in the body.
// POST /api/auth/login
func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	profile, err := s.deps.Auth.Authenticate(req.Email, req.Password)
	if err != nil {
		metrics.IncLogin("failure")
		zerolog.Ctx(r.Context()).Info().Str("email", req.Email).Msg("login refused")
		s.fail(w, r, err)
		return
	}
	sess, err := s.deps.Sessions.Login(r.Context(), profile)
	if err != nil {
		metrics.IncLogin("error")
		s.fail(w, r, err)
		return
	}

	metrics.IncLogin("success")
	s.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	writeJSON(w, http.StatusOK, sess)
}

// POST /api/auth/logout
func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := s.deps.Sessions.Logout(r.Context(), sess.Token); err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSessionCookie(w, "", time.Unix(0, 0))
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/me
func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()))
}

// handleUpdateProfile edits name, email, phone, bio and avatar. Unit and role
// stay as they are.
// PUT /api/me
func (s *HTTPServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess := sessionFrom(r.Context())
	next := sess.Profile
	next.Name = req.Name
	next.Email = req.Email
	next.Phone = req.Phone
	next.Bio = req.Bio
	if req.Avatar != "" {
		next.Avatar = req.Avatar
	}

	updated, err := s.deps.Auth.UpdateProfile(sess.Profile.Email, next)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	refreshed, err := s.deps.Sessions.Refresh(r.Context(), sess.Token, updated)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshed)
}

// PUT /api/me/password
func (s *HTTPServer) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess := sessionFrom(r.Context())
	if err := s.deps.Auth.ChangePassword(sess.Profile.Email, req.Current, req.New, req.Confirm); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Senha alterada com sucesso."})
}

func (s *HTTPServer) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}
