package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/middleware"
	"github.com/sigainv/siga-backend/internal/rbac"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID      int64         `json:"user_id"`
	Username    string        `json:"username"`
	DisplayName string        `json:"display_name"`
	Role        rbac.Role     `json:"role"`
	OfficeID    int64         `json:"office_id"`
	OfficeName  string        `json:"office_name"`
	Modules     []rbac.Module `json:"modules"`
}

// Login verifies credentials and issues a session cookie. Users whose stored
// role is not recognized are refused outright.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, ValidationErr("username and password are required", nil))
		return
	}

	user, err := s.database.Queries().GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusUnauthorized, Unauthorized("invalid credentials"))
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, Unauthorized("invalid credentials"))
		return
	}

	role, ok := rbac.ParseRole(user.Role)
	if !ok {
		logger.Warn("Login refused for unrecognized role",
			"username", user.Username, "role", user.Role)
		writeError(w, http.StatusForbidden, PermissionDenied("role not recognized"))
		return
	}

	sess := auth.Session{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        role,
		OfficeID:    user.OfficeID,
		OfficeName:  user.OfficeName,
	}
	token, err := s.sessions.Create(r.Context(), sess)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.cfg.Session.TTL.Seconds()),
	})

	logger.Info("User logged in", "username", user.Username, "role", string(role))
	writeJSON(w, http.StatusOK, loginResponse{
		UserID:      sess.UserID,
		Username:    sess.Username,
		DisplayName: sess.DisplayName,
		Role:        sess.Role,
		OfficeID:    sess.OfficeID,
		OfficeName:  sess.OfficeName,
		Modules:     rbac.PermissionsFor(role).Modules,
	})
}

// Logout invalidates the current session and clears the cookie.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
		if err := s.sessions.Delete(r.Context(), cookie.Value); err != nil {
			middleware.GetLoggerFromContext(r.Context()).Warn("Session delete failed", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// CurrentUser echoes the session principal with its module list.
func (s *Server) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, Unauthorized("authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		UserID:      sess.UserID,
		Username:    sess.Username,
		DisplayName: sess.DisplayName,
		Role:        sess.Role,
		OfficeID:    sess.OfficeID,
		OfficeName:  sess.OfficeName,
		Modules:     rbac.PermissionsFor(sess.Role).Modules,
	})
}

// ListApprovers returns the users who can resolve requests.
func (s *Server) ListApprovers(w http.ResponseWriter, r *http.Request) {
	users, err := s.database.Queries().ListApprovers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	type approver struct {
		ID          int64  `json:"id"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}
	out := make([]approver, 0, len(users))
	for _, u := range users {
		out = append(out, approver{ID: u.ID, DisplayName: u.DisplayName, Role: u.Role})
	}
	writeJSON(w, http.StatusOK, out)
}
