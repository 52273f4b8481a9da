package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/omara/internal/auth"
	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
	"github.com/erazemk/omara/internal/validation"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	DB        *db.DB
	JWTSecret string
	Validator *validation.Validator
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := createAccount(r, h.DB, req.Username, req.Password, model.RoleUser)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user)
	if err != nil {
		writeError(w, r, errors.Wrap(err, errors.CodeInternal, "failed to generate token"))
		return
	}

	slog.Info("user signed up", "user", user.Username)
	jsonResponse(w, http.StatusCreated, loginResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user)
	if err != nil {
		writeError(w, r, errors.Wrap(err, errors.CodeInternal, "failed to generate token"))
		return
	}

	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())
	if id.TokenID != "" {
		if err := store.RevokeToken(r.Context(), h.DB, id.TokenID, id.ExpiresAt); err != nil {
			writeError(w, r, err)
			return
		}
	}
	slog.Info("user logged out", "user", id.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())
	user, err := store.GetUser(r.Context(), h.DB, id.OwnerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		// Development identities have no account row.
		user = &model.User{ID: id.OwnerID, Username: id.Username, Role: id.Role}
	}
	jsonResponse(w, http.StatusOK, user)
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		writeError(w, r, errors.ValidationWithDetails(err.Error(), map[string]string{"newPassword": err.Error()}))
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id.OwnerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, r, errors.Wrap(err, errors.CodeInternal, "failed to hash password"))
		return
	}
	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, hash); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user changed own password", "user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
