package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/omara/internal/auth"
	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/ident"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
	"github.com/erazemk/omara/internal/validation"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	DB        *db.DB
	Validator *validation.Validator
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := createAccount(r, h.DB, req.Username, req.Password, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user created", "user", GetIdentity(r.Context()).Username, "new_user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// createAccount hashes the password and inserts a user with a fresh id.
func createAccount(r *http.Request, database *db.DB, username, password, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.ValidationWithDetails("validation failed", map[string]string{"username": "is required"})
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, errors.ValidationWithDetails(err.Error(), map[string]string{"password": err.Error()})
	}
	if !model.ValidRole(role) {
		return nil, errors.Validationf("unknown role %q", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to hash password")
	}
	id, err := ident.UserID()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate user id")
	}

	user, err := store.CreateUser(r.Context(), database, id, username, hash, role)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return nil, errors.Conflict("username already exists")
		}
		return nil, err
	}
	return user, nil
}
