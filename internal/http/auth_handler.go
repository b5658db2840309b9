package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/repository"
	"github.com/fjod/freshbuy/internal/service"
)

type AuthAPI interface {
	SignUp(ctx context.Context, email, username, password string) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*service.SignInResult, error)
	Refresh(refreshToken string) (string, error)
	User(ctx context.Context, userID int64) (*domain.User, error)
}

type AuthHandler struct {
	svc     AuthAPI
	timeout time.Duration
}

func NewAuthHandler(svc AuthAPI, timeout time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, timeout: timeout}
}

type SignUpRequestDTO struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignInRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponseDTO struct {
	Message string  `json:"message"`
	Refresh string  `json:"refresh"`
	Access  string  `json:"access"`
	User    UserDTO `json:"user"`
}

type RefreshRequestDTO struct {
	Refresh string `json:"refresh"`
}

// POST /signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignUpRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.SignUp(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully!",
		"user":    UserDTO{Email: user.Email, Username: user.Username},
	})
}

// POST /signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignInRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.SignIn(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", "No account found with this email.")
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "unauthorized", "Incorrect password.")
		return
	case err != nil:
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, SignInResponseDTO{
		Message: "Login successful.",
		Refresh: res.Tokens.Refresh,
		Access:  res.Tokens.Access,
		User:    UserDTO{Email: res.User.Email, Username: res.User.Username},
	})
}

// POST /token/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	access, err := h.svc.Refresh(req.Refresh)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"access": access})
}

// GET /user_is_admin
func (h *AuthHandler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principal(w, r)
	if !ok {
		return
	}
	user, err := h.svc.User(ctx, p.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_admin": user.IsAdmin})
}

// GET /user_is_logged_in
func (h *AuthHandler) IsLoggedIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := principal(w, r)
	if !ok {
		return
	}
	user, err := h.svc.User(ctx, p.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		respondJSON(w, http.StatusUnauthorized, map[string]bool{"is_logged_in": false})
		return
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"is_logged_in": true,
		"email":        user.Email,
		"username":     user.Username,
	})
}
