package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/fjod/freshbuy/internal/auth"
	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/repository"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type TokenIssuer interface {
	Issue(userID int64, email string, isAdmin bool) (auth.TokenPair, error)
	Refresh(refreshToken string) (string, error)
}

type AuthService struct {
	users  UserStore
	tokens TokenIssuer
}

func NewAuthService(users UserStore, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type SignInResult struct {
	Tokens auth.TokenPair
	User   *domain.User
}

func (s *AuthService) SignUp(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("Email and password are required.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("Enter a valid email address.")
	}
	return s.createUser(ctx, email, strings.TrimSpace(username), password, false)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("Email and password are required.")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &SignInResult{Tokens: pair, User: user}, nil
}

func (s *AuthService) Refresh(refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", invalid("refresh token is required")
	}
	access, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return access, nil
}

func (s *AuthService) User(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetUser(ctx, userID)
}

// IsAdmin reads the admin flag from the store so revoked rights take effect before tokens expire.
func (s *AuthService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// EnsureSuperuser creates an admin account for email unless one already exists.
// It reports whether an account was created.
func (s *AuthService) EnsureSuperuser(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, invalid("Email and password are required.")
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		slog.InfoContext(ctx, "superuser already exists", "email", email)
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, err
	}

	if _, err := s.createUser(ctx, email, "", password, true); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return false, nil
		}
		return false, err
	}
	slog.InfoContext(ctx, "superuser created", "email", email)
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, email, username, password string, isAdmin bool) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, invalid("User with this email already exists.")
		}
		return nil, err
	}
	return user, nil
}
