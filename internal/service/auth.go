// Package service: account business logic.
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
//	                   ↘ TokenService (session JWT)
//
// KEY RESPONSIBILITIES:
//   - Validate registration input and hash the password before it is stored
//   - Verify a login and issue the session token the handler puts in a cookie
//   - Keep login failures indistinguishable: an unknown username and a wrong
//     password produce the same error and take about the same time
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/showtracker/internal/apperror"
	"github.com/sakif/showtracker/internal/auth"
	"github.com/sakif/showtracker/internal/model"
	"github.com/sakif/showtracker/internal/repository"
)

// Client-facing messages. The front end matches on some of these strings.
const (
	msgAllFieldsRequired   = "All fields are required"
	msgCredentialsRequired = "Username and password are required"
	msgInvalidCredentials  = "Invalid username or password"
	msgPasswordTooLong     = "Password must be 72 bytes or fewer"
	msgNotLoggedIn         = "Not logged in"
)

// AuthService handles registration, login and session lookup.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue session tokens
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// SessionTTL is the lifetime of tokens issued by Login.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

// Register creates an account.
//
// Username and email are trimmed; the password is kept exactly as typed.
// A taken username or email comes back from the repository as a conflict and
// is returned unchanged.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	switch {
	case username == "":
		return nil, apperror.ValidationFailed("username", msgAllFieldsRequired)
	case email == "":
		return nil, apperror.ValidationFailed("email", msgAllFieldsRequired)
	case password == "":
		return nil, apperror.ValidationFailed("password", msgAllFieldsRequired)
	case len(password) > 72:
		return nil, apperror.ValidationFailed("password", msgPasswordTooLong)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("registration rejected: duplicate account",
				slog.String("username", username),
			)
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating user %s: %w", username, err)
	}

	s.logger.Info("user registered", slog.String("username", username))
	return user, nil
}

// Login verifies credentials and issues a session token.
//
// WHY VerifyDummy?
// Without it an unknown username returns immediately while a known one pays
// for a bcrypt comparison, and the response time tells an attacker which
// usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("username", msgCredentialsRequired)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.VerifyDummy(password)
			s.logger.Info("login failed", slog.String("username", username))
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrInvalidPassword) {
			// Not a bcrypt hash at all. Treated as a failed login.
			s.logger.Warn("stored password hash is unreadable",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Info("login failed", slog.String("username", username))
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", user.Username, err)
	}

	s.logger.Info("user logged in", slog.String("username", user.Username))
	return &AuthResult{User: user, Token: token}, nil
}

// CurrentUser returns the account behind a session. An empty username (no
// session) is reported as unauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		return nil, apperror.Unauthorized(msgNotLoggedIn)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// The token outlived the account.
			return nil, apperror.Unauthorized(msgNotLoggedIn)
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", username, err)
	}
	return user, nil
}
