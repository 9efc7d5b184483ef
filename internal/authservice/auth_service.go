package authservice

import (
	"context"
	"errors"
	"fmt"

	"bidmarket-client/internal/clienterrors"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/restclient"
)

// Service maps account lifecycle operations to the backend auth endpoints.
//
// Verification and password-reset codes are always checked by the server:
// the client only forwards whatever the user typed and never caches a code
// locally.
type Service struct {
	api *restclient.Client
}

// New creates an auth Service on top of the shared REST client.
func New(api *restclient.Client) *Service {
	return &Service{api: api}
}

// LoginResult is the outcome of login or verify-and-login. When
// NeedsVerification is set the token is empty and no session may be started.
type LoginResult struct {
	Token             string      `json:"token"`
	User              models.User `json:"user"`
	NeedsVerification bool        `json:"needsVerification"`
}

// RegisterInput carries the fields of the registration form.
type RegisterInput struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	CIN       int64  `json:"cin"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with email and password. A payload flagged
// needsVerification is reported as ErrNeedsVerification so callers route to
// the verification flow instead of starting a session.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, clienterrors.WithUserMessage(
			fmt.Errorf("login: %w", clienterrors.ErrValidation), "Email and password are required.")
	}

	var result LoginResult
	if err := s.api.PostJSON(ctx, "/auth/login", credentials{Email: email, Password: password}, &result); err != nil {
		if errors.Is(err, clienterrors.ErrUnauthorized) {
			return LoginResult{}, clienterrors.WithUserMessage(err, "Invalid email or password.")
		}
		if errors.Is(err, clienterrors.ErrNotFound) {
			return LoginResult{}, clienterrors.WithUserMessage(err, "No account exists for this email.")
		}
		return LoginResult{}, err
	}

	if result.NeedsVerification {
		return result, clienterrors.WithUserMessage(
			fmt.Errorf("login %s: %w", email, clienterrors.ErrNeedsVerification),
			"Your account is not verified yet. Check your email for the code.")
	}
	return result, nil
}

// Register creates an inactive account awaiting code verification. The
// server emails the code; it is never returned to or stored by the client.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if in.Email == "" || in.Password == "" || in.Firstname == "" || in.Lastname == "" {
		return models.User{}, clienterrors.WithUserMessage(
			fmt.Errorf("register: %w", clienterrors.ErrValidation), "All registration fields are required.")
	}
	if in.CIN <= 0 {
		return models.User{}, clienterrors.WithUserMessage(
			fmt.Errorf("register: %w", clienterrors.ErrValidation), "The national ID must be a positive number.")
	}

	var user models.User
	if err := s.api.PostJSON(ctx, "/auth/register", in, &user); err != nil {
		if errors.Is(err, clienterrors.ErrConflict) {
			return models.User{}, clienterrors.WithUserMessage(err, "An account with this email already exists.")
		}
		return models.User{}, err
	}
	return user, nil
}

type verifyRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// VerifyAccount forwards the user-entered code to the server for
// authoritative checking and, on success, logs in with the pending
// registration password. A wrong code surfaces as an error and leaves the
// account pending.
func (s *Service) VerifyAccount(ctx context.Context, email, code, password string) (LoginResult, error) {
	if code == "" {
		return LoginResult{}, clienterrors.WithUserMessage(
			fmt.Errorf("verify account: %w", clienterrors.ErrValidation), "Enter the verification code.")
	}

	var result LoginResult
	req := verifyRequest{Email: email, Code: code, Password: password}
	if err := s.api.PostJSON(ctx, "/auth/verify-account", req, &result); err != nil {
		if errors.Is(err, clienterrors.ErrBadRequest) || errors.Is(err, clienterrors.ErrUnauthorized) {
			return LoginResult{}, clienterrors.WithUserMessage(err, "The verification code is incorrect.")
		}
		return LoginResult{}, err
	}
	return result, nil
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendCode asks the server to email a fresh verification code.
func (s *Service) ResendCode(ctx context.Context, email string) error {
	if err := s.api.PostJSON(ctx, "/auth/resend-code", emailRequest{Email: email}, nil); err != nil {
		if errors.Is(err, clienterrors.ErrNotFound) {
			return clienterrors.WithUserMessage(err, "No pending account exists for this email.")
		}
		return err
	}
	return nil
}

type resetRequest struct {
	CIN   int64  `json:"cin"`
	Email string `json:"email"`
}

// RequestPasswordReset starts the reset flow. The server verifies that the
// national ID and email belong together and emails a reset code.
func (s *Service) RequestPasswordReset(ctx context.Context, cin int64, email string) error {
	if cin <= 0 || email == "" {
		return clienterrors.WithUserMessage(
			fmt.Errorf("reset password: %w", clienterrors.ErrValidation), "National ID and email are required.")
	}

	if err := s.api.PostJSON(ctx, "/auth/reset-password", resetRequest{CIN: cin, Email: email}, nil); err != nil {
		if errors.Is(err, clienterrors.ErrNotFound) || errors.Is(err, clienterrors.ErrBadRequest) {
			return clienterrors.WithUserMessage(err, "No account matches this national ID and email.")
		}
		return err
	}
	return nil
}

type updatePasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// UpdatePassword completes the reset flow. The reset code travels to the
// server with the new password and is validated there.
func (s *Service) UpdatePassword(ctx context.Context, email, code, newPassword string) error {
	if code == "" || newPassword == "" {
		return clienterrors.WithUserMessage(
			fmt.Errorf("update password: %w", clienterrors.ErrValidation), "Code and new password are required.")
	}

	req := updatePasswordRequest{Email: email, Code: code, NewPassword: newPassword}
	if err := s.api.PostJSON(ctx, "/auth/update-password", req, nil); err != nil {
		if errors.Is(err, clienterrors.ErrBadRequest) || errors.Is(err, clienterrors.ErrUnauthorized) {
			return clienterrors.WithUserMessage(err, "The reset code is incorrect or has expired.")
		}
		return err
	}
	return nil
}
