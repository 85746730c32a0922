package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/yeremiapane/restaurant-console/apierrors"
	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/normalizer"
	"github.com/yeremiapane/restaurant-console/utils"
)

type AuthService struct {
	client *Client
}

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Login exchanges credentials for a token. A success response without a token is a KDecode
// error, since the caller cannot continue without one.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	const op apierrors.Op = "auth.login"
	email = strings.TrimSpace(email)
	if email == "" {
		return models.LoginResult{}, apierrors.Validation(op, "email", "email is required")
	}
	if password == "" {
		return models.LoginResult{}, apierrors.Validation(op, "password", "password is required")
	}

	v, err := s.client.call(ctx, op, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return models.LoginResult{}, err
	}

	obj, _ := normalizer.Object(v)
	token := normalizer.AuthFields.String(obj, normalizer.FieldToken, "")
	if token == "" {
		return models.LoginResult{}, apierrors.ES(op, apierrors.KDecode, "login response did not include a token")
	}

	res := models.LoginResult{
		Token: token,
		User: models.User{
			ID:    normalizer.AuthFields.String(obj, normalizer.FieldID, ""),
			Name:  normalizer.AuthFields.String(obj, normalizer.FieldName, ""),
			Email: normalizer.AuthFields.String(obj, normalizer.FieldEmail, email),
			Role:  normalizer.AuthFields.String(obj, normalizer.FieldRole, ""),
		},
	}
	// Fill what the body left out from the token itself.
	session := NewSession(token)
	if res.User.ID == "" {
		res.User.ID = session.UserID
	}
	if res.User.Role == "" {
		res.User.Role = session.Role
	}
	return res, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email, frontendURL string) (string, error) {
	const op apierrors.Op = "auth.forgotPassword"
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apierrors.Validation(op, "email", "email is required")
	}
	v, err := s.client.call(ctx, op, http.MethodPost, "/auth/forgot-password", nil, map[string]string{
		"email":       email,
		"frontendUrl": frontendURL,
	})
	if err != nil {
		return "", err
	}
	return normalizer.ExtractMessage(v), nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (string, error) {
	const op apierrors.Op = "auth.resetPassword"
	if strings.TrimSpace(token) == "" {
		return "", apierrors.Validation(op, "token", "reset token is required")
	}
	if password == "" {
		return "", apierrors.Validation(op, "password", "password is required")
	}
	v, err := s.client.call(ctx, op, http.MethodPost, "/auth/reset-password", nil, map[string]string{
		"token":    token,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	return normalizer.ExtractMessage(v), nil
}

// UserCount returns the number of registered users. A body in none of the known shapes counts
// as zero.
func (s *AuthService) UserCount(ctx context.Context) (int, error) {
	const op apierrors.Op = "auth.userCount"
	v, err := s.client.call(ctx, op, http.MethodGet, "/auth/user-count", nil, nil)
	if err != nil {
		return 0, err
	}
	n, ok := normalizer.UserCount(v)
	if !ok {
		utils.ErrorLogger.WithField("op", op).Warnf("unrecognised user count response %q, assuming 0", normalizer.StringOf(v))
		return 0, nil
	}
	return n, nil
}

// BootstrapNeeded reports whether no user exists yet, so the first admin must be created.
func (s *AuthService) BootstrapNeeded(ctx context.Context) (bool, error) {
	n, err := s.UserCount(ctx)
	if err != nil {
		return false, err
	}
	return n <= 0, nil
}

func (s *AuthService) BootstrapAdmin(ctx context.Context, email, name, frontendURL string) (string, error) {
	const op apierrors.Op = "auth.bootstrapAdmin"
	email, name = strings.TrimSpace(email), strings.TrimSpace(name)
	if email == "" {
		return "", apierrors.Validation(op, "email", "email is required")
	}
	if name == "" {
		return "", apierrors.Validation(op, "name", "name is required")
	}
	v, err := s.client.call(ctx, op, http.MethodPost, "/auth/bootstrap-admin", nil, map[string]string{
		"email":       email,
		"name":        name,
		"frontendUrl": frontendURL,
	})
	if err != nil {
		return "", err
	}
	return normalizer.ExtractMessage(v), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	const op apierrors.Op = "auth.changePassword"
	if currentPassword == "" {
		return "", apierrors.Validation(op, "currentPassword", "current password is required")
	}
	if newPassword == "" {
		return "", apierrors.Validation(op, "newPassword", "new password is required")
	}
	v, err := s.client.call(ctx, op, http.MethodPost, "/auth/change-password", nil, map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
	if err != nil {
		return "", err
	}
	return normalizer.ExtractMessage(v), nil
}
