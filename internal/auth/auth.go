package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Pritam-devloper/shophub/internal/domain"
	"github.com/Pritam-devloper/shophub/internal/storage"
	apperrors "github.com/Pritam-devloper/shophub/pkg/errors"
	"github.com/Pritam-devloper/shophub/pkg/httpclient"
	"github.com/Pritam-devloper/shophub/pkg/logger"
	"github.com/Pritam-devloper/shophub/pkg/validator"
)

const contentTypeJSON = "application/json"

// LoginInput holds the credentials for a login call.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput holds the fields for creating a new user.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
}

// ProfileInput holds the updatable profile fields.
type ProfileInput struct {
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
}

// loginResponse is the remote auth endpoint's reply. The demo API returns
// only a token; a user record may or may not be present.
type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Service handles the mocked authentication flow against the remote API and
// owns the persisted session keys (user and token).
type Service struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	store   storage.Store
	logger  *slog.Logger
}

// NewService creates an auth service.
func NewService(http *httpclient.CircuitBreakerClient, baseURL string, store storage.Store, logger *slog.Logger) *Service {
	return &Service{
		http:    http,
		baseURL: baseURL,
		store:   store,
		logger:  logger,
	}
}

// Login authenticates against the remote API and persists the session.
// When the API returns only a token, a minimal user record carrying the
// username is stored so the session still has an identity.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	input := LoginInput{Username: username, Password: password}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal login request: %w", err)
	}

	resp, err := s.http.Post(ctx, s.baseURL+"/auth/login", contentTypeJSON, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "auth")
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if payload.Token == "" {
		return nil, apperrors.Unauthorized("auth: no token in login response")
	}

	user := payload.User
	if user == nil {
		user = &domain.User{Username: username}
	}

	if err := s.store.Set(ctx, storage.KeyToken, []byte(payload.Token)); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	if err := s.persistUser(ctx, user); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "user logged in",
		slog.String("username", username),
	)
	return user, nil
}

// Register creates a new user via the remote API. Registration does not log
// the user in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal register request: %w", err)
	}

	resp, err := s.http.Post(ctx, s.baseURL+"/users", contentTypeJSON, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "auth")
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode register response: %w", err)
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "user registered",
		slog.String("username", input.Username),
	)
	return &user, nil
}

// UpdateProfile updates the remote user record and persists the result as
// the current session user.
func (s *Service) UpdateProfile(ctx context.Context, userID int, input ProfileInput) (*domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal profile request: %w", err)
	}

	resp, err := s.http.Put(ctx, s.baseURL+"/users/"+strconv.Itoa(userID), contentTypeJSON, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "auth")
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}

	if err := s.persistUser(ctx, &user); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "profile updated",
		slog.Int("user_id", userID),
	)
	return &user, nil
}

// Logout removes both session keys. Logging out when no session exists is
// not an error.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Remove(ctx, storage.KeyToken); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	if err := s.store.Remove(ctx, storage.KeyUser); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "user logged out")
	return nil
}

// CurrentUser returns the persisted session user, or nil when no user is
// stored. A malformed stored record is treated as no session and logged.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	data, err := s.store.Get(ctx, storage.KeyUser)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "discarding malformed persisted user",
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	return &user, nil
}

// IsAuthenticated reports whether a session token is persisted.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	_, err := s.store.Get(ctx, storage.KeyToken)
	return err == nil
}

func (s *Service) persistUser(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyUser, data); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
