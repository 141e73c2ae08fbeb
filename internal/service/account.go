package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pmaxcam/review-website/internal/auth"
	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/internal/event"
	"github.com/pmaxcam/review-website/internal/repository"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
)

const resetTokenBytes = 32

// PasswordResetSentMessage is returned whether or not the account exists.
const PasswordResetSentMessage = "Password reset instructions sent to your email"

const invalidCredentialsMessage = "Invalid email or password"

// AccountConfig holds password reset settings.
type AccountConfig struct {
	ResetURL string
	ResetTTL time.Duration
}

// SignUpInput holds the parameters for registering an account.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

// LoginResult is a signed session token and the authenticated user.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AccountService implements registration, sessions and password reset.
type AccountService struct {
	users    repository.UserRepository
	sessions *auth.SessionManager
	revoked  repository.SessionStore
	resets   repository.ResetTokenStore
	hasher   *auth.PasswordHasher
	producer *event.Producer
	cfg      AccountConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewAccountService creates a new account service.
func NewAccountService(
	users repository.UserRepository,
	sessions *auth.SessionManager,
	revoked repository.SessionStore,
	resets repository.ResetTokenStore,
	hasher *auth.PasswordHasher,
	producer *event.Producer,
	cfg AccountConfig,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:    users,
		sessions: sessions,
		revoked:  revoked,
		resets:   resets,
		hasher:   hasher,
		producer: producer,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SignUp registers an account and its profile.
func (s *AccountService) SignUp(ctx context.Context, input *SignUpInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)
	if email == "" || input.Password == "" || fullName == "" {
		return nil, apperrors.InvalidInput("Email, password, and full name are required")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		CreatedAt:    now,
		LastLoginAt:  &now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.producer.PublishUserSignedUp(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.signed_up event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID))

	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.InvalidInput("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hasher.CompareDummy(password)
			return nil, apperrors.Unauthorized(invalidCredentialsMessage)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Unauthorized(invalidCredentialsMessage)
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}
	user.LastLoginAt = &now

	token, claims, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return &LoginResult{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Logout revokes token until it would have expired. Absent or already
// invalid tokens are not an error.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := s.sessions.Validate(token)
	if err != nil {
		return nil
	}

	identity := claims.Identity()
	if err := s.revoked.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", identity.UserID))

	return nil
}

// CurrentUser returns the profile of the session owner.
func (s *AccountService) CurrentUser(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	if identity == nil {
		return nil, apperrors.Unauthorized("Not authenticated")
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Not authenticated")
		}
		return nil, apperrors.Upstream(err)
	}
	return user, nil
}

// RequestPasswordReset issues a single-use reset token for the account
// registered under email and publishes the reset link. Unknown addresses
// succeed silently.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.InvalidInput("Email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.DebugContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.resets.Save(ctx, token, user.ID, s.cfg.ResetTTL); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	link, err := resetLink(s.cfg.ResetURL, token)
	if err != nil {
		return err
	}

	if err := s.producer.PublishPasswordResetRequested(ctx, user, link); err != nil {
		return fmt.Errorf("send password reset instructions: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset requested", slog.String("user_id", user.ID))

	return nil
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.InvalidInput("Reset token is required")
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	userID, err := s.resets.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.InvalidInput("Password reset link is invalid or has expired")
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.InvalidInput("Password reset link is invalid or has expired")
		}
		return fmt.Errorf("update password: %w", err)
	}

	// Sessions issued under the old password stop resolving.
	if err := s.revoked.RevokeUserSessions(ctx, userID, s.now(), s.sessions.TTL()); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset", slog.String("user_id", userID))

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
