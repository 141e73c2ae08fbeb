package repository

import (
	"context"
	"time"

	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

// UserRepository defines the interface for user profile persistence.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields an AlreadyExists error.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email, compared case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// TouchLastLogin sets last_login_at for the user.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// ProductRepository defines the interface for product persistence.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by id.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns one page of products, newest first, with the total count.
	List(ctx context.Context, page pagination.Params) ([]domain.Product, int, error)

	// Search returns one page of products whose name or description contains
	// query, compared case-insensitively, with the total match count.
	Search(ctx context.Context, query string, page pagination.Params) ([]domain.Product, int, error)
}

// ReviewRepository defines the interface for review persistence.
type ReviewRepository interface {
	// Create inserts a new review. A second non-deleted review for the same
	// product and user yields a Conflict error.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by id regardless of status.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ExistsActive reports whether userID has a non-deleted review of productID.
	ExistsActive(ctx context.Context, productID, userID string) (bool, error)

	// Update persists rating, title, content and updated_at.
	Update(ctx context.Context, review *domain.Review) error

	// SoftDelete marks the review deleted and sets updated_at.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// ListForProduct returns published reviews of a product joined with
	// their authors, newest first.
	ListForProduct(ctx context.Context, productID string, page pagination.Params) ([]domain.ReviewWithAuthor, int, error)

	// ListForUser returns the user's non-deleted reviews joined with the
	// reviewed products, newest first.
	ListForUser(ctx context.Context, userID string, page pagination.Params) ([]domain.ReviewWithProduct, int, error)
}

// SessionStore records revoked session tokens until they would have expired.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// RevokeUserSessions invalidates all of a user's sessions issued before at.
	RevokeUserSessions(ctx context.Context, userID string, at time.Time, ttl time.Duration) error
	SessionsRevokedBefore(ctx context.Context, userID string) (time.Time, error)
}

// ResetTokenStore holds single-use password reset tokens.
type ResetTokenStore interface {
	// Save stores token for userID with the given lifetime.
	Save(ctx context.Context, token, userID string, ttl time.Duration) error

	// Consume returns the user id bound to token and deletes it. Unknown or
	// expired tokens yield apperrors.ErrNotFound.
	Consume(ctx context.Context, token string) (string, error)
}

// ProductCache is a short-lived read-through cache in front of
// ProductRepository. Get reports a miss as apperrors.ErrNotFound.
type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
}
