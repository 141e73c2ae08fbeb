package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/pmaxcam/review-website/internal/domain"
)

// RevocationChecker reports whether a session token id has been revoked,
// either on its own or by a per-user cutoff.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	SessionsRevokedBefore(ctx context.Context, userID string) (time.Time, error)
}

// Resolver turns a session token into the caller identity.
type Resolver struct {
	sessions *SessionManager
	revoked  RevocationChecker
}

// NewResolver creates a resolver backed by the given revocation store.
func NewResolver(sessions *SessionManager, revoked RevocationChecker) *Resolver {
	return &Resolver{sessions: sessions, revoked: revoked}
}

// Resolve validates token and returns its identity. Invalid, expired and
// revoked tokens yield ErrInvalidSession; store failures are returned as-is.
func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims, err := r.sessions.Validate(token)
	if err != nil {
		return nil, err
	}

	revoked, err := r.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidSession)
	}

	cutoff, err := r.revoked.SessionsRevokedBefore(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("check session cutoff: %w", err)
	}
	// iat has second granularity, so a session issued in the cutoff's own
	// second stays valid.
	if !cutoff.IsZero() && claims.IssuedAt != nil && claims.IssuedAt.Time.Before(cutoff) {
		return nil, fmt.Errorf("%w: issued before cutoff", ErrInvalidSession)
	}

	return claims.Identity(), nil
}
