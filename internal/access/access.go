// Package access decides whether a caller may mutate an owned resource.
package access

import (
	"github.com/pmaxcam/review-website/internal/domain"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
)

// CanMutate reports whether identity is present and owns the resource.
func CanMutate(identity *domain.Identity, ownerID string) bool {
	return identity != nil && identity.UserID != "" && identity.UserID == ownerID
}

// CheckOwnership returns 401 without an identity and 403 when the identity is
// not the owner. The resource must already have been loaded, so a missing
// resource is reported as not found before this runs. forbiddenMsg is the
// message returned to a non-owner.
func CheckOwnership(identity *domain.Identity, ownerID, forbiddenMsg string) error {
	if identity == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if !CanMutate(identity, ownerID) {
		return apperrors.Forbidden(forbiddenMsg)
	}
	return nil
}
