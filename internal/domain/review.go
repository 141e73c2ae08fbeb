package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReviewStatus is the lifecycle state of a review.
type ReviewStatus string

// Review status values. Deleted is terminal.
const (
	ReviewStatusPublished ReviewStatus = "published"
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusDeleted   ReviewStatus = "deleted"
)

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidReviewStatuses returns the set of valid review statuses.
func ValidReviewStatuses() []ReviewStatus {
	return []ReviewStatus{ReviewStatusPublished, ReviewStatusPending, ReviewStatusDeleted}
}

// ParseReviewStatus converts a stored value into a ReviewStatus.
func ParseReviewStatus(s string) (ReviewStatus, error) {
	for _, st := range ValidReviewStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown review status %q", s)
}

// IsDeleted reports whether the review has been soft deleted.
func (s ReviewStatus) IsDeleted() bool {
	return s == ReviewStatusDeleted
}

// UnmarshalJSON rejects values outside the enumeration.
func (s *ReviewStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseReviewStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// IsValidRating reports whether r lies within [MinRating, MaxRating].
func IsValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Review is a user's opinion on a product.
type Review struct {
	ID        string       `json:"id"`
	ProductID string       `json:"product_id"`
	UserID    string       `json:"user_id"`
	Rating    int          `json:"rating"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Status    ReviewStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ReviewAuthor is the public profile subset joined onto product review listings.
type ReviewAuthor struct {
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// ReviewWithAuthor is a review as shown on a product page.
type ReviewWithAuthor struct {
	Review
	User ReviewAuthor `json:"users"`
}

// ReviewedProduct is the product subset joined onto a user's own reviews.
type ReviewedProduct struct {
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url"`
	Category   string `json:"category"`
}

// ReviewWithProduct is a review as shown on the author's own review list.
type ReviewWithProduct struct {
	Review
	Product ReviewedProduct `json:"products"`
}

// ReviewUpdate carries a partial update. Nil fields are left unchanged.
type ReviewUpdate struct {
	Rating  *int
	Title   *string
	Content *string
}

// IsEmpty reports whether no field is set.
func (u ReviewUpdate) IsEmpty() bool {
	return u.Rating == nil && u.Title == nil && u.Content == nil
}

// Apply copies the set fields onto r.
func (u ReviewUpdate) Apply(r *Review) {
	if u.Rating != nil {
		r.Rating = *u.Rating
	}
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Content != nil {
		r.Content = *u.Content
	}
}
