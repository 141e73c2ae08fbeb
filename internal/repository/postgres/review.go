package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/pkg/database"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

// reviewsActiveConstraint is the partial unique index allowing one
// non-deleted review per (product_id, user_id).
const reviewsActiveConstraint = "reviews_one_active_per_user"

const (
	reviewColumns = `r.id, r.product_id, r.user_id, r.rating, r.title, r.content, r.status, r.created_at, r.updated_at`

	queryInsertReview = `
		INSERT INTO reviews (id, product_id, user_id, rating, title, content, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	queryGetReview = `
		SELECT ` + reviewColumns + `
		FROM reviews r
		WHERE r.id = $1`

	queryReviewExists = `
		SELECT EXISTS (
			SELECT 1 FROM reviews
			WHERE product_id = $1 AND user_id = $2 AND status <> $3
		)`

	queryUpdateReview = `
		UPDATE reviews
		SET rating = $1, title = $2, content = $3, updated_at = $4
		WHERE id = $5 AND status <> $6`

	querySoftDeleteReview = `
		UPDATE reviews
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status <> $1`

	queryListProductReviews = `
		SELECT ` + reviewColumns + `, u.full_name, u.avatar_url,
		       count(*) OVER() AS total_count
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1 AND r.status = $2
		ORDER BY r.created_at DESC, r.id
		LIMIT $3 OFFSET $4`

	queryCountProductReviews = `SELECT count(*) FROM reviews WHERE product_id = $1 AND status = $2`

	queryListUserReviews = `
		SELECT ` + reviewColumns + `, p.name, p.website_url, p.category,
		       count(*) OVER() AS total_count
		FROM reviews r
		JOIN products p ON p.id = r.product_id
		WHERE r.user_id = $1 AND r.status <> $2
		ORDER BY r.created_at DESC, r.id
		LIMIT $3 OFFSET $4`

	queryCountUserReviews = `SELECT count(*) FROM reviews WHERE user_id = $1 AND status <> $2`
)

var (
	statusPublished = string(domain.ReviewStatusPublished)
	statusDeleted   = string(domain.ReviewStatusDeleted)
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review. The partial unique index turns a concurrent
// duplicate submission into a Conflict.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateReview", queryInsertReview)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, queryInsertReview,
		rv.ID,
		rv.ProductID,
		rv.UserID,
		rv.Rating,
		rv.Title,
		rv.Content,
		string(rv.Status),
		rv.CreatedAt,
		rv.UpdatedAt,
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, reviewsActiveConstraint):
			return apperrors.Conflict("You have already reviewed this product")
		case database.IsForeignKeyViolation(err):
			return apperrors.NotFound("product", rv.ProductID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by id, including deleted reviews.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (rv *domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "GetReview", queryGetReview)
	defer func() { end(err) }()

	var row domain.Review
	err = r.pool.QueryRow(ctx, queryGetReview, id).Scan(reviewDest(&row)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &row, nil
}

// ExistsActive reports whether the user already has a non-deleted review of the product.
func (r *ReviewRepository) ExistsActive(ctx context.Context, productID, userID string) (exists bool, err error) {
	ctx, end := database.TraceQuery(ctx, "ReviewExists", queryReviewExists)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, queryReviewExists, productID, userID, statusDeleted).Scan(&exists); err != nil {
		return false, fmt.Errorf("check existing review: %w", err)
	}
	return exists, nil
}

// Update persists the mutable fields of a non-deleted review.
func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateReview", queryUpdateReview)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, queryUpdateReview,
		rv.Rating,
		rv.Title,
		rv.Content,
		rv.UpdatedAt,
		rv.ID,
		statusDeleted,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", rv.ID)
	}

	return nil
}

// SoftDelete marks a review deleted. Reviews that are missing or already
// deleted yield NotFound.
func (r *ReviewRepository) SoftDelete(ctx context.Context, id string, at time.Time) (err error) {
	ctx, end := database.TraceQuery(ctx, "SoftDeleteReview", querySoftDeleteReview)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, querySoftDeleteReview, statusDeleted, at, id)
	if err != nil {
		return fmt.Errorf("soft delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// ListForProduct returns a page of a product's published reviews with author details.
func (r *ReviewRepository) ListForProduct(ctx context.Context, productID string, page pagination.Params) (reviews []domain.ReviewWithAuthor, total int, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProductReviews", queryListProductReviews)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, queryListProductReviews, productID, statusPublished, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list product reviews: %w", err)
	}
	defer rows.Close()

	reviews = []domain.ReviewWithAuthor{}
	for rows.Next() {
		var rw domain.ReviewWithAuthor
		dest := append(reviewDest(&rw.Review), &rw.User.FullName, &rw.User.AvatarURL, &total)
		if err = rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rw)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if len(reviews) == 0 && page.Offset > 0 {
		if err = r.pool.QueryRow(ctx, queryCountProductReviews, productID, statusPublished).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count product reviews: %w", err)
		}
	}

	return reviews, total, nil
}

// ListForUser returns a page of the user's non-deleted reviews with product details.
func (r *ReviewRepository) ListForUser(ctx context.Context, userID string, page pagination.Params) (reviews []domain.ReviewWithProduct, total int, err error) {
	ctx, end := database.TraceQuery(ctx, "ListUserReviews", queryListUserReviews)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, queryListUserReviews, userID, statusDeleted, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list user reviews: %w", err)
	}
	defer rows.Close()

	reviews = []domain.ReviewWithProduct{}
	for rows.Next() {
		var rp domain.ReviewWithProduct
		dest := append(reviewDest(&rp.Review), &rp.Product.Name, &rp.Product.WebsiteURL, &rp.Product.Category, &total)
		if err = rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rp)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if len(reviews) == 0 && page.Offset > 0 {
		if err = r.pool.QueryRow(ctx, queryCountUserReviews, userID, statusDeleted).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count user reviews: %w", err)
		}
	}

	return reviews, total, nil
}

// reviewDest returns scan destinations in reviewColumns order.
func reviewDest(rv *domain.Review) []any {
	return []any{
		&rv.ID,
		&rv.ProductID,
		&rv.UserID,
		&rv.Rating,
		&rv.Title,
		&rv.Content,
		&rv.Status,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	}
}
