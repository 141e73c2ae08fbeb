package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pmaxcam/review-website/internal/access"
	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/internal/event"
	"github.com/pmaxcam/review-website/internal/repository"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	Rating  int
	Title   string
	Content string
}

// ProductReviewsResult is one page of a product's published reviews.
type ProductReviewsResult struct {
	Reviews    []domain.ReviewWithAuthor `json:"reviews"`
	Pagination pagination.Envelope       `json:"pagination"`
}

// UserReviewsResult is one page of the caller's own reviews.
type UserReviewsResult struct {
	Reviews    []domain.ReviewWithProduct `json:"reviews"`
	Pagination pagination.Envelope        `json:"pagination"`
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListProductReviews returns published reviews of a product with their authors.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID string, page pagination.Params) (*ProductReviewsResult, error) {
	reviews, total, err := s.reviews.ListForProduct(ctx, productID, page)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	return &ProductReviewsResult{Reviews: reviews, Pagination: pagination.NewEnvelope(page, total)}, nil
}

// ListUserReviews returns the caller's non-deleted reviews with the reviewed products.
func (s *ReviewService) ListUserReviews(ctx context.Context, identity *domain.Identity, page pagination.Params) (*UserReviewsResult, error) {
	if identity == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	reviews, total, err := s.reviews.ListForUser(ctx, identity.UserID, page)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	return &UserReviewsResult{Reviews: reviews, Pagination: pagination.NewEnvelope(page, total)}, nil
}

// GetReview retrieves a review by id in any status.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, reviewLookupError(err)
	}
	return review, nil
}

// CreateReview publishes the caller's review of a product. A user holds at
// most one non-deleted review per product.
func (s *ReviewService) CreateReview(ctx context.Context, identity *domain.Identity, productID string, input *CreateReviewInput) (*domain.Review, error) {
	if identity == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage("Product not found")
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if !domain.IsValidRating(input.Rating) || title == "" || content == "" {
		return nil, apperrors.InvalidInput("Rating (1-5), title, and content are required")
	}

	exists, err := s.reviews.ExistsActive(ctx, productID, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("You have already reviewed this product")
	}

	now := s.now()
	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    identity.UserID,
		Rating:    input.Rating,
		Title:     title,
		Content:   content,
		Status:    domain.ReviewStatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The partial unique index settles concurrent creates; the repository
	// maps its violation to the same conflict.
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.String("user_id", review.UserID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// UpdateReview applies a partial update to the caller's own review.
func (s *ReviewService) UpdateReview(ctx context.Context, identity *domain.Identity, id string, update domain.ReviewUpdate) (*domain.Review, error) {
	review, err := s.EditableReview(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return s.ApplyReviewUpdate(ctx, review, update)
}

// EditableReview loads a review the caller may update. The checks run in
// order: 401 without identity, 404 when missing, 403 for a non-owner, 409
// once deleted. Callers use it to authorize before reading a request body.
func (s *ReviewService) EditableReview(ctx context.Context, identity *domain.Identity, id string) (*domain.Review, error) {
	return s.ownedActiveReview(ctx, identity, id, "You can only update your own reviews")
}

// ApplyReviewUpdate validates update and persists it onto a review returned
// by EditableReview.
func (s *ReviewService) ApplyReviewUpdate(ctx context.Context, review *domain.Review, update domain.ReviewUpdate) (*domain.Review, error) {
	if update.IsEmpty() {
		return nil, apperrors.InvalidInput("At least one field to update is required")
	}
	if update.Rating != nil && !domain.IsValidRating(*update.Rating) {
		return nil, apperrors.InvalidInput("Rating must be between 1 and 5")
	}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperrors.InvalidInput("Title cannot be empty")
		}
		update.Title = &title
	}
	if update.Content != nil {
		content := strings.TrimSpace(*update.Content)
		if content == "" {
			return nil, apperrors.InvalidInput("Content cannot be empty")
		}
		update.Content = &content
	}

	update.Apply(review)
	review.UpdatedAt = s.now()

	if err := s.reviews.Update(ctx, review); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Deleted between the read and the write.
			return nil, apperrors.Conflict("Review has been deleted")
		}
		return nil, fmt.Errorf("update review: %w", err)
	}

	if err := s.producer.PublishReviewUpdated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("user_id", review.UserID),
	)

	return review, nil
}

// DeleteReview soft deletes the caller's own review.
func (s *ReviewService) DeleteReview(ctx context.Context, identity *domain.Identity, id string) error {
	review, err := s.ownedActiveReview(ctx, identity, id, "You can only delete your own reviews")
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.reviews.SoftDelete(ctx, id, now); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Conflict("Review has been deleted")
		}
		return fmt.Errorf("delete review: %w", err)
	}
	review.Status = domain.ReviewStatusDeleted
	review.UpdatedAt = now

	if err := s.producer.PublishReviewDeleted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", review.ID),
		slog.String("user_id", review.UserID),
	)

	return nil
}

func (s *ReviewService) ownedActiveReview(ctx context.Context, identity *domain.Identity, id, forbiddenMsg string) (*domain.Review, error) {
	if identity == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, reviewLookupError(err)
	}
	if err := access.CheckOwnership(identity, review.UserID, forbiddenMsg); err != nil {
		return nil, err
	}
	if review.Status.IsDeleted() {
		return nil, apperrors.Conflict("Review has been deleted")
	}
	return review, nil
}

func reviewLookupError(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFoundMessage("Review not found")
	}
	return fmt.Errorf("get review by id: %w", err)
}
