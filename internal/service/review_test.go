package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/internal/event"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

type reviewFixture struct {
	reviews  *mockReviewRepository
	products *mockProductRepository
	pub      *recordingPublisher
	svc      *ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:  new(mockReviewRepository),
		products: new(mockProductRepository),
		pub:      &recordingPublisher{},
	}
	f.svc = NewReviewService(f.reviews, f.products, newTestProducer(f.pub), newTestLogger())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func existingReview(status domain.ReviewStatus) *domain.Review {
	created := fixedNow.Add(-24 * time.Hour)
	return &domain.Review{
		ID:        "rev-1",
		ProductID: "prod-1",
		UserID:    "owner",
		Rating:    3,
		Title:     "Decent",
		Content:   "Works for drafts",
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func assertAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.Status)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

var owner = &domain.Identity{UserID: "owner", Email: "owner@example.com"}

// --- Listing ---

func TestListProductReviews(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	page := pagination.New(1, 2)

	rows := []domain.ReviewWithAuthor{
		{Review: domain.Review{ID: "r2"}, User: domain.ReviewAuthor{FullName: "B"}},
		{Review: domain.Review{ID: "r1"}, User: domain.ReviewAuthor{FullName: "A"}},
	}
	f.reviews.On("ListForProduct", ctx, "prod-1", page).Return(rows, 3, nil)

	result, err := f.svc.ListProductReviews(ctx, "prod-1", page)
	require.NoError(t, err)
	assert.Len(t, result.Reviews, 2)
	assert.Equal(t, 2, result.Pagination.TotalPages)
	assert.Equal(t, 3, result.Pagination.TotalItems)
}

func TestListProductReviews_StoreError(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.reviews.On("ListForProduct", ctx, "prod-1", pagination.DefaultParams()).Return(nil, 0, errors.New("timeout"))

	_, err := f.svc.ListProductReviews(ctx, "prod-1", pagination.DefaultParams())
	assertAppError(t, err, http.StatusBadRequest, "timeout")
}

func TestListUserReviews_RequiresIdentity(t *testing.T) {
	f := newReviewFixture()

	_, err := f.svc.ListUserReviews(context.Background(), nil, pagination.DefaultParams())
	assertAppError(t, err, http.StatusUnauthorized, "Authentication required")
}

func TestListUserReviews_ScopedToCaller(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	rows := []domain.ReviewWithProduct{{Review: domain.Review{ID: "r1", UserID: "owner"}}}
	f.reviews.On("ListForUser", ctx, "owner", pagination.DefaultParams()).Return(rows, 1, nil)

	result, err := f.svc.ListUserReviews(ctx, owner, pagination.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, rows, result.Reviews)
	assert.Equal(t, 1, result.Pagination.TotalPages)
	f.reviews.AssertExpectations(t)
}

func TestGetReview_ReturnsAnyStatus(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.reviews.On("GetByID", ctx, "rev-1").Return(existingReview(domain.ReviewStatusDeleted), nil)

	review, err := f.svc.GetReview(ctx, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusDeleted, review.Status)
}

func TestGetReview_NotFound(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.reviews.On("GetByID", ctx, "nope").Return(nil, apperrors.NotFound("review", "nope"))

	_, err := f.svc.GetReview(ctx, "nope")
	assertAppError(t, err, http.StatusNotFound, "Review not found")
}

// --- Create ---

func TestCreateReview_Success(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.products.On("GetByID", ctx, "prod-1").Return(&domain.Product{ID: "prod-1"}, nil)
	f.reviews.On("ExistsActive", ctx, "prod-1", "owner").Return(false, nil)
	f.reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := f.svc.CreateReview(ctx, owner, "prod-1", &CreateReviewInput{
		Rating: 5, Title: " Great ", Content: "Fast and accurate",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "owner", review.UserID)
	assert.Equal(t, "prod-1", review.ProductID)
	assert.Equal(t, "Great", review.Title)
	assert.Equal(t, domain.ReviewStatusPublished, review.Status)
	assert.Equal(t, fixedNow, review.CreatedAt)
	assert.Equal(t, fixedNow, review.UpdatedAt)
	assert.Equal(t, []string{event.TopicReviewCreated}, f.pub.Topics())
	f.reviews.AssertExpectations(t)
}

func TestCreateReview_RequiresIdentity(t *testing.T) {
	f := newReviewFixture()

	_, err := f.svc.CreateReview(context.Background(), nil, "prod-1", &CreateReviewInput{Rating: 5, Title: "t", Content: "c"})
	assertAppError(t, err, http.StatusUnauthorized, "Authentication required")
	f.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCreateReview_ProductNotFound(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.products.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("product", "missing"))

	// Product existence is checked before the body is validated.
	_, err := f.svc.CreateReview(ctx, owner, "missing", &CreateReviewInput{})
	assertAppError(t, err, http.StatusNotFound, "Product not found")
}

func TestCreateReview_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input CreateReviewInput
	}{
		{"rating zero", CreateReviewInput{Rating: 0, Title: "t", Content: "c"}},
		{"rating six", CreateReviewInput{Rating: 6, Title: "t", Content: "c"}},
		{"negative rating", CreateReviewInput{Rating: -1, Title: "t", Content: "c"}},
		{"blank title", CreateReviewInput{Rating: 4, Title: "  ", Content: "c"}},
		{"missing content", CreateReviewInput{Rating: 4, Title: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture()
			ctx := context.Background()
			f.products.On("GetByID", ctx, "prod-1").Return(&domain.Product{ID: "prod-1"}, nil)

			_, err := f.svc.CreateReview(ctx, owner, "prod-1", &tt.input)
			assertAppError(t, err, http.StatusBadRequest, "Rating (1-5), title, and content are required")
			f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateReview_AlreadyReviewed(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.products.On("GetByID", ctx, "prod-1").Return(&domain.Product{ID: "prod-1"}, nil)
	f.reviews.On("ExistsActive", ctx, "prod-1", "owner").Return(true, nil)

	_, err := f.svc.CreateReview(ctx, owner, "prod-1", &CreateReviewInput{Rating: 4, Title: "t", Content: "c"})
	assertAppError(t, err, http.StatusConflict, "You have already reviewed this product")
	f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.pub.Topics())
}

func TestCreateReview_ConcurrentInsertConflict(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.products.On("GetByID", ctx, "prod-1").Return(&domain.Product{ID: "prod-1"}, nil)
	f.reviews.On("ExistsActive", ctx, "prod-1", "owner").Return(false, nil)
	f.reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Return(apperrors.Conflict("You have already reviewed this product"))

	_, err := f.svc.CreateReview(ctx, owner, "prod-1", &CreateReviewInput{Rating: 4, Title: "t", Content: "c"})
	assertAppError(t, err, http.StatusConflict, "You have already reviewed this product")
	assert.Empty(t, f.pub.Topics())
}

// --- Update ---

func TestUpdateReview_PartialUpdate(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.reviews.On("GetByID", ctx, "rev-1").Return(existingReview(domain.ReviewStatusPublished), nil)
	f.reviews.On("Update", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := f.svc.UpdateReview(ctx, owner, "rev-1", domain.ReviewUpdate{Rating: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "Decent", review.Title)
	assert.Equal(t, "Works for drafts", review.Content)
	assert.Equal(t, fixedNow, review.UpdatedAt)
	assert.True(t, review.UpdatedAt.After(review.CreatedAt))
	assert.Equal(t, []string{event.TopicReviewUpdated}, f.pub.Topics())
}

func TestUpdateReview_ErrorPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		identity *domain.Identity
		stored   *domain.Review
		lookup   error
		update   domain.ReviewUpdate
		status   int
		message  string
	}{
		{
			name:    "anonymous",
			update:  domain.ReviewUpdate{Rating: intPtr(4)},
			status:  http.StatusUnauthorized,
			message: "Authentication required",
		},
		{
			name:     "missing review before ownership",
			identity: &domain.Identity{UserID: "intruder"},
			lookup:   apperrors.NotFound("review", "rev-1"),
			update:   domain.ReviewUpdate{},
			status:   http.StatusNotFound,
			message:  "Review not found",
		},
		{
			name:     "non-owner before empty body",
			identity: &domain.Identity{UserID: "intruder"},
			stored:   existingReview(domain.ReviewStatusPublished),
			update:   domain.ReviewUpdate{},
			status:   http.StatusForbidden,
			message:  "You can only update your own reviews",
		},
		{
			name:     "deleted review",
			identity: owner,
			stored:   existingReview(domain.ReviewStatusDeleted),
			update:   domain.ReviewUpdate{Rating: intPtr(4)},
			status:   http.StatusConflict,
		},
		{
			name:     "empty update",
			identity: owner,
			stored:   existingReview(domain.ReviewStatusPublished),
			update:   domain.ReviewUpdate{},
			status:   http.StatusBadRequest,
			message:  "At least one field to update is required",
		},
		{
			name:     "rating out of range",
			identity: owner,
			stored:   existingReview(domain.ReviewStatusPublished),
			update:   domain.ReviewUpdate{Rating: intPtr(9)},
			status:   http.StatusBadRequest,
		},
		{
			name:     "blank title",
			identity: owner,
			stored:   existingReview(domain.ReviewStatusPublished),
			update:   domain.ReviewUpdate{Title: strPtr(" ")},
			status:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture()
			ctx := context.Background()
			if tt.stored != nil {
				f.reviews.On("GetByID", ctx, "rev-1").Return(tt.stored, nil)
			} else if tt.lookup != nil {
				f.reviews.On("GetByID", ctx, "rev-1").Return(nil, tt.lookup)
			}

			_, err := f.svc.UpdateReview(ctx, tt.identity, "rev-1", tt.update)
			assertAppError(t, err, tt.status, tt.message)
			f.reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			assert.Empty(t, f.pub.Topics())
		})
	}
}

func TestUpdateReview_DeletedConcurrently(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.reviews.On("GetByID", ctx, "rev-1").Return(existingReview(domain.ReviewStatusPublished), nil)
	f.reviews.On("Update", ctx, mock.AnythingOfType("*domain.Review")).Return(apperrors.NotFound("review", "rev-1"))

	_, err := f.svc.UpdateReview(ctx, owner, "rev-1", domain.ReviewUpdate{Content: strPtr("new")})
	assertAppError(t, err, http.StatusConflict, "")
}

// --- Delete ---

func TestDeleteReview_Success(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.reviews.On("GetByID", ctx, "rev-1").Return(existingReview(domain.ReviewStatusPublished), nil)
	f.reviews.On("SoftDelete", ctx, "rev-1", fixedNow).Return(nil)

	require.NoError(t, f.svc.DeleteReview(ctx, owner, "rev-1"))
	assert.Equal(t, []string{event.TopicReviewDeleted}, f.pub.Topics())
	f.reviews.AssertExpectations(t)
}

func TestDeleteReview_NotOwner(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.reviews.On("GetByID", ctx, "rev-1").Return(existingReview(domain.ReviewStatusPublished), nil)

	err := f.svc.DeleteReview(ctx, &domain.Identity{UserID: "intruder"}, "rev-1")
	assertAppError(t, err, http.StatusForbidden, "You can only delete your own reviews")
	f.reviews.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReview_NotFound(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.reviews.On("GetByID", ctx, "rev-1").Return(nil, apperrors.NotFound("review", "rev-1"))

	err := f.svc.DeleteReview(ctx, owner, "rev-1")
	assertAppError(t, err, http.StatusNotFound, "Review not found")
}

func TestDeleteReview_AlreadyDeleted(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.reviews.On("GetByID", ctx, "rev-1").Return(existingReview(domain.ReviewStatusDeleted), nil)

	err := f.svc.DeleteReview(ctx, owner, "rev-1")
	assertAppError(t, err, http.StatusConflict, "")
	f.reviews.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReview_Anonymous(t *testing.T) {
	f := newReviewFixture()

	err := f.svc.DeleteReview(context.Background(), nil, "rev-1")
	assertAppError(t, err, http.StatusUnauthorized, "Authentication required")
}
