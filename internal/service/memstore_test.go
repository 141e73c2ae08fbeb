package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pmaxcam/review-website/internal/domain"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

// memProductRepository is an in-memory ProductRepository.
type memProductRepository struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

func newMemProductRepository(products ...domain.Product) *memProductRepository {
	r := &memProductRepository{products: make(map[string]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *memProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}

func (r *memProductRepository) List(_ context.Context, page pagination.Params) ([]domain.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return pagination.Window(all, page), len(all), nil
}

func (r *memProductRepository) Search(ctx context.Context, _ string, page pagination.Params) ([]domain.Product, int, error) {
	return r.List(ctx, page)
}

// memReviewRepository is an in-memory ReviewRepository that applies the same
// status filters and active-review uniqueness as the Postgres store.
type memReviewRepository struct {
	mu       sync.Mutex
	reviews  map[string]domain.Review
	authors  map[string]domain.ReviewAuthor
	products *memProductRepository
}

func newMemReviewRepository(products *memProductRepository, authors map[string]domain.ReviewAuthor) *memReviewRepository {
	return &memReviewRepository{
		reviews:  make(map[string]domain.Review),
		authors:  authors,
		products: products,
	}
}

func (r *memReviewRepository) Create(_ context.Context, rv *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsActiveLocked(rv.ProductID, rv.UserID) {
		return apperrors.Conflict("You have already reviewed this product")
	}
	r.reviews[rv.ID] = *rv
	return nil
}

func (r *memReviewRepository) GetByID(_ context.Context, id string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}
	return &rv, nil
}

func (r *memReviewRepository) ExistsActive(_ context.Context, productID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.existsActiveLocked(productID, userID), nil
}

func (r *memReviewRepository) existsActiveLocked(productID, userID string) bool {
	for _, rv := range r.reviews {
		if rv.ProductID == productID && rv.UserID == userID && !rv.Status.IsDeleted() {
			return true
		}
	}
	return false
}

func (r *memReviewRepository) Update(_ context.Context, rv *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reviews[rv.ID]
	if !ok || stored.Status.IsDeleted() {
		return apperrors.NotFound("review", rv.ID)
	}
	stored.Rating = rv.Rating
	stored.Title = rv.Title
	stored.Content = rv.Content
	stored.UpdatedAt = rv.UpdatedAt
	r.reviews[rv.ID] = stored
	return nil
}

func (r *memReviewRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reviews[id]
	if !ok || stored.Status.IsDeleted() {
		return apperrors.NotFound("review", id)
	}
	stored.Status = domain.ReviewStatusDeleted
	stored.UpdatedAt = at
	r.reviews[id] = stored
	return nil
}

func (r *memReviewRepository) ListForProduct(_ context.Context, productID string, page pagination.Params) ([]domain.ReviewWithAuthor, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []domain.ReviewWithAuthor
	for _, rv := range r.sortedLocked() {
		if rv.ProductID == productID && rv.Status == domain.ReviewStatusPublished {
			rows = append(rows, domain.ReviewWithAuthor{Review: rv, User: r.authors[rv.UserID]})
		}
	}
	return pagination.Window(rows, page), len(rows), nil
}

func (r *memReviewRepository) ListForUser(_ context.Context, userID string, page pagination.Params) ([]domain.ReviewWithProduct, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []domain.ReviewWithProduct
	for _, rv := range r.sortedLocked() {
		if rv.UserID != userID || rv.Status.IsDeleted() {
			continue
		}
		row := domain.ReviewWithProduct{Review: rv}
		r.products.mu.Lock()
		p, ok := r.products.products[rv.ProductID]
		r.products.mu.Unlock()
		if ok {
			row.Product = domain.ReviewedProduct{Name: p.Name, WebsiteURL: p.WebsiteURL, Category: p.Category}
		}
		rows = append(rows, row)
	}
	return pagination.Window(rows, page), len(rows), nil
}

// sortedLocked returns all reviews newest first.
func (r *memReviewRepository) sortedLocked() []domain.Review {
	all := make([]domain.Review, 0, len(r.reviews))
	for _, rv := range r.reviews {
		all = append(all, rv)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}
