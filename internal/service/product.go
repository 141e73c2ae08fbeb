package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/internal/event"
	"github.com/pmaxcam/review-website/internal/repository"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo     repository.ProductRepository
	cache    repository.ProductCache
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, cache repository.ProductCache, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	WebsiteURL  string
	Category    string
}

// ProductListResult is one page of products.
type ProductListResult struct {
	Products   []domain.Product    `json:"products"`
	Pagination pagination.Envelope `json:"pagination"`
}

// ListProducts returns one page of products, newest first.
func (s *ProductService) ListProducts(ctx context.Context, page pagination.Params) (*ProductListResult, error) {
	products, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	return &ProductListResult{Products: products, Pagination: pagination.NewEnvelope(page, total)}, nil
}

// SearchProducts returns one page of products whose name or description
// contains query.
func (s *ProductService) SearchProducts(ctx context.Context, query string, page pagination.Params) (*ProductListResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.InvalidInput("Search query parameter is required")
	}

	products, total, err := s.repo.Search(ctx, query, page)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	return &ProductListResult{Products: products, Pagination: pagination.NewEnvelope(page, total)}, nil
}

// GetProduct retrieves a product by id, consulting the read cache first.
// Cache failures are logged and fall through to the repository.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "product cache read failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage("Product not found")
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	if err := s.cache.Set(ctx, product); err != nil {
		s.logger.WarnContext(ctx, "product cache write failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	return product, nil
}

// CreateProduct adds a product submitted by the caller.
func (s *ProductService) CreateProduct(ctx context.Context, identity *domain.Identity, input *CreateProductInput) (*domain.Product, error) {
	if identity == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	websiteURL := strings.TrimSpace(input.WebsiteURL)
	category := strings.TrimSpace(input.Category)
	if name == "" || description == "" || websiteURL == "" || category == "" {
		return nil, apperrors.InvalidInput("Name, description, website URL, and category are required")
	}

	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		WebsiteURL:  websiteURL,
		Category:    category,
		CreatedBy:   identity.UserID,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("created_by", product.CreatedBy),
	)

	return product, nil
}
