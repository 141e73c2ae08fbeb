package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/pkg/database"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

const (
	productColumns = `id, name, description, website_url, category, created_by, created_at`

	queryInsertProduct = `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryGetProduct = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1`

	queryListProducts = `
		SELECT ` + productColumns + `,
		       count(*) OVER() AS total_count
		FROM products
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	queryCountProducts = `SELECT count(*) FROM products`

	querySearchProducts = `
		SELECT ` + productColumns + `,
		       count(*) OVER() AS total_count
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	queryCountSearchProducts = `SELECT count(*) FROM products WHERE name ILIKE $1 OR description ILIKE $1`
)

// likeEscaper escapes LIKE metacharacters with the default backslash escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q as a literal substring.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateProduct", queryInsertProduct)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, queryInsertProduct,
		p.ID,
		p.Name,
		p.Description,
		p.WebsiteURL,
		p.Category,
		p.CreatedBy,
		p.CreatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("user", p.CreatedBy)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (p *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "GetProduct", queryGetProduct)
	defer func() { end(err) }()

	var row domain.Product
	err = r.pool.QueryRow(ctx, queryGetProduct, id).Scan(
		&row.ID,
		&row.Name,
		&row.Description,
		&row.WebsiteURL,
		&row.Category,
		&row.CreatedBy,
		&row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &row, nil
}

// List returns one page of products, newest first, with the total count.
func (r *ProductRepository) List(ctx context.Context, page pagination.Params) (products []domain.Product, total int, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProducts", queryListProducts)
	defer func() { end(err) }()

	products, total, err = r.queryPage(ctx, queryListProducts, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 && page.Offset > 0 {
		if err = r.pool.QueryRow(ctx, queryCountProducts).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}

	return products, total, nil
}

// Search returns one page of products whose name or description contains q.
func (r *ProductRepository) Search(ctx context.Context, q string, page pagination.Params) (products []domain.Product, total int, err error) {
	ctx, end := database.TraceQuery(ctx, "SearchProducts", querySearchProducts)
	defer func() { end(err) }()

	pattern := containsPattern(q)
	products, total, err = r.queryPage(ctx, querySearchProducts, pattern, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	if len(products) == 0 && page.Offset > 0 {
		if err = r.pool.QueryRow(ctx, queryCountSearchProducts, pattern).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count product matches: %w", err)
		}
	}

	return products, total, nil
}

// queryPage runs a windowed product query whose last column is the
// count(*) OVER() total.
func (r *ProductRepository) queryPage(ctx context.Context, query string, args ...any) ([]domain.Product, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		products   = []domain.Product{}
		totalCount int
	)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.WebsiteURL,
			&p.Category,
			&p.CreatedBy,
			&p.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}
