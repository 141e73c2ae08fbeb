package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pmaxcam/review-website/internal/auth"
	"github.com/pmaxcam/review-website/internal/catalog"
	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/internal/event"
	redisrepo "github.com/pmaxcam/review-website/internal/repository/redis"
	"github.com/pmaxcam/review-website/internal/service"
	"github.com/pmaxcam/review-website/pkg/health"
	"github.com/pmaxcam/review-website/pkg/httputil"
	pkgkafka "github.com/pmaxcam/review-website/pkg/kafka"
	"github.com/pmaxcam/review-website/pkg/middleware"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, page pagination.Params) ([]domain.Product, int, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Search(ctx context.Context, query string, page pagination.Params) ([]domain.Product, int, error) {
	args := m.Called(ctx, query, page)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepo) ExistsActive(ctx context.Context, productID, userID string) (bool, error) {
	args := m.Called(ctx, productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockReviewRepo) ListForProduct(ctx context.Context, productID string, page pagination.Params) ([]domain.ReviewWithAuthor, int, error) {
	args := m.Called(ctx, productID, page)
	return args.Get(0).([]domain.ReviewWithAuthor), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) ListForUser(ctx context.Context, userID string, page pagination.Params) ([]domain.ReviewWithProduct, int, error) {
	args := m.Called(ctx, userID, page)
	return args.Get(0).([]domain.ReviewWithProduct), args.Int(1), args.Error(2)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// =============================================================================
// Test helpers
// =============================================================================

const (
	testSecret     = "router-test-secret-with-plenty-of-bytes"
	testCookieName = "session"

	productID = "2b1f5c0e-8f3a-4d8e-9a41-6f3c2d1e0b7a"
	reviewID  = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	ownerID   = "0f8fad5b-d9cb-469f-a165-70867728950e"
	otherID   = "16fd2706-8baf-433b-82eb-8c7fada847da"
)

type routerFixture struct {
	products *mockProductRepo
	reviews  *mockReviewRepo
	users    *mockUserRepo
	sessions *auth.SessionManager
	hasher   *auth.PasswordHasher
	redis    *miniredis.Miniredis
	handler  http.Handler
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tools, err := catalog.Load()
	require.NoError(t, err)

	logger := testLogger()
	producer := event.NewProducer(pkgkafka.NopPublisher{}, logger)
	sessionStore := redisrepo.NewSessionStore(client)

	f := &routerFixture{
		products: new(mockProductRepo),
		reviews:  new(mockReviewRepo),
		users:    new(mockUserRepo),
		sessions: auth.NewSessionManager(testSecret, time.Hour),
		hasher:   auth.NewPasswordHasher(bcrypt.MinCost),
		redis:    mr,
	}

	f.handler = NewRouter(RouterDeps{
		Products: service.NewProductService(f.products, redisrepo.NewProductCache(client, time.Minute), producer, logger),
		Reviews:  service.NewReviewService(f.reviews, f.products, producer, logger),
		Accounts: service.NewAccountService(f.users, f.sessions, sessionStore, redisrepo.NewResetTokenStore(client), f.hasher, producer,
			service.AccountConfig{ResetURL: "http://localhost:3000/auth/update-password", ResetTTL: time.Hour}, logger),
		Tools:       service.NewToolService(tools),
		Sessions:    auth.NewResolver(f.sessions, sessionStore),
		Cookie:      auth.CookieConfig{Name: testCookieName},
		Health:      health.NewHandler(),
		CORS:        middleware.DefaultCORSConfig(),
		CacheMaxAge: 60,
		Logger:      logger,
	})

	return f
}

// tokenFor issues a session token for userID.
func (f *routerFixture) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := f.sessions.Issue(&domain.User{ID: userID, Email: userID + "@example.com"})
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Error, "expected error body, got %s", rec.Body.String())
	return body.Error
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:          productID,
		Name:        "ChatGPT",
		Description: "Conversational assistant",
		WebsiteURL:  "https://chat.openai.com",
		Category:    "LLM",
		CreatedBy:   ownerID,
		CreatedAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func sampleReview(status domain.ReviewStatus) *domain.Review {
	created := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	return &domain.Review{
		ID:        reviewID,
		ProductID: productID,
		UserID:    ownerID,
		Rating:    4,
		Title:     "Solid",
		Content:   "Handles most writing tasks",
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
}
