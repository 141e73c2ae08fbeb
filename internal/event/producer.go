package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pmaxcam/review-website/internal/domain"
	pkgkafka "github.com/pmaxcam/review-website/pkg/kafka"
	"github.com/pmaxcam/review-website/pkg/logger"
)

const topicPrefix = "reviewsite"

// Kafka topics for review site domain events.
var (
	TopicReviewCreated          = pkgkafka.Topic(topicPrefix, AggregateTypeReview, "created")
	TopicReviewUpdated          = pkgkafka.Topic(topicPrefix, AggregateTypeReview, "updated")
	TopicReviewDeleted          = pkgkafka.Topic(topicPrefix, AggregateTypeReview, "deleted")
	TopicProductCreated         = pkgkafka.Topic(topicPrefix, AggregateTypeProduct, "created")
	TopicUserSignedUp           = pkgkafka.Topic(topicPrefix, AggregateTypeUser, "signed_up")
	TopicPasswordResetRequested = pkgkafka.Topic(topicPrefix, AggregateTypeUser, "password_reset_requested")
)

// Aggregate type constants.
const (
	AggregateTypeReview  = "review"
	AggregateTypeProduct = "product"
	AggregateTypeUser    = "user"
)

// Source identifies events originating from this service.
const Source = "review-website"

// ReviewData is the payload for review.created and review.updated events.
type ReviewData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Status    string `json:"status"`
}

// ReviewDeletedData is the payload for a review.deleted event.
type ReviewDeletedData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
}

// ProductCreatedData is the payload for a product.created event.
type ProductCreatedData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url"`
	Category   string `json:"category"`
	CreatedBy  string `json:"created_by"`
}

// UserSignedUpData is the payload for a user.signed_up event.
type UserSignedUpData struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// PasswordResetRequestedData is the payload consumed by the mailer to
// deliver a reset link.
type PasswordResetRequestedData struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}

// Producer publishes review site domain events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, r.ID, AggregateTypeReview, reviewData(r))
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewUpdated, r.ID, AggregateTypeReview, reviewData(r))
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, r *domain.Review) error {
	data := ReviewDeletedData{ID: r.ID, ProductID: r.ProductID, UserID: r.UserID}
	return p.publish(ctx, TopicReviewDeleted, r.ID, AggregateTypeReview, data)
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	data := ProductCreatedData{
		ID:         product.ID,
		Name:       product.Name,
		WebsiteURL: product.WebsiteURL,
		Category:   product.Category,
		CreatedBy:  product.CreatedBy,
	}
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, data)
}

// PublishUserSignedUp publishes a user.signed_up event.
func (p *Producer) PublishUserSignedUp(ctx context.Context, u *domain.User) error {
	data := UserSignedUpData{UserID: u.ID, Email: u.Email, FullName: u.FullName}
	return p.publish(ctx, TopicUserSignedUp, u.ID, AggregateTypeUser, data)
}

// PublishPasswordResetRequested publishes a user.password_reset_requested event.
func (p *Producer) PublishPasswordResetRequested(ctx context.Context, u *domain.User, resetURL string) error {
	data := PasswordResetRequestedData{UserID: u.ID, Email: u.Email, ResetURL: resetURL}
	return p.publish(ctx, TopicPasswordResetRequested, u.ID, AggregateTypeUser, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if userID := logger.UserIDFromContext(ctx); userID != "" {
		event.WithMetadata("user_id", userID)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

func reviewData(r *domain.Review) ReviewData {
	return ReviewData{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Title:     r.Title,
		Status:    string(r.Status),
	}
}
