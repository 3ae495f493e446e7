package product

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/ec-storefront/internal/event"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

// DefaultMaxAttempts bounds the reload-and-retry loop when NewService is
// given a non-positive value.
const DefaultMaxAttempts = 5

// Values of the placeholder product an admin creates before editing it.
const (
	SampleName        = "Sample name"
	SampleImage       = "/images/sample.jpg"
	SampleBrand       = "Sample Brand"
	SampleCategory    = "Sample Category"
	SampleDescription = "Sample Description"
)

// Fields is the editable part of a product.
type Fields struct {
	Name         string
	Price        float64
	Description  string
	Image        string
	Brand        string
	Category     string
	CountInStock int
}

func (f Fields) validate() error {
	if f.Name == "" {
		return ErrInvalidName
	}
	if f.Price < 0 {
		return ErrInvalidPrice
	}
	if f.CountInStock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// Reviewer identifies the user writing a review.
type Reviewer struct {
	ID   string
	Name string
}

type Service struct {
	store       store.DocumentStore
	publisher   event.Publisher
	maxAttempts int
	now         func() time.Time
}

func NewService(ds store.DocumentStore, pub event.Publisher, maxAttempts int) *Service {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Service{store: ds, publisher: pub, maxAttempts: maxAttempts, now: time.Now}
}

// Create inserts a new product owned by ownerID.
func (s *Service) Create(ctx context.Context, f Fields, ownerID string) (*Product, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	p := Product{
		ID:        uuid.New().String(),
		User:      ownerID,
		Reviews:   []Review{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	p = p.withFields(f)

	if err := s.store.Insert(ctx, store.CollectionProducts, p.ID, p); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	s.publish(ctx, p, EventProductCreated, ProductCreated{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.CountInStock,
		CreatedBy: ownerID,
		CreatedAt: now,
	})
	return &p, nil
}

// CreateSample inserts the placeholder product admins edit afterwards.
func (s *Service) CreateSample(ctx context.Context, ownerID string) (*Product, error) {
	return s.Create(ctx, Fields{
		Name:        SampleName,
		Image:       SampleImage,
		Brand:       SampleBrand,
		Category:    SampleCategory,
		Description: SampleDescription,
	}, ownerID)
}

// Update replaces the editable fields of a product.
func (s *Service) Update(ctx context.Context, productID string, f Fields) (*Product, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	p, err := s.update(ctx, productID, func(current Product) (Product, error) {
		next := current.withFields(f)
		next.UpdatedAt = s.now()
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, *p, EventProductUpdated, ProductUpdated{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.CountInStock,
		UpdatedAt:   p.UpdatedAt,
	})
	return p, nil
}

func (s *Service) Delete(ctx context.Context, productID string) error {
	if err := s.store.Delete(ctx, store.CollectionProducts, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product %s: %w", productID, err)
	}

	s.publish(ctx, Product{ID: productID}, EventProductDeleted, ProductDeleted{
		ProductID: productID,
		DeletedAt: s.now(),
	})
	return nil
}

// AddReview appends a review and recomputes the rating in the same
// versioned write. Concurrent reviews are retried so none is lost.
func (s *Service) AddReview(ctx context.Context, productID string, reviewer Reviewer, rating int, comment string) (*Product, error) {
	var review Review
	p, err := s.update(ctx, productID, func(current Product) (Product, error) {
		review = Review{
			ID:        uuid.New().String(),
			Name:      reviewer.Name,
			Rating:    rating,
			Comment:   comment,
			User:      reviewer.ID,
			CreatedAt: s.now(),
		}
		return current.WithReview(review)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, *p, EventProductReviewed, ProductReviewed{
		ProductID:  p.ID,
		UserID:     reviewer.ID,
		Rating:     rating,
		NumReviews: p.NumReviews,
		Average:    p.Rating,
		ReviewedAt: review.CreatedAt,
	})
	return p, nil
}

// Get loads a product by id.
func (s *Service) Get(ctx context.Context, productID string) (*Product, error) {
	var p Product
	if err := s.store.Get(ctx, store.CollectionProducts, productID, &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	return &p, nil
}

func (s *Service) update(ctx context.Context, productID string, transition func(Product) (Product, error)) (*Product, error) {
	var updated Product
	err := store.Retry(ctx, s.maxAttempts, func() error {
		current, err := s.Get(ctx, productID)
		if err != nil {
			return err
		}
		next, err := transition(*current)
		if err != nil {
			return err
		}
		next.Version = current.Version + 1

		if err := s.store.Replace(ctx, store.CollectionProducts, productID, current.Version, next); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProductNotFound
			}
			if errors.Is(err, store.ErrVersionConflict) {
				log.Printf("[Product] Version conflict on product %s at version %d, retrying", productID, current.Version)
			}
			return err
		}
		updated = next
		return nil
	})
	if errors.Is(err, store.ErrVersionConflict) {
		return nil, fmt.Errorf("%w: %w", ErrProductBusy, err)
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (p Product) withFields(f Fields) Product {
	p.Name = f.Name
	p.Price = f.Price
	p.Description = f.Description
	p.Image = f.Image
	p.Brand = f.Brand
	p.Category = f.Category
	p.CountInStock = f.CountInStock
	return p
}

func (s *Service) publish(ctx context.Context, p Product, eventType string, data any) {
	if err := event.Emit(ctx, s.publisher, p.ID, AggregateType, eventType, p.Version, data); err != nil {
		log.Printf("[Product] Failed to publish %s for product %s: %v", eventType, p.ID, err)
	}
}
