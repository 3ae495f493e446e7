package product

import (
	"time"

	"github.com/example/ec-storefront/internal/apperr"
)

const AggregateType = "Product"

var (
	ErrProductNotFound  = apperr.New(apperr.CodeNotFound, "Product not found")
	ErrInvalidName      = apperr.New(apperr.CodeValidation, "name is required")
	ErrInvalidPrice     = apperr.New(apperr.CodeValidation, "price must not be negative")
	ErrInvalidStock     = apperr.New(apperr.CodeValidation, "count in stock must not be negative")
	ErrInvalidRating    = apperr.New(apperr.CodeValidation, "rating must be between 1 and 5")
	ErrCommentRequired  = apperr.New(apperr.CodeValidation, "comment is required")
	ErrAlreadyReviewed  = apperr.New(apperr.CodeConflict, "Product already reviewed")
	ErrReviewerRequired = apperr.New(apperr.CodeValidation, "reviewer is required")
	ErrProductBusy      = apperr.New(apperr.CodeConflict, "Product is being updated by another request, please try again")
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's rating of a product.
type Review struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	User      string    `json:"user" bson:"user"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Product is the stored catalog document. Rating and NumReviews are derived
// from Reviews and are only changed together with them.
type Product struct {
	ID           string    `json:"_id" bson:"_id"`
	User         string    `json:"user" bson:"user"`
	Name         string    `json:"name" bson:"name"`
	Image        string    `json:"image" bson:"image"`
	Brand        string    `json:"brand" bson:"brand"`
	Category     string    `json:"category" bson:"category"`
	Description  string    `json:"description" bson:"description"`
	Reviews      []Review  `json:"reviews" bson:"reviews"`
	Rating       float64   `json:"rating" bson:"rating"`
	NumReviews   int       `json:"numReviews" bson:"numReviews"`
	Price        float64   `json:"price" bson:"price"`
	CountInStock int       `json:"countInStock" bson:"countInStock"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
	Version      int64     `json:"__v" bson:"__v"`
}

// HasReviewBy reports whether userID already reviewed the product.
func (p Product) HasReviewBy(userID string) bool {
	for _, r := range p.Reviews {
		if r.User == userID {
			return true
		}
	}
	return false
}

// WithReview returns a copy of p with r appended and the aggregates
// recomputed. p is not modified.
func (p Product) WithReview(r Review) (Product, error) {
	if r.User == "" {
		return p, ErrReviewerRequired
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return p, ErrInvalidRating
	}
	if r.Comment == "" {
		return p, ErrCommentRequired
	}
	if p.HasReviewBy(r.User) {
		return p, ErrAlreadyReviewed
	}

	reviews := make([]Review, len(p.Reviews), len(p.Reviews)+1)
	copy(reviews, p.Reviews)
	p.Reviews = append(reviews, r)
	p.NumReviews, p.Rating = summarize(p.Reviews)
	p.UpdatedAt = r.CreatedAt
	return p, nil
}

// summarize returns the review count and mean rating, 0 when empty.
func summarize(reviews []Review) (int, float64) {
	if len(reviews) == 0 {
		return 0, 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return len(reviews), float64(sum) / float64(len(reviews))
}
