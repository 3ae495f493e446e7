package product

import (
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func review(user string, rating int) Review {
	return Review{ID: "r-" + user, Name: user, Rating: rating, Comment: "ok", User: user, CreatedAt: time.Now()}
}

func TestProduct_WithReview_RecomputesAggregates(t *testing.T) {
	p := Product{ID: "p1"}

	p, err := p.WithReview(review("u1", 5))
	require.NoError(t, err)
	p, err = p.WithReview(review("u2", 4))
	require.NoError(t, err)
	p, err = p.WithReview(review("u3", 2))
	require.NoError(t, err)

	assert.Equal(t, 3, p.NumReviews)
	assert.InDelta(t, 11.0/3.0, p.Rating, 1e-9)
	assert.Len(t, p.Reviews, 3)
}

func TestProduct_WithReview_DoesNotModifyOriginal(t *testing.T) {
	original := Product{Reviews: make([]Review, 1, 4)}
	original.Reviews[0] = review("u1", 3)
	original.NumReviews, original.Rating = 1, 3

	next, err := original.WithReview(review("u2", 5))

	require.NoError(t, err)
	assert.Len(t, original.Reviews, 1)
	assert.Equal(t, 1, original.NumReviews)
	assert.Equal(t, 3.0, original.Rating)
	assert.Len(t, next.Reviews, 2)
	assert.Equal(t, 4.0, next.Rating)
}

func TestProduct_WithReview_Duplicate(t *testing.T) {
	p, err := Product{}.WithReview(review("u1", 4))
	require.NoError(t, err)

	same, err := p.WithReview(review("u1", 1))

	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.ErrorIs(t, err, apperr.Conflict)
	assert.Equal(t, "Product already reviewed", err.Error())
	assert.Len(t, same.Reviews, 1)
	assert.Equal(t, 4.0, same.Rating)
}

func TestProduct_WithReview_Validation(t *testing.T) {
	tests := []struct {
		name string
		r    Review
		want error
	}{
		{"rating too low", Review{User: "u1", Rating: 0, Comment: "x"}, ErrInvalidRating},
		{"rating too high", Review{User: "u1", Rating: 6, Comment: "x"}, ErrInvalidRating},
		{"empty comment", Review{User: "u1", Rating: 3}, ErrCommentRequired},
		{"no reviewer", Review{Rating: 3, Comment: "x"}, ErrReviewerRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Product{}.WithReview(tt.r)

			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, apperr.Validation)
			assert.Empty(t, p.Reviews)
		})
	}
}

func TestSummarize(t *testing.T) {
	n, avg := summarize(nil)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0.0, avg)

	n, avg = summarize([]Review{{Rating: 1}, {Rating: 2}})
	assert.Equal(t, 2, n)
	assert.Equal(t, 1.5, avg)
}
