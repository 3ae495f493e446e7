package product

import "time"

const (
	EventProductCreated  = "ProductCreated"
	EventProductUpdated  = "ProductUpdated"
	EventProductDeleted  = "ProductDeleted"
	EventProductReviewed = "ProductReviewed"
)

type ProductCreated struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductUpdated struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductDeleted struct {
	ProductID string    `json:"product_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type ProductReviewed struct {
	ProductID  string    `json:"product_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	NumReviews int       `json:"num_reviews"`
	Average    float64   `json:"average"`
	ReviewedAt time.Time `json:"reviewed_at"`
}
