package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/event"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

var catalog = []product.Fields{
	{
		Name:         "Airpods Wireless Bluetooth Headphones",
		Image:        "/images/airpods.jpg",
		Description:  "Bluetooth technology lets you connect it with compatible devices wirelessly",
		Brand:        "Apple",
		Category:     "Electronics",
		Price:        89.99,
		CountInStock: 10,
	},
	{
		Name:         "iPhone 11 Pro 256GB Memory",
		Image:        "/images/phone.jpg",
		Description:  "Introducing the iPhone 11 Pro with a triple camera system",
		Brand:        "Apple",
		Category:     "Electronics",
		Price:        599.99,
		CountInStock: 7,
	},
	{
		Name:         "Cannon EOS 80D DSLR Camera",
		Image:        "/images/camera.jpg",
		Description:  "Characterized by versatile imaging specs",
		Brand:        "Cannon",
		Category:     "Electronics",
		Price:        929.99,
		CountInStock: 5,
	},
	{
		Name:         "Sony Playstation 4 Pro White Version",
		Image:        "/images/playstation.jpg",
		Description:  "The ultimate home entertainment center",
		Brand:        "Sony",
		Category:     "Electronics",
		Price:        399.99,
		CountInStock: 11,
	},
	{
		Name:         "Logitech G-Series Gaming Mouse",
		Image:        "/images/mouse.jpg",
		Description:  "Get a better handle on your games with this Logitech LIGHTSYNC gaming mouse",
		Brand:        "Logitech",
		Category:     "Electronics",
		Price:        49.99,
		CountInStock: 7,
	},
	{
		Name:         "Amazon Echo Dot 3rd Generation",
		Image:        "/images/alexa.jpg",
		Description:  "Meet Echo Dot - Our most popular smart speaker with a fabric design",
		Brand:        "Amazon",
		Category:     "Electronics",
		Price:        29.99,
		CountInStock: 0,
	},
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadSeed()
	if err != nil {
		log.Fatalf("[Seed] %v", err)
	}

	ds, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("[Seed] Failed to open store: %v", err)
	}
	defer ds.Close(ctx)

	if err := seed(ctx, ds, cfg); err != nil {
		log.Fatalf("[Seed] %v", err)
	}
}

// seed creates the admin and every catalog product that is not already
// present by name, so running it again changes nothing.
func seed(ctx context.Context, ds store.DocumentStore, cfg config.Seed) error {
	userSvc := user.NewService(ds, event.NopPublisher{})
	productSvc := product.NewService(ds, event.NopPublisher{}, product.DefaultMaxAttempts)

	admin, err := userSvc.RegisterAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
	if errors.Is(err, user.ErrUserExists) {
		log.Printf("[Seed] Admin %s already exists", cfg.AdminEmail)
		admin, err = userSvc.FindByEmail(ctx, cfg.AdminEmail)
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	created := 0
	for _, fields := range catalog {
		n, err := ds.Count(ctx, store.CollectionProducts, store.Query{Equals: map[string]string{"name": fields.Name}})
		if err != nil {
			return fmt.Errorf("look up %q: %w", fields.Name, err)
		}
		if n > 0 {
			log.Printf("[Seed] Skipping %q, already in the catalog", fields.Name)
			continue
		}

		p, err := productSvc.Create(ctx, fields, admin.ID)
		if err != nil {
			return fmt.Errorf("create %q: %w", fields.Name, err)
		}
		created++
		log.Printf("[Seed] Created product %s (%s)", p.ID, p.Name)
	}

	log.Printf("[Seed] Seeded %d products owned by %s", created, admin.Email)
	return nil
}
