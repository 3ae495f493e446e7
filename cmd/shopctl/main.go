package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/ec-storefront/internal/client"
	"github.com/example/ec-storefront/internal/client/state"
	"github.com/example/ec-storefront/internal/domain/order"
)

func main() {
	baseURL := flag.String("api", getenv("STOREFRONT_API", "http://localhost:8080"), "storefront API base URL")
	email := flag.String("email", os.Getenv("STOREFRONT_EMAIL"), "login email")
	password := flag.String("password", os.Getenv("STOREFRONT_PASSWORD"), "login password")
	keyword := flag.String("keyword", "", "product search keyword")
	address := flag.String("address", "1 Main St", "shipping address")
	city := flag.String("city", "Boston", "shipping city")
	postalCode := flag.String("postal-code", "02101", "shipping postal code")
	country := flag.String("country", "USA", "shipping country")
	payment := flag.String("payment", "PayPal", "payment method")
	flag.Parse()

	api := client.New(*baseURL)
	store := state.NewStore()

	if *email != "" {
		root := store.Run(context.Background(), state.UserLoginRequest, func(ctx context.Context) state.Action {
			return api.Login(ctx, *email, *password)
		})
		if root.UserLogin.Error != "" {
			fmt.Fprintf(os.Stderr, "login failed: %s\n", root.UserLogin.Error)
			os.Exit(1)
		}
	}

	m := newModel(api, store, *keyword, checkout{
		address:       order.ShippingAddress{Address: *address, City: *city, PostalCode: *postalCode, Country: *country},
		paymentMethod: *payment,
		taxRate:       0.15,
	})
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "shopctl: %v\n", err)
		os.Exit(1)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
