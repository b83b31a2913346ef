// Package service provides business-logic services for authentication and
// cart persistence, delegating storage to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/cartsync/internal/models"
)

// ErrInvalidCart rejects structurally invalid cart payloads before
// they reach storage.
var ErrInvalidCart = errors.New("invalid cart")

// CartRepository defines the persistence operations needed by the CartService.
type CartRepository interface {
	// GetCartByUser retrieves the cart belonging to the specified user.
	// A user with no stored cart yields an empty cart, not an error.
	GetCartByUser(ctx context.Context, userID string) (models.Cart, error)
	// UpsertCart fully replaces the stored cart for the given user.
	UpsertCart(ctx context.Context, userID string, cart models.Cart) error
	// DeleteCart removes the stored cart for the given user.
	DeleteCart(ctx context.Context, userID string) error
}

// CartService implements the server-side cart resource: fetch, full
// replace, and clear. The server stores whatever snapshot the client
// last wrote; stock enforcement happens at checkout, not here.
type CartService struct {
	// repo is the underlying persistence repository.
	repo CartRepository
}

// NewCartService constructs a CartService with the provided CartRepository.
func NewCartService(repo CartRepository) *CartService {
	return &CartService{repo: repo}
}

// Fetch returns the user's stored cart, empty if none exists.
func (s *CartService) Fetch(ctx context.Context, userID string) (models.Cart, error) {
	cart, err := s.repo.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = models.Cart{}
	}
	return cart, nil
}

// Replace overwrites the user's stored cart with the given snapshot.
// The snapshot must be structurally sound: every item needs a product
// ID and a positive quantity, and no product ID may appear twice.
func (s *CartService) Replace(ctx context.Context, userID string, cart models.Cart) error {
	if err := validate(cart); err != nil {
		return err
	}
	return s.repo.UpsertCart(ctx, userID, cart)
}

// Clear removes the user's stored cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.repo.DeleteCart(ctx, userID)
}

func validate(cart models.Cart) error {
	seen := make(map[string]struct{}, len(cart))
	for _, item := range cart {
		if item.ProductID == "" {
			return fmt.Errorf("%w: empty product id", ErrInvalidCart)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: product %s has quantity %d", ErrInvalidCart, item.ProductID, item.Quantity)
		}
		if _, dup := seen[item.ProductID]; dup {
			return fmt.Errorf("%w: duplicate product %s", ErrInvalidCart, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}
