// Package http provides HTTP handlers for the cart resource.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avolkov/cartsync/internal/middleware"
	"github.com/avolkov/cartsync/internal/models"
	"github.com/avolkov/cartsync/internal/service"
)

// CartService defines the cart operations required by the CartHandler.
type CartService interface {
	// Fetch returns the user's stored cart, empty if none exists.
	Fetch(ctx context.Context, userID string) (models.Cart, error)
	// Replace fully overwrites the user's stored cart.
	Replace(ctx context.Context, userID string, cart models.Cart) error
	// Clear removes the user's stored cart.
	Clear(ctx context.Context, userID string) error
}

// CartHandler handles HTTP requests for the authenticated cart resource.
type CartHandler struct {
	CartService CartService
}

// cartBody is the wire shape of the cart resource, shared by GET
// responses and PUT requests.
type cartBody struct {
	Items models.Cart `json:"items"`
}

// Get handles GET /api/cart. It returns the caller's stored cart as
// {"items": [...]}; a user without a cart gets an empty list.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	cart, err := h.CartService.Fetch(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cartBody{Items: cart})
}

// Put handles PUT /api/cart. The body is the full replacement cart;
// an empty items list stores an empty cart. Structurally invalid
// payloads are rejected with 400.
func (h *CartHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var body cartBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Items == nil {
		body.Items = models.Cart{}
	}

	if err := h.CartService.Replace(r.Context(), userID, body.Items); err != nil {
		if errors.Is(err, service.ErrInvalidCart) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cartBody{Items: body.Items})
}

// Delete handles DELETE /api/cart, emptying the caller's stored cart.
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	if err := h.CartService.Clear(r.Context(), userID); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
