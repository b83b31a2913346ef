// Package gateway wraps the backend cart resource behind a small
// contract: fetch, full replace, and clear, all carrying the bearer
// credential of the signed-in user.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avolkov/cartsync/internal/models"
)

var (
	// ErrUnauthorized signals a missing or expired credential. The
	// sign-out flow upstream handles it; the cart core never retries.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRemoteUnavailable signals a transient transport or server
	// fault. Recoverable: local mutations proceed and the next
	// successful write self-heals the divergence.
	ErrRemoteUnavailable = errors.New("remote cart unavailable")
)

const apiCart = "/api/cart"

// Gateway issues cart operations against the backend HTTP resource.
type Gateway struct {
	client  *http.Client
	baseURL string
	token   func() string
}

// New constructs a Gateway. token is consulted on every call so a
// re-login picks up the fresh credential without rebuilding the
// gateway; it must return "" when the session is anonymous.
func New(client *http.Client, baseURL string, token func() string) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{client: client, baseURL: baseURL, token: token}
}

// Fetch returns the server's current cart for the authenticated
// identity.
func (g *Gateway) Fetch(ctx context.Context) (models.Cart, error) {
	resp, err := g.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Items models.Cart `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode cart: %v", ErrRemoteUnavailable, err)
	}
	if body.Items == nil {
		body.Items = models.Cart{}
	}
	return body.Items, nil
}

// Replace fully overwrites the server-side cart with the given
// snapshot. Not a patch: the payload is the exact cart to store.
func (g *Gateway) Replace(ctx context.Context, cart models.Cart) error {
	if cart == nil {
		cart = models.Cart{}
	}
	payload, err := json.Marshal(map[string]models.Cart{"items": cart})
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	resp, err := g.do(ctx, http.MethodPut, payload)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Clear empties the server-side cart.
func (g *Gateway) Clear(ctx context.Context) error {
	resp, err := g.do(ctx, http.MethodDelete, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do performs one HTTP round trip against the cart resource and maps
// transport and status failures onto the gateway error taxonomy.
func (g *Gateway) do(ctx context.Context, method string, payload []byte) (*http.Response, error) {
	token := g.token()
	if token == "" {
		return nil, ErrUnauthorized
	}

	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+apiCart, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, ErrUnauthorized
	case resp.StatusCode >= 400:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: server returned %d", ErrRemoteUnavailable, resp.StatusCode)
	}
	return resp, nil
}
