// Package repository provides persistence implementations for the cart
// and authentication services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/cartsync/internal/models"
)

// PostgresCartRepository implements cart storage against a PostgreSQL database.
type PostgresCartRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresCartRepository creates a new PostgresCartRepository using
// the provided *sql.DB.
func NewPostgresCartRepository(db *sql.DB) *PostgresCartRepository {
	return &PostgresCartRepository{DB: db}
}

// GetCartByUser fetches the stored cart for the specified user in its
// original item order. A user without a cart yields an empty slice.
func (r *PostgresCartRepository) GetCartByUser(ctx context.Context, userID string) (models.Cart, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT product_id, title, image_url, unit_price, quantity, stock_cap
		  FROM carts WHERE user_id = $1 ORDER BY position
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("GetCartByUser: %w", err)
	}
	defer rows.Close()

	var cart models.Cart
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ProductID, &item.Title, &item.ImageURL,
			&item.UnitPrice, &item.Quantity, &item.StockCap); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		cart = append(cart, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetCartByUser: %w", err)
	}
	return cart, nil
}

// UpsertCart replaces the user's stored cart with the given snapshot
// inside one transaction. Replace is delete-then-insert: the stored
// cart is always exactly the last written snapshot, never a partial
// patch.
func (r *PostgresCartRepository) UpsertCart(ctx context.Context, userID string, cart models.Cart) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("UpsertCart begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("UpsertCart delete: %w", err)
	}

	for i, item := range cart {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO carts (user_id, product_id, title, image_url, unit_price, quantity, stock_cap, position, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		`, userID, item.ProductID, item.Title, item.ImageURL,
			item.UnitPrice, item.Quantity, item.StockCap, i); err != nil {
			return fmt.Errorf("UpsertCart insert %s: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("UpsertCart commit: %w", err)
	}
	return nil
}

// DeleteCart removes the stored cart for the specified user.
func (r *PostgresCartRepository) DeleteCart(ctx context.Context, userID string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("DeleteCart: %w", err)
	}
	return nil
}
