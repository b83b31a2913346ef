// Package store persists the device-local (guest) cart as a JSON file.
//
// Durability here is best-effort: a missing or corrupt file is treated
// as an empty cart and never surfaces as an error to callers, so the
// UI keeps working even when local persistence is broken.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avolkov/cartsync/internal/models"
)

// DefaultFileName is the well-known file holding the local cart.
const DefaultFileName = "cart.json"

// Local is the durable device-local cart record.
type Local struct {
	path string
}

// NewLocal returns a Local store writing to the given directory. An
// empty dir means the current working directory.
func NewLocal(dir string) *Local {
	return &Local{path: filepath.Join(dir, DefaultFileName)}
}

// Load reads the persisted cart. Missing or malformed data yields an
// empty cart, never an error.
func (l *Local) Load() models.Cart {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return models.Cart{}
	}

	var items models.Cart
	if err := json.Unmarshal(data, &items); err != nil {
		return models.Cart{}
	}
	if items == nil {
		items = models.Cart{}
	}
	return items
}

// Save overwrites the persisted cart with the given snapshot.
// Last writer wins.
func (l *Local) Save(cart models.Cart) error {
	if cart == nil {
		cart = models.Cart{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", l.path, err)
	}
	return nil
}

// Clear removes the persisted cart. Clearing an absent record is a
// no-op.
func (l *Local) Clear() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", l.path, err)
	}
	return nil
}
