package cart

import (
	"context"

	"go.uber.org/zap"

	"github.com/avolkov/cartsync/internal/models"
)

// Merge combines the guest cart into the server cart. The server cart
// comes first and keeps its order; guest items matching an existing
// product add their quantity to it (clamped to the stock cap), and
// guest-only items are appended. Merging an empty guest cart returns
// the server cart unchanged, which is what makes a repeated merge
// harmless.
func Merge(remote, local models.Cart) models.Cart {
	result := remote.Clone()
	if result == nil {
		result = models.Cart{}
	}

	for _, item := range local {
		if i := result.Find(item.ProductID); i >= 0 {
			cap := result[i].StockCap
			if cap == 0 {
				cap = item.StockCap
				result[i].StockCap = cap
			}
			result[i].Quantity = models.ClampQuantity(result[i].Quantity+item.Quantity, cap)
			continue
		}
		item.Quantity = models.ClampQuantity(item.Quantity, item.StockCap)
		result = append(result, item)
	}
	return result
}

// Reconcile runs the login-time merge of the guest cart with the
// server cart and commits the result as the new canonical snapshot.
// It is intended to fire once per sign-in, from the session's login
// hook, before any post-login mutation reaches the server.
//
// Failure policy: an unreachable server degrades the merge to "guest
// cart wins" rather than blocking sign-in, and a failed commit write
// leaves the client on an unsynced cart that heals on the next
// successful mutation. No error from here ever aborts the login.
func (c *Controller) Reconcile(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	local := c.local.Load()

	remote, err := c.remote.Fetch(ctx)
	if err != nil {
		c.log.Warn("cart fetch failed during sign-in, keeping guest cart", zap.Error(err))
		remote = models.Cart{}
	}

	merged := Merge(remote, local)
	c.items = merged

	if err := c.remote.Replace(ctx, merged); err != nil {
		c.log.Warn("cart sync failed during sign-in", zap.Error(err))
		if c.notify != nil {
			c.notify(err)
		}
	}
	if err := c.local.Save(merged); err != nil {
		c.log.Warn("failed to persist merged cart", zap.Error(err))
	}

	// Consume the guest cart so a later sign-in cannot merge the same
	// items twice.
	if err := c.local.Clear(); err != nil {
		c.log.Warn("failed to clear guest cart", zap.Error(err))
	}
}
