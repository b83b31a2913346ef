// Package cart implements the client-side cart core: a controller
// owning the canonical in-memory snapshot, write-through persistence
// to the local store and the remote gateway, and the merge performed
// when a guest signs in.
package cart

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/avolkov/cartsync/internal/models"
)

// ErrInvalidQuantity rejects negative quantities before any state is
// touched.
var ErrInvalidQuantity = errors.New("invalid quantity")

// LocalStore is the durable device-local cart record.
type LocalStore interface {
	Load() models.Cart
	Save(models.Cart) error
	Clear() error
}

// RemoteGateway is the authenticated server-side cart resource.
type RemoteGateway interface {
	Fetch(ctx context.Context) (models.Cart, error)
	Replace(ctx context.Context, cart models.Cart) error
	Clear(ctx context.Context) error
}

// pushOp is one queued remote write. snapshot is the exact cart value
// computed at mutation time, so a slow completion can never drag the
// server backwards past a newer state.
type pushOp struct {
	snapshot models.Cart
	clear    bool
}

// Controller is the single owner of the canonical cart snapshot. Every
// mutation goes through it; the local store and remote gateway are
// write-through replicas that never originate changes outside the
// login-time merge.
type Controller struct {
	mu    sync.Mutex
	items models.Cart

	local         LocalStore
	remote        RemoteGateway
	authenticated func() bool
	log           *zap.Logger
	notify        func(error)

	pushCh chan pushOp
	wg     sync.WaitGroup
	closed sync.Once
}

// NewController builds a Controller seeded from the local store and
// starts the background pusher. authenticated gates remote writes;
// notify, if non-nil, receives non-fatal sync failures so the UI can
// show a transient warning. Close releases the pusher.
func NewController(local LocalStore, remote RemoteGateway, authenticated func() bool, log *zap.Logger, notify func(error)) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		items:         local.Load(),
		local:         local,
		remote:        remote,
		authenticated: authenticated,
		log:           log,
		notify:        notify,
		pushCh:        make(chan pushOp, 64),
	}
	go c.runPusher()
	return c
}

// Items returns a copy of the canonical snapshot.
func (c *Controller) Items() models.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Clone()
}

// AddItem puts qty units of the product into the cart. An existing
// entry has its quantity increased; quantities are clamped to the
// advisory stock cap.
func (c *Controller) AddItem(product models.LineItem, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.items.Find(product.ProductID); i >= 0 {
		cap := c.items[i].StockCap
		if cap == 0 {
			cap = product.StockCap
			c.items[i].StockCap = cap
		}
		c.items[i].Quantity = models.ClampQuantity(c.items[i].Quantity+qty, cap)
	} else {
		product.Quantity = models.ClampQuantity(qty, product.StockCap)
		c.items = append(c.items, product)
	}

	c.persistLocked()
	return nil
}

// RemoveItem deletes the entry with the given product ID. Removing an
// absent product is a no-op, not an error.
func (c *Controller) RemoveItem(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.items.Find(productID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.persistLocked()
}

// SetQuantity sets the quantity of an existing entry. Zero removes the
// entry, negative is rejected, and a missing product is a no-op.
func (c *Controller) SetQuantity(productID string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		c.RemoveItem(productID)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.items.Find(productID)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity = models.ClampQuantity(qty, c.items[i].StockCap)
	c.persistLocked()
	return nil
}

// Clear empties the cart everywhere: canonical snapshot, local store,
// and the server-side copy when signed in.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = models.Cart{}
	if err := c.local.Clear(); err != nil {
		c.log.Warn("failed to clear local cart", zap.Error(err))
	}
	if c.authenticated() {
		c.enqueue(pushOp{clear: true})
	}
}

// ResetFromLocal discards the canonical snapshot and reloads it from
// the local store. Called on sign-out: the server copy stays behind
// for the next session and no merge happens on this edge.
func (c *Controller) ResetFromLocal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.local.Load()
}

// Flush blocks until every queued remote write has completed. Used by
// tests and by checkout, which needs the server copy current.
func (c *Controller) Flush() {
	c.wg.Wait()
}

// Close drains pending remote writes and stops the pusher.
func (c *Controller) Close() {
	c.closed.Do(func() {
		c.wg.Wait()
		close(c.pushCh)
	})
}

// persistLocked writes the current snapshot through to the local store
// and, when signed in, queues a remote replace carrying the exact
// snapshot value. Caller holds the mutex. Local failures are logged
// and swallowed: durability is best-effort, the UI keeps working.
func (c *Controller) persistLocked() {
	if err := c.local.Save(c.items); err != nil {
		c.log.Warn("failed to persist local cart", zap.Error(err))
	}
	if c.authenticated() {
		c.enqueue(pushOp{snapshot: c.items.Clone()})
	}
}

// enqueue hands one remote write to the pusher. Caller holds the mutex,
// so queue order is mutation order.
func (c *Controller) enqueue(op pushOp) {
	c.wg.Add(1)
	c.pushCh <- op
}

// runPusher serializes remote writes in mutation order. A failed write
// is reported as a warning and dropped; the divergence self-heals on
// the next successful write, with no automatic retry.
func (c *Controller) runPusher() {
	for op := range c.pushCh {
		var err error
		if op.clear {
			err = c.remote.Clear(context.Background())
		} else {
			err = c.remote.Replace(context.Background(), op.snapshot)
		}
		if err != nil {
			c.log.Warn("cart sync failed", zap.Error(err))
			if c.notify != nil {
				c.notify(err)
			}
		}
		c.wg.Done()
	}
}
