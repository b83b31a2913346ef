package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/avolkov/cartsync/internal/models"
)

// fakeLocal is an in-memory LocalStore.
type fakeLocal struct {
	mu      sync.Mutex
	cart    models.Cart
	saveErr error
}

func (f *fakeLocal) Load() models.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cart.Clone()
}

func (f *fakeLocal) Save(cart models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.cart = cart.Clone()
	return nil
}

func (f *fakeLocal) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = models.Cart{}
	return nil
}

// fakeRemote records gateway calls and returns preconfigured errors.
type fakeRemote struct {
	mu       sync.Mutex
	cart     models.Cart
	replaces []models.Cart
	clears   int

	fetchErr   error
	replaceErr error
	clearErr   error
}

func (f *fakeRemote) Fetch(ctx context.Context) (models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.cart.Clone(), nil
}

func (f *fakeRemote) Replace(ctx context.Context, cart models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.cart = cart.Clone()
	f.replaces = append(f.replaces, cart.Clone())
	return nil
}

func (f *fakeRemote) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cart = models.Cart{}
	f.clears++
	return nil
}

func (f *fakeRemote) lastReplace() (models.Cart, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replaces) == 0 {
		return nil, false
	}
	return f.replaces[len(f.replaces)-1].Clone(), true
}

func always(v bool) func() bool { return func() bool { return v } }

func newTestController(local *fakeLocal, remote *fakeRemote, authenticated bool) *Controller {
	return NewController(local, remote, always(authenticated), nil, nil)
}

func mug(qty int) models.LineItem {
	return models.LineItem{ProductID: "p1", Title: "Mug", UnitPrice: 9.5, Quantity: qty}
}

func TestAddItem_NewAndExisting(t *testing.T) {
	c := newTestController(&fakeLocal{}, &fakeRemote{}, false)
	defer c.Close()

	if err := c.AddItem(mug(0), 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := c.AddItem(mug(0), 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("items = %+v; want one entry", items)
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %d; want 3", items[0].Quantity)
	}
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	c := newTestController(&fakeLocal{}, &fakeRemote{}, false)
	defer c.Close()

	if err := c.AddItem(mug(0), 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("error = %v; want ErrInvalidQuantity", err)
	}
	if err := c.AddItem(mug(0), -2); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("error = %v; want ErrInvalidQuantity", err)
	}
	if len(c.Items()) != 0 {
		t.Error("rejected add must not mutate the snapshot")
	}
}

func TestAddItem_ClampsToStockCap(t *testing.T) {
	c := newTestController(&fakeLocal{}, &fakeRemote{}, false)
	defer c.Close()

	capped := models.LineItem{ProductID: "p2", Title: "Shirt", StockCap: 3}
	_ = c.AddItem(capped, 2)
	_ = c.AddItem(capped, 5)

	items := c.Items()
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %d; want clamped to cap 3", items[0].Quantity)
	}
}

func TestNoDuplicateProductIDs(t *testing.T) {
	c := newTestController(&fakeLocal{}, &fakeRemote{}, false)
	defer c.Close()

	other := models.LineItem{ProductID: "p2", Title: "Shirt"}
	_ = c.AddItem(mug(0), 1)
	_ = c.AddItem(other, 1)
	_ = c.AddItem(mug(0), 4)
	_ = c.SetQuantity("p1", 2)
	c.RemoveItem("p2")
	_ = c.AddItem(other, 3)

	seen := map[string]bool{}
	for _, item := range c.Items() {
		if seen[item.ProductID] {
			t.Fatalf("duplicate product %s in snapshot %+v", item.ProductID, c.Items())
		}
		seen[item.ProductID] = true
	}
}

func TestRemoveItem_AbsentIsNoop(t *testing.T) {
	c := newTestController(&fakeLocal{}, &fakeRemote{}, false)
	defer c.Close()

	_ = c.AddItem(mug(0), 1)
	c.RemoveItem("nope")

	if len(c.Items()) != 1 {
		t.Errorf("items = %+v; want untouched single entry", c.Items())
	}
}

func TestSetQuantity(t *testing.T) {
	c := newTestController(&fakeLocal{}, &fakeRemote{}, false)
	defer c.Close()

	_ = c.AddItem(mug(0), 1)

	if err := c.SetQuantity("p1", 5); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if got := c.Items()[0].Quantity; got != 5 {
		t.Errorf("quantity = %d; want 5", got)
	}

	// zero removes
	if err := c.SetQuantity("p1", 0); err != nil {
		t.Fatalf("SetQuantity(0) failed: %v", err)
	}
	if len(c.Items()) != 0 {
		t.Error("SetQuantity(0) should remove the entry")
	}

	// negative rejected
	if err := c.SetQuantity("p1", -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("error = %v; want ErrInvalidQuantity", err)
	}

	// absent product is a no-op
	if err := c.SetQuantity("ghost", 2); err != nil {
		t.Errorf("SetQuantity on absent product = %v; want nil", err)
	}
}

func TestSetQuantity_Clamped(t *testing.T) {
	c := newTestController(&fakeLocal{}, &fakeRemote{}, false)
	defer c.Close()

	_ = c.AddItem(models.LineItem{ProductID: "p2", StockCap: 4}, 1)
	_ = c.SetQuantity("p2", 99)

	if got := c.Items()[0].Quantity; got != 4 {
		t.Errorf("quantity = %d; want clamped to 4", got)
	}
}

func TestMutationsWriteThroughToLocal(t *testing.T) {
	local := &fakeLocal{}
	c := newTestController(local, &fakeRemote{}, false)
	defer c.Close()

	_ = c.AddItem(mug(0), 2)

	saved := local.Load()
	if len(saved) != 1 || saved[0].Quantity != 2 {
		t.Errorf("local store = %+v; want the canonical snapshot", saved)
	}
}

func TestAnonymousMutationsNeverTouchRemote(t *testing.T) {
	remote := &fakeRemote{}
	c := newTestController(&fakeLocal{}, remote, false)
	defer c.Close()

	_ = c.AddItem(mug(0), 2)
	c.Clear()
	c.Flush()

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.replaces) != 0 || remote.clears != 0 {
		t.Errorf("remote saw %d replaces and %d clears; want none while anonymous",
			len(remote.replaces), remote.clears)
	}
}

func TestAuthenticatedMutationsPushExactSnapshot(t *testing.T) {
	remote := &fakeRemote{}
	c := newTestController(&fakeLocal{}, remote, true)
	defer c.Close()

	_ = c.AddItem(mug(0), 2)
	_ = c.AddItem(models.LineItem{ProductID: "p2"}, 1)
	c.Flush()

	last, ok := remote.lastReplace()
	if !ok {
		t.Fatal("expected remote replaces")
	}
	if len(last) != 2 || last[0].Quantity != 2 || last[1].ProductID != "p2" {
		t.Errorf("last pushed snapshot = %+v", last)
	}
}

func TestRemoteFailureDoesNotRollBack(t *testing.T) {
	remote := &fakeRemote{replaceErr: errors.New("network down")}
	var warned error
	c := NewController(&fakeLocal{}, remote, always(true), nil, func(err error) { warned = err })
	defer c.Close()

	if err := c.AddItem(mug(0), 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	c.Flush()

	if len(c.Items()) != 1 {
		t.Error("failed sync must not roll back the canonical snapshot")
	}
	if warned == nil {
		t.Error("expected a sync warning")
	}
}

func TestLocalSaveFailureIsSwallowed(t *testing.T) {
	local := &fakeLocal{saveErr: errors.New("disk full")}
	c := newTestController(local, &fakeRemote{}, false)
	defer c.Close()

	if err := c.AddItem(mug(0), 1); err != nil {
		t.Errorf("local persistence failure surfaced as error: %v", err)
	}
	if len(c.Items()) != 1 {
		t.Error("canonical snapshot should still be updated")
	}
}

func TestClear_EmptiesEverywhere(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{cart: models.Cart{{ProductID: "p9", Quantity: 1}}}
	c := newTestController(local, remote, true)
	defer c.Close()

	_ = c.AddItem(mug(0), 2)
	c.Clear()
	c.Flush()

	if len(c.Items()) != 0 {
		t.Error("canonical snapshot should be empty")
	}
	if len(local.Load()) != 0 {
		t.Error("local store should be empty")
	}
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if remote.clears != 1 {
		t.Errorf("remote clears = %d; want 1", remote.clears)
	}
}

func TestControllerSeedsFromLocalStore(t *testing.T) {
	local := &fakeLocal{cart: models.Cart{{ProductID: "p1", Quantity: 7}}}
	c := newTestController(local, &fakeRemote{}, false)
	defer c.Close()

	items := c.Items()
	if len(items) != 1 || items[0].Quantity != 7 {
		t.Errorf("seeded snapshot = %+v; want local store content", items)
	}
}

func TestResetFromLocal(t *testing.T) {
	local := &fakeLocal{}
	c := newTestController(local, &fakeRemote{}, false)
	defer c.Close()

	_ = c.AddItem(mug(0), 2)
	local.mu.Lock()
	local.cart = models.Cart{} // sign-out path: local already consumed
	local.mu.Unlock()

	c.ResetFromLocal()
	if len(c.Items()) != 0 {
		t.Errorf("snapshot after reset = %+v; want local store content", c.Items())
	}
}
