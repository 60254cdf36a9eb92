// Package cart keeps the pre-order cart. Every mutation rewrites the whole
// cart to client-local storage before returning.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/money"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/storage"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrEmptyCart       = errors.New("cart is empty")
)

// Item is a cart line: a snapshot of the product plus the quantity wanted.
type Item struct {
	model.Product
	Quantity int `json:"quantity"`
}

// Subtotal is Price × Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return money.Multiply(i.Price, i.Quantity)
}

// OrderPlacer submits an order built from the cart.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, lines []model.OrderLine) (*model.CreatedOrder, error)
}

// Cart is safe for concurrent use. Lines keep insertion order and are unique
// by product id.
type Cart struct {
	store storage.Store
	log   logrus.FieldLogger

	mu        sync.RWMutex
	items     []Item
	recovered bool
}

// New restores the cart persisted in store. Unreadable data yields an empty
// cart; Recovered then reports true.
func New(ctx context.Context, store storage.Store, log logrus.FieldLogger) *Cart {
	c := &Cart{store: store, log: log}
	raw, ok, err := store.Get(ctx, storage.KeyCart)
	if err != nil {
		log.WithField("error", err).Warn("could not read persisted cart, starting empty")
		c.recovered = true
		return c
	}
	if !ok || raw == "" {
		return c
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.WithField("error", err).Warn("persisted cart is corrupt, starting empty")
		c.recovered = true
		return c
	}
	c.items = normalize(items)
	return c
}

// normalize drops non-positive lines and merges duplicate ids.
func normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if i := indexOf(out, it.ID); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}

func indexOf(items []Item, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Recovered reports whether the persisted cart had to be thrown away.
func (c *Cart) Recovered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recovered
}

// AddItem adds quantity units of p, merging with an existing line.
func (c *Cart) AddItem(ctx context.Context, p model.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.items, p.ID); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		c.items = append(c.items, Item{Product: p, Quantity: quantity})
	}
	return c.persistLocked(ctx)
}

func (c *Cart) RemoveItem(ctx context.Context, productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
	return c.persistLocked(ctx)
}

// UpdateQuantity sets the quantity of a line; zero or less removes it. An id
// not in the cart is ignored.
func (c *Cart) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		c.removeLocked(productID)
	} else if i := indexOf(c.items, productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
	return c.persistLocked(ctx)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return c.persistLocked(ctx)
}

func (c *Cart) removeLocked(productID int64) {
	if i := indexOf(c.items, productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// persistLocked writes the cart. On failure the in-memory change stays.
func (c *Cart) persistLocked(ctx context.Context) error {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := c.store.Set(ctx, storage.KeyCart, string(b)); err != nil {
		c.log.WithField("error", err).Error("could not persist cart")
		return errors.Wrap(err, "persist cart")
	}
	return nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Count is the sum of quantities.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of line subtotals.
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	subtotals := make([]decimal.Decimal, len(c.items))
	for i, it := range c.items {
		subtotals[i] = it.Subtotal()
	}
	return money.Sum(subtotals...)
}

// Lines maps the cart to the order-creation payload.
func (c *Cart) Lines() []model.OrderLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lines := make([]model.OrderLine, len(c.items))
	for i, it := range c.items {
		lines[i] = model.OrderLine{ProductID: it.ID, Quantity: it.Quantity}
	}
	return lines
}

// Checkout submits the cart as a new order and removes the submitted
// quantities from it. Lines added while the order is in flight are kept.
// When placer fails the cart is untouched and the error is returned as is.
func (c *Cart) Checkout(ctx context.Context, placer OrderPlacer) (int64, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}
	created, err := placer.CreateOrder(ctx, lines)
	if err != nil {
		return 0, err
	}
	log := c.log.WithField("order_id", created.ID)
	if err := c.settle(ctx, lines); err != nil {
		// The order exists; a stale persisted cart is reported but not fatal.
		log.WithField("error", err).Warn("order placed but cart could not be cleared")
	}
	log.Info("order placed")
	return created.ID, nil
}

// settle subtracts the ordered quantities, dropping lines that reach zero.
func (c *Cart) settle(ctx context.Context, ordered []model.OrderLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range ordered {
		i := indexOf(c.items, l.ProductID)
		if i < 0 {
			continue
		}
		if c.items[i].Quantity <= l.Quantity {
			c.removeLocked(l.ProductID)
			continue
		}
		c.items[i].Quantity -= l.Quantity
	}
	return c.persistLocked(ctx)
}
