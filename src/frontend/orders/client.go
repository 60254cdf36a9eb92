package orders

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
)

// API is the part of the backend this package calls.
type API interface {
	ListOrders(ctx context.Context) ([]model.OrderSummary, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.OrderSummary, error)
}

// RoleSource yields the roles of the current session.
type RoleSource interface {
	Roles() model.RoleSet
}

// Client caches the last fetched detail of each order. The cache is only a
// read-through copy; the backend stays authoritative.
type Client struct {
	api   API
	roles RoleSource
	log   logrus.FieldLogger

	mu    sync.RWMutex
	cache map[int64]model.Order
}

func NewClient(api API, roles RoleSource, log logrus.FieldLogger) *Client {
	return &Client{api: api, roles: roles, log: log, cache: make(map[int64]model.Order)}
}

// List returns the orders visible to the session. The backend scopes the
// listing for customers.
func (c *Client) List(ctx context.Context) ([]model.OrderSummary, error) {
	return c.api.ListOrders(ctx)
}

// Get fetches an order and refreshes the cache.
func (c *Client) Get(ctx context.Context, id int64) (*model.Order, error) {
	o, err := c.api.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache[id] = *o
	c.mu.Unlock()
	return o, nil
}

// Cached returns the last fetched detail of id.
func (c *Client) Cached(id int64) (model.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.cache[id]
	return o, ok
}

// AvailableTransitions lists the statuses the session may move o to.
func (c *Client) AvailableTransitions(o model.Order) []model.OrderStatus {
	return Targets(c.roles.Roles(), o.Status)
}

// Transition asks the backend to move order id to next and returns the
// order as re-fetched afterwards. Role and terminal-status checks run first
// and fail without a network call. If the backend rejects the change, the
// cached order is left as it was and the backend's error is returned. If the
// change is applied but the reload fails, the cached copy is dropped and
// ErrRefreshFailed is returned.
func (c *Client) Transition(ctx context.Context, id int64, next model.OrderStatus) (*model.Order, error) {
	roles := c.roles.Roles()
	if !roles.IsManager() {
		return nil, ErrNotPermitted
	}
	current, ok := c.Cached(id)
	if !ok {
		o, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		current = *o
	}
	if err := CheckTransition(roles, current.Status, next); err != nil {
		return nil, err
	}

	log := c.log.WithFields(logrus.Fields{"order_id": id, "from": current.Status, "to": next})
	if _, err := c.api.UpdateOrderStatus(ctx, id, next); err != nil {
		log.WithField("error", err).Warn("status update rejected")
		return nil, err
	}
	log.Info("order status updated")
	fresh, err := c.Get(ctx, id)
	if err != nil {
		c.mu.Lock()
		delete(c.cache, id)
		c.mu.Unlock()
		log.WithField("error", err).Warn("order reload after status update failed")
		return nil, errors.Wrapf(ErrRefreshFailed, "order %d: %v", id, err)
	}
	return fresh, nil
}
