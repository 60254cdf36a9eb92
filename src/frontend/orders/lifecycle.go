// Package orders reads orders from the backend and moves them through their
// status lifecycle.
package orders

import (
	"github.com/pkg/errors"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
)

var (
	// ErrNotPermitted means the session holds no role allowed to change
	// order status.
	ErrNotPermitted = errors.New("only administrators and sellers may change an order's status")
	// ErrTerminalStatus means the order is finished or canceled.
	ErrTerminalStatus = errors.New("order status is final")
	// ErrInvalidTransition means the target status cannot be requested.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrRefreshFailed means the backend accepted the new status but the
	// order could not be read back afterwards.
	ErrRefreshFailed = errors.New("status updated but order could not be reloaded")
)

// transitions lists the targets a manager may request from each status.
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPendingApproval: {model.OrderStatusFinished, model.OrderStatusCanceled},
	model.OrderStatusInProgress:      {model.OrderStatusFinished, model.OrderStatusCanceled},
}

// Targets returns the statuses reachable from current for roles. It is empty
// for customers and for terminal statuses.
func Targets(roles model.RoleSet, current model.OrderStatus) []model.OrderStatus {
	if !roles.IsManager() || current.Terminal() {
		return nil
	}
	out := make([]model.OrderStatus, len(transitions[current]))
	copy(out, transitions[current])
	return out
}

// CheckTransition reports why a transition may not be dispatched, or nil.
func CheckTransition(roles model.RoleSet, current, next model.OrderStatus) error {
	if !roles.IsManager() {
		return ErrNotPermitted
	}
	if current.Terminal() {
		return errors.Wrapf(ErrTerminalStatus, "order is %s", current)
	}
	for _, s := range transitions[current] {
		if s == next {
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidTransition, "%s to %s", current, next)
}
