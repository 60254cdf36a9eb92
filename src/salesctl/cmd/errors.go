package cmd

import (
	"github.com/pkg/errors"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/api"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/cart"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/orders"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/session"
)

// describe turns err into the message printed after "Error: ". Backend
// rejections are shown verbatim.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var de *session.DecodeError
	switch {
	case errors.Is(err, errNotLoggedIn):
		return errors.New("not logged in; run 'salesctl login' first")
	case errors.Is(err, orders.ErrTerminalStatus):
		return errors.New("this order is already finished or canceled")
	case errors.Is(err, orders.ErrRefreshFailed):
		return errors.New("the status was changed but the order could not be reloaded")
	case errors.Is(err, orders.ErrNotPermitted):
		return errors.New("your role cannot change order status")
	case errors.Is(err, cart.ErrEmptyCart):
		return errors.New("the cart is empty")
	case errors.As(err, &de):
		return errors.New("the server returned an unusable session token")
	case api.IsValidation(err):
		return errors.New(api.UserMessage(err))
	case api.IsNetwork(err):
		return errors.Wrap(err, "backend unreachable, try again")
	}
	return err
}
