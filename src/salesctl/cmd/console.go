package cmd

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/access"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/api"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/cart"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/orders"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/session"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/storage"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/salesctl/internal/output"
)

var errNotLoggedIn = errors.New("not logged in")

// console holds the components one command invocation works with. Each is
// built once and shared by reference.
type console struct {
	api     *api.Client
	store   storage.Store
	session *session.Store
	cart    *cart.Cart
	orders  *orders.Client
	guard   *access.Guard
	printer *output.Printer
}

// openConsole restores the persisted session and cart.
func openConsole(cmd *cobra.Command) (*console, error) {
	ctx := cmd.Context()

	store, err := storage.Open(storage.Config{
		Backend:     cfg.Store.Backend,
		Path:        cfg.StorePath(),
		RedisAddr:   cfg.Store.RedisAddr,
		RedisPrefix: cfg.Store.RedisPrefix,
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening local store")
	}
	client, err := api.New(cfg.API.BaseURL, api.WithTimeout(cfg.API.Timeout))
	if err != nil {
		return nil, err
	}

	c := &console{
		api:     client,
		store:   store,
		printer: newPrinter(cmd),
	}
	c.session = session.NewStore(store, client, logger)
	c.session.Restore(ctx)
	c.guard = access.NewGuard(c.session)
	c.cart = cart.New(ctx, store, logger)
	c.orders = orders.NewClient(client, c.session, logger)

	if c.cart.Recovered() {
		c.printer.Warning("The saved cart could not be read and was reset.")
	}
	return c, nil
}

func (c *console) Close() error {
	if cl, ok := c.store.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// requireSession fails unless someone is logged in.
func (c *console) requireSession() error {
	if c.guard.Authenticate() != access.Allow {
		return errNotLoggedIn
	}
	return nil
}

// withConsole opens a console for the duration of fn.
func withConsole(cmd *cobra.Command, fn func(c *console) error) error {
	c, err := openConsole(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.WithField("error", err).Debug("closing local store")
		}
	}()
	return fn(c)
}
