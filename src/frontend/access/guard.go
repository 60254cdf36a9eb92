// Package access decides what a session may see. It only gates rendering;
// the backend checks every request on its own.
package access

import (
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
)

// SessionView is the part of the session the guard reads.
type SessionView interface {
	IsLoading() bool
	IsAuthenticated() bool
	Roles() model.RoleSet
}

// Decision is the outcome of a gate.
type Decision int

const (
	// Pending means the session is still being restored.
	Pending Decision = iota
	// Redirect sends the visitor to the login page.
	Redirect
	Allow
	// Deny renders the access-denied view in place.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	}
	return "unknown"
}

type Guard struct {
	session SessionView
}

func NewGuard(session SessionView) *Guard {
	return &Guard{session: session}
}

// Authenticate is the login gate.
func (g *Guard) Authenticate() Decision {
	if g.session.IsLoading() {
		return Pending
	}
	if !g.session.IsAuthenticated() {
		return Redirect
	}
	return Allow
}

// Authorize applies the login gate and then the role gate. An empty
// allow-list denies everyone.
func (g *Guard) Authorize(allowed model.RoleSet) Decision {
	if d := g.Authenticate(); d != Allow {
		return d
	}
	if g.session.Roles().Intersects(allowed) {
		return Allow
	}
	return Deny
}

// Allowed reports whether the current session holds any of roles. It is
// meant for hiding links and buttons.
func (g *Guard) Allowed(roles ...model.Role) bool {
	return g.Authorize(model.NewRoleSet(roles...)) == Allow
}

// ParseAllowList builds an allow-list from role names in either bare or
// prefixed form. Unknown names are rejected.
func ParseAllowList(names ...string) (model.RoleSet, error) {
	return model.ParseRoleSet(names...)
}

// MustAllowList is ParseAllowList for route tables built at startup.
func MustAllowList(names ...string) model.RoleSet {
	s, err := ParseAllowList(names...)
	if err != nil {
		panic(err)
	}
	return s
}
