package access

import (
	"net/http"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
)

// Views renders the placeholder shown while the session loads and the
// access-denied page.
type Views struct {
	Loading http.Handler
	Denied  http.Handler
}

func (v Views) loading() http.Handler {
	if v.Loading != nil {
		return v.Loading
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Carregando...", http.StatusServiceUnavailable)
	})
}

func (v Views) denied() http.Handler {
	if v.Denied != nil {
		return v.Denied
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Acesso negado", http.StatusForbidden)
	})
}

// Middleware adapts a Guard to net/http.
type Middleware struct {
	guard     *Guard
	loginPath string
	views     Views
}

func NewMiddleware(guard *Guard, loginPath string, views Views) *Middleware {
	return &Middleware{guard: guard, loginPath: loginPath, views: views}
}

// RequireSession lets authenticated requests through, answers with the
// loading view while the session is restored and redirects everything else
// to the login page.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.dispatch(w, r, m.guard.Authenticate(), next)
	})
}

// RequireRoles is RequireSession plus the role gate. Denied requests get the
// denied view on the same URL.
func (m *Middleware) RequireRoles(allowed model.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.dispatch(w, r, m.guard.Authorize(allowed), next)
		})
	}
}

func (m *Middleware) dispatch(w http.ResponseWriter, r *http.Request, d Decision, next http.Handler) {
	switch d {
	case Allow:
		next.ServeHTTP(w, r)
	case Pending:
		w.Header().Set("Retry-After", "1")
		m.views.loading().ServeHTTP(w, r)
	case Redirect:
		http.Redirect(w, r, m.loginPath, http.StatusFound)
	default:
		m.views.denied().ServeHTTP(w, r)
	}
}
