package auth

import (
	"net/http"

	"github.com/sigainv/siga-backend/internal/rbac"
)

type errorResponder interface {
	Unauthorized(w http.ResponseWriter, r *http.Request, message string)
	Forbidden(w http.ResponseWriter, r *http.Request, message string)
}

// Middleware authenticates requests against the session store.
type Middleware struct {
	store      *Store
	cookieName string
	respond    errorResponder
}

func NewMiddleware(store *Store, cookieName string, respond errorResponder) *Middleware {
	return &Middleware{store: store, cookieName: cookieName, respond: respond}
}

// RequireSession rejects requests without a valid session cookie.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil {
			m.respond.Unauthorized(w, r, "authentication required")
			return
		}
		sess, err := m.store.Get(r.Context(), cookie.Value)
		if err != nil {
			m.respond.Unauthorized(w, r, "session expired or invalid")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// RequireModule gates a subtree on module access for the session's role.
func (m *Middleware) RequireModule(module rbac.Module) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				m.respond.Unauthorized(w, r, "authentication required")
				return
			}
			if !rbac.HasModuleAccess(sess.Role, module) {
				m.respond.Forbidden(w, r, "module access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAction gates a handler on a specific action permission.
func (m *Middleware) RequireAction(module rbac.Module, action rbac.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				m.respond.Unauthorized(w, r, "authentication required")
				return
			}
			if !rbac.HasActionPermission(sess.Role, module, action) {
				m.respond.Forbidden(w, r, "action not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
