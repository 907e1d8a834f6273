package middleware

import (
	"net/http"

	"mentalwell/internal/domain/entity"
	"mentalwell/internal/session"
	"mentalwell/pkg/response"
)

type GuardMode int

const (
	// PageMode redirects rejected visitors: anonymous ones to the login page,
	// authenticated ones to their own dashboard.
	PageMode GuardMode = iota
	// APIMode answers rejected callers with 401 or 403 JSON.
	APIMode
)

// RouteGuard is the single role check applied to every protected route. It
// relies on session.Controller.Provide having run earlier in the chain.
type RouteGuard struct {
	mode GuardMode
}

func NewRouteGuard(mode GuardMode) *RouteGuard {
	return &RouteGuard{mode: mode}
}

// Allow admits authenticated users whose role is one of roles.
func (g *RouteGuard) Allow(roles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())

			// Never evaluate an unresolved session.
			if s.Loading() {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}

			if s.State == session.Unavailable {
				response.ServiceUnavailable(w, "")
				return
			}

			if s.HasRole(roles...) {
				next.ServeHTTP(w, r)
				return
			}

			if g.mode == PageMode {
				response.Redirect(w, r, redirectTarget(s))
				return
			}

			if !s.Authenticated() {
				response.Unauthorized(w, "Authentication required")
				return
			}
			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// Authenticated admits any authenticated user regardless of role.
func (g *RouteGuard) Authenticated() func(http.Handler) http.Handler {
	return g.Allow(entity.AllRoles...)
}

// redirectTarget sends a wrong-role user home instead of to the login page,
// which PathGate would bounce straight back while the cookie is set.
func redirectTarget(s *session.Session) string {
	if s.Authenticated() {
		return s.User.Role.DashboardPath()
	}
	return entity.LoginPath
}
