package middleware

import (
	"net/http"
	"strings"

	"mentalwell/internal/domain/entity"
	"mentalwell/pkg/response"
)

var (
	protectedPrefixes = []string{
		entity.PatientDashboardPath,
		entity.AdminDashboardPath,
		entity.PsychologistDashboardPath,
	}
	authPages = []string{entity.LoginPath, entity.RegisterPath}
)

// PathGate is the coarse first line of protection. It only looks at whether
// the session cookie is present; RouteGuard makes the real decision.
type PathGate struct {
	cookieName string
}

func NewPathGate(cookieName string) *PathGate {
	return &PathGate{cookieName: cookieName}
}

func (g *PathGate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasCookie := false
		if cookie, err := r.Cookie(g.cookieName); err == nil && cookie.Value != "" {
			hasCookie = true
		}

		path := r.URL.Path
		if !hasCookie && matchesAny(path, protectedPrefixes) {
			response.Redirect(w, r, entity.LoginPath)
			return
		}
		if hasCookie && matchesAny(path, authPages) && r.Method == http.MethodGet {
			response.Redirect(w, r, entity.PatientDashboardPath)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
