// Package session owns the answer to "who is logged in right now" for a
// request. The Controller rebuilds it from the session cookie once per
// request and Provide hands it to every downstream handler.
package session

import (
	"context"

	"mentalwell/internal/domain/entity"
	"mentalwell/pkg/jwt"
)

type State int

const (
	Initializing State = iota
	Unauthenticated
	Authenticated
	// Unavailable means the store did not answer in time. The visitor may
	// still hold a valid session.
	Unavailable
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}

// Reason explains how Initialize reached its state. It is logged and
// never shown to the visitor.
type Reason string

const (
	ReasonOK             Reason = "ok"
	ReasonNoSession      Reason = "no_session"
	ReasonInvalidPointer Reason = "invalid_pointer"
	ReasonRevoked        Reason = "revoked"
	ReasonNotFound       Reason = "not_found"
	ReasonInactive       Reason = "inactive"
	ReasonStoreError     Reason = "store_error"
	ReasonTimeout        Reason = "timeout"
	ReasonLogin          Reason = "login"
	ReasonLogout         Reason = "logout"
)

type Session struct {
	State  State
	User   *entity.User
	Reason Reason

	claims *jwt.Claims
}

// Loading is true until Initialize has resolved the session.
func (s *Session) Loading() bool {
	return s == nil || s.State == Initializing
}

func (s *Session) Authenticated() bool {
	return s != nil && s.State == Authenticated && s.User != nil
}

// HasRole reports whether the session is authenticated with one of roles.
func (s *Session) HasRole(roles ...entity.Role) bool {
	if !s.Authenticated() {
		return false
	}
	for _, role := range roles {
		if s.User.Role == role {
			return true
		}
	}
	return false
}

func (s *Session) authenticate(user *entity.User, claims *jwt.Claims, reason Reason) {
	s.State = Authenticated
	s.User = user
	s.Reason = reason
	s.claims = claims
}

func (s *Session) reset(reason Reason) {
	s.State = Unauthenticated
	s.User = nil
	s.Reason = reason
	s.claims = nil
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request session, or an Initializing session when
// no provider ran for this request.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok && s != nil {
		return s
	}
	return &Session{State: Initializing}
}
