package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"mentalwell/config"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"
	"mentalwell/internal/service"
	"mentalwell/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

type Controller struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	pointers *jwt.JWTService
	audit    service.AuditService
	config   config.SessionConfig
	log      *logrus.Logger
}

func NewController(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	pointers *jwt.JWTService,
	audit service.AuditService,
	cfg config.SessionConfig,
	log *logrus.Logger,
) *Controller {
	return &Controller{
		users:    users,
		sessions: sessions,
		pointers: pointers,
		audit:    audit,
		config:   cfg,
		log:      log,
	}
}

// Initialize rebuilds the session from the request cookie. It never returns
// an Initializing session. Any doubt about the pointer ends in
// Unauthenticated with the cookie cleared, except a store timeout, which
// ends in Unavailable and leaves the cookie alone.
func (c *Controller) Initialize(ctx context.Context, w http.ResponseWriter, r *http.Request) *Session {
	s := &Session{State: Initializing}

	cookie, err := r.Cookie(c.config.CookieName)
	if err != nil || cookie.Value == "" {
		s.reset(ReasonNoSession)
		return s
	}

	claims, err := c.pointers.ValidateSessionPointer(cookie.Value)
	if err != nil {
		c.fail(w, s, ReasonInvalidPointer, err)
		return s
	}

	storeCtx, cancel := context.WithTimeout(ctx, c.config.StoreTimeout)
	defer cancel()

	ok, err := c.sessions.Exists(storeCtx, claims.UserID, claims.TokenID)
	if err != nil {
		c.storeFailure(w, s, claims.UserID, err)
		return s
	}
	if !ok {
		c.fail(w, s, ReasonRevoked, nil)
		return s
	}

	user, err := c.users.FindByID(storeCtx, claims.UserID)
	if err != nil {
		c.storeFailure(w, s, claims.UserID, err)
		return s
	}
	if user == nil {
		c.fail(w, s, ReasonNotFound, nil)
		return s
	}
	if !user.Active() {
		c.fail(w, s, ReasonInactive, nil)
		return s
	}

	s.authenticate(user, claims, ReasonOK)
	c.log.WithFields(logrus.Fields{"reason": ReasonOK, "user_id": user.ID}).Debug("Session initialized")
	return s
}

// Login authenticates an active user and writes the session cookie. It does
// not reveal whether the email exists. When ctx carries a request session,
// that session becomes Authenticated.
func (c *Controller) Login(ctx context.Context, w http.ResponseWriter, email, password string) (*entity.User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, c.config.StoreTimeout)
	defer cancel()

	user, err := c.users.FindByEmail(storeCtx, email, true)
	if err != nil {
		if isTimeout(err) {
			c.log.Warnf("Failed to find user by email: timeout: %+v", err)
			return nil, ErrServiceUnavailable
		}
		c.log.Warnf("Failed to find user by email: %+v", err)
		return nil, ErrInvalidCredentials
	}

	if user == nil {
		// Spend the same bcrypt work as a real comparison.
		bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		c.audit.LogEvent(ctx, nil, entity.AuditActionUserLoginFailed, entity.JSON{"email": email})
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		c.audit.LogEvent(ctx, &user.ID, entity.AuditActionUserLoginFailed, entity.JSON{"email": email})
		return nil, ErrInvalidCredentials
	}

	pointer, tokenID, err := c.pointers.GenerateSessionPointer(user.ID)
	if err != nil {
		c.log.Warnf("Failed to generate session pointer: %+v", err)
		return nil, err
	}

	if err := c.sessions.Save(storeCtx, user.ID, tokenID, c.pointers.GetSessionTTL()); err != nil {
		c.log.Warnf("Failed to store session pointer: %+v", err)
		return nil, ErrServiceUnavailable
	}

	c.setCookie(w, pointer)

	claims := &jwt.Claims{UserID: user.ID, TokenID: tokenID}
	if s, ok := ctx.Value(contextKey{}).(*Session); ok && s != nil {
		s.authenticate(user, claims, ReasonLogin)
	}

	c.audit.LogEvent(ctx, &user.ID, entity.AuditActionUserLogin, nil)
	c.log.WithFields(logrus.Fields{"reason": ReasonLogin, "user_id": user.ID}).Info("User logged in")
	return user, nil
}

// Logout clears the request session and the cookie. Calling it again is a
// no-op beyond re-clearing the cookie. The credential store is not touched.
func (c *Controller) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	s := FromContext(ctx)

	claims := s.claims
	if claims == nil {
		if cookie, err := r.Cookie(c.config.CookieName); err == nil && cookie.Value != "" {
			claims, _ = c.pointers.ValidateSessionPointer(cookie.Value)
		}
	}

	if claims != nil {
		storeCtx, cancel := context.WithTimeout(ctx, c.config.StoreTimeout)
		defer cancel()
		if err := c.sessions.Delete(storeCtx, claims.UserID, claims.TokenID); err != nil {
			c.log.Warnf("Failed to delete session pointer: %+v", err)
		}
		c.audit.LogEvent(ctx, &claims.UserID, entity.AuditActionUserLogout, nil)
	}

	s.reset(ReasonLogout)
	c.clearCookie(w)
}

// RevokeUser drops every session pointer issued to the user.
func (c *Controller) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	storeCtx, cancel := context.WithTimeout(ctx, c.config.StoreTimeout)
	defer cancel()

	if err := c.sessions.DeleteByUserID(storeCtx, userID); err != nil {
		c.log.Warnf("Failed to revoke sessions of user %s: %+v", userID, err)
		return err
	}
	return nil
}

// Provide resolves the session once per request before any handler or guard
// runs.
func (c *Controller) Provide(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := c.Initialize(r.Context(), w, r)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

func (c *Controller) fail(w http.ResponseWriter, s *Session, reason Reason, err error) {
	entry := c.log.WithField("reason", reason)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Info("Session discarded")

	s.reset(reason)
	c.clearCookie(w)
}

func (c *Controller) storeFailure(w http.ResponseWriter, s *Session, userID uuid.UUID, err error) {
	if isTimeout(err) {
		c.log.WithFields(logrus.Fields{"reason": ReasonTimeout, "user_id": userID}).Warnf("Session store timed out: %+v", err)
		s.State = Unavailable
		s.User = nil
		s.Reason = ReasonTimeout
		return
	}

	c.log.WithFields(logrus.Fields{"reason": ReasonStoreError, "user_id": userID}).Warnf("Failed to load session: %+v", err)
	s.reset(ReasonStoreError)
	c.clearCookie(w)
}

func (c *Controller) setCookie(w http.ResponseWriter, value string) {
	ttl := c.pointers.GetSessionTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     c.config.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		Secure:   c.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Controller) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   c.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

func dummyHash() []byte {
	dummyOnce.Do(func() {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("mentalwell-dummy-password"), bcrypt.DefaultCost)
	})
	return dummy
}
