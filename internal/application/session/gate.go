// Package session decides whether a request belongs to the signed-in admin.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/datastore"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/logger"
)

type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

// Store keeps sessions by opaque id. Load returns nil, nil for an unknown id.
type Store interface {
	Save(ctx context.Context, id string, s datastore.Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*datastore.Session, error)
	Delete(ctx context.Context, id string) error
}

// ErrInvalidCredentials is returned when the backend rejects the login.
var ErrInvalidCredentials = errors.New("email or password is incorrect")

const defaultTTL = time.Hour

type Gate struct {
	auth   datastore.Authenticator
	store  Store
	logger logger.Logger
	now    func() time.Time
}

func NewGate(auth datastore.Authenticator, store Store, log logger.Logger) *Gate {
	return &Gate{
		auth:   auth,
		store:  store,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Check resolves a session id. Missing, unknown and expired ids are all
// unauthenticated; a store failure is logged and treated the same way.
func (g *Gate) Check(ctx context.Context, id string) (State, *datastore.Session) {
	if id == "" {
		return StateUnauthenticated, nil
	}
	sess, err := g.store.Load(ctx, id)
	if err != nil {
		g.logger.Warn("Failed to load session", zap.Error(err))
		return StateUnauthenticated, nil
	}
	if sess == nil {
		return StateUnauthenticated, nil
	}
	if sess.Expired(g.now()) {
		if err := g.store.Delete(ctx, id); err != nil {
			g.logger.Warn("Failed to drop expired session", zap.Error(err))
		}
		return StateUnauthenticated, nil
	}
	return StateAuthenticated, sess
}

// Login signs in against the backend and stores the session. It returns the
// id to hand to the browser.
func (g *Gate) Login(ctx context.Context, email, password string) (string, *datastore.Session, error) {
	ctx, span := otel.Tracer("github.com/khoahotran/portfolio/session").Start(ctx, "session.login")
	defer span.End()

	email = strings.TrimSpace(email)
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return "", nil, apperror.NewMissingFields(missing...)
	}

	sess, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			g.logger.Info("Login rejected", zap.String("email", email))
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return "", nil, fmt.Errorf("sign in: %w", err)
	}

	ttl := defaultTTL
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(g.now())
	}
	if ttl <= 0 {
		return "", nil, apperror.NewUnauthorized("session expired on arrival", nil)
	}

	id := uuid.NewString()
	if err := g.store.Save(ctx, id, *sess, ttl); err != nil {
		return "", nil, apperror.NewInternal("failed to store session", err)
	}
	g.logger.Info("Admin signed in", zap.String("email", sess.Email))
	return id, sess, nil
}

// Logout ends the backend session and forgets it locally. Backend failures
// are logged only; the local session is removed regardless.
func (g *Gate) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	sess, err := g.store.Load(ctx, id)
	if err != nil {
		g.logger.Warn("Failed to load session on logout", zap.Error(err))
	}
	if sess != nil {
		if err := g.auth.SignOut(ctx, sess.AccessToken); err != nil {
			g.logger.Warn("Backend sign out failed", zap.Error(err))
		}
	}
	if err := g.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
