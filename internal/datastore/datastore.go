// Package datastore is the contract every backend driver implements: a
// table-oriented store plus password sessions. Drivers report failures as
// apperror.ErrRemote wrapping the cause.
package datastore

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Row is one record as the backend sees it: JSON-compatible column values
// keyed by column name.
type Row map[string]any

type Order struct {
	Field     string
	Ascending bool
}

// Filter matches rows whose column equals the value.
type Filter struct {
	Column string
	Value  any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

func ByID(id uuid.UUID) Filter {
	return Eq("id", id.String())
}

type Query struct {
	Filters []Filter
	Order   *Order
	// Limit of zero means no limit.
	Limit int
}

// Store methods that modify rows return the affected rows, so an empty
// result means nothing matched.
type Store interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, rows ...Row) ([]Row, error)
	Update(ctx context.Context, table string, patch Row, filter Filter) ([]Row, error)
	Delete(ctx context.Context, table string, filter Filter) ([]Row, error)
}

type Session struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Backend is what a configured driver provides.
type Backend interface {
	Store
	Authenticator
}

type accessTokenKey struct{}

// WithAccessToken attaches the signed-in user's token so drivers can act on
// their behalf instead of anonymously.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}
