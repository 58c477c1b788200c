// Package memstore is an in-process backend for local development and tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio/internal/datastore"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/auth"
)

type account struct {
	id           uuid.UUID
	passwordHash string
}

type Store struct {
	mu       sync.RWMutex
	tables   map[string][]datastore.Row
	accounts map[string]account
	sessions map[string]datastore.Session
	lifespan time.Duration
	now      func() time.Time
}

var _ datastore.Backend = (*Store)(nil)

func New(lifespan time.Duration) *Store {
	if lifespan <= 0 {
		lifespan = time.Hour
	}
	return &Store{
		tables:   make(map[string][]datastore.Row),
		accounts: make(map[string]account),
		sessions: make(map[string]datastore.Session),
		lifespan: lifespan,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddUser registers an account that SignIn accepts.
func (s *Store) AddUser(email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(strings.TrimSpace(email))] = account{id: uuid.New(), passwordHash: hash}
	return nil
}

func (s *Store) Select(_ context.Context, table string, q datastore.Query) ([]datastore.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]datastore.Row, 0)
	for _, row := range s.tables[table] {
		if matchesAll(row, q.Filters) {
			out = append(out, cloneRow(row))
		}
	}
	if q.Order != nil {
		field, asc := q.Order.Field, q.Order.Ascending
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i][field], out[j][field])
			if asc {
				return c < 0
			}
			return c > 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, table string, rows ...datastore.Row) ([]datastore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.tables[table]
	for _, row := range rows {
		id := fmt.Sprint(row["id"])
		for _, e := range existing {
			if fmt.Sprint(e["id"]) == id {
				return nil, apperror.NewRemote("insert "+table, apperror.NewConflict(table, "id", id))
			}
		}
	}

	out := make([]datastore.Row, 0, len(rows))
	for _, row := range rows {
		stored := cloneRow(row)
		existing = append(existing, stored)
		out = append(out, cloneRow(stored))
	}
	s.tables[table] = existing
	return out, nil
}

func (s *Store) Update(_ context.Context, table string, patch datastore.Row, filter datastore.Filter) ([]datastore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]datastore.Row, 0)
	for _, row := range s.tables[table] {
		if !matches(row, filter) {
			continue
		}
		for k, v := range cloneRow(patch) {
			row[k] = v
		}
		out = append(out, cloneRow(row))
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, table string, filter datastore.Filter) ([]datastore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]datastore.Row, 0, len(s.tables[table]))
	out := make([]datastore.Row, 0)
	for _, row := range s.tables[table] {
		if matches(row, filter) {
			out = append(out, row)
			continue
		}
		kept = append(kept, row)
	}
	s.tables[table] = kept
	return out, nil
}

func (s *Store) SignIn(_ context.Context, email, password string) (*datastore.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[email]
	if !ok || !auth.CheckPasswordHash(password, acc.passwordHash) {
		return nil, apperror.NewRemote("sign in", apperror.NewUnauthorized("invalid email or password", nil))
	}
	sess := datastore.Session{
		AccessToken: uuid.NewString(),
		UserID:      acc.id.String(),
		Email:       email,
		ExpiresAt:   s.now().Add(s.lifespan),
	}
	s.sessions[sess.AccessToken] = sess
	return &sess, nil
}

func (s *Store) SignOut(_ context.Context, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, accessToken)
	return nil
}

func matchesAll(row datastore.Row, filters []datastore.Filter) bool {
	for _, f := range filters {
		if !matches(row, f) {
			return false
		}
	}
	return true
}

func matches(row datastore.Row, f datastore.Filter) bool {
	v, ok := row[f.Column]
	return ok && fmt.Sprint(v) == fmt.Sprint(f.Value)
}

// compareValues orders timestamps chronologically and everything else
// lexically. Nil sorts after every value, like NULL in Postgres.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	if at, ok := parseTime(as); ok {
		if bt, ok := parseTime(bs); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(as, bs)
}

func parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func cloneRow(row datastore.Row) datastore.Row {
	out := make(datastore.Row, len(row))
	for k, v := range row {
		if list, ok := v.([]any); ok {
			v = append([]any(nil), list...)
		}
		out[k] = v
	}
	return out
}
