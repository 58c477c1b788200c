package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio/internal/datastore"
	"github.com/khoahotran/portfolio/pkg/apperror"
)

func TestSelectOrdersByTimestamp(t *testing.T) {
	ctx := context.Background()
	s := New(0)

	_, err := s.Insert(ctx, "projects",
		datastore.Row{"id": "a", "created_at": "2024-01-01T10:00:00Z"},
		datastore.Row{"id": "b", "created_at": "2024-01-01T10:00:00.5Z"},
		datastore.Row{"id": "c", "created_at": "2023-12-31T23:59:59Z"},
	)
	require.NoError(t, err)

	rows, err := s.Select(ctx, "projects", datastore.Query{Order: &datastore.Order{Field: "created_at"}})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"b", "a", "c"}, []any{rows[0]["id"], rows[1]["id"], rows[2]["id"]})

	rows, err = s.Select(ctx, "projects", datastore.Query{Limit: 1, Order: &datastore.Order{Field: "created_at", Ascending: true}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0]["id"])
}

func TestSelectReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	_, err := s.Insert(ctx, "projects", datastore.Row{"id": "a", "technologies": []any{"Go"}})
	require.NoError(t, err)

	rows, err := s.Select(ctx, "projects", datastore.Query{})
	require.NoError(t, err)
	rows[0]["technologies"].([]any)[0] = "Rust"

	rows, err = s.Select(ctx, "projects", datastore.Query{})
	require.NoError(t, err)
	assert.Equal(t, []any{"Go"}, rows[0]["technologies"])
}

func TestInsertDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	_, err := s.Insert(ctx, "projects", datastore.Row{"id": "a"})
	require.NoError(t, err)

	_, err = s.Insert(ctx, "projects", datastore.Row{"id": "a"})
	assert.ErrorIs(t, err, apperror.ErrRemote)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestUpdateAndDeleteReportAffectedRows(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	_, err := s.Insert(ctx, "experiences", datastore.Row{"id": "a", "company": "Acme"})
	require.NoError(t, err)

	rows, err := s.Update(ctx, "experiences", datastore.Row{"company": "Initech"}, datastore.Eq("id", "a"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Initech", rows[0]["company"])

	rows, err = s.Update(ctx, "experiences", datastore.Row{"company": "x"}, datastore.Eq("id", "missing"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.Delete(ctx, "experiences", datastore.Eq("id", "a"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = s.Delete(ctx, "experiences", datastore.Eq("id", "a"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	require.NoError(t, s.AddUser("Admin@Example.com", "secret"))

	_, err := s.SignIn(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	sess, err := s.SignIn(ctx, " admin@example.com ", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)
	assert.Equal(t, "admin@example.com", sess.Email)
	assert.False(t, sess.ExpiresAt.IsZero())

	assert.NoError(t, s.SignOut(ctx, sess.AccessToken))
}
