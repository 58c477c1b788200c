package postgrest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio/internal/config"
	"github.com/khoahotran/portfolio/internal/datastore"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var cfg config.Config
	cfg.Supabase.URL = srv.URL + "/"
	cfg.Supabase.AnonKey = "anon"
	c, err := NewClient(cfg, logger.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	var cfg config.Config
	cfg.Supabase.URL = "not a url"
	_, err := NewClient(cfg, logger.NewNop())
	assert.ErrorIs(t, err, apperror.ErrConfiguration)
}

func TestSelectBuildsPostgrestQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/projects", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "*", q.Get("select"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		assert.Equal(t, "eq.42", q.Get("id"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Prefer"))

		_, _ = io.WriteString(w, `[{"id":"42","title":"Portfolio","technologies":["Go"]}]`)
	})

	rows, err := c.Select(context.Background(), "projects", datastore.Query{
		Filters: []datastore.Filter{datastore.Eq("id", 42)},
		Order:   &datastore.Order{Field: "created_at"},
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Portfolio", rows[0]["title"])
	assert.Equal(t, []any{"Go"}, rows[0]["technologies"])
}

func TestWritesUseSessionTokenAndRepresentation(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		switch r.Method {
		case http.MethodPost:
			var rows []map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
			require.Len(t, rows, 1)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(rows)
		case http.MethodPatch:
			assert.Equal(t, "eq.a", r.URL.Query().Get("id"))
			_, _ = io.WriteString(w, `[]`)
		case http.MethodDelete:
			assert.Equal(t, "eq.a", r.URL.Query().Get("id"))
			_, _ = io.WriteString(w, `[{"id":"a"}]`)
		}
	})
	ctx := datastore.WithAccessToken(context.Background(), "user-token")

	rows, err := c.Insert(ctx, "projects", datastore.Row{"id": "a", "title": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", rows[0]["title"])

	rows, err = c.Update(ctx, "projects", datastore.Row{"title": "y"}, datastore.Eq("id", "a"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = c.Delete(ctx, "projects", datastore.Eq("id", "a"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	assert.Equal(t, []string{http.MethodPost, http.MethodPatch, http.MethodDelete}, seen)
}

func TestErrorStatusesAreRemoteErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"42501","message":"new row violates row-level security policy"}`)
	})

	_, err := c.Insert(context.Background(), "projects", datastore.Row{"id": "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrRemote)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, err.Error(), "row-level security")
}

func TestServerErrorIsRemoteOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `oops`)
	})

	_, err := c.Select(context.Background(), "projects", datastore.Query{})
	assert.ErrorIs(t, err, apperror.ErrRemote)
	assert.NotErrorIs(t, err, apperror.ErrNotFound)
	assert.Contains(t, err.Error(), "oops")
}

func TestSignIn(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "s3cret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "jwt",
			"expires_at":   expires.Unix(),
			"user":         map[string]string{"id": "u1", "email": body["email"]},
		})
	})

	sess, err := c.SignIn(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", sess.AccessToken)
	assert.Equal(t, "u1", sess.UserID)
	assert.True(t, expires.Equal(sess.ExpiresAt))

	_, err = c.SignIn(context.Background(), "admin@example.com", "nope")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestSignOutSendsToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.SignOut(context.Background(), "jwt"))
}
