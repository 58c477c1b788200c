// Package postgrest talks to a hosted Supabase project: PostgREST for
// tables and GoTrue for password sessions.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/config"
	"github.com/khoahotran/portfolio/internal/datastore"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/logger"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	logger     logger.Logger
}

var _ datastore.Backend = (*Client)(nil)

func NewClient(cfg config.Config, log logger.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.Supabase.URL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperror.NewConfiguration(fmt.Sprintf("SUPABASE_URL %q is not an absolute URL", cfg.Supabase.URL))
	}
	timeout := cfg.Supabase.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(u.String(), "/"),
		anonKey:    cfg.Supabase.AnonKey,
		logger:     log,
	}, nil
}

func (c *Client) Select(ctx context.Context, table string, q datastore.Query) ([]datastore.Row, error) {
	params := url.Values{}
	params.Set("select", "*")
	for _, f := range q.Filters {
		params.Add(f.Column, "eq."+fmt.Sprint(f.Value))
	}
	if q.Order != nil {
		dir := "desc"
		if q.Order.Ascending {
			dir = "asc"
		}
		params.Set("order", q.Order.Field+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", fmt.Sprint(q.Limit))
	}

	var rows []datastore.Row
	if err := c.doRequest(ctx, http.MethodGet, "/rest/v1/"+table, params, nil, &rows); err != nil {
		return nil, apperror.NewRemote("select "+table, err)
	}
	return rows, nil
}

func (c *Client) Insert(ctx context.Context, table string, rows ...datastore.Row) ([]datastore.Row, error) {
	var out []datastore.Row
	if err := c.doRequest(ctx, http.MethodPost, "/rest/v1/"+table, nil, rows, &out); err != nil {
		return nil, apperror.NewRemote("insert "+table, err)
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, table string, patch datastore.Row, filter datastore.Filter) ([]datastore.Row, error) {
	params := url.Values{}
	params.Set(filter.Column, "eq."+fmt.Sprint(filter.Value))

	var out []datastore.Row
	if err := c.doRequest(ctx, http.MethodPatch, "/rest/v1/"+table, params, patch, &out); err != nil {
		return nil, apperror.NewRemote("update "+table, err)
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, table string, filter datastore.Filter) ([]datastore.Row, error) {
	params := url.Values{}
	params.Set(filter.Column, "eq."+fmt.Sprint(filter.Value))

	var out []datastore.Row
	if err := c.doRequest(ctx, http.MethodDelete, "/rest/v1/"+table, params, nil, &out); err != nil {
		return nil, apperror.NewRemote("delete "+table, err)
	}
	return out, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   int64  `json:"expires_at"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*datastore.Session, error) {
	params := url.Values{}
	params.Set("grant_type", "password")
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/v1/token", params, body, &resp); err != nil {
		return nil, apperror.NewRemote("sign in", err)
	}

	sess := &datastore.Session{
		AccessToken: resp.AccessToken,
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
	}
	switch {
	case resp.ExpiresAt > 0:
		sess.ExpiresAt = time.Unix(resp.ExpiresAt, 0).UTC()
	case resp.ExpiresIn > 0:
		sess.ExpiresAt = time.Now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return sess, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx = datastore.WithAccessToken(ctx, accessToken)
	if err := c.doRequest(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil); err != nil {
		return apperror.NewRemote("sign out", err)
	}
	return nil
}

// errorResponse covers both PostgREST and GoTrue error bodies.
type errorResponse struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Code             any    `json:"code"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body, result any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	bearer := datastore.AccessToken(ctx)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("Data service rejected request",
			zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return statusError(resp.StatusCode, path, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func statusError(status int, path string, body []byte) error {
	var errResp errorResponse
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.text() != "" {
		msg = errResp.text()
	}
	detail := fmt.Sprintf("%s (%d)", msg, status)

	switch {
	case status == http.StatusBadRequest && strings.HasPrefix(path, "/auth/"):
		return apperror.NewUnauthorized(detail, nil)
	case status == http.StatusUnauthorized:
		return apperror.NewUnauthorized(detail, nil)
	case status == http.StatusForbidden:
		return apperror.NewPermissionDenied(detail)
	case status == http.StatusNotFound:
		return apperror.NewNotFound(path, msg)
	case status == http.StatusConflict:
		return apperror.NewAppError(apperror.ErrConflict, "Conflicting record", detail, nil)
	default:
		return errors.New("server error " + detail)
	}
}
