package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/datastore"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/auth"
	"github.com/khoahotran/portfolio/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// postgresStore serves every resource table generically. Rows travel as
// jsonb so the table layout stays with the migrations.
type postgresStore struct {
	db     *pgxpool.Pool
	users  UserRepository
	jwt    *auth.JWTService
	logger logger.Logger
}

var _ datastore.Backend = (*postgresStore)(nil)

func NewPostgresStore(db *pgxpool.Pool, jwtSvc *auth.JWTService, log logger.Logger) datastore.Backend {
	return &postgresStore{
		db:     db,
		users:  NewPostgresUserRepo(db),
		jwt:    jwtSvc,
		logger: log,
	}
}

func (s *postgresStore) Select(ctx context.Context, table string, q datastore.Query) ([]datastore.Row, error) {
	op := "select " + table
	if err := checkIdentifiers(table); err != nil {
		return nil, apperror.NewRemote(op, err)
	}

	builder := psql.Select("to_jsonb(t)").From(table + " t")
	for _, f := range q.Filters {
		if err := checkIdentifiers(f.Column); err != nil {
			return nil, apperror.NewRemote(op, err)
		}
		builder = builder.Where(sq.Eq{"t." + f.Column: f.Value})
	}
	if q.Order != nil {
		if err := checkIdentifiers(q.Order.Field); err != nil {
			return nil, apperror.NewRemote(op, err)
		}
		dir := " DESC"
		if q.Order.Ascending {
			dir = " ASC"
		}
		builder = builder.OrderBy("t." + q.Order.Field + dir)
	}
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewRemote(op, apperror.NewInternal("failed to build select query", err))
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewRemote(op, translate(err))
	}
	return scanRows(rows, op)
}

func (s *postgresStore) Insert(ctx context.Context, table string, rows ...datastore.Row) ([]datastore.Row, error) {
	op := "insert " + table
	if len(rows) == 0 {
		return []datastore.Row{}, nil
	}
	if err := s.authorize(ctx); err != nil {
		return nil, apperror.NewRemote(op, err)
	}

	columns := sortedKeys(rows[0])
	if err := checkIdentifiers(append([]string{table}, columns...)...); err != nil {
		return nil, apperror.NewRemote(op, err)
	}

	builder := psql.Insert(table).Columns(columns...).Suffix(returning(table))
	for _, row := range rows {
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = normalize(row[col])
		}
		builder = builder.Values(values...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewRemote(op, apperror.NewInternal("failed to build insert query", err))
	}
	result, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewRemote(op, translate(err))
	}
	return scanRows(result, op)
}

func (s *postgresStore) Update(ctx context.Context, table string, patch datastore.Row, filter datastore.Filter) ([]datastore.Row, error) {
	op := "update " + table
	if err := s.authorize(ctx); err != nil {
		return nil, apperror.NewRemote(op, err)
	}
	if err := checkIdentifiers(append([]string{table, filter.Column}, sortedKeys(patch)...)...); err != nil {
		return nil, apperror.NewRemote(op, err)
	}

	set := make(map[string]any, len(patch))
	for k, v := range patch {
		set[k] = normalize(v)
	}
	builder := psql.Update(table).
		SetMap(set).
		Where(sq.Eq{filter.Column: filter.Value}).
		Suffix(returning(table))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewRemote(op, apperror.NewInternal("failed to build update query", err))
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewRemote(op, translate(err))
	}
	return scanRows(rows, op)
}

func (s *postgresStore) Delete(ctx context.Context, table string, filter datastore.Filter) ([]datastore.Row, error) {
	op := "delete " + table
	if err := s.authorize(ctx); err != nil {
		return nil, apperror.NewRemote(op, err)
	}
	if err := checkIdentifiers(table, filter.Column); err != nil {
		return nil, apperror.NewRemote(op, err)
	}

	query, args, err := psql.Delete(table).
		Where(sq.Eq{filter.Column: filter.Value}).
		Suffix(returning(table)).
		ToSql()
	if err != nil {
		return nil, apperror.NewRemote(op, apperror.NewInternal("failed to build delete query", err))
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewRemote(op, translate(err))
	}
	return scanRows(rows, op)
}

// authorize plays the role of row level security: only a signed-in user may
// write.
func (s *postgresStore) authorize(ctx context.Context) error {
	token := datastore.AccessToken(ctx)
	if token == "" {
		return apperror.NewUnauthorized("write requires a signed-in session", nil)
	}
	if _, err := s.jwt.ValidateToken(token); err != nil {
		return apperror.NewUnauthorized("session token rejected", err)
	}
	return nil
}

func (s *postgresStore) SignIn(ctx context.Context, email, password string) (*datastore.Session, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewRemote("sign in", apperror.NewUnauthorized("invalid email or password", nil))
		}
		return nil, apperror.NewRemote("sign in", err)
	}
	if !auth.CheckPasswordHash(password, u.PasswordHash) {
		s.logger.Info("Password mismatch", zap.String("email", u.Email))
		return nil, apperror.NewRemote("sign in", apperror.NewUnauthorized("invalid email or password", nil))
	}

	token, expiresAt, err := s.jwt.GenerateToken(u.ID, u.Email)
	if err != nil {
		return nil, apperror.NewInternal("failed to issue token", err)
	}
	return &datastore.Session{
		AccessToken: token,
		UserID:      u.ID.String(),
		Email:       u.Email,
		ExpiresAt:   expiresAt,
	}, nil
}

// SignOut has nothing to revoke: tokens are stateless and the session gate
// forgets them.
func (s *postgresStore) SignOut(context.Context, string) error {
	return nil
}

func returning(table string) string {
	return fmt.Sprintf("RETURNING to_jsonb(%s.*)", table)
}

func scanRows(rows pgx.Rows, op string) ([]datastore.Row, error) {
	defer rows.Close()
	out := make([]datastore.Row, 0)

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, apperror.NewRemote(op, apperror.NewInternal("failed to scan row", err))
		}
		var row datastore.Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, apperror.NewRemote(op, apperror.NewInternal("failed to decode row", err))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewRemote(op, translate(err))
	}
	return out, nil
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperror.NewAppError(apperror.ErrConflict, "Conflicting record", pgErr.Detail, err)
		case "23502", "23514", "22P02", "22007", "22008":
			return apperror.NewInvalidInput(pgErr.Message, err)
		}
	}
	return err
}

func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !identifier.MatchString(n) {
			return apperror.NewInvalidInput(fmt.Sprintf("invalid identifier %q", n), nil)
		}
	}
	return nil
}

func sortedKeys(row datastore.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalize converts JSON-decoded lists into []string so pgx can bind them
// to text[] columns. Scalars are bound as is; strings reach date, uuid and
// timestamptz columns in text format.
func normalize(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
