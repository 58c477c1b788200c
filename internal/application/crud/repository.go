package crud

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/datastore"
	"github.com/khoahotran/portfolio/internal/domain/resource"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/logger"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event describes a successful mutation.
type Event struct {
	Type     string    `json:"type"`
	Resource string    `json:"resource"`
	Table    string    `json:"table"`
	ID       uuid.UUID `json:"id"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Option func(*options)

type options struct {
	now       func() time.Time
	newID     func() uuid.UUID
	publisher Publisher
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(o *options) { o.newID = newID }
}

func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// Repository performs CRUD for one resource type against the backend. It
// does not retry; every failure is returned to the caller.
type Repository[T any] struct {
	store  datastore.Store
	schema resource.Schema[T]
	logger logger.Logger
	tracer trace.Tracer
	options
}

func NewRepository[T any](store datastore.Store, schema resource.Schema[T], log logger.Logger, opts ...Option) *Repository[T] {
	var probe T
	metaOf(&probe)

	r := &Repository[T]{
		store:  store,
		schema: schema,
		logger: log.With(zap.String("resource", schema.Resource)),
		tracer: otel.Tracer("github.com/khoahotran/portfolio/crud"),
		options: options{
			now:   func() time.Time { return time.Now().UTC() },
			newID: uuid.New,
		},
	}
	for _, opt := range opts {
		opt(&r.options)
	}
	return r
}

func (r *Repository[T]) Schema() resource.Schema[T] {
	return r.schema
}

// List returns every record in the schema's default order.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	return r.ListBy(ctx, datastore.Order{Field: r.schema.OrderBy, Ascending: r.schema.Ascending})
}

func (r *Repository[T]) ListBy(ctx context.Context, order datastore.Order) ([]T, error) {
	ctx, span := r.start(ctx, "list")
	defer span.End()

	q := datastore.Query{}
	if order.Field != "" {
		q.Order = &order
	}
	rows, err := r.store.Select(ctx, r.schema.Table, q)
	if err != nil {
		return nil, r.fail(span, fmt.Errorf("list %s: %w", r.schema.Table, err))
	}
	return decodeRows[T](rows)
}

// First returns one arbitrary record, or nil when the table is empty.
func (r *Repository[T]) First(ctx context.Context) (*T, error) {
	ctx, span := r.start(ctx, "first")
	defer span.End()

	rows, err := r.store.Select(ctx, r.schema.Table, datastore.Query{Limit: 1})
	if err != nil {
		return nil, r.fail(span, fmt.Errorf("load %s: %w", r.schema.Resource, err))
	}
	if len(rows) == 0 {
		return nil, nil
	}
	records, err := decodeRows[T](rows)
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	ctx, span := r.start(ctx, "get")
	defer span.End()

	rows, err := r.store.Select(ctx, r.schema.Table, datastore.Query{
		Filters: []datastore.Filter{datastore.ByID(id)},
		Limit:   1,
	})
	if err != nil {
		return nil, r.fail(span, fmt.Errorf("get %s: %w", r.schema.Resource, err))
	}
	if len(rows) == 0 {
		return nil, apperror.NewNotFound(r.schema.Resource, id.String())
	}
	records, err := decodeRows[T](rows)
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

// Create assigns identity and timestamps to the draft and inserts it.
func (r *Repository[T]) Create(ctx context.Context, draft T) (T, error) {
	ctx, span := r.start(ctx, "create")
	defer span.End()

	meta := metaOf(&draft)
	now := r.now()
	meta.ID = r.newID()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	row, err := encodeRow(draft)
	if err != nil {
		return draft, err
	}
	rows, err := r.store.Insert(ctx, r.schema.Table, row)
	if err != nil {
		return draft, r.fail(span, fmt.Errorf("create %s: %w", r.schema.Resource, err))
	}

	created := draft
	if len(rows) > 0 {
		if decoded, err := decodeRows[T](rows[:1]); err == nil {
			created = decoded[0]
		}
	}
	r.publish(ctx, EventCreated, meta.ID, now)
	return created, nil
}

// Update applies only the patched columns and stamps updated_at. Identity
// and creation time cannot be patched.
func (r *Repository[T]) Update(ctx context.Context, id uuid.UUID, patch datastore.Row) error {
	ctx, span := r.start(ctx, "update", attribute.String("record.id", id.String()))
	defer span.End()

	now := r.now()
	p := make(datastore.Row, len(patch)+1)
	for k, v := range patch {
		p[k] = v
	}
	for _, col := range resource.MetaColumns {
		delete(p, col)
	}
	p["updated_at"] = now.Format(time.RFC3339Nano)

	rows, err := r.store.Update(ctx, r.schema.Table, p, datastore.ByID(id))
	if err != nil {
		return r.fail(span, fmt.Errorf("update %s: %w", r.schema.Resource, err))
	}
	if len(rows) == 0 {
		return r.fail(span, apperror.NewRemote("update "+r.schema.Table, apperror.NewNotFound(r.schema.Resource, id.String())))
	}
	r.publish(ctx, EventUpdated, id, now)
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.start(ctx, "delete", attribute.String("record.id", id.String()))
	defer span.End()

	rows, err := r.store.Delete(ctx, r.schema.Table, datastore.ByID(id))
	if err != nil {
		return r.fail(span, fmt.Errorf("delete %s: %w", r.schema.Resource, err))
	}
	if len(rows) == 0 {
		return r.fail(span, apperror.NewRemote("delete "+r.schema.Table, apperror.NewNotFound(r.schema.Resource, id.String())))
	}
	r.publish(ctx, EventDeleted, id, r.now())
	return nil
}

// Patch turns a full record into an update patch of its editable columns.
func (r *Repository[T]) Patch(v T) (datastore.Row, error) {
	row, err := encodeRow(v)
	if err != nil {
		return nil, err
	}
	delete(row, "updated_at")
	for _, col := range resource.MetaColumns {
		delete(row, col)
	}
	return row, nil
}

func (r *Repository[T]) publish(ctx context.Context, typ string, id uuid.UUID, at time.Time) {
	if r.publisher == nil {
		return
	}
	e := Event{Type: typ, Resource: r.schema.Resource, Table: r.schema.Table, ID: id, At: at}
	if err := r.publisher.Publish(ctx, e); err != nil {
		r.logger.Warn("Failed to publish change event", zap.String("event", typ), zap.String("id", id.String()), zap.Error(err))
	}
}

func (r *Repository[T]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.table", r.schema.Table))
	return r.tracer.Start(ctx, r.schema.Resource+"."+op, trace.WithAttributes(attrs...))
}

func (r *Repository[T]) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.logger.Error("Repository call failed", err)
	return err
}

func metaOf[T any](v *T) *resource.Meta {
	e, ok := any(v).(resource.Entity)
	if !ok {
		panic(fmt.Sprintf("crud: %T does not embed resource.Meta", v))
	}
	return e.GetMeta()
}

func encodeRow(v any) (datastore.Row, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperror.NewInternal("failed to encode record", err)
	}
	var row datastore.Row
	if err := json.Unmarshal(b, &row); err != nil {
		return nil, apperror.NewInternal("failed to encode record", err)
	}
	return row, nil
}

func decodeRows[T any](rows []datastore.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return nil, apperror.NewInternal("failed to decode row", err)
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, apperror.NewInternal("failed to decode row", err)
		}
		out = append(out, v)
	}
	return out, nil
}
