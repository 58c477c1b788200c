package crud

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/application/notice"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/logger"
)

var ErrNotConfirmed = errors.New("deletion was not confirmed")

type ViewState int

const (
	ViewLoading ViewState = iota
	ViewLoaded
	ViewDegraded
)

// ListView is the admin tab of one resource type. A failed load keeps the
// previous records and marks the view degraded instead of failing.
type ListView[T any] struct {
	repo    *Repository[T]
	logger  logger.Logger
	state   ViewState
	records []T
	err     error
}

func NewListView[T any](repo *Repository[T], log logger.Logger) *ListView[T] {
	return &ListView[T]{repo: repo, logger: log, state: ViewLoading}
}

func (v *ListView[T]) Load(ctx context.Context) {
	records, err := v.repo.List(ctx)
	if err != nil {
		v.logger.Warn("Failed to load records", zap.String("resource", v.repo.schema.Resource), zap.Error(err))
		v.state = ViewDegraded
		v.err = err
		return
	}
	v.records = records
	v.state = ViewLoaded
	v.err = nil
}

func (v *ListView[T]) State() ViewState { return v.state }
func (v *ListView[T]) Records() []T     { return v.records }

// Err is the cause of the last failed load.
func (v *ListView[T]) Err() error { return v.err }

// Delete removes a record after the admin confirmed it. The local list drops
// the record without refetching.
func (v *ListView[T]) Delete(ctx context.Context, id uuid.UUID, confirmed bool) (notice.Notice, error) {
	if !confirmed {
		return notice.Notice{}, ErrNotConfirmed
	}
	label := v.repo.schema.Label
	if err := v.repo.Delete(ctx, id); err != nil {
		return notice.Failure("Error", "Could not delete the "+v.repo.schema.Resource+"."), err
	}

	kept := v.records[:0:0]
	for i := range v.records {
		if metaOf(&v.records[i]).ID != id {
			kept = append(kept, v.records[i])
		}
	}
	v.records = kept
	return notice.Success(label, capitalize(v.repo.schema.Resource)+" deleted."), nil
}

// Edit opens a form pre-populated with a copy of the record.
func (v *ListView[T]) Edit(id uuid.UUID) (*Form[T], error) {
	for i := range v.records {
		if metaOf(&v.records[i]).ID == id {
			rec := v.records[i]
			return OpenForm(v.repo.schema, &rec), nil
		}
	}
	return nil, apperror.NewNotFound(v.repo.schema.Resource, id.String())
}

func (v *ListView[T]) New() *Form[T] {
	return OpenForm(v.repo.schema, nil)
}

// FormClosed refetches after the dialog closes, whether it saved or not.
func (v *ListView[T]) FormClosed(ctx context.Context) {
	v.Load(ctx)
}
