package crud

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio/internal/application/notice"
	"github.com/khoahotran/portfolio/internal/domain/resource"
	"github.com/khoahotran/portfolio/pkg/apperror"
)

var (
	ErrBusy   = errors.New("a submission is already in progress")
	ErrClosed = errors.New("form is closed")
)

type FormMode int

const (
	ModeCreate FormMode = iota
	ModeEdit
)

type FormState int

const (
	FormEditing FormState = iota
	FormSubmitting
	FormClosed
)

// Form edits one draft. It creates a record when opened without one and
// updates the record otherwise.
type Form[T any] struct {
	schema resource.Schema[T]
	mode   FormMode
	id     uuid.UUID

	mu    sync.Mutex
	state FormState
	draft T
}

func OpenForm[T any](schema resource.Schema[T], existing *T) *Form[T] {
	f := &Form[T]{schema: schema, state: FormEditing}
	if existing == nil {
		f.mode = ModeCreate
		f.draft = schema.New()
		return f
	}
	f.mode = ModeEdit
	f.draft = *existing
	f.id = metaOf(existing).ID
	return f
}

func (f *Form[T]) Mode() FormMode { return f.mode }

// ID is the record being edited, uuid.Nil in create mode.
func (f *Form[T]) ID() uuid.UUID { return f.id }

func (f *Form[T]) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft gives mutable access to the working copy.
func (f *Form[T]) Draft() *T { return &f.draft }

func (f *Form[T]) Validate() error {
	if missing := f.schema.Missing(f.draft); len(missing) > 0 {
		return apperror.NewMissingFields(missing...)
	}
	return nil
}

// Submit validates locally and, when the draft is complete, creates or
// updates the record. A failed call leaves the draft intact for another try.
func (f *Form[T]) Submit(ctx context.Context, repo *Repository[T]) (notice.Notice, error) {
	f.mu.Lock()
	switch f.state {
	case FormSubmitting:
		f.mu.Unlock()
		return notice.Notice{}, ErrBusy
	case FormClosed:
		f.mu.Unlock()
		return notice.Notice{}, ErrClosed
	}
	if err := f.Validate(); err != nil {
		f.mu.Unlock()
		return notice.Failure("Missing information", err.Error()), err
	}
	f.state = FormSubmitting
	draft := f.draft
	f.mu.Unlock()

	err := f.save(ctx, repo, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = FormEditing
		return notice.Failure("Error", "Could not save the "+f.schema.Resource+"."), err
	}
	f.state = FormClosed
	if f.mode == ModeCreate {
		return notice.Success(f.schema.Label, capitalize(f.schema.Resource)+" created."), nil
	}
	return notice.Success(f.schema.Label, capitalize(f.schema.Resource)+" updated."), nil
}

func (f *Form[T]) save(ctx context.Context, repo *Repository[T], draft T) error {
	if f.mode == ModeCreate {
		_, err := repo.Create(ctx, draft)
		return err
	}
	patch, err := repo.Patch(draft)
	if err != nil {
		return err
	}
	return repo.Update(ctx, f.id, patch)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
