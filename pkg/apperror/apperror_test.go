package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteErrorMatchesCause(t *testing.T) {
	err := NewRemote("delete projects", NewNotFound("project", "42"))

	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(err))
	assert.Equal(t, http.StatusBadGateway, ToHTTPStatus(NewRemote("select projects", errors.New("dial tcp: refused"))))
}

func TestValidationError(t *testing.T) {
	err := NewMissingFields("title", "image_url")

	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "title, image_url")
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(err))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"title", "image_url"}, ve.Fields)
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("profile", "x"), http.StatusNotFound},
		{"unauthorized", NewUnauthorized("bad password", nil), http.StatusUnauthorized},
		{"conflict", NewConflict("project", "id", "1"), http.StatusConflict},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}
