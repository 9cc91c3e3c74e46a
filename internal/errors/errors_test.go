package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderWrapsError(t *testing.T) {
	t.Parallel()

	base := NewStd("base failure")
	err := New(base).
		Component("datastore").
		Category(CategoryDatabase).
		Context("operation", "save_video").
		Build()

	assert.Equal(t, "base failure", err.Error())
	assert.True(t, Is(err, base))
	assert.Equal(t, "datastore", err.GetComponent())
	assert.Equal(t, string(CategoryDatabase), err.GetCategory())
	assert.Equal(t, "save_video", err.GetContext()["operation"])
}

func TestNewf(t *testing.T) {
	t.Parallel()

	err := Newf("invalid value: %d", 42).
		Component("conf").
		Category(CategoryValidation).
		Build()

	assert.Equal(t, "invalid value: 42", err.Error())
	assert.Equal(t, CategoryValidation, err.ErrorCategory())
}

func TestUnwrapChain(t *testing.T) {
	t.Parallel()

	base := NewStd("root cause")
	wrapped := fmt.Errorf("context: %w", base)
	err := New(wrapped).Category(CategoryFileIO).Build()

	assert.True(t, Is(err, base))

	var enhanced *EnhancedError
	require.True(t, As(err, &enhanced))
	assert.Equal(t, CategoryFileIO, enhanced.ErrorCategory())
}

func TestCategoryOf(t *testing.T) {
	t.Parallel()

	err := Newf("gone").Category(CategoryNotFound).Build()
	assert.Equal(t, CategoryNotFound, CategoryOf(err))

	// Plain errors have no category
	assert.Equal(t, CategoryGeneric, CategoryOf(NewStd("plain")))
	assert.Equal(t, CategoryGeneric, CategoryOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category ErrorCategory
		want     int
	}{
		{"validation", CategoryValidation, http.StatusBadRequest},
		{"not_found", CategoryNotFound, http.StatusNotFound},
		{"conflict", CategoryConflict, http.StatusConflict},
		{"database", CategoryDatabase, http.StatusInternalServerError},
		{"generic", CategoryGeneric, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Newf("boom").Category(tt.category).Build()
			assert.Equal(t, tt.want, HTTPStatus(err))
		})
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(NewStd("plain")))
}

func TestComponentDetection(t *testing.T) {
	t.Parallel()

	// Without an explicit component the builder detects it from the call
	// stack; outside internal packages it stays unknown.
	err := Newf("no component").Category(CategoryGeneric).Build()
	assert.NotEmpty(t, err.GetComponent())
}

func TestJoin(t *testing.T) {
	t.Parallel()

	first := NewStd("first")
	second := NewStd("second")
	joined := Join(first, second)

	assert.True(t, Is(joined, first))
	assert.True(t, Is(joined, second))
	assert.Contains(t, joined.Error(), "first")
	assert.Contains(t, joined.Error(), "second")
}
