package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordError(t *testing.T) {
	tests := []struct {
		name      string
		record    string
		operation string
		err       error
		wantMsg   string
	}{
		{
			name:      "missing record",
			record:    KeyIsGlobalMuon.Name(),
			operation: "lookup",
			err:       ErrKeyNotFound,
			wantMsg:   "record error: operation=lookup, name=isGlobalMuon, err=key not found",
		},
		{
			name:      "mistyped record",
			record:    KeyDxy.Name(),
			operation: "lookup",
			err:       ErrTypeMismatch,
			wantMsg:   "record error: operation=lookup, name=Dxy, err=type mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRecordError(tt.record, tt.operation, tt.err)

			assert.Equal(t, tt.wantMsg, err.Error(), "Error message mismatch")
			assert.Equal(t, tt.record, err.Name, "Name mismatch")
			assert.True(t, errors.Is(err, tt.err), "Should unwrap to underlying error")
		})
	}
}

func TestConfigError(t *testing.T) {
	base := errors.New("invalid identification variant")

	t.Run("without suggestion", func(t *testing.T) {
		err := NewConfigError("identification.type", base)
		assert.Equal(t, "config error: key=identification.type, err=invalid identification variant", err.Error())
		assert.True(t, errors.Is(err, base))
	})

	t.Run("with suggestion", func(t *testing.T) {
		err := NewConfigError("identification.type", base)
		err.Suggestion = "did you mean 'TightID'?"
		assert.Equal(t,
			"config error: key=identification.type, err=invalid identification variant (did you mean 'TightID'?)",
			err.Error())
	})

	t.Run("found through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("build engine: %w", NewConfigError("isolation.max", base))
		var cfgErr *ConfigError
		assert.True(t, errors.As(wrapped, &cfgErr))
		assert.Equal(t, "isolation.max", cfgErr.ConfigKey)
	})
}

func TestUnsupportedCategoryError(t *testing.T) {
	err := &UnsupportedCategoryError{Category: 5}
	assert.Equal(t, "effective area: not supported type = 5", err.Error())
	assert.True(t, errors.Is(err, ErrUnsupportedCategory))
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("SelectorConfig")
		err.AddError("missing identification type")

		assert.Equal(t, "validation error for SelectorConfig: missing identification type", err.Error())
		assert.True(t, err.HasErrors(), "Should have errors")
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("Isolation")
		err.AddError("negative max")
		err.AddError("conflicting corrections")

		assert.Contains(t, err.Error(), "validation errors for Isolation")
		assert.Len(t, err.Errors, 2, "Should have two errors")
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("Config")

		assert.False(t, err.HasErrors(), "Should not have errors")
		assert.Empty(t, err.Errors, "Errors slice should be empty")
	})
}

func TestCommonDomainErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrKeyNotFound, "key not found"},
		{ErrTypeMismatch, "type mismatch"},
		{ErrInvalidBinning, "invalid binning"},
		{ErrUnsupportedCategory, "unsupported effective area category"},
		{ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error(), "Error message mismatch")
		})
	}
}
