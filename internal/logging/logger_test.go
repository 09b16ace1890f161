package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONRenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, FormatJSON)

	logger.Info("engine built", "error", errors.New("boom"), "variant", "TightID")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["err"])
	assert.NotContains(t, entry, "error")
	assert.Equal(t, "TightID", entry["variant"])
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelWarn, FormatText)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARNING", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() { NewNop().Error("ignored") })
}
