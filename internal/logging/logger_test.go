package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/aretw0/causal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTee_MirrorsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewTee(slog.LevelInfo, &buf)

	logger.Debug("hidden")
	logger.Info("compiled", "theory", "logic", "error", "none")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "compiled", rec["msg"])
	assert.Equal(t, "logic", rec["theory"])
	assert.Equal(t, "none", rec["err"], "error key is normalized")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewTee_NilMirror(t *testing.T) {
	assert.NotNil(t, logging.NewTee(slog.LevelInfo, nil))
	assert.NotNil(t, logging.NewNop())
}
