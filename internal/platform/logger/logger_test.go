package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, true)

	log.Debug("hidden")
	log.Info("organization created", "id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "organization created", entry["msg"])
	assert.Equal(t, float64(7), entry["id"])
}

func TestNew_DevelopmentIncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	newWithWriter(&buf, false).Debug("tx retry", "attempt", 2)
	assert.Contains(t, buf.String(), "tx retry")
	assert.Contains(t, buf.String(), "attempt=2")
}
