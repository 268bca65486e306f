package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProdLogsJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "prod", "")
	log.Debug("hidden")
	log.Info("vote recorded", "score", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "vote recorded", line["msg"])
	assert.EqualValues(t, 3, line["score"])
}

func TestLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "dev", "warn")
	log.Info("quiet")
	assert.Empty(t, buf.String())
	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
