package logger

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(InfoLevel, FormatJSON, &buf).Sugar().Named(ComponentRepository)
	l.Debugw("hidden")
	l.Infow("document loaded", "elements", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "document loaded", entry["msg"])
	assert.Equal(t, "repository", entry["component"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 3, entry["elements"])
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	New(DebugLevel, FormatPretty, &buf).Sugar().Named("codec").Warnw("structural violation", "field", "name")

	assert.Equal(t, "[WARN] [codec] structural violation - field=name\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json", FormatPretty))
	assert.Equal(t, FormatPretty, ParseFormat("", FormatPretty))
	assert.Equal(t, FormatConsole, ParseFormat("bogus", FormatConsole))
}

func TestForBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() { For(ComponentCLI).Infow("nothing") })
}
