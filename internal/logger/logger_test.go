package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture routes the logger into a buffer for the duration of the test.
func capture(t *testing.T, level string, format OutputFormat) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	t.Cleanup(func() {
		UnsetTestOutput()
		logger = nil
	})
	InitLogger(level, format)
	return buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		log     func()
		visible bool
	}{
		{"mirror detail hidden at info", "info", func() { Debug("Probing mirror") }, false},
		{"mirror detail shown at debug", "debug", func() { Debug("Probing mirror") }, true},
		{"mirror failure hidden at error", "error", func() { Warn("Probing mirror") }, false},
		{"mirror failure shown at warn", "warn", func() { Warn("Probing mirror") }, true},
		{"errors always shown", "error", func() { Error("Probing mirror") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.level, FormatText)
			tt.log()
			if tt.visible {
				assert.Contains(t, buf.String(), "Probing mirror")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestTextOutput_Fields(t *testing.T) {
	buf := capture(t, "debug", FormatText)

	Warn("Mirror probe failed", Fields{"mirror": "https://s-file-1.ykt.cbern.com.cn", "attempt": 1})
	Success("Saved textbook", Fields{"id": "b8f2c1d4", "title": "数学"})
	DebugfWithFields(Fields{"id": "b8f2c1d4"}, "probing mirror %d of %d", 2, 4)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "mirror=https://s-file-1.ykt.cbern.com.cn")
	assert.Contains(t, out, "attempt=1")
	assert.Contains(t, out, "status=success")
	assert.Contains(t, out, "title=数学")
	assert.Contains(t, out, `msg="probing mirror 2 of 4"`)
}

func TestJSONOutput_Fields(t *testing.T) {
	buf := capture(t, "info", FormatJSON)

	Info("Fetched document metadata", Fields{"id": "b8f2c1d4", "attempts": 3, "signed": true})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Fetched document metadata", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "b8f2c1d4", rec["id"])
	assert.Equal(t, float64(3), rec["attempts"])
	assert.Equal(t, true, rec["signed"])
}

func TestSetOutputFormat_KeepsLevel(t *testing.T) {
	buf := capture(t, "warn", FormatText)

	SetOutputFormat(FormatJSON)
	Info("Reusing existing file")
	assert.Empty(t, buf.String(), "info stays filtered after the handler swap")

	Warn("No credential found, sending unsigned request", Fields{"id": "b8f2c1d4"})
	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"), "handler switched to JSON")
	assert.Contains(t, line, `"level":"WARN"`)
	assert.Contains(t, line, `"id":"b8f2c1d4"`)
}

func TestGetLogger_DefaultsToInfo(t *testing.T) {
	buf := capture(t, "info", FormatText)
	logger = nil

	lg := GetLogger()
	require.NotNil(t, lg)
	Debug("hidden")
	Infof("resolved %d of %d documents", 1, 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "resolved 1 of 2 documents")
}

func TestMergeFields(t *testing.T) {
	attrs := mergeFields(
		Fields{"mirror": "m1", "attempt": 1},
		Fields{"attempt": 2, "id": "doc"},
	)
	assert.Equal(t, []any{"attempt", 2, "id", "doc", "mirror", "m1"}, attrs, "sorted keys, later maps win")
	assert.Empty(t, mergeFields())
}
