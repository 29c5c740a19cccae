package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithWriterFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("engine", &buf, "")
	l.With("site", "S1").Debugw("site allocated", map[string]any{"cursor": 4})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "engine", line["component"])
	assert.Equal(t, "S1", line["site"])
	assert.Equal(t, float64(4), line["cursor"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "site allocated", line["message"])
}

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("engine", &buf, "WARN")
	l.Debugf("hidden")
	l.Infof("hidden")
	l.Warnf("shown %d", 1)
	out := strings.TrimSpace(buf.String())
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 1")
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Errorf("ignored")
}

func TestConfigureWritesRotatedFile(t *testing.T) {
	path := t.TempDir() + "/app.log"
	Configure(Options{Level: "warn", File: path, MaxSizeMB: 1})
	defer Configure(Options{})

	l := NewZerologLogger("service")
	l.Infof("filtered")
	l.Warnf("kept %d", 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "filtered")
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "service", rec["component"])
	assert.Equal(t, "kept 1", rec["message"])
}
