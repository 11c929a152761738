package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	ts := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

	line := formatLine(ts, "INFO", "classified", "category", "paper", "dangling")
	assert.Equal(t, "[2026-10-19 15:30:00] INFO: classified category=paper\n", line)
}

func TestInitLoggerIn(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, InitLoggerIn(dir))
	defer Close()

	Info("saved", "id", 7)
	Debug("hidden")
	SetDebug(true)
	Debug("visible")
	SetDebug(false)

	files, err := filepath.Glob(filepath.Join(dir, "sortbot-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Logger initialized")
	assert.Contains(t, content, "INFO: saved id=7")
	assert.Contains(t, content, "DEBUG: visible")
	assert.False(t, strings.Contains(content, "hidden"))
}

func TestClose(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLoggerIn(dir))

	Info("before close")
	Close()
	Info("after close")
	Close()

	files, err := filepath.Glob(filepath.Join(dir, "sortbot-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "before close")
	assert.NotContains(t, string(data), "after close")
}
