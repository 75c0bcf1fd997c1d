package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewWithWriters_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriters(false, &buf)

	l.Debug("hidden")
	l.Info("index loaded", zap.Int("passages", 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "index loaded")
	assert.Contains(t, out, `"passages": 3`)
}

func TestNewWithWriters_Debug(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriters(true, &buf)

	l.Debug("prompt assembled")

	assert.Contains(t, buf.String(), "DEBUG")
}

func TestNewWithWriters_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	l := NewWithWriters(false, &a, &b)

	l.Warn("embedding cache write failed")

	assert.Contains(t, a.String(), "embedding cache write failed")
	assert.Contains(t, b.String(), "embedding cache write failed")
}
