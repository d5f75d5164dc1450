package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New(Options{})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestBuildJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(Options{Level: "warn"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("rule cache degraded", zap.String("store_id", "s1"))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), buf.String())
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "rule cache degraded", entry["msg"])
	assert.Equal(t, "s1", entry["store_id"])
	assert.Contains(t, entry, "ts")
}

func TestBuildConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(Options{Level: "debug", Format: " Console "}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Debug("cart quoted", zap.Int("lines", 3))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "cart quoted")
	assert.Contains(t, out, `{"lines": 3}`)
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console output is not JSON")
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core))
	query := func() (string, int64) { return " SELECT * FROM markup_rules ", 2 }
	ctx := context.Background()

	// fast successful queries are below warn
	gl.Trace(ctx, time.Now(), query, nil)
	assert.Zero(t, logs.Len())

	gl.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	gl.Trace(ctx, time.Now(), query, errors.New("disk full"))
	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "SELECT * FROM markup_rules", entries[0].ContextMap()["sql"])

	gl.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "gorm.slow_query", entries[0].Message)

	gl.LogMode(gormlogger.Info).Trace(ctx, time.Now(), query, nil)
	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)

	gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), query, errors.New("ignored"))
	assert.Zero(t, logs.Len())
}
