package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/boostmysites25/zippty-backend/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudit_IncludesRequestMetadata(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logging.InitWriter(&buf, "info")

	ctx := logging.WithRequestContext(context.Background(), "req-1", "10.0.0.1", "POST /api/admin/login")
	ctx = logging.WithAdminID(ctx, "abc123")
	logging.Audit(ctx, "admin.login", "success", slog.String("email", "a@example.com"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "audit", entry["type"])
	assert.Equal(t, "admin.login", entry["event"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "10.0.0.1", entry["client_ip"])
	assert.Equal(t, "abc123", entry["admin_id"])
	assert.Equal(t, "a@example.com", entry["email"])
}

func TestAudit_FailureLogsAtWarn(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logging.InitWriter(&buf, "info")
	logging.Audit(context.Background(), "admin.login", "fail")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.NotContains(t, entry, "request_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("nonsense"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel(""))
}
