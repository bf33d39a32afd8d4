package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	buf.Reset()

	return out
}

func TestNewLogger_Keys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &Config{ServiceName: "shopauth"}, nil)

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "hello")

	line := decodeLine(t, &buf)
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "INFO", line["severity"])
	assert.Equal(t, "cid-1", line["_cID"])
	assert.Equal(t, "shopauth", line["service"])
	assert.Contains(t, line, "ts")
	assert.Contains(t, line["file"], "internal/pkg/instrument/logging_test.go:")
}

func TestNewLogger_Mask(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &Config{MaskFields: []string{"OTP", " authorization "}}, nil)

	logger.Info("request",
		"otp", "123456",
		"email", "alice@test.com",
		"body", `{"email":"alice@test.com","otp":"654321"}`,
		slog.Group("headers", slog.String("Authorization", "Bearer x")),
	)

	line := decodeLine(t, &buf)
	assert.Equal(t, "***", line["otp"])
	assert.Equal(t, "alice@test.com", line["email"])
	assert.JSONEq(t, `{"email":"alice@test.com","otp":"***"}`, line["body"].(string))
	assert.Equal(t, map[string]any{"Authorization": "***"}, line["headers"])
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &Config{LogLevel: "warn"}, nil)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())

	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "abc", GetCorrelationID(SetCorrelationID(context.Background(), "abc")))
}

func TestNew_Disabled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	inst, err := New(context.Background(), &Config{Enabled: false, ServiceName: "shopauth"})
	require.NoError(t, err)

	_, span := inst.Tracer("test").Start(context.Background(), "span")
	span.End()
	assert.NoError(t, inst.Shutdown(context.Background()))
}

func TestNewLogger_TraceIDsAndWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &Config{ServiceName: "shopauth", MaskFields: []string{"code"}}, nil)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.With("code", "123456").InfoContext(ctx, "issued")

	line := decodeLine(t, &buf)
	assert.Equal(t, "***", line["code"])
	assert.Equal(t, sc.TraceID().String(), line["trace_id"])
	assert.Equal(t, sc.SpanID().String(), line["span_id"])
}

func TestMasker(t *testing.T) {
	m := NewMasker("OTP", " ", "accessToken")

	assert.False(t, m.Empty())
	assert.True(t, m.Hides("otp"))
	assert.True(t, m.Hides("ACCESSTOKEN"))
	assert.False(t, m.Hides("email"))

	assert.Equal(t,
		map[string]any{"data": []any{map[string]any{"otp": Masked, "email": "a@b.co"}}},
		m.Value(map[string]any{"data": []any{map[string]any{"otp": "1", "email": "a@b.co"}}}),
	)

	out, ok := m.JSON([]byte(`{"accessToken":"t","verified":true}`))
	require.True(t, ok)
	assert.JSONEq(t, `{"accessToken":"***","verified":true}`, out)

	_, ok = m.JSON([]byte("plain text"))
	assert.False(t, ok)

	assert.True(t, NewMasker().Empty())
}
