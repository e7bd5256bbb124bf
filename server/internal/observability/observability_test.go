package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rc := NewRequestContextWithID(logger, "req-1", "message", 42)
	rc.Error("schedule failed", errors.New("boom"), slog.String(LogFieldTaskID, "t1"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry[LogFieldRequestID])
	assert.Equal(t, float64(42), entry[LogFieldUserID])
	assert.Equal(t, "message", entry[LogFieldHandler])
	assert.Equal(t, "t1", entry[LogFieldTaskID])
	assert.Equal(t, "boom", entry["error"])
	assert.NotContains(t, entry, LogFieldChatID)
}

func TestRequestContext_ChatID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rc := NewRequestContextWithID(logger, "req-2", "callback", 42)
	rc.ChatID = -100500
	rc.Info("callback answered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(-100500), entry[LogFieldChatID])
	assert.Equal(t, float64(42), entry[LogFieldUserID])
}

func TestNewRequestContext_GeneratesID(t *testing.T) {
	a := NewRequestContext(nil, "command", 1)
	b := NewRequestContext(nil, "command", 1)
	assert.NotEmpty(t, a.RequestID)
	assert.NotEqual(t, a.RequestID, b.RequestID)
	assert.NotNil(t, a.Logger)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	rc := NewRequestContext(nil, "callback", 7)
	ctx := WithRequestContext(context.Background(), rc)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, rc, got)

	fallback := slog.Default()
	assert.Same(t, fallback, LoggerFrom(context.Background(), fallback))
	assert.NotNil(t, LoggerFrom(ctx, fallback))
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "prod").Debug("hidden")
	assert.Empty(t, buf.String())

	NewLogger(&buf, "dev").Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordUpdate("message", 20*time.Millisecond)
		}()
	}
	wg.Wait()
	m.RecordUpdate("command", 0)
	m.RecordFailure("message")

	snap := m.Snapshot()
	assert.Equal(t, int64(11), snap.UpdateTotal)
	assert.Equal(t, int64(1), snap.UpdateFailed)
	require.Contains(t, snap.Handlers, "message")
	assert.Equal(t, int64(10), snap.Handlers["message"].Count)
	assert.Equal(t, int64(20), snap.Handlers["message"].AverageDuration)
	assert.Equal(t, int64(1), snap.Handlers["message"].ErrorCount)
	assert.InDelta(t, 100.0*10/11, snap.SuccessRate(), 0.001)

	m.Reset()
	snap = m.Snapshot()
	assert.Zero(t, snap.UpdateTotal)
	assert.Empty(t, snap.Handlers)
	assert.Equal(t, 100.0, snap.SuccessRate())
}
