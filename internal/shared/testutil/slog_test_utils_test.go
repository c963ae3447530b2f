package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler_Captures(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Debug("debug msg")
	logger.Info("test message", slog.String("key", "value"))
	logger.Warn("warn msg", slog.Int("retry", 3))
	logger.Error("error message", slog.Int("code", 500))

	require.Equal(t, 4, handler.Count())
	assert.True(t, handler.ContainsMessage("test message"))
	assert.False(t, handler.ContainsMessage("never logged"))
	assert.True(t, handler.ContainsAttr("key", "value"))
	assert.True(t, handler.ContainsAttr("code", int64(500)))
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	AssertLogContains(t, handler, slog.LevelWarn, "warn")

	handler.Clear()
	assert.Zero(t, handler.Count())
	AssertNoErrors(t, handler)
}

func TestBufferedSlogHandler_DerivedHandlers(t *testing.T) {
	tests := []struct {
		name string
		log  func(logger *slog.Logger)
		want []map[string]any
	}{
		{
			name: "child attrs stay on the child",
			log: func(logger *slog.Logger) {
				logger.With(slog.String("component", "runner")).Info("from child", slog.Int("files", 2))
				logger.Info("from parent")
			},
			want: []map[string]any{
				{"component": "runner", "files": int64(2)},
				{},
			},
		},
		{
			name: "chained With accumulates",
			log: func(logger *slog.Logger) {
				logger.With(slog.String("component", "runner")).
					With(slog.String("run_id", "r1")).
					Info("nested")
			},
			want: []map[string]any{
				{"component": "runner", "run_id": "r1"},
			},
		},
		{
			name: "record attrs override handler attrs",
			log: func(logger *slog.Logger) {
				logger.With(slog.String("file", "a.txt")).Info("override", slog.String("file", "b.txt"))
			},
			want: []map[string]any{
				{"file": "b.txt"},
			},
		},
		{
			name: "siblings do not see each other",
			log: func(logger *slog.Logger) {
				base := logger.With(slog.String("component", "exporter"))
				base.With(slog.String("format", "csv")).Info("csv")
				base.With(slog.String("format", "xlsx")).Info("xlsx")
				base.Info("plain")
			},
			want: []map[string]any{
				{"component": "exporter", "format": "csv"},
				{"component": "exporter", "format": "xlsx"},
				{"component": "exporter"},
			},
		},
		{
			name: "groups are flattened",
			log: func(logger *slog.Logger) {
				logger.WithGroup("request").
					With(slog.String("id", "req-1")).
					Info("grouped", slog.Int("status", 200))
			},
			want: []map[string]any{
				{"id": "req-1", "status": int64(200)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := NewTestLogger(t)
			tt.log(logger)

			records := handler.GetRecords()
			require.Len(t, records, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, records[i].Attrs, "record %d (%s)", i, records[i].Message)
			}
		})
	}
}

func TestBufferedSlogHandler_ClearThroughDerivedHandler(t *testing.T) {
	logger, handler := NewTestLogger(t)
	child := logger.With(slog.String("component", "runner"))

	logger.Info("one")
	child.Info("two")
	require.Equal(t, 2, handler.Count())

	child.Handler().(*BufferedSlogHandler).Clear()
	assert.Zero(t, handler.Count(), "parent and child share one buffer")
}

func TestBufferedSlogHandler_ConcurrentLogging(t *testing.T) {
	logger, handler := NewTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.With(slog.Int("worker", n)).Info("concurrent log", slog.Int("goroutine", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, handler.Count())
	AssertLogAttr(t, handler, "worker", int64(7))
}
