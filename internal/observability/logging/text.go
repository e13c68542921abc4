package logging

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// textLogger writes one human-readable line per record. Meant for
// terminals; SIEM pipelines should use the jsonl format instead.
type textLogger struct {
	writer   io.Writer
	closer   io.Closer
	minLevel int
	mu       sync.Mutex
}

func (t *textLogger) log(level, component, msg string, fields ...any) {
	if levelPriority(level) < t.minLevel {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(strings.ToUpper(level))
	sb.WriteString(" [")
	sb.WriteString(component)
	sb.WriteString("] ")
	sb.WriteString(msg)

	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			fmt.Fprintf(&sb, " %s=%v", key, fields[i+1])
		}
	}
	sb.WriteString("\n")

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.writer, sb.String())
}

func (t *textLogger) Event(ctx context.Context, event string, fields map[string]any) {
	// Deterministic field order for readable lines
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	t.log(LevelInfo, "cli", event, kv...)
}

func (t *textLogger) Debug(component, msg string, fields ...any) {
	t.log(LevelDebug, component, msg, fields...)
}

func (t *textLogger) Info(component, msg string, fields ...any) {
	t.log(LevelInfo, component, msg, fields...)
}

func (t *textLogger) Warn(component, msg string, fields ...any) {
	t.log(LevelWarn, component, msg, fields...)
}

func (t *textLogger) Error(component, msg string, fields ...any) {
	t.log(LevelError, component, msg, fields...)
}

func (t *textLogger) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}
