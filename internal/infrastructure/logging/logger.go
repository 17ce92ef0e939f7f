// Package logging builds the process logger from configuration. The logger
// implements the application's Logger interface and is injected into request
// contexts by the HTTP server.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/beanfleet/coffeeplan/internal/infrastructure/config"
)

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// Logger writes structured log lines in JSON or key=value text. Writes are
// serialized so concurrent requests never interleave lines.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	min    int
	format string
}

// New creates a logger from the logging configuration.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	var out io.Writer
	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("logging output is \"file\" but file_path is empty")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
	default:
		return nil, fmt.Errorf("unsupported logging output: %s", cfg.Output)
	}
	return NewWithWriter(cfg.Level, cfg.Format, out), nil
}

// NewWithWriter creates a logger over an explicit writer. Tests use this to
// capture output.
func NewWithWriter(level, format string, out io.Writer) *Logger {
	min, ok := levelRank[level]
	if !ok {
		min = levelRank["info"]
	}
	return &Logger{out: out, min: min, format: format}
}

// Log emits one line when the level clears the configured threshold. Unknown
// levels are treated as info so misspelled calls surface instead of vanishing.
func (l *Logger) Log(level, message string, metadata map[string]interface{}) {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank["info"]
	}
	if rank < l.min {
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)

	var line []byte
	if l.format == "text" {
		line = formatText(now, level, message, metadata)
	} else {
		line = formatJSON(now, level, message, metadata)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(line)
}

func formatJSON(now, level, message string, metadata map[string]interface{}) []byte {
	record := make(map[string]interface{}, len(metadata)+3)
	for k, v := range metadata {
		record[k] = v
	}
	record["time"] = now
	record["level"] = level
	record["message"] = message

	line, err := json.Marshal(record)
	if err != nil {
		// unmarshalable metadata value: keep the envelope, drop the payload
		line, _ = json.Marshal(map[string]interface{}{
			"time": now, "level": level, "message": message,
		})
	}
	return append(line, '\n')
}

func formatText(now, level, message string, metadata map[string]interface{}) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", now, strings.ToUpper(level), message)

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
