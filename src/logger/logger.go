// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Logger defines the interface for logging operations.
// It provides methods for formatted output and a way to redirect it.
//
// The guard, the policy resolver and the command-line tools all log through
// this interface, so a host can plug in human-readable output or structured
// JSON lines without touching the trust engine.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// Nop is a Logger that discards everything.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
func (nopLogger) Println(...any)        {}
func (nopLogger) SetOutput(io.Writer)   {}

// OrNop returns l, or [Nop] when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// This is suitable for user-facing CLI output.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stdout, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// JSONLogger implements Logger by writing one JSON object per line.
//
// It is used where stdout is reserved for a protocol (the [MCP] stdio server)
// or where logs are shipped to a collector (the serve command). Each entry
// carries a timestamp, the level, the component name and the message.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type JSONLogger struct {
	mu        sync.Mutex
	writer    io.Writer
	component string
	silent    bool
	now       func() time.Time
}

// NewJSONLogger creates a new structured logger for the given component.
// A nil writer discards output. When silent is true nothing is written,
// which keeps stdio transports clean unless a destination is configured.
func NewJSONLogger(writer io.Writer, component string, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		writer:    writer,
		component: component,
		silent:    silent,
		now:       time.Now,
	}
}

// Printf formats and logs a structured message.
func (j *JSONLogger) Printf(format string, v ...any) { j.write(fmt.Sprintf(format, v...)) }

// Println logs a structured message built with fmt.Sprint semantics.
func (j *JSONLogger) Println(v ...any) { j.write(fmt.Sprint(v...)) }

func (j *JSONLogger) write(msg string) {
	if j.silent {
		return
	}

	entry := map[string]any{
		"time":    j.now().UTC().Format(time.RFC3339Nano),
		"level":   "info",
		"message": msg,
	}
	if j.component != "" {
		entry["component"] = j.component
	}

	data, _ := json.Marshal(entry)

	j.mu.Lock()
	fmt.Fprintln(j.writer, string(data))
	j.mu.Unlock()
}

// SetOutput sets the output destination for the JSON logger.
// A nil writer discards output.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (j *JSONLogger) SetOutput(w io.Writer) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if w == nil {
		j.writer = io.Discard
	} else {
		j.writer = w
	}
}
