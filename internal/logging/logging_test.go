package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormatter(tt.in); got != tt.want {
				t.Errorf("ParseFormatter(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.ReportTimestamp = false
	opts.Level = log.WarnLevel
	logger := New(&buf, opts)

	logger.Info("hidden")
	logger.Warn("slot malformed", "key", "tasks")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info record to be filtered, got %q", out)
	}
	if !strings.Contains(out, "slot malformed") || !strings.Contains(out, "key=tasks") {
		t.Errorf("expected warn record with fields, got %q", out)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, closer, err := Open(path, "debug", "json")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	logger.Debug("task added", "id", "abc")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"task added"`) {
		t.Errorf("expected json record, got %q", data)
	}
}

func TestOpen_EmptyPathDiscards(t *testing.T) {
	logger, closer, err := Open("", "debug", "text")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	logger.Info("nowhere")
	if err := closer.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
