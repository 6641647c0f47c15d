package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("Expected default level info, got %q", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Expected default pretty to be false")
	}
	if cfg.Output == nil {
		t.Error("Expected default output")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{" error ", zerolog.ErrorLevel, false},
		{"", zerolog.InfoLevel, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if level != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, level, tt.expected)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSetup_FieldsAndComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  "info",
		Output: buf,
		Fields: map[string]string{"service": "users-pager"},
	})

	logger := NewLogger(ComponentView)
	logger.Info().Int("page", 3).Msg("Users page loaded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "users-pager" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["component"] != ComponentView {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["page"] != float64(3) {
		t.Errorf("page = %v", entry["page"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("Expected timestamp field")
	}
}

func TestSetup_UnknownLevelWarns(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: "loud", Output: buf})

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("global level = %v, want info", zerolog.GlobalLevel())
	}
	if !strings.Contains(buf.String(), `unknown log level \"loud\"`) {
		t.Errorf("Expected fallback warning, got %q", buf.String())
	}
}

func TestSetup_Pretty(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: "debug", Pretty: true, Output: buf})

	logger.Debug().Msg("pretty message")

	out := buf.String()
	if !strings.Contains(out, "pretty message") {
		t.Errorf("Expected output to contain message, got %q", out)
	}
	if strings.HasPrefix(out, "{") {
		t.Errorf("Expected console output, got JSON %q", out)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: "warn", Output: buf})

	logger := NewLogger("test")

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")
	logger.Error().Msg("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out at warn level")
	}
	if strings.Contains(output, "info message") {
		t.Error("Info message should be filtered out at warn level")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be included at warn level")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error message should be included at warn level")
	}
}
