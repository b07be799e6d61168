package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// newBufferLogger returns a logger writing JSON into the buffer at the
// given level.
func newBufferLogger(buf *bytes.Buffer, level zerolog.Level) *Logger {
	zlog := zerolog.New(buf).Level(level).With().Timestamp().Logger()
	return &Logger{zlog: zlog}
}

func TestNew(t *testing.T) {
	for _, env := range []string{"development", "production", "test"} {
		logger := New(env)
		if logger == nil {
			t.Fatalf("New(%q) returned nil", env)
		}
		if logger.GetZerolog() == nil {
			t.Errorf("New(%q) has no underlying zerolog instance", env)
		}
	}
}

func TestLeveledMethods(t *testing.T) {
	tests := []struct {
		name   string
		log    func(l *Logger)
		expect []string
	}{
		{
			name: "debug with fields",
			log: func(l *Logger) {
				l.Debug("Policies loaded", map[string]interface{}{"user_id": "local", "count": 3})
			},
			expect: []string{"Policies loaded", "local", `"count":3`},
		},
		{
			name: "info with fields",
			log: func(l *Logger) {
				l.Info("Policy created", map[string]interface{}{"policy_id": "pol-1"})
			},
			expect: []string{"Policy created", "pol-1"},
		},
		{
			name: "warn",
			log: func(l *Logger) {
				l.Warn("Slow query", map[string]interface{}{"duration_ms": 1200})
			},
			expect: []string{"Slow query", "1200"},
		},
		{
			name: "error carries the error message",
			log: func(l *Logger) {
				l.Error("Failed to save policies", errors.New("connection refused"), map[string]interface{}{"user_id": "local"})
			},
			expect: []string{"Failed to save policies", "connection refused", "local"},
		},
		{
			name: "nil fields do not panic",
			log: func(l *Logger) {
				l.Info("no fields", nil)
			},
			expect: []string{"no fields"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newBufferLogger(&buf, zerolog.DebugLevel))

			output := buf.String()
			for _, want := range tt.expect {
				if !strings.Contains(output, want) {
					t.Errorf("Expected output to contain %q, got %s", want, output)
				}
			}
		})
	}
}

func TestInfoLevelSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, zerolog.InfoLevel)

	logger.Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Errorf("Expected debug output to be suppressed, got %s", buf.String())
	}

	logger.Info("visible", nil)
	if !strings.Contains(buf.String(), "visible") {
		t.Error("Expected info output at info level")
	}
}

func TestChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, zerolog.DebugLevel)

	logger.With(map[string]interface{}{"component": "portfolio"}).Info("rollup built", nil)
	if !strings.Contains(buf.String(), "portfolio") {
		t.Error("Expected With() field on child logger output")
	}

	buf.Reset()
	logger.WithRequestID("req-12345").Info("request received", nil)
	output := buf.String()
	if !strings.Contains(output, `"request_id":"req-12345"`) {
		t.Errorf("Expected request_id field, got %s", output)
	}
}

func TestOutputIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, zerolog.DebugLevel)

	logger.Info("Tax computed", map[string]interface{}{"taxable_income": 340000.0})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON output, got error: %v", err)
	}
	if entry["message"] != "Tax computed" {
		t.Errorf("Expected message field, got %v", entry["message"])
	}
	if entry["taxable_income"] != 340000.0 {
		t.Errorf("Expected taxable_income field, got %v", entry["taxable_income"])
	}
}
