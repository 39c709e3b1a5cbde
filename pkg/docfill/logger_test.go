package docfill

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       LogLevel
		expected    []string
		notExpected []string
	}{
		{
			name:     "trace level shows all messages",
			level:    LogTrace,
			expected: []string{"level=TRACE", "trace message", "level=DEBUG", "level=INFO", "level=WARN", "level=ERROR"},
		},
		{
			name:        "info level hides debug and trace",
			level:       LogInfo,
			expected:    []string{"info message", "warn message", "error message"},
			notExpected: []string{"trace message", "debug message"},
		},
		{
			name:        "warn level shows only warnings and errors",
			level:       LogWarn,
			expected:    []string{"warn message", "error message"},
			notExpected: []string{"info message", "debug message"},
		},
		{
			name:        "off hides everything",
			level:       LogOff,
			notExpected: []string{"message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(&buf, tt.level)
			l.Trace("trace message")
			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")
			l.Error("error message")

			out := buf.String()
			for _, want := range tt.expected {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.notExpected {
				if strings.Contains(out, unwanted) {
					t.Errorf("did not expect %q in output:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogDebug)

	l.Info("filled %d placeholders in %s", 3, "body")
	if !strings.Contains(buf.String(), "filled 3 placeholders in body") {
		t.Errorf("printf arguments not applied: %s", buf.String())
	}

	buf.Reset()
	l.Info("%s", "100% literal")
	if !strings.Contains(buf.String(), "100% literal") {
		t.Errorf("percent signs in arguments should survive: %s", buf.String())
	}

	buf.Reset()
	l.Info("placeholder ${name} left as written")
	if !strings.Contains(buf.String(), "placeholder ${name} left as written") {
		t.Errorf("message without args should be written as is: %s", buf.String())
	}
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithFormat(&buf, LogInfo, LogFormatJSON)

	l.WithFields(Fields{"part": "word/footer1.xml", "rows": 2}).WithField("request_id", "abc").Warn("not a list")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	checks := map[string]interface{}{
		"level":      "WARN",
		"msg":        "not a list",
		"part":       "word/footer1.xml",
		"rows":       float64(2),
		"request_id": "abc",
	}
	for key, want := range checks {
		if record[key] != want {
			t.Errorf("%s = %v, want %v", key, record[key], want)
		}
	}
}

func TestLoggerSetLevelSharedWithChildren(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogInfo)
	child := l.WithField("k", "v")

	child.Debug("hidden")
	l.SetLevel(LogDebug)
	child.Debug("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("child logger should follow parent level: %s", out)
	}
	if l.Level() != LogDebug || !l.IsDebugMode() {
		t.Errorf("Level() = %v", l.Level())
	}
}

func TestDebugExpression(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogInfo)
	l.DebugExpression("a == b", true)
	if buf.Len() != 0 {
		t.Errorf("DebugExpression should be silent above debug: %s", buf.String())
	}

	l.SetLevel(LogDebug)
	l.DebugExpression("a == b", true)
	if !strings.Contains(buf.String(), "expression=\"a == b\"") || !strings.Contains(buf.String(), "Result: true") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"trace":   LogTrace,
		"DEBUG":   LogDebug,
		" info ":  LogInfo,
		"warning": LogWarn,
		"warn":    LogWarn,
		"error":   LogError,
		"off":     LogOff,
		"bogus":   LogInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if LogTrace.String() != "TRACE" || LogOff.String() != "OFF" {
		t.Errorf("unexpected level names %s %s", LogTrace, LogOff)
	}
	if ParseLogFormat("JSON") != LogFormatJSON || ParseLogFormat("xml") != LogFormatText {
		t.Error("ParseLogFormat mismatch")
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogWarn))

	Info("quiet")
	Warn("loud %s", "warning")
	WithField("part", "body").Error("failed")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info should be filtered: %s", out)
	}
	if !strings.Contains(out, "loud warning") || !strings.Contains(out, "part=body") {
		t.Errorf("missing global output: %s", out)
	}
}
