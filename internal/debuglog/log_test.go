package debuglog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"off", LevelOff},
		{"none", LevelOff},
		{"invalid", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetupWithLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "postr.log")

	if err := Setup(LevelInfo, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer Close()

	if GetLevel() != LevelInfo {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelInfo)
	}

	Debugf("debug message")
	Infof("info message")
	Warnf("warn message")
	Errorf("error message")

	if err := Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}

	logContent := string(content)
	if strings.Contains(logContent, "debug message") {
		t.Error("DEBUG message should not appear with INFO level")
	}
	for _, want := range []string{"[INFO] info message", "[WARN] warn message", "[ERROR] error message"} {
		if !strings.Contains(logContent, want) {
			t.Errorf("log should contain %q, got:\n%s", want, logContent)
		}
	}
	if !strings.HasPrefix(logContent, "postr ") {
		t.Errorf("log lines should carry the postr prefix, got:\n%s", logContent)
	}
}

func TestSetupWithLevelOff(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "off.log")

	if err := Setup(LevelOff, logPath); err != nil {
		t.Fatalf("Setup with LevelOff failed: %v", err)
	}

	Errorf("error message")

	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Error("no log file should be created when logging is off")
	}
}

func TestSetupWriter(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(LevelWarn, &buf)
	defer Close()

	Infof("quiet")
	Warnf("loud %d", 1)

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("INFO should be filtered at WARN level")
	}
	if !strings.Contains(out, "[WARN] loud 1") {
		t.Errorf("expected warn line, got %q", out)
	}
}

func TestFieldLogger(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(LevelDebug, &buf)
	defer Close()

	logger := WithFields(map[string]interface{}{
		"component": "listing",
		"action":    "delete",
		"id":        42,
	})
	logger.Infof("test message with fields")
	logger.With("status", 404).Warnf("not found")

	out := buf.String()
	if !strings.Contains(out, "test message with fields [action=delete component=listing id=42]") {
		t.Errorf("fields should be appended sorted by key, got %q", out)
	}
	if !strings.Contains(out, "not found [action=delete component=listing id=42 status=404]") {
		t.Errorf("With should extend the field set, got %q", out)
	}
}

func TestSetLevel(t *testing.T) {
	SetLevel(LevelDebug)
	if GetLevel() != LevelDebug {
		t.Errorf("SetLevel(LevelDebug) failed, got %v", GetLevel())
	}

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("SetLevel(LevelError) failed, got %v", GetLevel())
	}

	SetLevel(LevelOff)
}
