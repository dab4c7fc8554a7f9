package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temp dir for log file
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("SetupLogger(%d) set level to %v, want %v",
					tt.verbosity, zerolog.GlobalLevel(), tt.wantLevel)
			}

			// The rotating sink creates the file on first write
			logger := GetLogger("logging.test")
			logger.Warn().Msg("probe")

			logPath := filepath.Join(tempDir, "dataroot", "dataroot.log")
			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				t.Errorf("Log file was not created at %s", logPath)
			}
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	tests := []struct {
		name         string
		envVar       string
		envValue     string
		wantContains string
	}{
		{
			name:         "with DATAROOT_LOG_FILE",
			envVar:       "DATAROOT_LOG_FILE",
			envValue:     "/custom/dataroot.log",
			wantContains: "/custom/dataroot.log",
		},
		{
			name:         "with XDG_STATE_HOME",
			envVar:       "XDG_STATE_HOME",
			envValue:     "/custom/state",
			wantContains: "/custom/state/dataroot/dataroot.log",
		},
		{
			name:         "without XDG_STATE_HOME",
			wantContains: ".local/state/dataroot/dataroot.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATAROOT_LOG_FILE", "")
			t.Setenv("XDG_STATE_HOME", "")
			if tt.envVar != "" {
				t.Setenv(tt.envVar, tt.envValue)
			}

			got := getLogFilePath()
			if !filepath.IsAbs(got) {
				t.Errorf("getLogFilePath() returned relative path: %s", got)
			}
			if !contains(got, tt.wantContains) {
				t.Errorf("getLogFilePath() = %s, want to contain %s", got, tt.wantContains)
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)

	logger := GetLogger("test-component")
	logger.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test-component") {
		t.Errorf("GetLogger() output missing component field: %s", output)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)

	fields := map[string]interface{}{
		"key1": "value1",
		"key2": 42,
	}

	logger := WithFields(fields)
	logger.Info().Msg("test message with fields")

	output := buf.String()
	if !strings.Contains(output, "key1") || !strings.Contains(output, "value1") {
		t.Errorf("WithFields() output missing fields: %s", output)
	}
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "test-operation")
	done()

	output := buf.String()
	if !strings.Contains(output, "Operation started") {
		t.Errorf("missing start entry: %s", output)
	}
	if !strings.Contains(output, "Operation completed") {
		t.Errorf("missing completion entry: %s", output)
	}
	if !strings.Contains(output, "duration") {
		t.Errorf("completion entry missing duration: %s", output)
	}
}

// Helper function
func contains(s, substr string) bool {
	// Clean paths to handle different OS separators
	cleanedS := filepath.ToSlash(s)
	cleanedSubstr := filepath.ToSlash(substr)
	return strings.Contains(cleanedS, cleanedSubstr)
}
