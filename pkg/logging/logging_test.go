package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ijon/cocaine-framework-go/internal/testutil"
)

func TestVerbosityLevel(t *testing.T) {
	tests := []struct {
		v    Verbosity
		want slog.Level
	}{
		{Error, slog.LevelError},
		{Warn, slog.LevelWarn},
		{Info, slog.LevelInfo},
		{Debug, slog.LevelDebug},
		{Verbosity(9), slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			testutil.AssertEqual(t, tt.v.Level(), tt.want)
		})
	}

	if Ignore.Level() <= slog.LevelError {
		t.Errorf("Ignore should silence errors, got level %v", Ignore.Level())
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{"0", Ignore, false},
		{"4", Debug, false},
		{"warn", Warn, false},
		{" INFO ", Info, false},
		{"5", Ignore, true},
		{"-1", Ignore, true},
		{"verbose", Ignore, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVerbosity(tt.in)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, got, tt.want)
		})
	}
}

func TestTargetFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no flag", []string{"worker"}, "app/standalone"},
		{"separate value", []string{"worker", "--app", "echo", "--uuid", "x"}, "app/echo"},
		{"equals form", []string{"worker", "--app=echo"}, "app/echo"},
		{"dangling flag", []string{"worker", "--app"}, "app/standalone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, TargetFromArgs(tt.args), tt.want)
		})
	}
}

func TestNew_FiltersAndTags(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Verbosity: Warn, Target: "app/echo", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "stage", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record passed a warn threshold: %q", out)
	}
	for _, want := range []string{"msg=shown", "target=app/echo", "stage=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Verbosity: Debug, Target: "app/echo", Output: &buf, JSON: true})

	logger.Debug("tick")

	if !strings.Contains(buf.String(), `"target":"app/echo"`) {
		t.Errorf("unexpected JSON output %q", buf.String())
	}
}

func TestNew_Ignore(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Verbosity: Ignore, Target: "app/echo", Output: &buf})

	logger.Error("dropped")

	testutil.AssertEqual(t, buf.Len(), 0)
}
