package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromEnv(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for value, want := range cases {
		t.Setenv(EnvLevel, value)
		if got := LevelFromEnv(); got != want {
			t.Errorf("LevelFromEnv with %q = %v, want %v", value, got, want)
		}
	}
}

func TestStructuredFormatsCarryServiceAttr(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		var buf bytes.Buffer
		l, err := NewWithWriter(format, slog.LevelInfo, &buf)
		if err != nil {
			t.Fatalf("NewWithWriter(%s): %v", format, err)
		}
		l.Info(context.Background(), "hello")
		if !strings.Contains(buf.String(), serviceName) {
			t.Errorf("%s output missing service attribute: %s", format, buf.String())
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter("text", slog.LevelWarn, &buf)
	if err != nil {
		t.Fatal(err)
	}
	l.Info(context.Background(), "quiet")
	l.Warn(context.Background(), "loud")
	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info line emitted at warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Error("warn line missing at warn level")
	}
}
