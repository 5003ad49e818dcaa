package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCloudRunHandlerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	h := &CloudRunHandler{level: slog.LevelInfo, mu: new(sync.Mutex), out: &buf}
	log := slog.New(h).With("uid", "u1")

	log.Debug("hidden")
	log.Error("write failed", "error", errors.New("boom"))

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if event["severity"] != "ERROR" || event["message"] != "write failed" {
		t.Fatalf("unexpected event: %+v", event)
	}
	data, ok := event["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data: %+v", event)
	}
	if data["uid"] != "u1" || data["error"] != "boom" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
	log := slog.New(NewTestHandler(slog.LevelInfo))
	ctx := ToContext(context.Background(), log)
	if FromContext(ctx) != log {
		t.Fatal("expected stored logger")
	}
}
