package telemetry_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/go-agent-context/internal/metrics"
	"github.com/petasbytes/go-agent-context/internal/telemetry"
	"github.com/petasbytes/go-agent-context/memory"
)

func calibrate(t *testing.T, observe string) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("AGT_ARTIFACTS_DIR", base)
	t.Setenv("AGT_CALIBRATION_MODE", "1")
	t.Setenv("AGT_OBSERVE_JSON", observe)
	return base
}

func asInt(t *testing.T, m map[string]any, key string) int {
	t.Helper()
	v, ok := m[key].(float64)
	if !ok {
		t.Fatalf("%s missing or not a number: %v", key, m[key])
	}
	return int(v)
}

func TestEmitLocalFeatures(t *testing.T) {
	base := calibrate(t, "1")
	ctx := telemetry.WithTurnID(context.Background(), "turn-xyz")
	prompt := "what did I say\nabout cats?"
	selected := []memory.Turn{memory.User("I like cats"), memory.Model("Noted: cats.")}

	telemetry.EmitLocalFeatures(ctx, prompt, selected)

	events := readEvents(t, base)
	ev := events[len(events)-1]
	if ev["event"] != "local_features" || ev["turn_id"] != "turn-xyz" || ev["features_version"] != "2" {
		t.Fatalf("unexpected header fields: %v", ev)
	}
	if got := asInt(t, ev, "context_turns"); got != 2 {
		t.Fatalf("context_turns: want 2, got %d", got)
	}

	user := ev["user"].(map[string]any)
	want := metrics.CountFeatures(prompt)
	if asInt(t, user, "words") != want.Words || asInt(t, user, "lines") != want.Lines || asInt(t, user, "runes") != want.Runes {
		t.Fatalf("user features mismatch: got %v want %+v", user, want)
	}
	cf := ev["context"].(map[string]any)
	wantCtx := metrics.CountTurns(selected)
	if asInt(t, cf, "words") != wantCtx.Words || asInt(t, cf, "bytes") != wantCtx.Bytes {
		t.Fatalf("context features mismatch: got %v want %+v", cf, wantCtx)
	}
}

func TestEmitLocalFeatures_ObserveOff(t *testing.T) {
	base := calibrate(t, "0")

	telemetry.EmitLocalFeatures(context.Background(), "hello", nil)

	if _, err := os.Stat(filepath.Join(base, "events.jsonl")); !os.IsNotExist(err) {
		t.Fatalf("expected no events file, stat err=%v", err)
	}
}

func TestEmitLocalFeatures_EmptyInputZeros(t *testing.T) {
	base := calibrate(t, "1")

	telemetry.EmitLocalFeatures(context.Background(), "", nil)

	ev := readEvents(t, base)[0]
	if _, ok := ev["turn_id"]; !ok {
		t.Fatal("turn_id key should be present even when empty")
	}
	for _, key := range []string{"bytes", "runes", "words", "lines"} {
		if got := asInt(t, ev["user"].(map[string]any), key); got != 0 {
			t.Errorf("user.%s: want 0, got %d", key, got)
		}
	}
}

func TestEmitLocalFeatures_NoRawText(t *testing.T) {
	base := calibrate(t, "1")
	secret := "SECRET-TOKEN-123"

	telemetry.EmitLocalFeatures(context.Background(), "my key is "+secret, []memory.Turn{memory.Model(secret)})

	data, err := os.ReadFile(filepath.Join(base, "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), secret) {
		t.Fatalf("raw text leaked into telemetry: %s", data)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &m); err != nil {
		t.Fatal(err)
	}
}
