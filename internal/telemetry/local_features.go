package telemetry

import (
	"context"

	"github.com/petasbytes/go-agent-context/internal/metrics"
	"github.com/petasbytes/go-agent-context/memory"
)

// EmitLocalFeatures records size features of the prompt and of the context the
// engine selected for it. Only counts are written, never text. It is a no-op
// unless both calibration mode and observation are enabled.
func EmitLocalFeatures(ctx context.Context, prompt string, selected []memory.Turn) {
	if !(CalibrationModeEnabled() && ObserveEnabled()) {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	Emit("local_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "2",
		"user":             featureFields(metrics.CountFeatures(prompt)),
		"context":          featureFields(metrics.CountTurns(selected)),
		"context_turns":    len(selected),
	})
}

func featureFields(f metrics.Features) map[string]any {
	return map[string]any{
		"bytes": f.Bytes,
		"runes": f.Runes,
		"words": f.Words,
		"lines": f.Lines,
	}
}
