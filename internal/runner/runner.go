package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/internal/provider"
	"github.com/petasbytes/go-agent-context/internal/telemetry"
	"github.com/petasbytes/go-agent-context/internal/windowing"
	"github.com/petasbytes/go-agent-context/memory"
)

// ErrOverBudget is returned, before anything is recorded, when the prompt
// alone exceeds the token budget.
var ErrOverBudget = errors.New("runner: prompt exceeds token budget")

type Runner struct {
	Client    *anthropic.Client
	Model     anthropic.Model
	MaxTokens int64
	// Budget is the estimated input-token ceiling for one request.
	Budget  int
	Counter windowing.TokenCounter
	// Mode labels telemetry events only.
	Mode   contextmgr.Mode
	Tracer trace.Tracer
	Logger *slog.Logger
}

func New(client *anthropic.Client, model anthropic.Model, budget int) *Runner {
	if model == "" {
		model = provider.DefaultModel
	}
	return &Runner{
		Client:    client,
		Model:     model,
		MaxTokens: 1024,
		Budget:    budget,
		Counter:   windowing.HeuristicCounter{},
		Tracer:    telemetry.Tracer(nil),
		Logger:    slog.Default(),
	}
}

// Result describes one answered prompt.
type Result struct {
	Reply string
	// Selected is what the strategy returned; Sent is what fit the budget,
	// ending with the prompt.
	Selected []memory.Turn
	Sent     []memory.Turn
	Stats    windowing.Stats
	// Records are the turns that were added, in order, ready to persist.
	Records []memory.Record
}

// Respond answers prompt using s for conversation memory. opts reach the
// AddTurn of the prompt only, so WithParent selects the branch to continue.
//
// If the model call fails the prompt stays recorded in s and Records holds it.
// If recording the reply fails, the returned Result still carries the reply.
func (r *Runner) Respond(ctx context.Context, s contextmgr.Strategy, prompt string, opts ...contextmgr.Option) (*Result, error) {
	if r.Budget <= 0 {
		return nil, fmt.Errorf("runner: token budget %d not set; configure token_budget or AGT_TOKEN_BUDGET", r.Budget)
	}

	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = fmt.Sprintf("turn-%d", time.Now().UnixNano())
	}
	ctx = telemetry.WithTurnID(ctx, turnID)

	user := memory.User(prompt)
	if cost := r.counter().Count(user); cost > r.Budget {
		return nil, fmt.Errorf("%w: estimated %d > %d", ErrOverBudget, cost, r.Budget)
	}
	if err := s.AddTurn(ctx, user, opts...); err != nil {
		return nil, fmt.Errorf("runner: record prompt: %w", err)
	}
	res := &Result{Records: []memory.Record{record(s, user)}}
	r.emitRecorded(turnID, s, user.Role)

	selected, err := s.Context(ctx, contextmgr.WithQuery(prompt))
	if err != nil {
		return res, fmt.Errorf("runner: select context: %w", err)
	}
	res.Selected = selected

	history := make([]memory.Turn, 0, len(selected)+1)
	for _, t := range selected {
		if t != user {
			history = append(history, t)
		}
	}
	window, stats := windowing.Fit(append(history, user), r.Budget, r.counter())
	res.Sent, res.Stats = window, stats

	telemetry.Emit("context_prepared", map[string]any{
		"turn_id":            turnID,
		"mode":               string(r.Mode),
		"model":              string(r.Model),
		"selected_turns":     len(selected),
		"budget":             stats.Budget,
		"total_estimated":    stats.Total,
		"included_turns":     stats.Included,
		"skipped_turns":      stats.Skipped,
		"over_budget_newest": stats.OverBudgetNewest,
	})
	telemetry.EmitLocalFeatures(ctx, prompt, selected)
	r.logger().Debug("context prepared",
		"turn_id", turnID, "selected", len(selected), "sent", stats.Included, "estimated_tokens", stats.Total)

	if stats.OverBudgetNewest {
		return res, ErrOverBudget
	}

	reply, err := r.call(ctx, turnID, window)
	if err != nil {
		return res, err
	}
	res.Reply = reply

	model := memory.Model(reply)
	if err := s.AddTurn(ctx, model); err != nil {
		return res, fmt.Errorf("runner: record reply: %w", err)
	}
	res.Records = append(res.Records, record(s, model))
	r.emitRecorded(turnID, s, model.Role)
	return res, nil
}

func (r *Runner) call(ctx context.Context, turnID string, window []memory.Turn) (string, error) {
	system, msgs := provider.Messages(window)
	params := anthropic.MessageNewParams{
		Model:     r.Model,
		MaxTokens: r.MaxTokens,
		System:    system,
		Messages:  msgs,
	}
	telemetry.PersistPayload(turnID, "request", params)

	ctx, span := r.tracer().Start(ctx, "model.respond", trace.WithAttributes(
		attribute.String("turn.id", turnID),
		attribute.String("model", string(r.Model)),
		attribute.Int("request.messages", len(msgs)),
	))
	defer span.End()

	msg, err := r.Client.Messages.New(ctx, params)
	if err != nil {
		telemetry.Fail(span, err)
		return "", fmt.Errorf("runner: model call: %w", err)
	}
	telemetry.PersistPayload(turnID, "response", msg)
	span.SetAttributes(
		attribute.Int64("usage.input_tokens", msg.Usage.InputTokens),
		attribute.Int64("usage.output_tokens", msg.Usage.OutputTokens),
	)
	return provider.ReplyText(msg), nil
}

// record captures t with the parent it was actually attached to, so a replay
// rebuilds the same tree.
func record(s contextmgr.Strategy, t memory.Turn) memory.Record {
	rec := memory.Record{Role: t.Role, Text: t.Text}
	if b, ok := s.(contextmgr.Brancher); ok {
		if n, ok := b.Node(b.LastID()); ok {
			rec.Parent = int64(n.ParentID)
		}
	}
	return rec
}

func (r *Runner) emitRecorded(turnID string, s contextmgr.Strategy, role memory.Role) {
	fields := map[string]any{"turn_id": turnID, "role": string(role)}
	if b, ok := s.(contextmgr.Brancher); ok {
		fields["node_id"] = int64(b.LastID())
	}
	telemetry.Emit("turn_recorded", fields)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) counter() windowing.TokenCounter {
	if r.Counter == nil {
		return windowing.HeuristicCounter{}
	}
	return r.Counter
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer == nil {
		return telemetry.Tracer(nil)
	}
	return r.Tracer
}
