package engine

import (
	"context"

	"github.com/digitallysavvy/go-ai/pkg/internal/retry"
	"github.com/digitallysavvy/go-ai/pkg/provider"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

// StreamText drives the same tool-call loop as GenerateText but forwards
// deltas to the caller as they arrive. Synthetic StepStartDelta /
// StepEndDelta pairs bracket each model call; tool execution happens
// between a step's StepEndDelta and the next step's StepStartDelta, so
// tool results never appear as deltas themselves. The channel is closed
// after a terminal DoneDelta or ErrorDelta.
func (e *Engine) StreamText(ctx context.Context, req types.CanonicalRequest, hooks Hooks) (<-chan types.StreamDelta, error) {
	adapter, resolvedID, err := e.resolve(req)
	if err != nil {
		return nil, err
	}
	req.ModelID = resolvedID

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	out := make(chan types.StreamDelta)
	go e.runStream(ctx, adapter, req, hooks, out)
	return out, nil
}

func (e *Engine) runStream(ctx context.Context, a provider.Adapter, req types.CanonicalRequest, hooks Hooks, out chan<- types.StreamDelta) {
	defer close(out)

	maxSteps := req.Settings.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	messages := append([]types.Message(nil), req.Messages...)

	for stepNum := 1; stepNum <= maxSteps; stepNum++ {
		stepReq := req
		stepReq.Messages = messages
		if hooks.PrepareStep != nil {
			stepReq = hooks.PrepareStep(ctx, stepNum, stepReq)
		}
		if hooks.OnStepStart != nil {
			hooks.OnStepStart(ctx, stepNum, stepReq)
		}

		if !emit(ctx, out, types.StepStartDelta{}) {
			return
		}

		collected, finishReason, stepUsage, streamErr := e.streamOnce(ctx, a, stepReq, out)
		if streamErr != nil {
			emit(ctx, out, types.ErrorDelta{Kind: "stream", Message: streamErr.Error()})
			return
		}

		e.recordUsageFromDelta(stepReq.ModelID.String(), stepUsage)

		if !emit(ctx, out, types.StepEndDelta{FinishReason: finishReason}) {
			return
		}

		step := StepResult{StepNumber: stepNum, FinishReason: finishReason}
		if hooks.OnStepFinish != nil {
			hooks.OnStepFinish(ctx, step)
		}

		toolCalls := collected.toolCalls()
		if len(toolCalls) == 0 || finishReason != types.FinishReasonToolCalls || stepNum == maxSteps {
			emit(ctx, out, types.DoneDelta{FinishReason: finishReason})
			return
		}

		toolResults, assistantMsg, err := e.executeTools(ctx, toolCalls, stepReq.Tools)
		if err != nil {
			emit(ctx, out, types.ErrorDelta{Kind: "tool-execution", Message: err.Error()})
			return
		}
		messages = append(messages, assistantMsg)
		for _, tr := range toolResults {
			messages = append(messages, types.NewToolResultMessage(tr.CallID, tr.PayloadJSON, tr.IsError))
		}
	}
}

// collectedStream accumulates the tool calls seen across a single step's
// delta sequence so runStream can decide whether to loop.
type collectedStream struct {
	calls map[string]*types.ToolCallContent
	order []string
}

func newCollectedStream() *collectedStream {
	return &collectedStream{calls: make(map[string]*types.ToolCallContent)}
}

func (c *collectedStream) toolCalls() []types.ToolCallContent {
	out := make([]types.ToolCallContent, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.calls[id])
	}
	return out
}

// streamOnce opens one streaming model call, retrying only the initial
// connection attempt per policy; once a channel is in hand, delta
// consumption is never retried, since reconnecting mid-stream would
// duplicate tokens already forwarded to the caller.
func (e *Engine) streamOnce(ctx context.Context, a provider.Adapter, req types.CanonicalRequest, out chan<- types.StreamDelta) (*collectedStream, types.FinishReason, types.Usage, error) {
	collected := newCollectedStream()
	finishReason := types.FinishReasonStop
	var usg types.Usage

	var ch <-chan types.StreamDelta
	err := retry.Do(ctx, e.RetryPolicy, func(ctx context.Context) error {
		var err error
		ch, err = a.Stream(ctx, req)
		return err
	})
	if err != nil {
		return collected, finishReason, usg, err
	}

	for delta := range ch {
		switch d := delta.(type) {
		case types.ToolCallStartDelta:
			collected.order = append(collected.order, d.ID)
			collected.calls[d.ID] = &types.ToolCallContent{ID: d.ID, Name: d.Name, Namespace: d.Namespace}
			emit(ctx, out, delta)
		case types.ToolCallArgsDeltaEvent:
			emit(ctx, out, delta)
		case types.ToolCallEndDelta:
			if call, ok := collected.calls[d.ID]; ok {
				call.ArgumentsJSON = []byte(d.ArgsFinalJSON)
			}
			emit(ctx, out, delta)
		case types.UsageDelta:
			usg = d.Usage
			emit(ctx, out, delta)
		case types.StepEndDelta:
			finishReason = d.FinishReason
		case types.DoneDelta:
			if finishReason == "" || finishReason == types.FinishReasonStop {
				finishReason = d.FinishReason
			}
		case types.ErrorDelta:
			return collected, finishReason, usg, &streamDeltaError{d}
		default:
			emit(ctx, out, delta)
		}
	}
	return collected, finishReason, usg, nil
}

type streamDeltaError struct {
	delta types.ErrorDelta
}

func (e *streamDeltaError) Error() string { return e.delta.Message }

func (e *Engine) recordUsageFromDelta(modelString string, u types.Usage) {
	if e.Usage == nil {
		return
	}
	if u.InputTokens == nil && u.OutputTokens == nil && u.TotalTokens == nil {
		return
	}
	e.Usage.Record(e.SessionID, modelString, u)
}

// emit sends delta on out, returning false if ctx was canceled first.
func emit(ctx context.Context, out chan<- types.StreamDelta, delta types.StreamDelta) bool {
	select {
	case out <- delta:
		return true
	case <-ctx.Done():
		return false
	}
}
