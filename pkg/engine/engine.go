// Package engine implements the public generate_text / stream_text entry
// points: request validation, cache lookup, the tool-call loop, retry
// handling, and usage accounting, all driven against a resolved
// provider.Adapter.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/digitallysavvy/go-ai/pkg/cache"
	"github.com/digitallysavvy/go-ai/pkg/internal/retry"
	"github.com/digitallysavvy/go-ai/pkg/jsonparser"
	"github.com/digitallysavvy/go-ai/pkg/provider"
	provider_errors "github.com/digitallysavvy/go-ai/pkg/provider/errors"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/registry"
	"github.com/digitallysavvy/go-ai/pkg/schema"
	"github.com/digitallysavvy/go-ai/pkg/telemetry"
	"github.com/digitallysavvy/go-ai/pkg/usage"
)

// defaultMaxSteps is the tool loop cap used when neither the request nor
// the caller configures one.
const defaultMaxSteps = 1

// StepResult captures one request/response cycle of the tool loop.
type StepResult struct {
	StepNumber   int
	Response     *types.CanonicalResponse
	ToolResults  []types.ToolResult
	FinishReason types.FinishReason
	Usage        types.Usage
}

// Hooks lets callers observe and adjust the loop without subclassing the
// engine: PrepareStep may rewrite the request before each model call,
// OnStepStart/OnStepFinish observe each step as it begins and ends.
type Hooks struct {
	PrepareStep  func(ctx context.Context, stepNumber int, req types.CanonicalRequest) types.CanonicalRequest
	OnStepStart  func(ctx context.Context, stepNumber int, req types.CanonicalRequest)
	OnStepFinish func(ctx context.Context, step StepResult)
}

// Engine orchestrates generation against the model registry: resolving a
// ModelId to an adapter, validating capabilities, running the retry
// policy around each HTTP call, consulting the response cache on the
// unary path, and driving the tool-call loop across steps.
type Engine struct {
	Registry    *registry.Registry
	RetryPolicy retry.Policy
	Cache       *cache.Cache
	CacheTTL    time.Duration
	Usage       *usage.Tracker
	Telemetry   *telemetry.Settings
	SessionID   string
}

// New builds an Engine against the given registry with sane defaults: the
// package-default retry policy and no caching or usage tracking unless the
// caller sets Cache/Usage afterward.
func New(reg *registry.Registry) *Engine {
	return &Engine{
		Registry:    reg,
		RetryPolicy: retry.DefaultPolicy(),
	}
}

// Result is the outcome of GenerateText: the final response plus the full
// step history that produced it.
type Result struct {
	RequestID string
	Response  *types.CanonicalResponse
	Steps     []StepResult
	Usage     types.Usage
}

// GenerateText runs the unary tool-call loop: it validates req, resolves
// an adapter, performs cache lookup, calls the adapter (retried per
// policy), executes any tools the model calls, and loops until the model
// stops calling tools or the step budget is exhausted.
func (e *Engine) GenerateText(ctx context.Context, req types.CanonicalRequest, hooks Hooks) (*Result, error) {
	adapter, resolvedID, err := e.resolve(req)
	if err != nil {
		return nil, err
	}
	req.ModelID = resolvedID

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var span trace.Span
	ctx, span = e.startSpan(ctx, "ai.generateText", req)
	if span != nil {
		defer span.End()
	}

	maxSteps := req.Settings.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	result := &Result{RequestID: uuid.NewString()}
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

		resp, err := e.generateOnce(ctx, adapter, stepReq)
		if err != nil {
			return nil, err
		}

		step := StepResult{
			StepNumber:   stepNum,
			Response:     resp,
			FinishReason: resp.FinishReason,
		}
		if resp.Usage != nil {
			step.Usage = *resp.Usage
			result.Usage = result.Usage.Add(*resp.Usage)
		}
		e.recordUsage(resp)

		toolCalls := resp.ToolCalls()
		if len(toolCalls) == 0 || resp.FinishReason != types.FinishReasonToolCalls {
			result.Response = resp
			result.Steps = append(result.Steps, step)
			if hooks.OnStepFinish != nil {
				hooks.OnStepFinish(ctx, step)
			}
			break
		}

		toolResults, assistantMsg, err := e.executeTools(ctx, toolCalls, stepReq.Tools)
		if err != nil {
			return nil, err
		}
		step.ToolResults = toolResults
		result.Steps = append(result.Steps, step)
		if hooks.OnStepFinish != nil {
			hooks.OnStepFinish(ctx, step)
		}

		messages = append(messages, assistantMsg)
		for _, tr := range toolResults {
			messages = append(messages, types.NewToolResultMessage(tr.CallID, tr.PayloadJSON, tr.IsError))
		}

		if stepNum == maxSteps {
			result.Response = resp
		}
	}

	return result, nil
}

// generateOnce performs a single cache-checked, retried model call.
func (e *Engine) generateOnce(ctx context.Context, a provider.Adapter, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
	if e.Cache != nil {
		if resp, ok := e.Cache.Get(req, 0); ok {
			return resp, nil
		}
	}

	var resp *types.CanonicalResponse
	err := retry.Do(ctx, e.RetryPolicy, func(ctx context.Context) error {
		var genErr error
		resp, genErr = a.Generate(ctx, req)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	if e.Cache != nil {
		ttl := e.CacheTTL
		if len(req.Tools) > 0 && ttl > 0 {
			ttl /= 4
		}
		e.Cache.Store(req, resp, ttl, cache.PriorityNormal)
	}
	return resp, nil
}

// executeTools runs every tool call the model emitted in step order,
// synthesizing the assistant message that carries the calls and the
// ToolResult list to append as Tool messages.
func (e *Engine) executeTools(ctx context.Context, calls []types.ToolCallContent, defs []types.ToolDefinition) ([]types.ToolResult, types.Message, error) {
	assistantMsg := types.Message{ID: uuid.NewString(), Role: types.RoleAssistant}
	var results []types.ToolResult

	for _, call := range calls {
		assistantMsg.Content = append(assistantMsg.Content, call)

		def := findTool(defs, call.Name)
		if def == nil || def.Execute == nil {
			return nil, types.Message{}, provider_errors.NewToolExecutionError(call.Name, call.ID, "no executor registered for tool", nil)
		}

		argsJSON := call.ArgumentsJSON
		if !json.Valid(argsJSON) {
			argsJSON = []byte(jsonparser.FixJSON(string(argsJSON)))
		}
		call.ArgumentsJSON = argsJSON

		payload, err := def.Execute(ctx, call)
		if err != nil {
			results = append(results, types.ToolResult{
				CallID:      call.ID,
				PayloadJSON: []byte(fmt.Sprintf(`{"error":%q}`, err.Error())),
				IsError:     true,
			})
			continue
		}
		results = append(results, types.ToolResult{CallID: call.ID, PayloadJSON: payload})
	}

	return results, assistantMsg, nil
}

func findTool(defs []types.ToolDefinition, name string) *types.ToolDefinition {
	for i := range defs {
		if defs[i].Name == name {
			return &defs[i]
		}
	}
	return nil
}

func (e *Engine) resolve(req types.CanonicalRequest) (provider.Adapter, types.ModelId, error) {
	reg := e.Registry
	if reg == nil {
		reg = registry.GetGlobalRegistry()
	}
	a, id, err := reg.Resolve(req.ModelID)
	if err != nil {
		return nil, id, err
	}
	req.ModelID = id
	if err := registry.CheckCapabilities(a, req); err != nil {
		return nil, id, err
	}
	return a, id, nil
}

func validateRequest(req types.CanonicalRequest) error {
	if len(req.Messages) == 0 {
		return provider_errors.NewValidationError("request must have at least one message", nil)
	}
	seen := make(map[string]bool, len(req.Tools))
	for _, t := range req.Tools {
		if seen[t.Name] {
			return provider_errors.NewValidationError("duplicate tool name: "+t.Name, nil)
		}
		seen[t.Name] = true
		if len(t.ParametersSchema) > 0 {
			if err := schema.ValidateSchemaDocument(t.ParametersSchema); err != nil {
				return provider_errors.NewValidationError(
					"tool "+t.Name+" has a malformed parameters schema: "+err.Error(), err)
			}
		}
	}
	if req.Settings.MaxSteps < 0 {
		return provider_errors.NewValidationError("max_steps must be >= 0", nil)
	}
	return nil
}

func (e *Engine) recordUsage(resp *types.CanonicalResponse) {
	if e.Usage == nil || resp.Usage == nil {
		return
	}
	e.Usage.Record(e.SessionID, resp.ModelString, *resp.Usage)
}

func (e *Engine) startSpan(ctx context.Context, name string, req types.CanonicalRequest) (context.Context, trace.Span) {
	if e.Telemetry == nil || !e.Telemetry.IsEnabled {
		return ctx, nil
	}
	tracer := telemetry.GetTracer(e.Telemetry)
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(
		attribute.String("ai.model.provider", string(req.ModelID.Vendor)),
		attribute.String("ai.model.id", req.ModelID.Name),
	)
	return ctx, span
}
