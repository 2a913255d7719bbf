// Package replicate implements the Replicate adapter. Unlike the
// chat-completions vendors, Replicate's API is asynchronous: a request
// creates a prediction, which the adapter then polls until it resolves.
// Replicate has no native streaming for arbitrary language models, so
// Stream synthesizes deltas by chunking the final text once the
// prediction completes.
package replicate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	internalhttp "github.com/digitallysavvy/go-ai/pkg/internal/http"
	"github.com/digitallysavvy/go-ai/pkg/provider"
	providererrors "github.com/digitallysavvy/go-ai/pkg/provider/errors"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

// DefaultBaseURL is the default Replicate API base URL.
const DefaultBaseURL = "https://api.replicate.com/v1"

// Config configures the Replicate adapter.
type Config struct {
	APIKey  string
	BaseURL string

	// PollInterval and MaxPollAttempts bound how long Generate/Stream
	// wait for a prediction to resolve.
	PollInterval    time.Duration
	MaxPollAttempts int
}

// Adapter implements provider.Adapter against Replicate's predictions API.
type Adapter struct {
	client          *internalhttp.Client
	pollInterval    time.Duration
	maxPollAttempts int
}

// New builds a Replicate adapter.
func New(cfg Config) *Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := internalhttp.NewClient(internalhttp.Config{
		BaseURL:      baseURL,
		ProviderName: "replicate",
		Headers: map[string]string{
			"Authorization": "Token " + cfg.APIKey,
		},
	})

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	maxAttempts := cfg.MaxPollAttempts
	if maxAttempts <= 0 {
		maxAttempts = 60
	}

	return &Adapter{client: client, pollInterval: pollInterval, maxPollAttempts: maxAttempts}
}

func (a *Adapter) Name() string { return "replicate" }

// Capabilities reports no tool or structured-output support: Replicate's
// arbitrary community models don't share a common tool-calling contract.
func (a *Adapter) Capabilities(modelName string) types.CapabilityTable {
	return types.CapabilityTable{
		types.CapabilityTools:            false,
		types.CapabilityStreaming:        true,
		types.CapabilityStructuredOutput: false,
		types.CapabilityImageInput:       false,
	}
}

func (a *Adapter) Generate(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
	prediction, err := a.runPrediction(ctx, req)
	if err != nil {
		return nil, err
	}

	return &types.CanonicalResponse{
		ID:           prediction.ID,
		ModelString:  req.ModelID.Name,
		Parts:        []types.ContentPart{types.TextContent{Text: predictionText(prediction)}},
		FinishReason: types.FinishReasonStop,
	}, nil
}

// Stream runs the prediction to completion and replays its text in
// fixed-size chunks, since Replicate has no incremental delta format for
// arbitrary models.
func (a *Adapter) Stream(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error) {
	prediction, err := a.runPrediction(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make(chan types.StreamDelta, 8)
	go func() {
		defer close(out)
		out <- types.ResponseStartedDelta{ID: prediction.ID, Model: req.ModelID.Name}

		text := predictionText(prediction)
		const chunkSize = 32
		for i := 0; i < len(text); i += chunkSize {
			end := i + chunkSize
			if end > len(text) {
				end = len(text)
			}
			out <- types.TextDeltaEvent{Text: text[i:end]}
		}

		out <- types.DoneDelta{FinishReason: types.FinishReasonStop}
	}()
	return out, nil
}

func (a *Adapter) runPrediction(ctx context.Context, req types.CanonicalRequest) (*replicatePrediction, error) {
	body := map[string]interface{}{
		"version": req.ModelID.Name,
		"input":   buildInput(req),
	}

	resp, err := a.client.Post(ctx, "/predictions", body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		return nil, internalhttp.ClassifyError("replicate", resp)
	}

	var prediction replicatePrediction
	if err := json.Unmarshal(resp.Body, &prediction); err != nil {
		return nil, providererrors.New(providererrors.KindProvider, "replicate", "failed to decode prediction: "+err.Error())
	}

	return a.poll(ctx, prediction.ID)
}

func (a *Adapter) poll(ctx context.Context, predictionID string) (*replicatePrediction, error) {
	for attempt := 0; attempt < a.maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := a.client.Get(ctx, "/predictions/"+predictionID)
		if err != nil {
			return nil, err
		}

		var prediction replicatePrediction
		if err := json.Unmarshal(resp.Body, &prediction); err != nil {
			return nil, providererrors.New(providererrors.KindProvider, "replicate", "failed to decode prediction: "+err.Error())
		}

		switch prediction.Status {
		case "succeeded":
			return &prediction, nil
		case "failed", "canceled":
			return nil, providererrors.New(providererrors.KindProvider, "replicate", fmt.Sprintf("prediction %s: %s", prediction.Status, prediction.Error))
		}

		timer := time.NewTimer(a.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, providererrors.New(providererrors.KindTimeout, "replicate", fmt.Sprintf("prediction timed out after %d attempts", a.maxPollAttempts))
}

func buildInput(req types.CanonicalRequest) map[string]interface{} {
	var b strings.Builder
	if req.SystemInstructions != "" {
		fmt.Fprintf(&b, "System: %s\n", req.SystemInstructions)
	}
	for _, msg := range req.Messages {
		fmt.Fprintf(&b, "%s: %s\n", capitalize(string(msg.Role)), msg.Text())
	}
	b.WriteString("Assistant: ")

	input := map[string]interface{}{"prompt": b.String()}
	s := req.Settings
	if s.Temperature != nil {
		input["temperature"] = *s.Temperature
	}
	if s.MaxTokens != nil {
		input["max_tokens"] = *s.MaxTokens
	}
	if s.TopP != nil {
		input["top_p"] = *s.TopP
	}
	return input
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func predictionText(p *replicatePrediction) string {
	switch v := p.Output.(type) {
	case string:
		return v
	case []interface{}:
		var b strings.Builder
		for _, item := range v {
			if s, ok := item.(string); ok {
				b.WriteString(s)
			}
		}
		return b.String()
	default:
		return ""
	}
}

type replicatePrediction struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Output interface{} `json:"output"`
	Error  string      `json:"error"`
}

var _ provider.Adapter = (*Adapter)(nil)
