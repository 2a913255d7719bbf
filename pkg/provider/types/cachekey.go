package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// CacheKey is a deterministic fingerprint of a CanonicalRequest. Two
// requests that are semantically identical produce equal CacheKeys across
// processes, regardless of map/JSON key ordering.
type CacheKey string

// cacheKeyMaterial is the canonical, order-independent projection of a
// CanonicalRequest that feeds the fingerprint. Struct field order here is
// fixed by Go's json encoder and has no bearing on hash stability; what
// matters is that every slice inside it is sorted before hashing.
type cacheKeyMaterial struct {
	ModelID            ModelId               `json:"modelId"`
	SystemInstructions string                `json:"systemInstructions"`
	Messages           []canonicalMessage    `json:"messages"`
	Tools              []canonicalToolDigest `json:"tools"`
	Settings           map[string]any        `json:"settings"`
}

type canonicalMessage struct {
	Role    Role            `json:"role"`
	Channel string          `json:"channel,omitempty"`
	Content []canonicalPart `json:"content"`
}

type canonicalPart struct {
	Type string `json:"type"`
	// Bytes is the canonical JSON encoding of the part, used only as
	// fingerprint material (field order inside comes from Go's struct
	// field order, which is fixed per part type, so this is stable).
	Bytes json.RawMessage `json:"bytes"`
}

type canonicalToolDigest struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

// NewCacheKey computes req's fingerprint. Settings fields are projected
// through a map so key order never affects the hash; json.Marshal sorts
// map keys lexicographically.
func NewCacheKey(req CanonicalRequest) CacheKey {
	material := cacheKeyMaterial{
		ModelID:            req.ModelID,
		SystemInstructions: req.SystemInstructions,
		Messages:           make([]canonicalMessage, 0, len(req.Messages)),
		Settings:           settingsToMap(req.Settings),
	}

	for _, msg := range req.Messages {
		cm := canonicalMessage{Role: msg.Role, Channel: msg.Channel}
		for _, part := range msg.Content {
			b, _ := json.Marshal(part)
			cm.Content = append(cm.Content, canonicalPart{Type: part.ContentType(), Bytes: b})
		}
		material.Messages = append(material.Messages, cm)
	}

	tools := make([]canonicalToolDigest, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, canonicalToolDigest{Name: t.Name, Schema: t.ParametersSchema})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	material.Tools = tools

	// json.Marshal of a map[string]any sorts keys, giving a stable byte
	// stream regardless of insertion order.
	b, err := json.Marshal(material)
	if err != nil {
		// Marshal can only fail here on a non-serializable settings value,
		// which settingsToMap never produces.
		panic("cachekey: " + err.Error())
	}

	sum := sha256.Sum256(b)
	return CacheKey(hex.EncodeToString(sum[:]))
}

func settingsToMap(s GenerationSettings) map[string]any {
	m := map[string]any{}
	if s.MaxTokens != nil {
		m["maxTokens"] = *s.MaxTokens
	}
	if s.Temperature != nil {
		m["temperature"] = *s.Temperature
	}
	if s.TopP != nil {
		m["topP"] = *s.TopP
	}
	if s.TopK != nil {
		m["topK"] = *s.TopK
	}
	if s.FrequencyPenalty != nil {
		m["frequencyPenalty"] = *s.FrequencyPenalty
	}
	if s.PresencePenalty != nil {
		m["presencePenalty"] = *s.PresencePenalty
	}
	if len(s.StopSequences) > 0 {
		sorted := append([]string(nil), s.StopSequences...)
		sort.Strings(sorted)
		m["stopSequences"] = sorted
	}
	if s.Seed != nil {
		m["seed"] = *s.Seed
	}
	if s.ResponseFormat != nil {
		m["responseFormat"] = *s.ResponseFormat
	}
	if s.ToolChoice != nil {
		m["toolChoice"] = *s.ToolChoice
	}
	if s.ParallelToolCalls != nil {
		m["parallelToolCalls"] = *s.ParallelToolCalls
	}
	if s.ReasoningEffort != "" {
		m["reasoningEffort"] = s.ReasoningEffort
	}
	if s.MaxSteps != 0 {
		m["maxSteps"] = s.MaxSteps
	}
	return m
}

// CachePriority ranks cache entries for eviction purposes beyond plain
// recency.
type CachePriority string

const (
	CachePriorityLow      CachePriority = "low"
	CachePriorityNormal   CachePriority = "normal"
	CachePriorityHigh     CachePriority = "high"
	CachePriorityCritical CachePriority = "critical"
)
