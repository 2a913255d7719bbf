// Package model populates the registry's lenient alias table: the bare
// names ("gpt", "claude", "gemini", ...) callers type when they don't care
// which exact dated snapshot serves the request.
package model

import (
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providers/anthropic"
	"github.com/digitallysavvy/go-ai/pkg/providers/google"
	"github.com/digitallysavvy/go-ai/pkg/providers/openai"
	"github.com/digitallysavvy/go-ai/pkg/registry"
)

// defaultAliases maps a bare alias to the vendor and model name it resolves
// to. Ties among vendors that could plausibly serve the same bare word
// (e.g. "mini" meaning several things) are avoided by scoping each alias
// to a single recognizable family; spec.md's provider-priority list still
// governs when ParseModelId leaves Vendor empty for ResolveString callers
// that type the alias as the whole model string.
var defaultAliases = map[string]types.ModelId{
	"gpt":         {Vendor: types.VendorOpenAI, Name: openai.ModelGPT4o},
	"gpt-4o":      {Vendor: types.VendorOpenAI, Name: openai.ModelGPT4o},
	"gpt-4o-mini": {Vendor: types.VendorOpenAI, Name: openai.ModelGPT4oMini},
	"gpt-4":       {Vendor: types.VendorOpenAI, Name: openai.ModelGPT4o},
	"gpt-4.1":     {Vendor: types.VendorOpenAI, Name: openai.ModelGPT41},
	"o1":          {Vendor: types.VendorOpenAI, Name: openai.ModelO1},
	"o3":          {Vendor: types.VendorOpenAI, Name: openai.ModelO3},
	"o3-mini":     {Vendor: types.VendorOpenAI, Name: openai.ModelO3Mini},
	"o4-mini":     {Vendor: types.VendorOpenAI, Name: openai.ModelO4Mini},

	"claude":        {Vendor: types.VendorAnthropic, Name: "claude-opus-4-6"},
	"claude-opus":   {Vendor: types.VendorAnthropic, Name: "claude-opus-4-6"},
	"claude-sonnet": {Vendor: types.VendorAnthropic, Name: "claude-sonnet-4-6"},
	"claude-haiku":  {Vendor: types.VendorAnthropic, Name: "claude-haiku-4-5"},

	"gemini":        {Vendor: types.VendorGoogle, Name: google.ModelGemini25Pro},
	"gemini-pro":    {Vendor: types.VendorGoogle, Name: google.ModelGemini25Pro},
	"gemini-flash":  {Vendor: types.VendorGoogle, Name: google.ModelGemini25Flash},
	"gemini-latest": {Vendor: types.VendorGoogle, Name: google.ModelGeminiProLatest},

	"grok":      {Vendor: types.VendorGrok, Name: "grok-4"},
	"grok-4":    {Vendor: types.VendorGrok, Name: "grok-4"},
	"grok-beta": {Vendor: types.VendorGrok, Name: "grok-beta"},
}

// RegisterDefaults installs the built-in bare-name aliases into r.
func RegisterDefaults(r *registry.Registry) {
	for alias, target := range defaultAliases {
		r.RegisterAlias(alias, target)
	}
}

// RegisterDefaultsGlobal installs the built-in aliases into the package
// registry's global instance. Callers that build their own Registry should
// use RegisterDefaults instead.
func RegisterDefaultsGlobal() {
	RegisterDefaults(registry.GetGlobalRegistry())
}
