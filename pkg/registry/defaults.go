package registry

import (
	"github.com/digitallysavvy/go-ai/pkg/config"
	"github.com/digitallysavvy/go-ai/pkg/provider"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providers/anthropic"
	"github.com/digitallysavvy/go-ai/pkg/providers/google"
	"github.com/digitallysavvy/go-ai/pkg/providers/groq"
	"github.com/digitallysavvy/go-ai/pkg/providers/mistral"
	"github.com/digitallysavvy/go-ai/pkg/providers/openai"
	"github.com/digitallysavvy/go-ai/pkg/providers/openrouter"
	"github.com/digitallysavvy/go-ai/pkg/providers/replicate"
	"github.com/digitallysavvy/go-ai/pkg/providers/together"
	"github.com/digitallysavvy/go-ai/pkg/providers/xai"
)

// builtinVendor pairs a Vendor with the constructor that builds its adapter
// from resolved config.Credentials. Azure and Custom are deliberately left
// out: both need fields (ResourceName / Name+AuthHeader) that aren't part
// of the generic Credentials shape, so callers wire them up by hand with
// RegisterAdapter instead.
var builtinVendors = []struct {
	vendor types.Vendor
	build  func(config.Credentials) provider.Adapter
}{
	{types.VendorOpenAI, func(c config.Credentials) provider.Adapter {
		return openai.New(openai.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	}},
	{types.VendorAnthropic, func(c config.Credentials) provider.Adapter {
		return anthropic.New(anthropic.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	}},
	{types.VendorGoogle, func(c config.Credentials) provider.Adapter {
		return google.New(google.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	}},
	{types.VendorGrok, func(c config.Credentials) provider.Adapter {
		return xai.New(xai.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	}},
	{types.VendorOpenRouter, func(c config.Credentials) provider.Adapter {
		return openrouter.New(openrouter.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	}},
	{types.VendorTogether, func(c config.Credentials) provider.Adapter {
		return together.New(together.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	}},
	{types.VendorReplicate, func(c config.Credentials) provider.Adapter {
		return replicate.New(replicate.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	}},
	{"groq", func(c config.Credentials) provider.Adapter {
		return groq.New(groq.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	}},
	{"mistral", func(c config.Credentials) provider.Adapter {
		return mistral.New(mistral.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	}},
}

// RegisterBuiltins resolves credentials for every vendor with a
// Credentials-shaped Config through resolver and registers whichever ones
// have an API key configured. Vendors with no credentials available are
// skipped rather than erroring, since a caller is rarely using every
// vendor at once. It returns the vendors it actually registered.
func RegisterBuiltins(reg *Registry, resolver *config.Resolver) []types.Vendor {
	var registered []types.Vendor
	for _, bv := range builtinVendors {
		creds, err := resolver.Resolve(bv.vendor)
		if err != nil {
			continue
		}
		reg.RegisterAdapter(bv.vendor, bv.build(creds))
		registered = append(registered, bv.vendor)
	}
	return registered
}
