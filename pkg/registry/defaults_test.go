package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitallysavvy/go-ai/pkg/config"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

func TestRegisterBuiltins_OnlyRegistersConfiguredVendors(t *testing.T) {
	resolver := config.New()
	resolver.Override(types.VendorOpenAI, config.Credentials{APIKey: "sk-test"})
	resolver.Override(types.VendorAnthropic, config.Credentials{APIKey: "sk-ant-test"})

	reg := NewRegistry()
	registered := RegisterBuiltins(reg, resolver)

	assert.Contains(t, registered, types.VendorOpenAI)
	assert.Contains(t, registered, types.VendorAnthropic)
	assert.NotContains(t, registered, types.VendorGoogle)

	a, _, err := reg.Resolve(types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "openai", a.Name())

	_, _, err = reg.Resolve(types.ModelId{Vendor: types.VendorGoogle, Name: "gemini-2.0-flash"})
	assert.Error(t, err)
}
