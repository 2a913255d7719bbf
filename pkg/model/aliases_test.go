package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/registry"
	"github.com/digitallysavvy/go-ai/pkg/testutil"
)

func TestRegisterDefaults_ResolvesBareNames(t *testing.T) {
	r := registry.NewRegistry()
	RegisterDefaults(r)
	r.RegisterAdapter(types.VendorOpenAI, &testutil.MockAdapter{})
	r.RegisterAdapter(types.VendorAnthropic, &testutil.MockAdapter{})

	a, id, err := r.ResolveString("gpt-4o")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, types.VendorOpenAI, id.Vendor)
	assert.Equal(t, "gpt-4o", id.Name)

	_, id, err = r.ResolveString("claude")
	require.NoError(t, err)
	assert.Equal(t, types.VendorAnthropic, id.Vendor)
}

func TestRegisterDefaults_UnknownAliasFails(t *testing.T) {
	r := registry.NewRegistry()
	RegisterDefaults(r)
	_, _, err := r.ResolveString("not-a-real-alias")
	assert.Error(t, err)
}
