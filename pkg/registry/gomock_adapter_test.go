package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/digitallysavvy/go-ai/pkg/internal/mockprovider"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

func TestCheckCapabilities_WithGeneratedMock(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	a := mockprovider.NewMockAdapter(ctrl)
	a.EXPECT().Capabilities("gpt-4o").Return(types.CapabilityTable{types.CapabilityTools: true}).AnyTimes()

	req := types.CanonicalRequest{
		ModelID: types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"},
		Tools:   []types.ToolDefinition{{Name: "lookup"}},
	}

	assert.NoError(t, CheckCapabilities(a, req))
}

func TestCheckCapabilities_WithGeneratedMock_RejectsUnsupportedTools(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	a := mockprovider.NewMockAdapter(ctrl)
	a.EXPECT().Capabilities("basic").Return(types.CapabilityTable{}).AnyTimes()

	req := types.CanonicalRequest{
		ModelID: types.ModelId{Vendor: types.VendorOpenAI, Name: "basic"},
		Tools:   []types.ToolDefinition{{Name: "lookup"}},
	}

	assert.Error(t, CheckCapabilities(a, req))
}

func TestRegistry_ResolveAndGenerate_WithGeneratedMock(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	a := mockprovider.NewMockAdapter(ctrl)
	a.EXPECT().Name().Return("openai").AnyTimes()

	r := NewRegistry()
	r.RegisterAdapter(types.VendorOpenAI, a)

	resolved, id, err := r.Resolve(types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"})
	assert.NoError(t, err)
	assert.Equal(t, "gpt-4o", id.Name)
	assert.Equal(t, "openai", resolved.Name())
}
