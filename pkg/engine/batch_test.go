package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/registry"
	"github.com/digitallysavvy/go-ai/pkg/testutil"
)

func TestGenerateBatch_PreservesOrderAndCapsConcurrency(t *testing.T) {
	var inFlight, maxInFlight int32

	a := &testutil.MockAdapter{
		GenerateFunc: func(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				observed := atomic.LoadInt32(&maxInFlight)
				if cur <= observed || atomic.CompareAndSwapInt32(&maxInFlight, observed, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)

			text := req.Messages[0].Content[0].(types.TextContent).Text
			return &types.CanonicalResponse{
				Parts:        []types.ContentPart{types.TextContent{Text: text}},
				FinishReason: types.FinishReasonStop,
			}, nil
		},
	}

	reg := registry.NewRegistry()
	reg.RegisterAdapter(types.VendorOpenAI, a)
	e := New(reg)

	id := types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"}
	reqs := make([]types.CanonicalRequest, 10)
	for i := range reqs {
		reqs[i] = userReq(id)
		reqs[i].Messages[0].Content[0] = types.TextContent{Text: string(rune('a' + i))}
	}

	results := e.GenerateBatch(context.Background(), reqs, 3)

	require.Len(t, results, 10)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, string(rune('a'+i)), r.Result.Response.Text())
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(3))
}

func TestGenerateBatch_StopsAdmittingAfterCancel(t *testing.T) {
	a := &testutil.MockAdapter{}
	reg := registry.NewRegistry()
	reg.RegisterAdapter(types.VendorOpenAI, a)
	e := New(reg)

	id := types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"}
	reqs := []types.CanonicalRequest{userReq(id), userReq(id)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := e.GenerateBatch(ctx, reqs, 1)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}
