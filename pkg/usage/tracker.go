// Package usage aggregates token usage and estimated cost across a process
// and across individual sessions, a thin mutex-guarded accumulator the
// generation engine feeds after every step.
package usage

import (
	"sync"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

// Cost is a dollar estimate split by input/output, derived from a
// PriceTable entry and an observed Usage.
type Cost struct {
	Input  float64
	Output float64
}

func (c Cost) Total() float64 { return c.Input + c.Output }

func (c Cost) Add(other Cost) Cost {
	return Cost{Input: c.Input + other.Input, Output: c.Output + other.Output}
}

// Price is the per-million-token rate for a model, matching how every
// vendor publishes pricing.
type Price struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// PriceTable maps a model string (as it appears in CanonicalResponse) to
// its per-token pricing. Callers populate this from their own billing
// data; the tracker ships with no built-in prices since vendors change
// them frequently.
type PriceTable map[string]Price

// CostOf estimates the dollar cost of u for modelString, returning a zero
// Cost if modelString has no entry.
func (t PriceTable) CostOf(modelString string, u types.Usage) Cost {
	price, ok := t[modelString]
	if !ok {
		return Cost{}
	}
	var input, output float64
	if u.InputTokens != nil {
		input = float64(*u.InputTokens) / 1_000_000 * price.InputPerMillion
	}
	if u.OutputTokens != nil {
		output = float64(*u.OutputTokens) / 1_000_000 * price.OutputPerMillion
	}
	return Cost{Input: input, Output: output}
}

// Totals is the running aggregate for one scope (a session or the whole
// process): cumulative token usage, cost, and request count.
type Totals struct {
	Usage    types.Usage
	Cost     Cost
	Requests int64
}

// Tracker accumulates usage per session id and, separately, across the
// whole process. All methods are safe for concurrent use; the generation
// engine calls Record once per completed step.
type Tracker struct {
	mu       sync.Mutex
	prices   PriceTable
	sessions map[string]*Totals
	process  Totals
}

// New creates a Tracker. prices may be nil, in which case Cost fields stay
// zero and only token counts are tracked.
func New(prices PriceTable) *Tracker {
	return &Tracker{
		prices:   prices,
		sessions: make(map[string]*Totals),
	}
}

// Record folds u (from one step's CanonicalResponse, for modelString) into
// both the named session's totals and the process-wide totals. sessionID
// may be empty to track process-only usage.
func (t *Tracker) Record(sessionID, modelString string, u types.Usage) {
	cost := t.prices.CostOf(modelString, u)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.process.Usage = t.process.Usage.Add(u)
	t.process.Cost = t.process.Cost.Add(cost)
	t.process.Requests++

	if sessionID == "" {
		return
	}
	totals, ok := t.sessions[sessionID]
	if !ok {
		totals = &Totals{}
		t.sessions[sessionID] = totals
	}
	totals.Usage = totals.Usage.Add(u)
	totals.Cost = totals.Cost.Add(cost)
	totals.Requests++
}

// Session returns a snapshot of the named session's totals, or the zero
// value if nothing has been recorded for it.
func (t *Tracker) Session(sessionID string) Totals {
	t.mu.Lock()
	defer t.mu.Unlock()

	totals, ok := t.sessions[sessionID]
	if !ok {
		return Totals{}
	}
	return *totals
}

// Process returns a snapshot of the process-wide totals.
func (t *Tracker) Process() Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.process
}

// ResetSession drops the named session's accumulated totals without
// affecting the process-wide aggregate.
func (t *Tracker) ResetSession(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, sessionID)
}
