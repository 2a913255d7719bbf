package types

// StreamDelta is one event of a decoded provider stream. Exactly one
// concrete type below is populated per delta; Kind reports which.
//
// Per-stream invariants every adapter's decode_stream must uphold: exactly
// one ResponseStarted delta first; for each distinct tool-call ID K, a
// contiguous run ToolCallStart(K), ToolCallArgsDelta(K)*, ToolCallEnd(K);
// exactly one terminal Done or Error.
type StreamDelta interface {
	// DeltaKind returns the discriminant.
	DeltaKind() string
}

// ResponseStartedDelta opens a stream.
type ResponseStartedDelta struct {
	ID    string
	Model string
}

func (ResponseStartedDelta) DeltaKind() string { return "response-started" }

// TextDeltaEvent carries an incremental chunk of assistant text.
type TextDeltaEvent struct {
	Text    string
	Channel string
}

func (TextDeltaEvent) DeltaKind() string { return "text-delta" }

// ReasoningDeltaEvent carries an incremental chunk of reasoning/thinking
// text. It deliberately carries no token count: when a vendor reports
// reasoning token usage it travels on UsageDelta.Usage.OutputDetails
// instead, kept out of the per-delta hot path.
type ReasoningDeltaEvent struct {
	Text string
}

func (ReasoningDeltaEvent) DeltaKind() string { return "reasoning-delta" }

// ToolCallStartDelta opens a tool call with ID. Args accumulate across
// zero or more ToolCallArgsDeltaEvents until ToolCallEndDelta.
type ToolCallStartDelta struct {
	ID        string
	Name      string
	Namespace string
}

func (ToolCallStartDelta) DeltaKind() string { return "tool-call-start" }

// ToolCallArgsDeltaEvent carries one fragment of a tool call's arguments
// JSON. Fragments concatenate in order; the concatenation is not
// necessarily valid JSON until ToolCallEndDelta.
type ToolCallArgsDeltaEvent struct {
	ID           string
	JSONFragment string
}

func (ToolCallArgsDeltaEvent) DeltaKind() string { return "tool-call-args-delta" }

// ToolCallEndDelta closes a tool call with its final, complete arguments
// JSON.
type ToolCallEndDelta struct {
	ID            string
	ArgsFinalJSON string
}

func (ToolCallEndDelta) DeltaKind() string { return "tool-call-end" }

// StepStartDelta marks the start of one tool-loop step inside a stream.
type StepStartDelta struct{}

func (StepStartDelta) DeltaKind() string { return "step-start" }

// StepEndDelta marks the end of one tool-loop step inside a stream.
type StepEndDelta struct {
	FinishReason FinishReason
}

func (StepEndDelta) DeltaKind() string { return "step-end" }

// UsageDelta reports usage for the step or response in progress. Emitted
// at most once per step.
type UsageDelta struct {
	Usage Usage
}

func (UsageDelta) DeltaKind() string { return "usage" }

// DoneDelta is a terminal, successful end of stream.
type DoneDelta struct {
	FinishReason FinishReason
}

func (DoneDelta) DeltaKind() string { return "done" }

// ErrorDelta is a terminal, unsuccessful end of stream.
type ErrorDelta struct {
	Kind       string
	Message    string
	RetryAfter *int
}

func (ErrorDelta) DeltaKind() string { return "error" }
