package toolcall

import "fmt"

// MethodToolsCall is the JSON-RPC method used for every tool invocation.
const MethodToolsCall = "tools/call"

// Request is one logical tool call. ID is assigned once by Client.NewRequest
// and reused if the call falls back to the streaming transport.
type Request struct {
	ID        int64
	Tool      string
	Arguments map[string]any
}

// Result is the outcome of a finished tool call. Exactly one of Value and
// Failure is set.
type Result struct {
	Value   map[string]any
	Failure *ToolError
}

// Err returns Failure as an error, or nil for a successful result.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// JobHandle identifies an asynchronous job started by a tool call.
type JobHandle string

// OutcomeKind tags the variants of Outcome.
type OutcomeKind int

const (
	// OutcomeResult carries a final Result.
	OutcomeResult OutcomeKind = iota
	// OutcomeJob carries a JobHandle to be polled. Result.Value still holds
	// the payload that announced the job.
	OutcomeJob
	// OutcomeUnsupported means the endpoint does not speak this transport.
	// It is consumed by the Negotiator and never returned to callers.
	OutcomeUnsupported
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResult:
		return "result"
	case OutcomeJob:
		return "job"
	case OutcomeUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is what a single transport call produced.
type Outcome struct {
	Kind   OutcomeKind
	Result Result
	Job    JobHandle
}

// JobState is the lifecycle state of an asynchronous job.
type JobState int

const (
	JobQueued JobState = iota
	JobProcessing
	JobCompleted
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobQueued:
		return "queued"
	case JobProcessing:
		return "processing"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	default:
		return fmt.Sprintf("JobState(%d)", int(s))
	}
}

// JobStatus is one answer of the status tool. Result is set for JobCompleted,
// Message for JobFailed.
type JobStatus struct {
	State   JobState
	Result  Result
	Message string
}

// Terminal reports whether no further polling is needed.
func (s JobStatus) Terminal() bool {
	return s.State == JobCompleted || s.State == JobFailed
}
