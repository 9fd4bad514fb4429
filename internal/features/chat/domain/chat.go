package domain

import (
	"fmt"
	"time"
)

// Multipart field names shared by the browser, the edge and the agent.
const (
	FieldUserPrompt      = "user_prompt"
	FieldBrandContext    = "brand_context"
	FieldAudienceSummary = "audience_summary"
	FieldImage           = "image"
	FieldVideo           = "video"
)

// DefaultAudienceSummary is used when a submission carries no persona summary.
const DefaultAudienceSummary = "A general consumer."

// Attachment is a file part received from the browser.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ChatSubmission is one accepted multipart body from the browser.
type ChatSubmission struct {
	UserPrompt      string
	BrandContext    string
	AudienceSummary string
	Image           *Attachment
	Video           *Attachment

	// FieldOrder lists the known fields in the order they were received.
	FieldOrder []string
}

// Fields returns the names that will be forwarded upstream, in receipt order.
// Text fields are always present; file fields only when attached.
func (s *ChatSubmission) Fields() []string {
	present := map[string]bool{
		FieldUserPrompt:      true,
		FieldBrandContext:    true,
		FieldAudienceSummary: true,
		FieldImage:           s.Image != nil,
		FieldVideo:           s.Video != nil,
	}

	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		if present[name] && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range s.FieldOrder {
		add(name)
	}
	for _, name := range []string{FieldUserPrompt, FieldBrandContext, FieldAudienceSummary, FieldImage, FieldVideo} {
		add(name)
	}
	return out
}

// AgentResponse is the success payload of the upstream agent.
type AgentResponse struct {
	AgentResponse string `json:"agent_response"`
}

// IntakeErrorKind classifies a rejected submission.
type IntakeErrorKind string

const (
	IntakeTooLarge   IntakeErrorKind = "too_large"
	IntakeBadRequest IntakeErrorKind = "bad_request"
)

// IntakeError is returned when a browser submission cannot be accepted.
type IntakeError struct {
	Kind   IntakeErrorKind
	Reason string
	Err    error
}

func (e *IntakeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *IntakeError) Unwrap() error { return e.Err }

// OutcomeKind is the closed set of ways a chat request can end.
type OutcomeKind string

const (
	OutcomeOK            OutcomeKind = "ok"
	OutcomeTooLarge      OutcomeKind = "too_large"
	OutcomeBadRequest    OutcomeKind = "bad_request"
	OutcomeMisconfigured OutcomeKind = "misconfigured"
	OutcomeUpstreamError OutcomeKind = "upstream_error"
	OutcomeTimeout       OutcomeKind = "timeout"
	OutcomeTransport     OutcomeKind = "transport"
)

// Outcome is the result of handling one chat request.
type Outcome struct {
	Kind OutcomeKind
	// Status is the upstream HTTP status, when one was observed.
	Status int
	// Body is the raw upstream JSON on OutcomeOK.
	Body []byte
	// UpstreamBody is the leading excerpt of a non-2xx upstream body. It is
	// logged and never returned to the browser.
	UpstreamBody string
	Err          error
	Duration     time.Duration
}

// OutcomeFromIntake converts an intake rejection into an outcome.
func OutcomeFromIntake(err *IntakeError) Outcome {
	if err.Kind == IntakeTooLarge {
		return Outcome{Kind: OutcomeTooLarge, Err: err}
	}
	return Outcome{Kind: OutcomeBadRequest, Err: err}
}

// RequestState tracks a chat request through the edge.
type RequestState string

const (
	StateReceived       RequestState = "received"
	StateParsed         RequestState = "parsed"
	StateForwarded      RequestState = "forwarded"
	StateCompleted      RequestState = "completed"
	StateRejected       RequestState = "rejected"
	StateMisconfigured  RequestState = "misconfigured"
	StateUpstreamFailed RequestState = "upstream_failed"
	StateTimedOut       RequestState = "timed_out"
	StateCrashed        RequestState = "crashed"
)

// TerminalState returns the state a request ends in for this outcome.
func (o Outcome) TerminalState() RequestState {
	switch o.Kind {
	case OutcomeOK:
		return StateCompleted
	case OutcomeTooLarge, OutcomeBadRequest:
		return StateRejected
	case OutcomeMisconfigured:
		return StateMisconfigured
	case OutcomeUpstreamError:
		return StateUpstreamFailed
	case OutcomeTimeout:
		return StateTimedOut
	default:
		return StateCrashed
	}
}
