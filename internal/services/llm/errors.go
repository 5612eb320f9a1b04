package llm

import (
	"errors"
	"fmt"
)

// FailureReason classifies why a model response could not be parsed.
type FailureReason int

const (
	// NoCandidateFound means no substring of the expected shape exists in the text.
	NoCandidateFound FailureReason = iota
	// MalformedJSON means a candidate substring was found but is not valid JSON.
	MalformedJSON
	// SchemaValidationFailed means the extracted value does not match the schema.
	SchemaValidationFailed
	// UnsupportedShape means the schema expects a root shape the parser cannot handle.
	UnsupportedShape
)

func (r FailureReason) String() string {
	switch r {
	case NoCandidateFound:
		return "no_candidate_found"
	case MalformedJSON:
		return "malformed_json"
	case SchemaValidationFailed:
		return "schema_validation_failed"
	case UnsupportedShape:
		return "unsupported_shape"
	default:
		return "unknown"
	}
}

// ParsingError reports a failed attempt to turn raw model output into a typed
// value. Raw carries the original response text for diagnostics.
type ParsingError struct {
	Reason FailureReason
	Raw    string
	cause  error
}

func newParsingError(reason FailureReason, raw string, cause error) *ParsingError {
	return &ParsingError{Reason: reason, Raw: raw, cause: cause}
}

func (e *ParsingError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("response parsing failed (%s): %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("response parsing failed (%s)", e.Reason)
}

func (e *ParsingError) Unwrap() error { return e.cause }

// ErrEmptyResponse marks a model invocation that returned no text. It is a
// degenerate transport failure and is never retried.
var ErrEmptyResponse = errors.New("model returned empty response")

// TransportError wraps a failure of the model invocation itself, as opposed to
// a failure to parse what the model said. Transport errors are fatal to the
// generation request.
type TransportError struct {
	Model string
	cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model invocation failed (model=%s): %v", e.Model, e.cause)
}

func (e *TransportError) Unwrap() error { return e.cause }
