package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the closed set of failure conditions the pipeline can surface.
type ErrorKind string

const (
	// ErrNoFoodDetected: the image contains no food. Terminal, user-facing,
	// never retried.
	ErrNoFoodDetected ErrorKind = "no_food_detected"
	// ErrRecognitionFailed: primary and fallback recognition both failed.
	ErrRecognitionFailed ErrorKind = "recognition_failed"
	// ErrTransientOverload: recognition failed with an overload signature;
	// the caller may retry the whole run after a delay.
	ErrTransientOverload ErrorKind = "transient_overload"
	// ErrClassificationFailed: the fallback label classifier itself errored.
	// Internal; surfaced to the caller as recognition_failed.
	ErrClassificationFailed ErrorKind = "classification_failed"
)

// PipelineError is the only error type the pipeline hands to its caller.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// UserMessage is the human-readable text suitable for direct display.
func (e *PipelineError) UserMessage() string {
	switch e.Kind {
	case ErrNoFoodDetected:
		return "No food detected in the image"
	case ErrTransientOverload:
		return "Recognition service is busy, please try again"
	default:
		return "Food recognition failed"
	}
}

// NewPipelineError builds a pipeline error of the given kind wrapping an
// optional cause.
func NewPipelineError(kind ErrorKind, msg string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: msg, Err: err}
}

// AsPipelineError unwraps err into a *PipelineError if it carries one.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a pipeline error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	pe, ok := AsPipelineError(err)
	return ok && pe.Kind == kind
}

// The vendors signal conditions through response text rather than typed
// errors, so the fragile substring matching is confined to this file.

// noFoodPhrases are the recognizer outputs that mean "there is no food
// here" rather than "the call failed". Matched case-insensitively.
var noFoodPhrases = []string{
	"no food",
	"can't identify",
	"cannot identify",
	"no dish",
	"unable to determine",
	"not a food",
}

// IsNoFoodText reports whether a recognizer response says the image holds
// no food. An empty answer or a bare "[]" counts.
func IsNoFoodText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "[]" {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range noFoodPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

var overloadSignatures = []string{
	"503",
	"service overloaded",
	"overloaded",
	"service unavailable",
	"resource has been exhausted",
}

// IsOverload reports whether an error's text matches a transient-overload
// signature from the primary recognizer.
func IsOverload(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range overloadSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
