package pipeline

import (
	"errors"
	"fmt"
)

// Step identifies one stage of the generation pipeline.
type Step string

const (
	StepScript       Step = "script"
	StepSynthesis    Step = "synthesis"
	StepAudioUpload  Step = "audio-upload"
	StepImagePrompts Step = "image-prompts"
	StepImage        Step = "image"
)

// ErrMissingTopic rejects requests without a topic before any vendor call.
var ErrMissingTopic = errors.New("topic is required")

// ErrQuotaExhausted means the daily generation quota is spent; no vendor
// call was made and nothing was persisted.
var ErrQuotaExhausted = errors.New("generation quota exhausted")

// UpstreamError classifies a vendor failure by the pipeline step it aborted.
// Image-step failures never surface through it; they are swallowed per image.
type UpstreamError struct {
	Step Step
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("pipeline step %q failed: %v", e.Step, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError wraps a store write failure at the final pipeline step.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting podcast failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
