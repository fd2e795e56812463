package domain

import (
	"context"
	"time"
)

// EventType identifies a lifecycle event.
type EventType string

const (
	EventCompile EventType = "compile"
	EventCheck   EventType = "check"
	EventRefine  EventType = "refine"
	EventReload  EventType = "reload"
)

// EventBase carries the fields every event shares.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// CompileEvent reports one program compilation against a theory.
type CompileEvent struct {
	EventBase
	Theory   string        `json:"theory"`
	Program  string        `json:"program"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// CheckEvent reports one homomorphism validation.
type CheckEvent struct {
	EventBase
	Source   string        `json:"source"`
	Target   string        `json:"target"`
	Duration time.Duration `json:"duration"`
	// Failures counts the validation errors found; zero means sound.
	Failures int   `json:"failures"`
	Err      error `json:"-"`
}

// RefineEvent reports a generator defined in terms of others.
type RefineEvent struct {
	EventBase
	Theory    string `json:"theory"`
	Generator string `json:"generator"`
	Err       error  `json:"-"`
}

// ReloadEvent reports a theory dropped from cache after its source changed.
type ReloadEvent struct {
	EventBase
	Theory string `json:"theory"`
}

// LifecycleHooks defines callbacks for workspace observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnCompile func(context.Context, *CompileEvent)
	OnCheck   func(context.Context, *CheckEvent)
	OnRefine  func(context.Context, *RefineEvent)
	OnReload  func(context.Context, *ReloadEvent)
}
