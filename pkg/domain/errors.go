package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every concrete error below unwraps to exactly one of them,
// so callers can branch with errors.Is and still read the details with errors.As.
var (
	// ErrNameCollision is returned when a name is already taken within its scope.
	ErrNameCollision = errors.New("name collision")
	// ErrUnknownObject is returned when an object name does not resolve.
	ErrUnknownObject = errors.New("unknown object")
	// ErrUnknownGenerator is returned when a generator name does not resolve.
	ErrUnknownGenerator = errors.New("unknown generator")
	// ErrUnknownVariable is returned when a program reads a variable that is not bound.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrTypeMismatch is returned when domain/codomain sequences disagree.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrArityMismatch is returned when a generator is invoked with the wrong number of arguments.
	ErrArityMismatch = errors.New("arity mismatch")
	// ErrValidationFailure is returned when a homomorphism fails validation.
	ErrValidationFailure = errors.New("validation failure")
)

// ErrTheoryNotFound is returned when a theory name cannot be found in a store or loader.
var ErrTheoryNotFound = errors.New("theory not found")

// Kind names what a failing name refers to.
type Kind string

const (
	KindObject    Kind = "object"
	KindGenerator Kind = "generator"
	KindVariable  Kind = "variable"
	KindEquation  Kind = "equation"
)

// NameCollisionError reports a name that is already bound in its scope.
type NameCollisionError struct {
	Name     string
	Existing Kind // what currently holds the name
	Adding   Kind // what the caller tried to add
}

func (e *NameCollisionError) Error() string {
	if e.Existing == e.Adding {
		return fmt.Sprintf("%s %q already defined", e.Adding, e.Name)
	}
	return fmt.Sprintf("cannot add %s %q: name already used by a %s", e.Adding, e.Name, e.Existing)
}

func (e *NameCollisionError) Unwrap() error { return ErrNameCollision }

// UnknownError reports a reference to a name absent from the relevant scope.
type UnknownError struct {
	Kind Kind
	Name string
	// Where optionally locates the reference (a generator, a statement...).
	Where string
}

func (e *UnknownError) Error() string {
	if e.Where != "" {
		return fmt.Sprintf("unknown %s %q in %s", e.Kind, e.Name, e.Where)
	}
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

func (e *UnknownError) Unwrap() error {
	switch e.Kind {
	case KindObject:
		return ErrUnknownObject
	case KindGenerator:
		return ErrUnknownGenerator
	default:
		return ErrUnknownVariable
	}
}

// TypeMismatchError reports two object sequences that were required to be equal.
type TypeMismatchError struct {
	// Op is the operation that detected the mismatch (compose, equation, output...).
	Op string
	// Subject names the offending term, variable or generator, if any.
	Subject  string
	Expected Seq
	Actual   Seq
}

func (e *TypeMismatchError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Subject != "" {
		fmt.Fprintf(&sb, " %q", e.Subject)
	}
	fmt.Fprintf(&sb, ": expected %s, got %s", e.Expected, e.Actual)
	return sb.String()
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// ArityMismatchError reports a generator invoked with the wrong number of
// arguments, or whose results are bound to the wrong number of names.
type ArityMismatchError struct {
	Generator string
	Expected  int
	Actual    int
	Results   bool // true when the targets, not the arguments, are miscounted
}

func (e *ArityMismatchError) Error() string {
	if e.Results {
		return fmt.Sprintf("generator %q returns %d result(s), cannot bind %d name(s)", e.Generator, e.Expected, e.Actual)
	}
	return fmt.Sprintf("generator %q takes %d argument(s), got %d", e.Generator, e.Expected, e.Actual)
}

func (e *ArityMismatchError) Unwrap() error { return ErrArityMismatch }

// Check identifies which homomorphism check failed.
type Check string

const (
	CheckTotality     Check = "totality"
	CheckType         Check = "type"
	CheckEquation     Check = "equation"
	CheckWellFormed   Check = "well-formed"
	CheckRewriteLimit Check = "rewrite-limit"
)

// ValidationError is a single failed check of a homomorphism.
type ValidationError struct {
	Check   Check
	Kind    Kind
	Subject string // the object, generator or equation that failed
	Reason  string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s check failed for %s %q: %s", e.Check, e.Kind, e.Subject, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes ErrValidationFailure and, when present, the underlying cause.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidationFailure}
	}
	return []error{ErrValidationFailure, e.Err}
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []*ValidationError {
	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		return nil
	}
	out := make([]*ValidationError, 0, len(aggr.Errors))
	for _, e := range aggr.Errors {
		var v *ValidationError
		if errors.As(e, &v) {
			out = append(out, v)
		}
	}
	return out
}
