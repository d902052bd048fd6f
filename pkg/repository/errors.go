package repository

import (
	"errors"
	"fmt"
	"strings"
)

// Failure categories. Every error returned by a repository matches exactly
// one of them with errors.Is, the infrastructure cause stays reachable too.
var (
	// ErrNotFound reports an absent point lookup or delete target.
	ErrNotFound = errors.New("not found")
	// ErrReference reports a log referencing a missing or inactive entity.
	ErrReference = errors.New("invalid reference")
	// ErrPersistence reports a rejected write or an ambiguous write status.
	ErrPersistence = errors.New("persistence failure")
	// ErrLookup reports an infrastructure failure during a read.
	ErrLookup = errors.New("lookup failure")
	// ErrUnsupported reports an operation the repositories never offer.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrForbidden reports an operation refused by policy.
	ErrForbidden = errors.New("forbidden operation")
)

// OperationError carries the operation and entity identity of a failure.
type OperationError struct {
	Op   string
	Kind string
	ID   string
	// Err is one of the failure categories above.
	Err error
	// Cause is the underlying error, if any.
	Cause error
}

func (e *OperationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	sb.WriteString(" ")
	sb.WriteString(e.Kind)
	if e.ID != "" {
		fmt.Fprintf(&sb, " '%s'", e.ID)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *OperationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Reference is one problem found while validating the references of a log.
type Reference struct {
	Kind   string
	Name   string
	Reason string
}

const (
	ReasonMissing  = "does not exist"
	ReasonInactive = "is inactive"
	ReasonRequired = "is required"
)

func (r Reference) String() string {
	if r.Name == "" {
		return fmt.Sprintf("a %s %s", r.Kind, r.Reason)
	}
	return fmt.Sprintf("%s '%s' %s", r.Kind, r.Name, r.Reason)
}

// ReferenceError lists every invalid reference of a log at once.
type ReferenceError struct {
	Missing []Reference
}

func (e *ReferenceError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, ref := range e.Missing {
		parts = append(parts, ref.String())
	}
	return fmt.Sprintf("%s: %s", ErrReference, strings.Join(parts, ", "))
}

func (e *ReferenceError) Unwrap() error {
	return ErrReference
}

// ItemFailure names a failed item of a batch and why it failed.
type ItemFailure struct {
	ID     string
	Reason string
}

// BulkError fails a whole batch and enumerates every failed item.
type BulkError struct {
	Kind     string
	Failures []ItemFailure
	// Err is the failure category, ErrPersistence unless set.
	Err error
}

func (e *BulkError) category() error {
	if e.Err == nil {
		return ErrPersistence
	}
	return e.Err
}

func (e *BulkError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.ID, f.Reason))
	}
	return fmt.Sprintf("%s: %d %s item(s) failed: [%s]", e.category(), len(e.Failures), e.Kind, strings.Join(parts, "; "))
}

func (e *BulkError) Unwrap() error {
	return e.category()
}

// itemID identifies a batch item, falling back to its position when it has
// no identity yet.
func itemID(key string, index int) string {
	if key == "" {
		return fmt.Sprintf("#%d", index)
	}
	return key
}
