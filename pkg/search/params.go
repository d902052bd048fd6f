package search

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidParameter is matched by every *ParameterError.
var ErrInvalidParameter = errors.New("invalid search parameter")

// ParameterError rejects a malformed value of a recognized parameter.
type ParameterError struct {
	Name   string
	Value  string
	Reason string
	Err    error
}

func (e *ParameterError) Error() string {
	msg := fmt.Sprintf("invalid value %q for search parameter %s", e.Value, e.Name)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParameterError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidParameter}
	}
	return []error{ErrInvalidParameter, e.Err}
}

// Param is one recognized search parameter with its typed values. Values of
// the same parameter are alternatives, distinct parameters all have to hold.
type Param interface {
	// Name returns the canonical parameter name.
	Name() string
	isParam()
}

// TitleParam matches title tokens, case-insensitive.
type TitleParam struct{ Values []string }

// LevelParam matches level tokens, case-insensitive.
type LevelParam struct{ Values []string }

// DescParam matches description words, each value is a bag of words and all
// values have to match.
type DescParam struct{ Values []string }

// PhraseParam matches the words of a value in order within the description.
type PhraseParam struct{ Values []string }

// OwnerParam matches the owner exactly.
type OwnerParam struct{ Values []string }

// TagsParam matches referenced tag names, '*' patterns allowed.
type TagsParam struct{ Values []string }

// LogbooksParam matches referenced logbook names, '*' patterns allowed.
type LogbooksParam struct{ Values []string }

// PropertiesParam matches embedded properties by dotted path.
type PropertiesParam struct{ Paths []PropertyPath }

// PropertyPath addresses name.attribute.value of an embedded property. An
// empty segment leaves that level unconstrained.
type PropertyPath struct {
	Name      string
	Attribute string
	Value     string
}

func (p PropertyPath) String() string {
	s := p.Name
	if p.Attribute != "" || p.Value != "" {
		s += "." + p.Attribute
	}
	if p.Value != "" {
		s += "." + p.Value
	}
	return s
}

// TimeParam bounds the creation time, or any event instant when
// IncludeEvents is set. A nil bound is open.
type TimeParam struct {
	Start         *time.Time
	End           *time.Time
	IncludeEvents bool
}

func (TitleParam) Name() string      { return "title" }
func (LevelParam) Name() string      { return "level" }
func (DescParam) Name() string       { return "desc" }
func (PhraseParam) Name() string     { return "phrase" }
func (OwnerParam) Name() string      { return "owner" }
func (TagsParam) Name() string       { return "tags" }
func (LogbooksParam) Name() string   { return "logbooks" }
func (PropertiesParam) Name() string { return "properties" }
func (TimeParam) Name() string       { return "time" }

func (TitleParam) isParam()      {}
func (LevelParam) isParam()      {}
func (DescParam) isParam()       {}
func (PhraseParam) isParam()     {}
func (OwnerParam) isParam()      {}
func (TagsParam) isParam()       {}
func (LogbooksParam) isParam()   {}
func (PropertiesParam) isParam() {}
func (TimeParam) isParam()       {}

type SortOrder int

const (
	SortDefault SortOrder = iota
	SortAscending
	SortDescending
	SortRelevance
)

func (s SortOrder) String() string {
	switch s {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	case SortRelevance:
		return "relevance"
	default:
		return "default"
	}
}

// Params is a validated search request.
type Params struct {
	// Filters holds at most one entry per parameter, in a fixed order.
	Filters []Param
	From    int
	Size    int
	Sort    SortOrder
	// Ignored lists parameter names that were not recognized.
	Ignored []string
}
