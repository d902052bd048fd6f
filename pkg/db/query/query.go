package query

import "time"

// Query is a node of the structured query tree handed to a DocumentStore.
// The tree is plain data, stores decide how to evaluate it.
type Query interface {
	isQuery()
}

// MatchAll matches every document of the collection.
type MatchAll struct{}

// MatchNone matches nothing.
type MatchNone struct{}

// Term matches a keyword field exactly.
type Term struct {
	Field string
	Value string
}

// Wildcard matches single terms against a pattern where '*' stands for any
// run of characters. No other character is special.
type Wildcard struct {
	Field           string
	Pattern         string
	CaseInsensitive bool
}

type Operator int

const (
	Or Operator = iota
	And
)

func (o Operator) String() string {
	if o == And {
		return "and"
	}
	return "or"
}

// Match analyzes Text into tokens and matches documents holding any (Or) or
// all (And) of them in the text field.
type Match struct {
	Field    string
	Text     string
	Operator Operator
}

// MatchPhrase matches the analyzed tokens of Text at consecutive positions.
type MatchPhrase struct {
	Field string
	Text  string
}

// Range matches date fields within inclusive bounds. A nil bound is open.
type Range struct {
	Field string
	GTE   *time.Time
	LTE   *time.Time
}

// Bool combines clauses. Must and Filter clauses are required, MustNot
// clauses are excluded and at least MinimumShouldMatch Should clauses have to
// match. A zero MinimumShouldMatch means one when there are no required
// clauses and zero otherwise.
type Bool struct {
	Must               []Query
	Filter             []Query
	Should             []Query
	MustNot            []Query
	MinimumShouldMatch int
}

// Nested evaluates Query against each nested object at Path on its own, so
// that every clause has to be satisfied by the same object.
type Nested struct {
	Path  string
	Query Query
}

func (MatchAll) isQuery()    {}
func (MatchNone) isQuery()   {}
func (Term) isQuery()        {}
func (Wildcard) isQuery()    {}
func (Match) isQuery()       {}
func (MatchPhrase) isQuery() {}
func (Range) isQuery()       {}
func (Bool) isQuery()        {}
func (Nested) isQuery()      {}

// IsEmpty reports whether the bool query carries no clause at all.
func (b Bool) IsEmpty() bool {
	return len(b.Must) == 0 && len(b.Filter) == 0 && len(b.Should) == 0 && len(b.MustNot) == 0
}

// MinimumShould resolves the effective number of should clauses required.
func (b Bool) MinimumShould() int {
	if len(b.Should) == 0 {
		return 0
	}
	if b.MinimumShouldMatch > 0 {
		return b.MinimumShouldMatch
	}
	if len(b.Must) == 0 && len(b.Filter) == 0 {
		return 1
	}
	return 0
}

// AnyOf returns the single clause itself or a should group over all clauses.
func AnyOf(clauses ...Query) Query {
	switch len(clauses) {
	case 0:
		return MatchNone{}
	case 1:
		return clauses[0]
	}
	return Bool{Should: clauses, MinimumShouldMatch: 1}
}

// AllOf returns the single clause itself or a must group over all clauses.
func AllOf(clauses ...Query) Query {
	switch len(clauses) {
	case 0:
		return MatchAll{}
	case 1:
		return clauses[0]
	}
	return Bool{Must: clauses}
}
