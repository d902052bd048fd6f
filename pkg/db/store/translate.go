package store

import (
	"fmt"
	"strings"

	"github.com/mwantia/olog/pkg/db/query"
)

// translator renders a query tree into a SQL predicate over the documents
// table aliased as d. Every leaf becomes a correlated EXISTS against the
// inverted index, nested queries bind a scope row that inner leaves are
// restricted to. Arguments are collected in placeholder order.
type translator struct {
	args  []any
	alias int
}

func (t *translator) next(prefix string) string {
	t.alias++
	return fmt.Sprintf("%s%d", prefix, t.alias)
}

func (t *translator) arg(v any) {
	t.args = append(t.args, v)
}

func (t *translator) translate(q query.Query, scope string) string {
	switch q := q.(type) {
	case nil, query.MatchAll:
		return "1 = 1"
	case query.MatchNone:
		return "1 = 0"
	case query.Term:
		return t.leaf(q.Field, scope, func(a string) string {
			t.arg(q.Value)
			return a + ".term = ?"
		})
	case query.Wildcard:
		pattern := q.Pattern
		if q.CaseInsensitive {
			pattern = strings.ToLower(pattern)
		}
		return t.leaf(q.Field, scope, func(a string) string {
			t.arg(globPattern(pattern))
			return a + ".term GLOB ?"
		})
	case query.Match:
		return t.match(q, scope)
	case query.MatchPhrase:
		return t.phrase(q, scope)
	case query.Range:
		return t.leaf(q.Field, scope, func(a string) string {
			conds := []string{"1 = 1"}
			if q.GTE != nil {
				t.arg(q.GTE.UnixMilli())
				conds = append(conds, a+".number >= ?")
			}
			if q.LTE != nil {
				t.arg(q.LTE.UnixMilli())
				conds = append(conds, a+".number <= ?")
			}
			return strings.Join(conds, " AND ")
		})
	case query.Bool:
		return t.boolean(q, scope)
	case query.Nested:
		return t.nested(q, scope)
	}
	panic(fmt.Sprintf("store: unsupported query node %T", q))
}

// leaf renders an EXISTS over the terms of a single field. cond receives the
// alias of the terms row and registers its own arguments.
func (t *translator) leaf(field, scope string, cond func(alias string) string) string {
	a := t.next("t")
	t.arg(field)
	var sb strings.Builder
	sb.WriteString("EXISTS (SELECT 1 FROM index_terms " + a)
	sb.WriteString(" WHERE " + a + ".collection = d.collection AND " + a + ".doc_id = d.id AND " + a + ".field = ?")
	if scope != "" {
		sb.WriteString(" AND " + withinScope(a, scope))
	}
	sb.WriteString(" AND " + cond(a) + ")")
	return sb.String()
}

func (t *translator) match(q query.Match, scope string) string {
	tokens := query.Tokenize(q.Text)
	if len(tokens) == 0 {
		return "1 = 0"
	}

	if q.Operator == query.And {
		parts := make([]string, 0, len(tokens))
		for _, token := range tokens {
			parts = append(parts, t.translate(query.Term{Field: q.Field, Value: token}, scope))
		}
		return strings.Join(parts, " AND ")
	}

	return t.leaf(q.Field, scope, func(a string) string {
		placeholders := make([]string, 0, len(tokens))
		for _, token := range tokens {
			t.arg(token)
			placeholders = append(placeholders, "?")
		}
		return a + ".term IN (" + strings.Join(placeholders, ", ") + ")"
	})
}

// phrase joins one terms row per token on consecutive positions of the same
// field value.
func (t *translator) phrase(q query.MatchPhrase, scope string) string {
	tokens := query.Tokenize(q.Text)
	if len(tokens) == 0 {
		return "1 = 0"
	}

	aliases := make([]string, len(tokens))
	for i := range tokens {
		aliases[i] = t.next("p")
	}
	first := aliases[0]

	var sb strings.Builder
	sb.WriteString("EXISTS (SELECT 1 FROM index_terms " + first)
	for i := 1; i < len(aliases); i++ {
		p := aliases[i]
		fmt.Fprintf(&sb, " JOIN index_terms %s ON %s.collection = %s.collection AND %s.doc_id = %s.doc_id AND %s.field = %s.field AND %s.scope = %s.scope AND %s.position = %s.position + %d",
			p, p, first, p, first, p, first, p, first, p, first, i)
	}

	t.arg(q.Field)
	sb.WriteString(" WHERE " + first + ".collection = d.collection AND " + first + ".doc_id = d.id AND " + first + ".field = ?")
	if scope != "" {
		sb.WriteString(" AND " + withinScope(first, scope))
	}
	for i, token := range tokens {
		t.arg(token)
		sb.WriteString(" AND " + aliases[i] + ".term = ?")
	}
	sb.WriteString(")")
	return sb.String()
}

func (t *translator) boolean(q query.Bool, scope string) string {
	var parts []string
	for _, clause := range q.Must {
		parts = append(parts, "("+t.translate(clause, scope)+")")
	}
	for _, clause := range q.Filter {
		parts = append(parts, "("+t.translate(clause, scope)+")")
	}
	for _, clause := range q.MustNot {
		parts = append(parts, "NOT ("+t.translate(clause, scope)+")")
	}

	switch minimum := q.MinimumShould(); {
	case minimum == 1:
		ors := make([]string, 0, len(q.Should))
		for _, clause := range q.Should {
			ors = append(ors, "("+t.translate(clause, scope)+")")
		}
		parts = append(parts, "("+strings.Join(ors, " OR ")+")")
	case minimum > 1:
		cases := make([]string, 0, len(q.Should))
		for _, clause := range q.Should {
			cases = append(cases, "(CASE WHEN ("+t.translate(clause, scope)+") THEN 1 ELSE 0 END)")
		}
		t.arg(minimum)
		parts = append(parts, "("+strings.Join(cases, " + ")+") >= ?")
	}

	if len(parts) == 0 {
		return "1 = 1"
	}
	return strings.Join(parts, " AND ")
}

// nested binds one scope row at the requested path. Inside a parent scope the
// row has to be a descendant of the parent's object.
func (t *translator) nested(q query.Nested, scope string) string {
	s := t.next("s")
	t.arg(q.Path)
	var sb strings.Builder
	sb.WriteString("EXISTS (SELECT 1 FROM index_scopes " + s)
	sb.WriteString(" WHERE " + s + ".collection = d.collection AND " + s + ".doc_id = d.id AND " + s + ".path = ?")
	if scope != "" {
		sb.WriteString(" AND substr(" + s + ".scope, 1, length(" + scope + ".scope) + 1) = " + scope + ".scope || '.'")
	}
	sb.WriteString(" AND (" + t.translate(q.Query, s) + "))")
	return sb.String()
}

// withinScope restricts a terms row to the object bound by the scope alias
// or any of its descendants.
func withinScope(alias, scope string) string {
	return "(" + alias + ".scope = " + scope + ".scope OR substr(" + alias + ".scope, 1, length(" + scope + ".scope) + 1) = " + scope + ".scope || '.')"
}

// globPattern converts a user pattern where only '*' is special into a
// SQLite GLOB pattern, quoting GLOB's other metacharacters.
func globPattern(pattern string) string {
	var sb strings.Builder
	for _, r := range pattern {
		switch r {
		case '?':
			sb.WriteString("[?]")
		case '[':
			sb.WriteString("[[]")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
