package search

import (
	"strings"

	"github.com/mwantia/olog/pkg/db/query"
	"github.com/mwantia/olog/pkg/db/store"
)

// Compile turns validated parameters into a search request over the log
// projection. Values of one parameter are OR'd, parameters are AND'd. The
// result only depends on its input; the collection is left to the caller.
func Compile(p *Params) store.SearchRequest {
	clauses := make([]query.Query, 0, len(p.Filters))
	for _, param := range p.Filters {
		clauses = append(clauses, compileParam(param))
	}

	return store.SearchRequest{
		Query: query.AllOf(clauses...),
		From:  p.From,
		Size:  p.Size,
		Sort:  compileSort(p.Sort),
	}
}

func compileParam(param Param) query.Query {
	switch param := param.(type) {
	case TitleParam:
		return anyValue(param.Values, func(v string) query.Query { return textValue(FieldTitle, v) })
	case LevelParam:
		return anyValue(param.Values, func(v string) query.Query { return textValue(FieldLevel, v) })
	case DescParam:
		groups := make([]query.Query, 0, len(param.Values))
		for _, v := range param.Values {
			groups = append(groups, bagOfWords(FieldDescription, v))
		}
		return query.AllOf(groups...)
	case PhraseParam:
		return anyValue(param.Values, func(v string) query.Query {
			return query.MatchPhrase{Field: FieldDescription, Text: v}
		})
	case OwnerParam:
		return anyValue(param.Values, func(v string) query.Query {
			return query.Term{Field: FieldOwner, Value: v}
		})
	case TagsParam:
		return anyValue(param.Values, func(v string) query.Query { return keywordValue(FieldTagName, v) })
	case LogbooksParam:
		return anyValue(param.Values, func(v string) query.Query { return keywordValue(FieldLogbookName, v) })
	case PropertiesParam:
		paths := make([]query.Query, 0, len(param.Paths))
		for _, path := range param.Paths {
			paths = append(paths, propertyPath(path))
		}
		return query.AnyOf(paths...)
	case TimeParam:
		return timeRange(param)
	}
	return query.MatchNone{}
}

func anyValue(values []string, clause func(string) query.Query) query.Query {
	clauses := make([]query.Query, 0, len(values))
	for _, v := range values {
		clauses = append(clauses, clause(v))
	}
	return query.AnyOf(clauses...)
}

// textValue requires every word of the value. Words holding '*' are token
// patterns, everything else is analyzed like the indexed text.
func textValue(field, value string) query.Query {
	if !query.HasWildcard(value) {
		return query.Match{Field: field, Text: value, Operator: query.And}
	}

	var clauses []query.Query
	for _, word := range strings.Fields(value) {
		if query.HasWildcard(word) {
			clauses = append(clauses, query.Wildcard{Field: field, Pattern: word, CaseInsensitive: true})
			continue
		}
		clauses = append(clauses, query.Match{Field: field, Text: word, Operator: query.And})
	}
	return query.AllOf(clauses...)
}

// bagOfWords matches any word of the value.
func bagOfWords(field, value string) query.Query {
	var plain []string
	var clauses []query.Query
	for _, word := range strings.Fields(value) {
		if query.HasWildcard(word) {
			clauses = append(clauses, query.Wildcard{Field: field, Pattern: word, CaseInsensitive: true})
			continue
		}
		plain = append(plain, word)
	}
	if len(plain) > 0 {
		clauses = append([]query.Query{query.Match{Field: field, Text: strings.Join(plain, " "), Operator: query.Or}}, clauses...)
	}
	return query.AnyOf(clauses...)
}

func keywordValue(field, value string) query.Query {
	if query.HasWildcard(value) {
		return query.Wildcard{Field: field, Pattern: value}
	}
	return query.Term{Field: field, Value: value}
}

// propertyPath binds the name, attribute and value constraints to the same
// embedded property and attribute.
func propertyPath(path PropertyPath) query.Query {
	var property []query.Query
	if path.Name != "" {
		property = append(property, keywordValue(FieldPropertyName, path.Name))
	}

	var attribute []query.Query
	if path.Attribute != "" {
		attribute = append(attribute, keywordValue(FieldAttributeName, path.Attribute))
	}
	if path.Value != "" {
		attribute = append(attribute, keywordValue(FieldAttributeValue, path.Value))
	}
	if len(attribute) > 0 {
		property = append(property, query.Nested{Path: PathAttributes, Query: query.AllOf(attribute...)})
	}

	return query.Nested{Path: PathProperties, Query: query.AllOf(property...)}
}

func timeRange(param TimeParam) query.Query {
	if param.IncludeEvents {
		return query.Nested{
			Path:  PathEvents,
			Query: query.Range{Field: FieldEventInstant, GTE: param.Start, LTE: param.End},
		}
	}
	return query.Range{Field: FieldCreatedDate, GTE: param.Start, LTE: param.End}
}

func compileSort(order SortOrder) []store.Sort {
	switch order {
	case SortAscending:
		return []store.Sort{{Field: FieldCreatedDate, Kind: store.Date, Order: store.Asc}}
	case SortRelevance:
		return []store.Sort{{Relevance: true, Order: store.Desc}}
	default:
		return []store.Sort{{Field: FieldCreatedDate, Kind: store.Date, Order: store.Desc}}
	}
}
