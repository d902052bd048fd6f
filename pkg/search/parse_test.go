package search

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testParser() *Parser {
	now := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)
	return NewParser(Options{
		DefaultSize: 20,
		MaxSize:     50,
		Time: TimeParser{
			Location: time.UTC,
			Now:      func() time.Time { return now },
		},
	})
}

func TestParseCollectsFiltersInFixedOrder(t *testing.T) {
	params, err := testParser().Parse(map[string][]string{
		"Tags":        {"a", "b*"},
		"description": {"quick fox"},
		"title":       {"  ", "tit le"},
		"properties":  {"prop.attr.1.5"},
		"unknown":     {"x"},
		"logbooks":    {""},
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	want := []Param{
		TitleParam{Values: []string{"tit le"}},
		DescParam{Values: []string{"quick fox"}},
		TagsParam{Values: []string{"a", "b*"}},
		PropertiesParam{Paths: []PropertyPath{{Name: "prop", Attribute: "attr", Value: "1.5"}}},
	}
	if diff := cmp.Diff(want, params.Filters); diff != "" {
		t.Fatalf("filters mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"unknown"}, params.Ignored); diff != "" {
		t.Fatalf("ignored mismatch (-want +got):\n%s", diff)
	}
	if params.Size != 20 || params.From != 0 || params.Sort != SortDescending {
		t.Fatalf("unexpected paging defaults size=%d from=%d sort=%s", params.Size, params.From, params.Sort)
	}
}

func TestParseMergesKeysDifferingInCase(t *testing.T) {
	params, err := testParser().Parse(map[string][]string{
		"owner": {"alice"},
		"OWNER": {"bob"},
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	// keys are visited in sorted order, "OWNER" sorts first
	want := []Param{OwnerParam{Values: []string{"bob", "alice"}}}
	if diff := cmp.Diff(want, params.Filters); diff != "" {
		t.Fatalf("filters mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTime(t *testing.T) {
	params, err := testParser().Parse(map[string][]string{
		"start":         {"2024-05-01 10:00:00.000"},
		"end":           {"now"},
		"includeEvents": nil,
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)
	want := []Param{TimeParam{Start: &start, End: &end, IncludeEvents: true}}
	if diff := cmp.Diff(want, params.Filters); diff != "" {
		t.Fatalf("filters mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOpenTimeRange(t *testing.T) {
	params, err := testParser().Parse(map[string][]string{"end": {"2024-05-01 10:00:00.000"}})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	tp, ok := params.Filters[0].(TimeParam)
	if !ok || tp.Start != nil || tp.End == nil || tp.IncludeEvents {
		t.Fatalf("unexpected time filter %#v", params.Filters[0])
	}
}

func TestParseIncludeEventsAloneIsNoFilter(t *testing.T) {
	params, err := testParser().Parse(map[string][]string{"includeEvents": {"true"}})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(params.Filters) != 0 {
		t.Fatalf("expected no filters, got %#v", params.Filters)
	}
}

func TestParsePaging(t *testing.T) {
	params, err := testParser().Parse(map[string][]string{
		"limit": {"500"},
		"from":  {"40"},
		"sort":  {"UP"},
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if params.Size != 50 {
		t.Errorf("expected size to be capped at 50, got %d", params.Size)
	}
	if params.From != 40 {
		t.Errorf("expected from 40, got %d", params.From)
	}
	if params.Sort != SortAscending {
		t.Errorf("expected ascending sort, got %s", params.Sort)
	}
}

func TestParseRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string][]string
		want string
	}{
		{name: "start", raw: map[string][]string{"start": {"yesterday-ish"}}, want: "start"},
		{name: "end", raw: map[string][]string{"end": {"5 fortnights"}}, want: "end"},
		{name: "inverted range", raw: map[string][]string{"start": {"now"}, "end": {"1 day"}}, want: "start"},
		{name: "size", raw: map[string][]string{"size": {"0"}}, want: "size"},
		{name: "from", raw: map[string][]string{"from": {"-1"}}, want: "from"},
		{name: "sort", raw: map[string][]string{"sort": {"sideways"}}, want: "sort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testParser().Parse(tt.raw)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			var perr *ParameterError
			if !errors.As(err, &perr) || perr.Name != tt.want {
				t.Fatalf("expected parameter error for %s, got %v", tt.want, err)
			}
		})
	}
}

func TestParsePropertyPath(t *testing.T) {
	tests := []struct {
		value string
		want  PropertyPath
	}{
		{value: "name", want: PropertyPath{Name: "name"}},
		{value: "name.attr", want: PropertyPath{Name: "name", Attribute: "attr"}},
		{value: "name.attr.value", want: PropertyPath{Name: "name", Attribute: "attr", Value: "value"}},
		{value: "name..value", want: PropertyPath{Name: "name", Value: "value"}},
		{value: "testProperty*.testAttribute1.*1", want: PropertyPath{Name: "testProperty*", Attribute: "testAttribute1", Value: "*1"}},
	}
	for _, tt := range tests {
		got := parsePropertyPath(tt.value)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("parsePropertyPath(%q) mismatch (-want +got):\n%s", tt.value, diff)
		}
		if got.String() != tt.value {
			t.Errorf("expected %q to render back unchanged, got %q", tt.value, got.String())
		}
	}
}
