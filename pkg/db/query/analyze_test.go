package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "sentence", text: "The quick brown fox", want: []string{"the", "quick", "brown", "fox"}},
		{name: "punctuation", text: "*foxes* jumped, over!", want: []string{"foxes", "jumped", "over"}},
		{name: "digits stay attached", text: "title2 lev el", want: []string{"title2", "lev", "el"}},
		{name: "empty", text: "  ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Tokenize(tt.text)); diff != "" {
				t.Fatalf("Tokenize(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestBoolMinimumShould(t *testing.T) {
	if got := (Bool{Should: []Query{MatchAll{}}}).MinimumShould(); got != 1 {
		t.Fatalf("expected lone should group to require 1 clause, got %d", got)
	}
	if got := (Bool{Must: []Query{MatchAll{}}, Should: []Query{MatchAll{}}}).MinimumShould(); got != 0 {
		t.Fatalf("expected optional should next to must, got %d", got)
	}
	if got := (Bool{Should: []Query{MatchAll{}, MatchAll{}}, MinimumShouldMatch: 2}).MinimumShould(); got != 2 {
		t.Fatalf("expected explicit minimum to win, got %d", got)
	}
}

func TestAnyOfAllOf(t *testing.T) {
	if _, ok := AnyOf().(MatchNone); !ok {
		t.Fatalf("expected empty AnyOf to match nothing")
	}
	if _, ok := AllOf().(MatchAll); !ok {
		t.Fatalf("expected empty AllOf to match everything")
	}
	single := Term{Field: "owner", Value: "a"}
	if got := AnyOf(single); got != Query(single) {
		t.Fatalf("expected single clause to be returned as is, got %#v", got)
	}
}
