package entity

import (
	"fmt"
	"sort"
	"strings"
)

// Attribute is a single field of a property. As part of a property
// definition only the name matters, on a log the value is filled in.
type Attribute struct {
	Name  string `json:"name"            yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// SameKey reports whether both attributes address the same field.
func (a Attribute) SameKey(other Attribute) bool {
	return a.Name == other.Name
}

// Equal compares name and value.
func (a Attribute) Equal(other Attribute) bool {
	return a.Name == other.Name && a.Value == other.Value
}

func (a Attribute) String() string {
	if a.Value == "" {
		return a.Name
	}
	return a.Name + "=" + a.Value
}

// Property is a named set of attributes. The canonical definition acts as a
// template, logs embed their own copy with values filled in.
type Property struct {
	Name       string      `json:"name"       yaml:"name"`
	Owner      string      `json:"owner"      yaml:"owner"`
	State      State       `json:"state"      yaml:"state"`
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
}

// NewProperty creates an active property. Attributes sharing a name are
// collapsed, the last one wins.
func NewProperty(name, owner string, attributes ...Attribute) Property {
	p := Property{Name: name, Owner: owner, State: Active}
	for _, attr := range attributes {
		p = p.WithAttribute(attr)
	}
	return p
}

// WithAttribute returns a copy of the property with the attribute added or
// replaced by name.
func (p Property) WithAttribute(attr Attribute) Property {
	attrs := make([]Attribute, 0, len(p.Attributes)+1)
	replaced := false
	for _, existing := range p.Attributes {
		if existing.SameKey(attr) {
			attrs = append(attrs, attr)
			replaced = true
			continue
		}
		attrs = append(attrs, existing)
	}
	if !replaced {
		attrs = append(attrs, attr)
	}
	p.Attributes = attrs
	return p
}

func (p Property) Attribute(name string) (Attribute, bool) {
	for _, attr := range p.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

func (p Property) HasAttribute(name string) bool {
	_, ok := p.Attribute(name)
	return ok
}

// Equal compares the name and the attribute set regardless of order.
func (p Property) Equal(other Property) bool {
	if p.Name != other.Name || len(p.Attributes) != len(other.Attributes) {
		return false
	}
	for _, attr := range p.Attributes {
		match, ok := other.Attribute(attr.Name)
		if !ok || !match.Equal(attr) {
			return false
		}
	}
	return true
}

func (p Property) String() string {
	if len(p.Attributes) == 0 {
		return p.Name
	}
	parts := make([]string, 0, len(p.Attributes))
	for _, attr := range p.Attributes {
		parts = append(parts, attr.String())
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(parts, ", "))
}
