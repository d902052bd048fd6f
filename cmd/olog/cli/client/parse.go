package client

import (
	"fmt"
	"strings"

	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/search"
)

func parseAttribute(value string) entity.Attribute {
	name, val, _ := strings.Cut(value, "=")
	return entity.Attribute{Name: strings.TrimSpace(name), Value: val}
}

// parseProperties groups "property.attribute=value" flags by property, in
// order of first appearance. A bare name references the property without
// attribute values.
func parseProperties(values []string) ([]entity.Property, error) {
	var props []entity.Property
	index := map[string]int{}
	for _, value := range values {
		name, attr, hasAttr := strings.Cut(value, ".")
		if name == "" {
			return nil, fmt.Errorf("invalid property '%s'", value)
		}
		i, ok := index[name]
		if !ok {
			i = len(props)
			index[name] = i
			props = append(props, entity.Property{Name: name})
		}
		if hasAttr {
			a := parseAttribute(attr)
			if a.Name == "" {
				return nil, fmt.Errorf("invalid property attribute '%s'", value)
			}
			props[i] = props[i].WithAttribute(a)
		}
	}
	return props, nil
}

// parseEvents reads "name=time" flags with the time syntax of the search
// start and end parameters.
func parseEvents(values []string, parser search.TimeParser) ([]entity.Event, error) {
	events := make([]entity.Event, 0, len(values))
	for _, value := range values {
		name, at, err := splitKeyValue(value)
		if err != nil {
			return nil, fmt.Errorf("invalid event: %w", err)
		}
		instant, err := parser.Parse(at)
		if err != nil {
			return nil, fmt.Errorf("invalid event '%s': %w", name, err)
		}
		events = append(events, entity.NewEvent(name, instant))
	}
	return events, nil
}

// parseSearchArgs turns "key=value" arguments into raw search parameters.
// Repeated keys collect all values.
func parseSearchArgs(args []string) (map[string][]string, error) {
	raw := make(map[string][]string, len(args))
	for _, arg := range args {
		key, value, err := splitKeyValue(arg)
		if err != nil {
			return nil, err
		}
		raw[key] = append(raw[key], value)
	}
	return raw, nil
}
