package repository

import (
	"github.com/mwantia/olog/pkg/db/store"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/search"
)

// Field names shared by the logbook, tag and property projections.
const (
	FieldName           = "name"
	FieldOwner          = "owner"
	FieldState          = "state"
	FieldAttributesName = "attributes.name"
)

// Mapping describes how an entity kind is stored in the document index.
type Mapping[E any] struct {
	Collection string
	// Kind names the entity in errors and logs.
	Kind string
	// Key returns the identity key, empty when none was assigned yet.
	Key       func(E) string
	Fields    func(E) []store.Field
	State     func(E) entity.State
	WithState func(E, entity.State) E
	// Normalize, when set, is applied to every entity before it is written.
	Normalize func(E) E
	// Sort is the order of FindAll.
	Sort []store.Sort
}

var byName = []store.Sort{{Field: FieldName, Kind: store.Keyword, Order: store.Asc}}

func LogbookMapping(collection string) Mapping[entity.Logbook] {
	return Mapping[entity.Logbook]{
		Collection: collection,
		Kind:       "logbook",
		Key:        func(lb entity.Logbook) string { return lb.Name },
		Fields: func(lb entity.Logbook) []store.Field {
			return namedFields(lb.Name, lb.Owner, lb.State)
		},
		State: func(lb entity.Logbook) entity.State { return lb.State },
		WithState: func(lb entity.Logbook, state entity.State) entity.Logbook {
			lb.State = state
			return lb
		},
		Sort: byName,
	}
}

func TagMapping(collection string) Mapping[entity.Tag] {
	return Mapping[entity.Tag]{
		Collection: collection,
		Kind:       "tag",
		Key:        func(tag entity.Tag) string { return tag.Name },
		Fields: func(tag entity.Tag) []store.Field {
			return namedFields(tag.Name, tag.Owner, tag.State)
		},
		State: func(tag entity.Tag) entity.State { return tag.State },
		WithState: func(tag entity.Tag, state entity.State) entity.Tag {
			tag.State = state
			return tag
		},
		Sort: byName,
	}
}

func PropertyMapping(collection string) Mapping[entity.Property] {
	return Mapping[entity.Property]{
		Collection: collection,
		Kind:       "property",
		Key:        func(p entity.Property) string { return p.Name },
		Fields: func(p entity.Property) []store.Field {
			fields := namedFields(p.Name, p.Owner, p.State)
			for i, attr := range p.Attributes {
				fields = append(fields, store.Field{
					Name:  FieldAttributesName,
					Kind:  store.Keyword,
					Scope: store.ScopeKey("", "attributes", i),
					Value: attr.Name,
				})
			}
			return fields
		},
		State: func(p entity.Property) entity.State { return p.State },
		WithState: func(p entity.Property, state entity.State) entity.Property {
			p.State = state
			return p
		},
		Normalize: func(p entity.Property) entity.Property {
			normalized := entity.NewProperty(p.Name, p.Owner, p.Attributes...)
			normalized.State = p.State
			return normalized
		},
		Sort: byName,
	}
}

func namedFields(name, owner string, state entity.State) []store.Field {
	return []store.Field{
		{Name: FieldName, Kind: store.Keyword, Value: name},
		{Name: FieldOwner, Kind: store.Keyword, Value: owner},
		{Name: FieldState, Kind: store.Keyword, Value: string(state)},
	}
}

// LogMapping projects a log onto the fields the search compiler queries.
// Properties, their attributes and events are nested objects so that a
// query can require several values of the same object.
func LogMapping(collection string) Mapping[entity.Log] {
	return Mapping[entity.Log]{
		Collection: collection,
		Kind:       "log",
		Key:        entity.Log.Key,
		Fields:     logFields,
		State:      func(l entity.Log) entity.State { return l.State },
		WithState: func(l entity.Log, state entity.State) entity.Log {
			l.State = state
			return l
		},
		Sort: []store.Sort{{Field: search.FieldCreatedDate, Kind: store.Date, Order: store.Desc}},
	}
}

func logFields(l entity.Log) []store.Field {
	fields := []store.Field{
		{Name: search.FieldID, Kind: store.Keyword, Value: l.Key()},
		{Name: search.FieldOwner, Kind: store.Keyword, Value: l.Owner},
		{Name: search.FieldTitle, Kind: store.Text, Value: l.Title},
		{Name: search.FieldLevel, Kind: store.Text, Value: l.Level},
		{Name: search.FieldDescription, Kind: store.Text, Value: l.Description},
		{Name: search.FieldState, Kind: store.Keyword, Value: string(l.State)},
		{Name: search.FieldCreatedDate, Kind: store.Date, Time: l.CreatedDate},
		{Name: search.FieldModifyDate, Kind: store.Date, Time: l.ModifiedDate},
	}

	for _, lb := range l.Logbooks {
		fields = append(fields, store.Field{Name: search.FieldLogbookName, Kind: store.Keyword, Value: lb.Name})
	}
	for _, tag := range l.Tags {
		fields = append(fields, store.Field{Name: search.FieldTagName, Kind: store.Keyword, Value: tag.Name})
	}

	for i, prop := range l.Properties {
		scope := store.ScopeKey("", search.PathProperties, i)
		fields = append(fields, store.Field{Name: search.FieldPropertyName, Kind: store.Keyword, Scope: scope, Value: prop.Name})
		for j, attr := range prop.Attributes {
			attrScope := store.ScopeKey(scope, "attributes", j)
			fields = append(fields,
				store.Field{Name: search.FieldAttributeName, Kind: store.Keyword, Scope: attrScope, Value: attr.Name},
				store.Field{Name: search.FieldAttributeValue, Kind: store.Keyword, Scope: attrScope, Value: attr.Value},
			)
		}
	}

	for i, event := range l.Events {
		scope := store.ScopeKey("", search.PathEvents, i)
		fields = append(fields,
			store.Field{Name: search.FieldEventName, Kind: store.Keyword, Scope: scope, Value: event.Name},
			store.Field{Name: search.FieldEventInstant, Kind: store.Date, Scope: scope, Time: event.Instant},
		)
	}

	for _, a := range l.Attachments {
		fields = append(fields, store.Field{Name: search.FieldAttachmentFilename, Kind: store.Keyword, Value: a.Filename})
	}
	return fields
}
