package entity

import (
	"strconv"
	"strings"
	"time"
)

// Log is a single logbook record and the root document of the index.
// Logbooks and tags are references by name, properties are full copies that
// stay independent of later edits to the canonical definition.
type Log struct {
	ID           int64        `json:"id"           yaml:"id"`
	Owner        string       `json:"owner"        yaml:"owner"`
	Source       string       `json:"source"       yaml:"source"`
	Title        string       `json:"title"        yaml:"title"`
	Description  string       `json:"description"  yaml:"description"`
	Level        string       `json:"level"        yaml:"level"`
	State        State        `json:"state"        yaml:"state"`
	CreatedDate  time.Time    `json:"createdDate"  yaml:"created_date"`
	ModifiedDate time.Time    `json:"modifyDate"   yaml:"modified_date"`
	Logbooks     []Logbook    `json:"logbooks"     yaml:"logbooks"`
	Tags         []Tag        `json:"tags"         yaml:"tags"`
	Properties   []Property   `json:"properties"   yaml:"properties"`
	Events       []Event      `json:"events"       yaml:"events"`
	Attachments  []Attachment `json:"attachments"  yaml:"attachments"`
}

// Key returns the string form of the id used as document key.
func (l Log) Key() string {
	if l.ID == 0 {
		return ""
	}
	return strconv.FormatInt(l.ID, 10)
}

func (l Log) LogbookNames() []string {
	names := make([]string, 0, len(l.Logbooks))
	for _, lb := range l.Logbooks {
		names = append(names, lb.Name)
	}
	return names
}

func (l Log) TagNames() []string {
	names := make([]string, 0, len(l.Tags))
	for _, tag := range l.Tags {
		names = append(names, tag.Name)
	}
	return names
}

func (l Log) PropertyNames() []string {
	names := make([]string, 0, len(l.Properties))
	seen := make(map[string]bool, len(l.Properties))
	for _, prop := range l.Properties {
		if seen[prop.Name] {
			continue
		}
		seen[prop.Name] = true
		names = append(names, prop.Name)
	}
	return names
}

func (l Log) Attachment(id string) (Attachment, bool) {
	for _, a := range l.Attachments {
		if a.ID == id {
			return a, true
		}
	}
	return Attachment{}, false
}

// LogBuilder accumulates the parts of a log before the single write that
// creates it.
type LogBuilder struct {
	log         Log
	description strings.Builder
}

// CreateLog starts a builder with the given description body.
func CreateLog(description string) *LogBuilder {
	b := &LogBuilder{log: Log{State: Active}}
	b.description.WriteString(description)
	return b
}

func (b *LogBuilder) Owner(owner string) *LogBuilder {
	b.log.Owner = owner
	return b
}

func (b *LogBuilder) Title(title string) *LogBuilder {
	b.log.Title = title
	return b
}

func (b *LogBuilder) Level(level string) *LogBuilder {
	b.log.Level = level
	return b
}

// Source sets the raw, unprocessed body.
func (b *LogBuilder) Source(source string) *LogBuilder {
	b.log.Source = source
	return b
}

// Description replaces the description body.
func (b *LogBuilder) Description(description string) *LogBuilder {
	b.description.Reset()
	b.description.WriteString(description)
	return b
}

// AppendDescription adds a line to the description body.
func (b *LogBuilder) AppendDescription(description string) *LogBuilder {
	if b.description.Len() > 0 {
		b.description.WriteString("\n")
	}
	b.description.WriteString(description)
	return b
}

func (b *LogBuilder) WithLogbook(logbook Logbook) *LogBuilder {
	for i, existing := range b.log.Logbooks {
		if existing.Name == logbook.Name {
			b.log.Logbooks[i] = logbook
			return b
		}
	}
	b.log.Logbooks = append(b.log.Logbooks, logbook)
	return b
}

func (b *LogBuilder) WithLogbooks(logbooks ...Logbook) *LogBuilder {
	for _, lb := range logbooks {
		b.WithLogbook(lb)
	}
	return b
}

func (b *LogBuilder) WithTag(tag Tag) *LogBuilder {
	for i, existing := range b.log.Tags {
		if existing.Name == tag.Name {
			b.log.Tags[i] = tag
			return b
		}
	}
	b.log.Tags = append(b.log.Tags, tag)
	return b
}

func (b *LogBuilder) WithTags(tags ...Tag) *LogBuilder {
	for _, tag := range tags {
		b.WithTag(tag)
	}
	return b
}

func (b *LogBuilder) WithProperty(property Property) *LogBuilder {
	for _, existing := range b.log.Properties {
		if existing.Equal(property) {
			return b
		}
	}
	attrs := make([]Attribute, len(property.Attributes))
	copy(attrs, property.Attributes)
	property.Attributes = attrs
	b.log.Properties = append(b.log.Properties, property)
	return b
}

func (b *LogBuilder) WithProperties(properties ...Property) *LogBuilder {
	for _, prop := range properties {
		b.WithProperty(prop)
	}
	return b
}

func (b *LogBuilder) WithEvent(event Event) *LogBuilder {
	b.log.Events = append(b.log.Events, event)
	return b
}

func (b *LogBuilder) WithEvents(events ...Event) *LogBuilder {
	b.log.Events = append(b.log.Events, events...)
	return b
}

func (b *LogBuilder) WithAttachment(attachment Attachment) *LogBuilder {
	b.log.Attachments = append(b.log.Attachments, attachment)
	return b
}

// Build returns an independent copy of the accumulated log.
func (b *LogBuilder) Build() Log {
	out := b.log
	out.Description = b.description.String()
	out.Logbooks = append([]Logbook(nil), b.log.Logbooks...)
	out.Tags = append([]Tag(nil), b.log.Tags...)
	out.Properties = append([]Property(nil), b.log.Properties...)
	out.Events = append([]Event(nil), b.log.Events...)
	out.Attachments = append([]Attachment(nil), b.log.Attachments...)
	return out
}
