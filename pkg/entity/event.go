package entity

import "time"

// Event is a point in time referenced by a log, distinct from the log's own
// creation time.
type Event struct {
	Name    string    `json:"name"    yaml:"name"`
	Instant time.Time `json:"instant" yaml:"instant"`
}

func NewEvent(name string, instant time.Time) Event {
	return Event{Name: name, Instant: instant.UTC().Truncate(time.Millisecond)}
}

func (e Event) Equal(other Event) bool {
	return e.Name == other.Name && e.Instant.Equal(other.Instant)
}
