package entity

// State marks whether an identity-keyed record is live. Records are never
// physically removed, deletion flips them to Inactive.
type State string

const (
	Active   State = "Active"
	Inactive State = "Inactive"
)

func (s State) IsActive() bool {
	return s == Active
}

// OrDefault returns Active for an unset state.
func (s State) OrDefault() State {
	if s == "" {
		return Active
	}
	return s
}
