package entity

// Logbook is a named category a log is filed under
type Logbook struct {
	Name  string `json:"name"  yaml:"name"`
	Owner string `json:"owner" yaml:"owner"`
	State State  `json:"state" yaml:"state"`
}

func NewLogbook(name, owner string) Logbook {
	return Logbook{Name: name, Owner: owner, State: Active}
}
