package entity

// Tag is a named label attached to a log
type Tag struct {
	Name  string `json:"name"  yaml:"name"`
	Owner string `json:"owner" yaml:"owner"`
	State State  `json:"state" yaml:"state"`
}

func NewTag(name, owner string) Tag {
	return Tag{Name: name, Owner: owner, State: Active}
}
