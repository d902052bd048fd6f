package models

// Sequence hands out monotonically increasing ids per name
type Sequence struct {
	Name  string `gorm:"primaryKey;type:text;column:name"`
	Value int64  `gorm:"not null;default:0;column:value"`
}

func (Sequence) TableName() string { return "index_sequences" }
