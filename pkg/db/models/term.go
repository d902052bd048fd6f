package models

// Term is one row of the inverted index. Text fields produce one row per
// token with its position, keyword fields one row per value and date fields
// carry their instant in Number as unix milliseconds.
type Term struct {
	ID         uint   `gorm:"primaryKey"`
	Collection string `gorm:"type:text;not null;index:idx_term_doc,priority:1;index:idx_term_lookup,priority:1;column:collection"`
	DocID      string `gorm:"type:text;not null;index:idx_term_doc,priority:2;column:doc_id"`
	Field      string `gorm:"type:text;not null;index:idx_term_lookup,priority:2;column:field"`
	Term       string `gorm:"type:text;not null;index:idx_term_lookup,priority:3;column:term"`
	Scope      string `gorm:"type:text;not null;default:'';column:scope"`
	Position   int    `gorm:"not null;default:0;column:position"`
	Number     int64  `gorm:"not null;default:0;column:number"`
}

func (Term) TableName() string { return "index_terms" }

// Scope records a nested object of a document, e.g. "properties#0" at path
// "properties" or "properties#0.attributes#1" at path "properties.attributes".
type Scope struct {
	ID         uint   `gorm:"primaryKey"`
	Collection string `gorm:"type:text;not null;index:idx_scope_doc,priority:1;column:collection"`
	DocID      string `gorm:"type:text;not null;index:idx_scope_doc,priority:2;column:doc_id"`
	Path       string `gorm:"type:text;not null;index:idx_scope_doc,priority:3;column:path"`
	Scope      string `gorm:"type:text;not null;column:scope"`
}

func (Scope) TableName() string { return "index_scopes" }
