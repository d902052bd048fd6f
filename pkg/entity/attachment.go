package entity

// Attachment is the metadata of a binary payload kept in the blob store. ID is
// the blob id assigned by the store.
type Attachment struct {
	ID          string `json:"id"          yaml:"id"`
	Filename    string `json:"filename"    yaml:"filename"`
	ContentType string `json:"contentType" yaml:"content_type"`
	FileSize    int64  `json:"fileSize"    yaml:"file_size"`
}
