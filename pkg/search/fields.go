package search

// Field names of the log document projection. The repository indexes logs
// under these names and the compiler queries them.
const (
	FieldID          = "id"
	FieldOwner       = "owner"
	FieldTitle       = "title"
	FieldLevel       = "level"
	FieldDescription = "description"
	FieldState       = "state"
	FieldCreatedDate = "createdDate"
	FieldModifyDate  = "modifyDate"

	FieldLogbookName = "logbooks.name"
	FieldTagName     = "tags.name"

	PathProperties      = "properties"
	FieldPropertyName   = "properties.name"
	PathAttributes      = "properties.attributes"
	FieldAttributeName  = "properties.attributes.name"
	FieldAttributeValue = "properties.attributes.value"

	PathEvents        = "events"
	FieldEventName    = "events.name"
	FieldEventInstant = "events.instant"

	FieldAttachmentFilename = "attachments.filename"
)
