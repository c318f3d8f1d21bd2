package enum

type EntityType string

const (
	PROCESSING_RUN    EntityType = "PROCESSING_RUN"
	ATTACHMENT_RECORD EntityType = "ATTACHMENT_RECORD"
)

func (entityType EntityType) String() string {
	return string(entityType)
}

func GetEntityType(s string) EntityType {
	return EntityType(s)
}
