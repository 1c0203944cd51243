package models

import "time"

type ActionType string

const (
	ActionCreate        ActionType = "CREATE"
	ActionUpdate        ActionType = "UPDATE"
	ActionDelete        ActionType = "DELETE"
	ActionMarkOut       ActionType = "MARK_OUT"
	ActionMarkDefective ActionType = "MARK_DEFECTIVE"
)

// ActionLog is one append-only audit entry. Entries are never updated or
// deleted by the application.
//
// The affected entity is referenced as a (entity_type, object_id) pair rather
// than a hard foreign key, so the reference may dangle once the row is
// deleted; readers resolve it lazily and render a placeholder when it no
// longer exists. UserID is kept nullable for the same reason.
type ActionLog struct {
	ID          uint  `gorm:"primaryKey"`
	UserID      *uint `gorm:"index"`
	ActionType  ActionType `gorm:"size:20;not null"`
	Timestamp   time.Time  `gorm:"index;not null"`
	EntityType  string     `gorm:"size:50;index;not null"`
	ObjectID    uint       `gorm:"index;not null"`
	Description string     `gorm:"size:255"`
}
