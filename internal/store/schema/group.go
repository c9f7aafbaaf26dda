package schema

import "time"

// Group mirrors a messaging-protocol group conversation. ID is the
// protocol's own group identifier; the protocol stays the system of record.
// EventID ties the group back to its registry event so group-scoped requests
// can be checked against that event's entitlement set.
type Group struct {
	ID        string    `gorm:"column:id;primaryKey;type:text"`
	EventID   uint64    `gorm:"column:event_id;not null;index"`
	Name      string    `gorm:"column:name;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Group model
func (Group) TableName() string {
	return "groups"
}
