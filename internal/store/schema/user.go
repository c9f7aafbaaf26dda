package schema

import "time"

// User represents a wallet that has been represented in a chat group or has
// sent a message. Address is the canonical lower-cased form.
type User struct {
	Address   string    `gorm:"column:address;primaryKey;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
