package schema

import "time"

// Message is an appended chat message. Append-only: rows are never mutated
// or deleted. ID is a ULID so insertion order and lexical order agree.
type Message struct {
	ID            string    `gorm:"column:id;primaryKey;type:text"`
	SenderAddress string    `gorm:"column:sender_address;not null;type:text;index"`
	GroupID       string    `gorm:"column:group_id;not null;type:text;index:idx_messages_group_sent,priority:1"`
	Content       string    `gorm:"column:content;not null;type:text"`
	SentAt        time.Time `gorm:"column:sent_at;not null;type:timestamptz;index:idx_messages_group_sent,priority:2"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	Sender User  `gorm:"foreignKey:SenderAddress;references:Address;constraint:OnDelete:CASCADE"`
	Group  Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
