package schema

import "time"

// GroupMembership records that a user is represented in a group. The
// (user_address, group_id) pair is unique; upserts rely on that constraint
// rather than insert-then-check.
type GroupMembership struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserAddress string    `gorm:"column:user_address;not null;type:text;uniqueIndex:idx_membership_user_group"`
	GroupID     string    `gorm:"column:group_id;not null;type:text;uniqueIndex:idx_membership_user_group"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	User  User  `gorm:"foreignKey:UserAddress;references:Address;constraint:OnDelete:CASCADE"`
	Group Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the GroupMembership model
func (GroupMembership) TableName() string {
	return "group_memberships"
}
