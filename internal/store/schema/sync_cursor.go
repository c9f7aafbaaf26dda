package schema

import "time"

// SyncCursor stores the last scanned block height per ledger scan so
// attendance discovery can resume incrementally instead of rescanning full
// ranges. The cursor advances best-effort; a lagging cursor only means some
// logs are replayed, which reconciliation absorbs idempotently.
type SyncCursor struct {
	Key         string    `gorm:"column:key;primaryKey;type:text"`
	BlockHeight uint64    `gorm:"column:block_height;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the SyncCursor model
func (SyncCursor) TableName() string {
	return "sync_cursors"
}
