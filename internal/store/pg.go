package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the history tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.User{},
		&schema.Group{},
		&schema.GroupMembership{},
		&schema.Message{},
		&schema.SyncCursor{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// UpsertUser creates the user row if absent.
func (s *pgStore) UpsertUser(ctx context.Context, address domain.Address) error {
	user := schema.User{Address: string(address)}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}).Create(&user).Error; err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// UpsertGroup creates or renames the group row and records its event.
func (s *pgStore) UpsertGroup(ctx context.Context, id domain.GroupID, eventID uint64, name string) error {
	group := schema.Group{ID: string(id), EventID: eventID, Name: name}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"event_id", "name", "updated_at"}),
	}).Create(&group).Error; err != nil {
		return fmt.Errorf("failed to upsert group: %w", err)
	}

	return nil
}

// GetGroup returns the group row, or nil when no such group is recorded.
func (s *pgStore) GetGroup(ctx context.Context, id domain.GroupID) (*schema.Group, error) {
	var group schema.Group
	err := s.db.WithContext(ctx).Where("id = ?", string(id)).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &group, nil
}

// AddMembership records that the user is represented in the group.
func (s *pgStore) AddMembership(ctx context.Context, address domain.Address, groupID domain.GroupID) error {
	membership := schema.GroupMembership{
		UserAddress: string(address),
		GroupID:     string(groupID),
	}

	// ON CONFLICT DO NOTHING on the unique (user, group) pair: concurrent
	// syncs race here and the first insert wins.
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_address"}, {Name: "group_id"}},
		DoNothing: true,
	}).Create(&membership).Error; err != nil {
		return fmt.Errorf("failed to upsert membership: %w", err)
	}

	return nil
}

// AppendMessage appends a sent message and returns its id.
func (s *pgStore) AppendMessage(ctx context.Context, sender domain.Address, groupID domain.GroupID, content string, sentAt time.Time) (string, error) {
	message := schema.Message{
		ID:            ulid.Make().String(),
		SenderAddress: string(sender),
		GroupID:       string(groupID),
		Content:       content,
		SentAt:        sentAt,
	}

	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return "", fmt.Errorf("failed to append message: %w", err)
	}

	return message.ID, nil
}

// GetGroupMessages returns up to limit messages, most recent first.
func (s *pgStore) GetGroupMessages(ctx context.Context, groupID domain.GroupID, limit int) ([]schema.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []schema.Message
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", string(groupID)).
		Order("sent_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get group messages: %w", err)
	}

	return messages, nil
}

// GetSyncCursor retrieves the last scanned block height for a cursor key.
func (s *pgStore) GetSyncCursor(ctx context.Context, key string) (uint64, error) {
	var cursor schema.SyncCursor
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&cursor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get sync cursor: %w", err)
	}

	return cursor.BlockHeight, nil
}

// SetSyncCursor stores the last scanned block height for a cursor key.
func (s *pgStore) SetSyncCursor(ctx context.Context, key string, blockHeight uint64) error {
	cursor := schema.SyncCursor{
		Key:         key,
		BlockHeight: blockHeight,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"block_height", "updated_at"}),
	}).Create(&cursor).Error; err != nil {
		return fmt.Errorf("failed to set sync cursor: %w", err)
	}

	return nil
}
