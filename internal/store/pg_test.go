package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/store/schema"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
)

// TestMain sets up the test database before running tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	// Check if we should use an external database (for CI or local development)
	dbHost := os.Getenv("TEST_DB_HOST")
	dbPort := os.Getenv("TEST_DB_PORT")
	dbUser := os.Getenv("TEST_DB_USER")
	dbPassword := os.Getenv("TEST_DB_PASSWORD")
	dbName := os.Getenv("TEST_DB_NAME")

	var dsn string
	var err error

	if dbHost != "" {
		// Use external database
		if dbPort == "" {
			dbPort = "5432"
		}
		if dbUser == "" {
			dbUser = "postgres"
		}
		if dbPassword == "" {
			dbPassword = "postgres"
		}
		if dbName == "" {
			dbName = "test_db"
		}

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPassword, dbName)

		fmt.Printf("Using external database: %s:%s/%s\n", dbHost, dbPort, dbName)
	} else {
		// Start a PostgreSQL container for testing
		pgContainer, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("test_db"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			fmt.Printf("Failed to start PostgreSQL container: %v\n", err)
			os.Exit(1)
		}

		dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("Started PostgreSQL container\n")
	}

	// Connect to the database
	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		if pgContainer != nil {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
		}
		os.Exit(1)
	}

	// Initialize the database schema
	if err := Migrate(testDB); err != nil {
		fmt.Printf("Failed to migrate database: %v\n", err)
		if pgContainer != nil {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
		}
		os.Exit(1)
	}

	// Run tests
	code := m.Run()

	// Cleanup
	if pgContainer != nil {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
		}
	}

	os.Exit(code)
}

// initPGTestDB initializes an isolated store for each test. Every test runs
// inside its own transaction which is rolled back on cleanup, so tests never
// observe each other's rows.
func initPGTestDB(t *testing.T) (Store, *gorm.DB) {
	tx := testDB.Begin()
	require.NotNil(t, tx)
	require.NoError(t, tx.Error)

	t.Cleanup(func() {
		tx.Rollback()
	})

	return NewPGStore(tx), tx
}

func TestPGStore_UpsertUser_Idempotent(t *testing.T) {
	s, tx := initPGTestDB(t)
	ctx := context.Background()

	addr := domain.NormalizeAddress("0x00000000000000000000000000000000000000aa")

	require.NoError(t, s.UpsertUser(ctx, addr))
	require.NoError(t, s.UpsertUser(ctx, addr))

	var count int64
	require.NoError(t, tx.Model(&schema.User{}).Where("address = ?", string(addr)).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPGStore_UpsertGroup_Rename(t *testing.T) {
	s, tx := initPGTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertGroup(ctx, "group-1", 7, "Launch Party"))
	require.NoError(t, s.UpsertGroup(ctx, "group-1", 7, "Launch Party (rescheduled)"))

	var group schema.Group
	require.NoError(t, tx.First(&group, "id = ?", "group-1").Error)
	require.Equal(t, "Launch Party (rescheduled)", group.Name)
	require.Equal(t, uint64(7), group.EventID)

	var count int64
	require.NoError(t, tx.Model(&schema.Group{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPGStore_GetGroup_Roundtrip(t *testing.T) {
	s, _ := initPGTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertGroup(ctx, "group-1", 7, "Launch Party"))

	group, err := s.GetGroup(ctx, "group-1")
	require.NoError(t, err)
	require.NotNil(t, group)
	require.Equal(t, "group-1", group.ID)
	require.Equal(t, uint64(7), group.EventID)
	require.Equal(t, "Launch Party", group.Name)
}

func TestPGStore_GetGroup_Missing(t *testing.T) {
	s, _ := initPGTestDB(t)
	ctx := context.Background()

	group, err := s.GetGroup(ctx, "group-missing")
	require.NoError(t, err)
	require.Nil(t, group)
}

func TestPGStore_AddMembership_Idempotent(t *testing.T) {
	s, tx := initPGTestDB(t)
	ctx := context.Background()

	addr := domain.NormalizeAddress("0x00000000000000000000000000000000000000bb")

	require.NoError(t, s.UpsertUser(ctx, addr))
	require.NoError(t, s.UpsertGroup(ctx, "group-1", 7, "Launch Party"))

	// Replayed syncs insert the same pair again; the unique constraint
	// absorbs the duplicate without an error.
	require.NoError(t, s.AddMembership(ctx, addr, "group-1"))
	require.NoError(t, s.AddMembership(ctx, addr, "group-1"))

	var count int64
	require.NoError(t, tx.Model(&schema.GroupMembership{}).
		Where("user_address = ? AND group_id = ?", string(addr), "group-1").
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPGStore_AddMembership_DistinctGroups(t *testing.T) {
	s, tx := initPGTestDB(t)
	ctx := context.Background()

	addr := domain.NormalizeAddress("0x00000000000000000000000000000000000000cc")

	require.NoError(t, s.UpsertUser(ctx, addr))
	require.NoError(t, s.UpsertGroup(ctx, "group-1", 7, "Launch Party"))
	require.NoError(t, s.UpsertGroup(ctx, "group-2", 8, "After Party"))

	require.NoError(t, s.AddMembership(ctx, addr, "group-1"))
	require.NoError(t, s.AddMembership(ctx, addr, "group-2"))

	var count int64
	require.NoError(t, tx.Model(&schema.GroupMembership{}).
		Where("user_address = ?", string(addr)).
		Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestPGStore_AppendMessage_AndGetGroupMessages(t *testing.T) {
	s, _ := initPGTestDB(t)
	ctx := context.Background()

	sender := domain.NormalizeAddress("0x00000000000000000000000000000000000000dd")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertUser(ctx, sender))
	require.NoError(t, s.UpsertGroup(ctx, "group-1", 7, "Launch Party"))
	require.NoError(t, s.UpsertGroup(ctx, "group-2", 8, "After Party"))

	first, err := s.AppendMessage(ctx, sender, "group-1", "first", base)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := s.AppendMessage(ctx, sender, "group-1", "second", base.Add(time.Minute))
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	third, err := s.AppendMessage(ctx, sender, "group-1", "third", base.Add(2*time.Minute))
	require.NoError(t, err)

	// A message in another group must not leak into group-1 history.
	_, err = s.AppendMessage(ctx, sender, "group-2", "elsewhere", base.Add(3*time.Minute))
	require.NoError(t, err)

	messages, err := s.GetGroupMessages(ctx, "group-1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Most recent first
	require.Equal(t, third, messages[0].ID)
	require.Equal(t, "third", messages[0].Content)
	require.Equal(t, second, messages[1].ID)
	require.Equal(t, first, messages[2].ID)
	require.Equal(t, string(sender), messages[0].SenderAddress)

	limited, err := s.GetGroupMessages(ctx, "group-1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, third, limited[0].ID)
	require.Equal(t, second, limited[1].ID)
}

func TestPGStore_GetGroupMessages_DefaultLimit(t *testing.T) {
	s, _ := initPGTestDB(t)
	ctx := context.Background()

	sender := domain.NormalizeAddress("0x00000000000000000000000000000000000000ee")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertUser(ctx, sender))
	require.NoError(t, s.UpsertGroup(ctx, "group-1", 7, "Launch Party"))

	for i := 0; i < 55; i++ {
		_, err := s.AppendMessage(ctx, sender, "group-1", fmt.Sprintf("message %d", i), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	// limit <= 0 falls back to 50
	messages, err := s.GetGroupMessages(ctx, "group-1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 50)
	require.Equal(t, "message 54", messages[0].Content)
}

func TestPGStore_GetGroupMessages_Empty(t *testing.T) {
	s, _ := initPGTestDB(t)
	ctx := context.Background()

	messages, err := s.GetGroupMessages(ctx, "group-missing", 10)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestPGStore_AddMembership_RequiresGroupRow(t *testing.T) {
	s, _ := initPGTestDB(t)
	ctx := context.Background()

	addr := domain.NormalizeAddress("0x00000000000000000000000000000000000000ff")
	require.NoError(t, s.UpsertUser(ctx, addr))

	// Membership rows reference the groups table; an unrecorded group is a
	// constraint violation, not a silent orphan.
	require.Error(t, s.AddMembership(ctx, addr, "group-unrecorded"))
}

func TestPGStore_AppendMessage_RequiresSenderRow(t *testing.T) {
	s, _ := initPGTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertGroup(ctx, "group-1", 7, "Launch Party"))

	sender := domain.NormalizeAddress("0x0000000000000000000000000000000000000011")
	_, err := s.AppendMessage(ctx, sender, "group-1", "hello", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.Error(t, err)
}

func TestPGStore_SyncCursor_MissingReturnsZero(t *testing.T) {
	s, _ := initPGTestDB(t)
	ctx := context.Background()

	height, err := s.GetSyncCursor(ctx, "attendance-scan")
	require.NoError(t, err)
	require.Equal(t, uint64(0), height)
}

func TestPGStore_SyncCursor_Roundtrip(t *testing.T) {
	s, tx := initPGTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SetSyncCursor(ctx, "attendance-scan", 1000))

	height, err := s.GetSyncCursor(ctx, "attendance-scan")
	require.NoError(t, err)
	require.Equal(t, uint64(1000), height)

	// Overwrite advances in place
	require.NoError(t, s.SetSyncCursor(ctx, "attendance-scan", 1500))

	height, err = s.GetSyncCursor(ctx, "attendance-scan")
	require.NoError(t, err)
	require.Equal(t, uint64(1500), height)

	var count int64
	require.NoError(t, tx.Model(&schema.SyncCursor{}).Where("key = ?", "attendance-scan").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPGStore_SyncCursor_IndependentKeys(t *testing.T) {
	s, _ := initPGTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.SetSyncCursor(ctx, "attendance-scan", 1000))
	require.NoError(t, s.SetSyncCursor(ctx, "ticket-scan", 2000))

	height, err := s.GetSyncCursor(ctx, "attendance-scan")
	require.NoError(t, err)
	require.Equal(t, uint64(1000), height)

	height, err = s.GetSyncCursor(ctx, "ticket-scan")
	require.NoError(t, err)
	require.Equal(t, uint64(2000), height)
}
