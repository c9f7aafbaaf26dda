package reconcile_test

import (
	"context"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/mocks"
	"github.com/gatherspace/chat-sync/internal/reconcile"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testEngineMocks contains all the mocks needed for testing the engine
type testEngineMocks struct {
	ctrl     *gomock.Controller
	reader   *mocks.MockLedgerReader
	client   *mocks.MockMessagingClient
	group    *mocks.MockGroup
	resolver *mocks.MockResolver
	history  *mocks.MockStore
	engine   reconcile.Engine
}

// setupTestEngine creates all the mocks and engine for testing
func setupTestEngine(t *testing.T) *testEngineMocks {
	ctrl := gomock.NewController(t)

	tm := &testEngineMocks{
		ctrl:     ctrl,
		reader:   mocks.NewMockLedgerReader(ctrl),
		client:   mocks.NewMockMessagingClient(ctrl),
		group:    mocks.NewMockGroup(ctrl),
		resolver: mocks.NewMockResolver(ctrl),
		history:  mocks.NewMockStore(ctrl),
	}

	tm.engine = reconcile.NewEngine(
		tm.reader,
		tm.client,
		tm.resolver,
		tm.history,
		reconcile.Config{FallbackConcurrency: 2},
	)

	return tm
}

// tearDownTestEngine cleans up the test mocks
func tearDownTestEngine(mocks *testEngineMocks) {
	mocks.ctrl.Finish()
}

const testGroupID = domain.GroupID("group-1")

func addr(suffix string) domain.Address {
	return domain.NormalizeAddress("0x00000000000000000000000000000000000000" + suffix)
}

func TestEngine_Sync_AddsAndSkips(t *testing.T) {
	mocks := setupTestEngine(t)
	defer tearDownTestEngine(mocks)

	ctx := context.Background()

	// Three attendees: two with messaging identities, one not yet onboarded.
	attendees := map[domain.Address]struct{}{
		addr("aa"): {},
		addr("bb"): {},
		addr("cc"): {},
	}

	mocks.reader.
		EXPECT().
		GetAttendees(gomock.Any(), uint64(42)).
		Return(attendees, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), testGroupID).
		Return(mocks.group, nil)

	mocks.group.
		EXPECT().
		Members(gomock.Any()).
		Return([]domain.InboxID{}, nil)

	mocks.resolver.
		EXPECT().
		ResolveInbox(gomock.Any(), addr("aa")).
		Return(domain.InboxID("inbox-aa"), true, nil)
	mocks.resolver.
		EXPECT().
		ResolveInbox(gomock.Any(), addr("bb")).
		Return(domain.InboxID("inbox-bb"), true, nil)
	mocks.resolver.
		EXPECT().
		ResolveInbox(gomock.Any(), addr("cc")).
		Return(domain.InboxID(""), false, nil)

	// Batch add succeeds in one call; attendee iteration order is not fixed.
	mocks.group.
		EXPECT().
		AddMembers(gomock.Any(), gomock.Len(2)).
		Return(nil)

	// Both represented attendees are mirrored into the history cache.
	mocks.history.EXPECT().UpsertUser(gomock.Any(), addr("aa")).Return(nil)
	mocks.history.EXPECT().UpsertUser(gomock.Any(), addr("bb")).Return(nil)
	mocks.history.EXPECT().AddMembership(gomock.Any(), addr("aa"), testGroupID).Return(nil)
	mocks.history.EXPECT().AddMembership(gomock.Any(), addr("bb"), testGroupID).Return(nil)

	result, err := mocks.engine.Sync(ctx, 42, testGroupID)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
}

func TestEngine_Sync_Idempotent(t *testing.T) {
	mocks := setupTestEngine(t)
	defer tearDownTestEngine(mocks)

	ctx := context.Background()

	attendees := map[domain.Address]struct{}{
		addr("aa"): {},
		addr("bb"): {},
	}

	// A second pass with no attendance change: everyone is already a member,
	// so nothing is added and no AddMembers call is made.
	mocks.reader.
		EXPECT().
		GetAttendees(gomock.Any(), uint64(42)).
		Return(attendees, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), testGroupID).
		Return(mocks.group, nil)

	mocks.group.
		EXPECT().
		Members(gomock.Any()).
		Return([]domain.InboxID{"inbox-aa", "inbox-bb"}, nil)

	mocks.resolver.
		EXPECT().
		ResolveInbox(gomock.Any(), addr("aa")).
		Return(domain.InboxID("inbox-aa"), true, nil)
	mocks.resolver.
		EXPECT().
		ResolveInbox(gomock.Any(), addr("bb")).
		Return(domain.InboxID("inbox-bb"), true, nil)

	// Already present members are still mirrored into history.
	mocks.history.EXPECT().UpsertUser(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	mocks.history.EXPECT().AddMembership(gomock.Any(), gomock.Any(), testGroupID).Return(nil).Times(2)

	result, err := mocks.engine.Sync(ctx, 42, testGroupID)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)
}

func TestEngine_Sync_EmptyEntitlementSet(t *testing.T) {
	mocks := setupTestEngine(t)
	defer tearDownTestEngine(mocks)

	ctx := context.Background()

	// No attendance yet: the sync is a no-op and never touches the group.
	mocks.reader.
		EXPECT().
		GetAttendees(gomock.Any(), uint64(42)).
		Return(map[domain.Address]struct{}{}, nil)

	result, err := mocks.engine.Sync(ctx, 42, testGroupID)

	assert.NoError(t, err)
	assert.Equal(t, domain.SyncResult{}, result)
}

func TestEngine_Sync_PartialAddFailure(t *testing.T) {
	mocks := setupTestEngine(t)
	defer tearDownTestEngine(mocks)

	ctx := context.Background()

	attendees := make(map[domain.Address]struct{})
	suffixes := []string{"a1", "a2", "a3", "a4", "a5"}
	for _, s := range suffixes {
		attendees[addr(s)] = struct{}{}
	}

	mocks.reader.
		EXPECT().
		GetAttendees(gomock.Any(), uint64(42)).
		Return(attendees, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), testGroupID).
		Return(mocks.group, nil)

	mocks.group.
		EXPECT().
		ID().
		Return(testGroupID).
		AnyTimes()

	mocks.group.
		EXPECT().
		Members(gomock.Any()).
		Return([]domain.InboxID{}, nil)

	for _, s := range suffixes {
		s := s
		mocks.resolver.
			EXPECT().
			ResolveInbox(gomock.Any(), addr(s)).
			Return(domain.InboxID("inbox-"+s), true, nil)
	}

	// The batch add fails, forcing the per-member fallback.
	mocks.group.
		EXPECT().
		AddMembers(gomock.Any(), gomock.Len(5)).
		Return(assert.AnError)

	// One member is unreachable; the other four still make it in.
	mocks.group.
		EXPECT().
		AddMembers(gomock.Any(), gomock.Len(1)).
		DoAndReturn(func(_ context.Context, inboxIDs []domain.InboxID) error {
			if inboxIDs[0] == "inbox-a3" {
				return assert.AnError
			}
			return nil
		}).
		Times(5)

	mocks.history.EXPECT().UpsertUser(gomock.Any(), gomock.Any()).Return(nil).Times(4)
	mocks.history.EXPECT().AddMembership(gomock.Any(), gomock.Any(), testGroupID).Return(nil).Times(4)

	result, err := mocks.engine.Sync(ctx, 42, testGroupID)

	assert.NoError(t, err)
	assert.Equal(t, 4, result.Added)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, result.Failed)
}

func TestEngine_Sync_GroupNotFound(t *testing.T) {
	mocks := setupTestEngine(t)
	defer tearDownTestEngine(mocks)

	ctx := context.Background()

	mocks.reader.
		EXPECT().
		GetAttendees(gomock.Any(), uint64(42)).
		Return(map[domain.Address]struct{}{addr("aa"): {}}, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), testGroupID).
		Return(nil, domain.ErrGroupNotFound)

	_, err := mocks.engine.Sync(ctx, 42, testGroupID)

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestEngine_Sync_LedgerUnavailable(t *testing.T) {
	mocks := setupTestEngine(t)
	defer tearDownTestEngine(mocks)

	ctx := context.Background()

	mocks.reader.
		EXPECT().
		GetAttendees(gomock.Any(), uint64(42)).
		Return(nil, domain.ErrLedgerUnavailable)

	_, err := mocks.engine.Sync(ctx, 42, testGroupID)

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
}

func TestEngine_Sync_HistoryFailureDoesNotFailSync(t *testing.T) {
	mocks := setupTestEngine(t)
	defer tearDownTestEngine(mocks)

	ctx := context.Background()

	mocks.reader.
		EXPECT().
		GetAttendees(gomock.Any(), uint64(42)).
		Return(map[domain.Address]struct{}{addr("aa"): {}}, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), testGroupID).
		Return(mocks.group, nil)

	mocks.group.
		EXPECT().
		Members(gomock.Any()).
		Return([]domain.InboxID{}, nil)

	mocks.resolver.
		EXPECT().
		ResolveInbox(gomock.Any(), addr("aa")).
		Return(domain.InboxID("inbox-aa"), true, nil)

	mocks.group.
		EXPECT().
		AddMembers(gomock.Any(), []domain.InboxID{"inbox-aa"}).
		Return(nil)

	// The history cache is best effort: its write failure never rolls back
	// the protocol success it mirrors.
	mocks.history.
		EXPECT().
		UpsertUser(gomock.Any(), addr("aa")).
		Return(assert.AnError)

	result, err := mocks.engine.Sync(ctx, 42, testGroupID)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Added)
}
