package lifecycle_test

import (
	"context"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/lifecycle"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/mocks"
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

// testManagerMocks contains all the mocks needed for testing the manager
type testManagerMocks struct {
	ctrl     *gomock.Controller
	reader   *mocks.MockLedgerReader
	client   *mocks.MockMessagingClient
	resolver *mocks.MockResolver
	updater  *mocks.MockGroupRefUpdater
	history  *mocks.MockStore
	manager  lifecycle.Manager
}

// setupTestManager creates all the mocks and manager for testing
func setupTestManager(t *testing.T) *testManagerMocks {
	ctrl := gomock.NewController(t)

	tm := &testManagerMocks{
		ctrl:     ctrl,
		reader:   mocks.NewMockLedgerReader(ctrl),
		client:   mocks.NewMockMessagingClient(ctrl),
		resolver: mocks.NewMockResolver(ctrl),
		updater:  mocks.NewMockGroupRefUpdater(ctrl),
		history:  mocks.NewMockStore(ctrl),
	}

	tm.manager = lifecycle.NewManager(
		tm.reader,
		tm.client,
		tm.resolver,
		tm.updater,
		tm.history,
	)

	return tm
}

// tearDownTestManager cleans up the test mocks
func tearDownTestManager(mocks *testManagerMocks) {
	mocks.ctrl.Finish()
}

var (
	organizer = domain.NormalizeAddress("0x00000000000000000000000000000000000000AA")
	attendee  = domain.NormalizeAddress("0x00000000000000000000000000000000000000BB")
)

func TestManager_EnsureGroup_LocatesExisting(t *testing.T) {
	mocks := setupTestManager(t)
	defer tearDownTestManager(mocks)

	ctx := context.Background()

	group := newGroupMock(mocks.ctrl, "group-1")

	mocks.reader.
		EXPECT().
		GetEvent(gomock.Any(), uint64(7)).
		Return(&domain.Event{
			ID:        7,
			Organizer: organizer,
			Title:     "Launch Party",
			GroupRef:  "group-1",
		}, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), domain.GroupID("group-1")).
		Return(group, nil)

	// A located group is mirrored into history just like a created one, so
	// group-scoped requests can resolve it back to its event.
	mocks.history.
		EXPECT().
		UpsertGroup(gomock.Any(), domain.GroupID("group-1"), uint64(7), "Launch Party").
		Return(nil)

	// Any entitled viewer can locate; creation is never attempted when a
	// group already exists.
	got, created, err := mocks.manager.EnsureGroup(ctx, 7, attendee)

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, domain.GroupID("group-1"), got.ID())
	assert.Equal(t, lifecycle.StateReady, mocks.manager.StateOf(7))
}

func TestManager_EnsureGroup_LocateSurvivesHistoryFailure(t *testing.T) {
	mocks := setupTestManager(t)
	defer tearDownTestManager(mocks)

	ctx := context.Background()

	group := newGroupMock(mocks.ctrl, "group-1")

	mocks.reader.
		EXPECT().
		GetEvent(gomock.Any(), uint64(7)).
		Return(&domain.Event{
			ID:        7,
			Organizer: organizer,
			Title:     "Launch Party",
			GroupRef:  "group-1",
		}, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), domain.GroupID("group-1")).
		Return(group, nil)

	// The cache write is best effort; its failure never fails the lookup.
	mocks.history.
		EXPECT().
		UpsertGroup(gomock.Any(), domain.GroupID("group-1"), uint64(7), "Launch Party").
		Return(assert.AnError)

	got, created, err := mocks.manager.EnsureGroup(ctx, 7, attendee)

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, domain.GroupID("group-1"), got.ID())
}

func TestManager_EnsureGroup_OrganizerCreatesThenLocates(t *testing.T) {
	mocks := setupTestManager(t)
	defer tearDownTestManager(mocks)

	ctx := context.Background()

	group := newGroupMock(mocks.ctrl, "group-new")

	// First access: no group recorded yet, organizer creates.
	mocks.reader.
		EXPECT().
		GetEvent(gomock.Any(), uint64(7)).
		Return(&domain.Event{
			ID:        7,
			Organizer: organizer,
			Title:     "Launch Party",
		}, nil)

	mocks.resolver.
		EXPECT().
		ResolveInbox(gomock.Any(), organizer).
		Return(domain.InboxID("inbox-org"), true, nil)

	mocks.client.
		EXPECT().
		NewGroup(gomock.Any(), []domain.InboxID{"inbox-org"}, gomock.Any()).
		Return(group, nil)

	mocks.updater.
		EXPECT().
		UpdateGroupRef(gomock.Any(), uint64(7), domain.GroupID(""), domain.GroupID("group-new")).
		Return(nil)

	mocks.history.
		EXPECT().
		UpsertGroup(gomock.Any(), domain.GroupID("group-new"), uint64(7), "Launch Party").
		Return(nil)

	got, created, err := mocks.manager.EnsureGroup(ctx, 7, organizer)

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.GroupID("group-new"), got.ID())
	assert.Equal(t, lifecycle.StateReady, mocks.manager.StateOf(7))

	// Second access: the registry has not caught up yet, but the manager
	// remembers the ref it handed out and locates instead of re-creating.
	mocks.reader.
		EXPECT().
		GetEvent(gomock.Any(), uint64(7)).
		Return(&domain.Event{
			ID:        7,
			Organizer: organizer,
			Title:     "Launch Party",
		}, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), domain.GroupID("group-new")).
		Return(group, nil)

	mocks.history.
		EXPECT().
		UpsertGroup(gomock.Any(), domain.GroupID("group-new"), uint64(7), "Launch Party").
		Return(nil)

	got, created, err = mocks.manager.EnsureGroup(ctx, 7, organizer)

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, domain.GroupID("group-new"), got.ID())
}

func TestManager_EnsureGroup_NonOrganizerCannotCreate(t *testing.T) {
	mocks := setupTestManager(t)
	defer tearDownTestManager(mocks)

	ctx := context.Background()

	mocks.reader.
		EXPECT().
		GetEvent(gomock.Any(), uint64(7)).
		Return(&domain.Event{
			ID:        7,
			Organizer: organizer,
			Title:     "Launch Party",
		}, nil)

	got, created, err := mocks.manager.EnsureGroup(ctx, 7, attendee)

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrChatUnavailable)
	assert.False(t, created)
	assert.Nil(t, got)
	assert.Equal(t, lifecycle.StateFailed, mocks.manager.StateOf(7))
}

func TestManager_EnsureGroup_CreationRaceLocatesWinner(t *testing.T) {
	mocks := setupTestManager(t)
	defer tearDownTestManager(mocks)

	ctx := context.Background()

	loser := newGroupMock(mocks.ctrl, "group-loser")
	winner := newGroupMock(mocks.ctrl, "group-winner")

	mocks.reader.
		EXPECT().
		GetEvent(gomock.Any(), uint64(7)).
		Return(&domain.Event{
			ID:        7,
			Organizer: organizer,
			Title:     "Launch Party",
		}, nil)

	mocks.resolver.
		EXPECT().
		ResolveInbox(gomock.Any(), organizer).
		Return(domain.InboxID("inbox-org"), true, nil)

	mocks.client.
		EXPECT().
		NewGroup(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(loser, nil)

	// Another session won the compare-and-swap; the fresh group is abandoned
	// and the winner located from the registry.
	mocks.updater.
		EXPECT().
		UpdateGroupRef(gomock.Any(), uint64(7), domain.GroupID(""), domain.GroupID("group-loser")).
		Return(lifecycle.ErrRefConflict)

	mocks.reader.
		EXPECT().
		GetEvent(gomock.Any(), uint64(7)).
		Return(&domain.Event{
			ID:        7,
			Organizer: organizer,
			Title:     "Launch Party",
			GroupRef:  "group-winner",
		}, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), domain.GroupID("group-winner")).
		Return(winner, nil)

	mocks.history.
		EXPECT().
		UpsertGroup(gomock.Any(), domain.GroupID("group-winner"), uint64(7), "Launch Party").
		Return(nil)

	got, _, err := mocks.manager.EnsureGroup(ctx, 7, organizer)

	assert.NoError(t, err)
	assert.Equal(t, domain.GroupID("group-winner"), got.ID())
	assert.Equal(t, lifecycle.StateReady, mocks.manager.StateOf(7))
}

func TestManager_EnsureGroup_StaleRefFallsThroughToCreate(t *testing.T) {
	mocks := setupTestManager(t)
	defer tearDownTestManager(mocks)

	ctx := context.Background()

	group := newGroupMock(mocks.ctrl, "group-new")

	// The recorded ref points at nothing on the protocol side; the organizer
	// may create a replacement.
	mocks.reader.
		EXPECT().
		GetEvent(gomock.Any(), uint64(7)).
		Return(&domain.Event{
			ID:        7,
			Organizer: organizer,
			Title:     "Launch Party",
			GroupRef:  "group-gone",
		}, nil)

	mocks.client.
		EXPECT().
		GroupByID(gomock.Any(), domain.GroupID("group-gone")).
		Return(nil, domain.ErrGroupNotFound)

	mocks.resolver.
		EXPECT().
		ResolveInbox(gomock.Any(), organizer).
		Return(domain.InboxID(""), false, nil)

	// The organizer has no messaging identity; the group starts empty.
	mocks.client.
		EXPECT().
		NewGroup(gomock.Any(), gomock.Nil(), gomock.Any()).
		Return(group, nil)

	mocks.updater.
		EXPECT().
		UpdateGroupRef(gomock.Any(), uint64(7), domain.GroupID("group-gone"), domain.GroupID("group-new")).
		Return(nil)

	mocks.history.
		EXPECT().
		UpsertGroup(gomock.Any(), domain.GroupID("group-new"), uint64(7), "Launch Party").
		Return(nil)

	got, created, err := mocks.manager.EnsureGroup(ctx, 7, organizer)

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.GroupID("group-new"), got.ID())
}

func TestManager_StateOf_Unknown(t *testing.T) {
	mocks := setupTestManager(t)
	defer tearDownTestManager(mocks)

	assert.Equal(t, lifecycle.StateUnknown, mocks.manager.StateOf(999))
	assert.Equal(t, "unknown", mocks.manager.StateOf(999).String())
}

// newGroupMock builds a group mock that reports the given id.
func newGroupMock(ctrl *gomock.Controller, id domain.GroupID) *mocks.MockGroup {
	group := mocks.NewMockGroup(ctrl)
	group.EXPECT().ID().Return(id).AnyTimes()
	return group
}
