package messaging_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/messaging"
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

func newTestGateway(t *testing.T, handler http.Handler) *messaging.Gateway {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gw, err := messaging.NewGateway(messaging.GatewayConfig{
		Endpoint: server.URL,
		Env:      "test",
	})
	require.NoError(t, err)
	t.Cleanup(gw.Close)

	return gw
}

func TestNewGateway_RequiresEndpoint(t *testing.T) {
	gw, err := messaging.NewGateway(messaging.GatewayConfig{})

	assert.Error(t, err)
	assert.Nil(t, gw)
}

func TestGateway_InboxIDByAddress(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/inboxes", r.URL.Path)
		assert.Equal(t, "0x00000000000000000000000000000000000000aa", r.URL.Query().Get("address"))
		assert.Equal(t, "test", r.Header.Get("X-Messaging-Env"))

		_ = json.NewEncoder(w).Encode(map[string]string{"inbox_id": "inbox-1"})
	}))

	inboxID, err := gw.InboxIDByAddress(context.Background(), "0x00000000000000000000000000000000000000aa")

	assert.NoError(t, err)
	assert.Equal(t, domain.InboxID("inbox-1"), inboxID)
}

func TestGateway_InboxIDByAddress_NoIdentity(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	// Absence is a normal outcome, not an error.
	inboxID, err := gw.InboxIDByAddress(context.Background(), "0x00000000000000000000000000000000000000bb")

	assert.NoError(t, err)
	assert.Empty(t, inboxID)
}

func TestGateway_GroupByID(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/groups/group-1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	group, err := gw.GroupByID(context.Background(), "group-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.GroupID("group-1"), group.ID())
}

func TestGateway_GroupByID_NotFound(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	group, err := gw.GroupByID(context.Background(), "group-gone")

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	assert.Nil(t, group)
}

func TestGateway_NewGroup(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/groups", r.URL.Path)

		var req struct {
			Name           string   `json:"name"`
			Description    string   `json:"description"`
			InitialMembers []string `json:"initial_members"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Launch Party", req.Name)
		assert.Equal(t, []string{"inbox-org"}, req.InitialMembers)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "group-new"})
	}))

	group, err := gw.NewGroup(context.Background(), []domain.InboxID{"inbox-org"}, messaging.GroupOptions{
		Name:        "Launch Party",
		Description: "Chat for attendees",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.GroupID("group-new"), group.ID())
}

func TestGateway_UpdateGroupRef(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/events/42/group-ref", r.URL.Path)

		var req struct {
			Expect string `json:"expect"`
			Next   string `json:"next"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "", req.Expect)
		assert.Equal(t, "group-new", req.Next)

		w.WriteHeader(http.StatusNoContent)
	}))

	err := gw.UpdateGroupRef(context.Background(), 42, "", "group-new")

	assert.NoError(t, err)
}

func TestGateway_UpdateGroupRef_Conflict(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	// Another session won the compare-and-swap.
	err := gw.UpdateGroupRef(context.Background(), 42, "", "group-loser")

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRefConflict)
}

func TestGatewayGroup_Members(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/groups/group-1":
			w.WriteHeader(http.StatusOK)
		case "/v1/groups/group-1/members":
			_ = json.NewEncoder(w).Encode(map[string][]string{"members": {"inbox-a", "inbox-b"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	group, err := gw.GroupByID(context.Background(), "group-1")
	require.NoError(t, err)

	members, err := group.Members(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []domain.InboxID{"inbox-a", "inbox-b"}, members)
}

func TestGatewayGroup_AddMembers(t *testing.T) {
	var gotInboxIDs []string
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/groups/group-1" && r.Method == http.MethodGet:
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/v1/groups/group-1/members" && r.Method == http.MethodPost:
			var req struct {
				InboxIDs []string `json:"inbox_ids"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotInboxIDs = req.InboxIDs
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	group, err := gw.GroupByID(context.Background(), "group-1")
	require.NoError(t, err)

	err = group.AddMembers(context.Background(), []domain.InboxID{"inbox-a", "inbox-b"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"inbox-a", "inbox-b"}, gotInboxIDs)
}

func TestGatewayGroup_Send(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/groups/group-1" && r.Method == http.MethodGet:
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/v1/groups/group-1/messages" && r.Method == http.MethodPost:
			var req struct {
				Content string `json:"content"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "hello", req.Content)

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	group, err := gw.GroupByID(context.Background(), "group-1")
	require.NoError(t, err)

	msgID, err := group.Send(context.Background(), "hello")

	assert.NoError(t, err)
	assert.Equal(t, domain.MessageID("msg-1"), msgID)
}

func TestGateway_StreamAllMessages(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages/stream", r.URL.Path)
		assert.Equal(t, "application/x-ndjson", r.Header.Get("Accept"))

		_, _ = io.WriteString(w, `{"id":"m1","conversation_ref":"group-1","sender_inbox_id":"inbox-a","content":"hello"}`+"\n")
		_, _ = io.WriteString(w, "\n")
		_, _ = io.WriteString(w, `{"id":"m2","conversation_ref":"group-2","sender_inbox_id":"inbox-b","content":"hi"}`+"\n")
	}))

	stream, err := gw.StreamAllMessages(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	ctx := context.Background()

	msg, err := stream.Next(ctx)
	assert.NoError(t, err)
	assert.Equal(t, domain.MessageID("m1"), msg.ID)
	assert.Equal(t, domain.GroupID("group-1"), msg.ConversationRef)
	assert.Equal(t, "hello", msg.Content)

	// Blank lines are skipped, not surfaced as messages.
	msg, err = stream.Next(ctx)
	assert.NoError(t, err)
	assert.Equal(t, domain.MessageID("m2"), msg.ID)

	// A cleanly ended stream yields io.EOF.
	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGateway_StreamAllMessages_OversizedMessage(t *testing.T) {
	// Larger than bufio.Scanner's 64 KiB default token size; one big message
	// must not error the whole stream.
	bigContent := strings.Repeat("a", 256*1024)

	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		line, err := json.Marshal(map[string]string{
			"id":               "m1",
			"conversation_ref": "group-1",
			"sender_inbox_id":  "inbox-a",
			"content":          bigContent,
		})
		require.NoError(t, err)
		_, _ = w.Write(append(line, '\n'))
		_, _ = io.WriteString(w, `{"id":"m2","conversation_ref":"group-1","sender_inbox_id":"inbox-b","content":"after"}`+"\n")
	}))

	stream, err := gw.StreamAllMessages(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	ctx := context.Background()

	msg, err := stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageID("m1"), msg.ID)
	assert.Equal(t, bigContent, msg.Content)

	msg, err = stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageID("m2"), msg.ID)
}

func TestGateway_StreamAllMessages_BadStatus(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	stream, err := gw.StreamAllMessages(context.Background())

	assert.Error(t, err)
	assert.Nil(t, stream)
}
