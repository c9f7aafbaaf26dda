package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gatherspace/chat-sync/internal/access"
	"github.com/gatherspace/chat-sync/internal/adapter"
	"github.com/gatherspace/chat-sync/internal/api/shared/dto"
	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/lifecycle"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/messaging"
	"github.com/gatherspace/chat-sync/internal/reconcile"
	"github.com/gatherspace/chat-sync/internal/store"
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// AccessChat runs the chat entry sequence for a viewer: the entitlement
	// gate, then group locate-or-create, then a membership sync against the
	// group. The gate always runs before any group operation.
	AccessChat(ctx context.Context, eventID uint64, viewer domain.Address) (*dto.ChatAccessResponse, error)

	// AuthorizeGroup verifies that the viewer is entitled to the event the
	// group belongs to. Returns ErrGroupNotFound when the group is unknown
	// and ErrAccessDenied when the viewer is not entitled.
	AuthorizeGroup(ctx context.Context, groupID domain.GroupID, viewer domain.Address) error

	// GetMessages returns up to limit cached messages, most recent first.
	// The viewer must be entitled to the group's event.
	GetMessages(ctx context.Context, groupID domain.GroupID, viewer domain.Address, limit int) (*dto.MessageListResponse, error)

	// SendMessage publishes a message to the group and mirrors it into
	// history. The sender must be entitled to the group's event.
	SendMessage(ctx context.Context, groupID domain.GroupID, sender domain.Address, content string) (*dto.SendMessageResponse, error)
}

type executor struct {
	gate    access.Gate
	manager lifecycle.Manager
	engine  reconcile.Engine
	client  messaging.Client
	history store.Store
	clock   adapter.Clock
}

// NewExecutor creates the shared API executor
func NewExecutor(
	gate access.Gate,
	manager lifecycle.Manager,
	engine reconcile.Engine,
	client messaging.Client,
	history store.Store,
	clock adapter.Clock,
) Executor {
	return &executor{
		gate:    gate,
		manager: manager,
		engine:  engine,
		client:  client,
		history: history,
		clock:   clock,
	}
}

func (e *executor) AccessChat(ctx context.Context, eventID uint64, viewer domain.Address) (*dto.ChatAccessResponse, error) {
	ok, err := e.gate.CanAccess(ctx, eventID, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAccessDenied
	}

	group, created, err := e.manager.EnsureGroup(ctx, eventID, viewer)
	if err != nil {
		return nil, err
	}

	result, err := e.engine.Sync(ctx, eventID, group.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to sync membership on entry: %w", err)
	}

	return &dto.ChatAccessResponse{
		GroupID: string(group.ID()),
		State:   e.manager.StateOf(eventID).String(),
		Created: created,
		Sync: dto.SyncResult{
			Added:   result.Added,
			Skipped: result.Skipped,
			Failed:  result.Failed,
		},
	}, nil
}

// AuthorizeGroup resolves the group back to its registry event and runs the
// entitlement gate for the viewer. Every group-scoped operation goes through
// here before it touches history, the protocol, or the live stream.
func (e *executor) AuthorizeGroup(ctx context.Context, groupID domain.GroupID, viewer domain.Address) error {
	group, err := e.history.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to resolve group %s: %w", groupID, err)
	}
	if group == nil {
		return domain.ErrGroupNotFound
	}

	ok, err := e.gate.CanAccess(ctx, group.EventID, viewer)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAccessDenied
	}
	return nil
}

func (e *executor) GetMessages(ctx context.Context, groupID domain.GroupID, viewer domain.Address, limit int) (*dto.MessageListResponse, error) {
	if err := e.AuthorizeGroup(ctx, groupID, viewer); err != nil {
		return nil, err
	}

	rows, err := e.history.GetGroupMessages(ctx, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get group messages: %w", err)
	}

	messages := make([]dto.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, dto.Message{
			ID:      row.ID,
			Sender:  row.SenderAddress,
			Content: row.Content,
			SentAt:  row.SentAt,
		})
	}

	return &dto.MessageListResponse{Messages: messages}, nil
}

func (e *executor) SendMessage(ctx context.Context, groupID domain.GroupID, sender domain.Address, content string) (*dto.SendMessageResponse, error) {
	if err := e.AuthorizeGroup(ctx, groupID, sender); err != nil {
		return nil, err
	}

	group, err := e.client.GroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	msgID, err := group.Send(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to send message to %s: %w", groupID, err)
	}

	// Mirror into history. Best effort: the cache is never allowed to fail
	// a send that the protocol accepted. The sender row goes in first so the
	// message's sender reference resolves.
	if err := e.history.UpsertUser(ctx, sender); err != nil {
		logger.Warn("Failed to upsert history user",
			zap.String("address", string(sender)),
			zap.Error(err))
	} else if _, err := e.history.AppendMessage(ctx, sender, groupID, content, e.clock.Now()); err != nil {
		logger.Warn("Failed to append message to history",
			zap.String("groupID", string(groupID)),
			zap.Error(err))
	}

	return &dto.SendMessageResponse{ID: string(msgID)}, nil
}
