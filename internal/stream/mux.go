package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/messaging"
)

// Config holds multiplexer tuning.
type Config struct {
	// DedupWindow bounds the per-group recently-seen message id set.
	// Zero means DefaultDedupWindow.
	DedupWindow int
	// SubscriberBuffer is the default per-subscriber channel depth used
	// when Subscribe is called with buffer <= 0.
	SubscriberBuffer int
}

const (
	// DefaultDedupWindow is the per-group recently-seen set capacity.
	DefaultDedupWindow = 1024
	// DefaultSubscriberBuffer is the per-subscriber channel depth.
	DefaultSubscriberBuffer = 64
)

// Mux fans one upstream all-conversations stream out to per-group
// subscribers.
//
// Exactly one upstream subscription is held per process regardless of how
// many groups are watched, so upstream stream limits are never exhausted by
// fan-out. Messages are delivered in upstream arrival order; duplicates of a
// message id already seen for a group are dropped silently. A slow
// subscriber loses messages rather than stalling its siblings.
type Mux struct {
	client messaging.Client
	config Config

	mu     sync.Mutex
	groups map[domain.GroupID]*groupFanout
	nextID uint64
	closed bool
}

type groupFanout struct {
	seen *lru.Cache[domain.MessageID, struct{}]
	subs map[uint64]chan domain.StreamedMessage
}

// NewMux creates a multiplexer over the given messaging client.
func NewMux(client messaging.Client, cfg Config) *Mux {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = DefaultDedupWindow
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = DefaultSubscriberBuffer
	}
	return &Mux{
		client: client,
		config: cfg,
		groups: make(map[domain.GroupID]*groupFanout),
	}
}

// Subscribe registers a listener for one group. The returned cancel func is
// safe to call multiple times and never affects other listeners, including
// those on the same group.
func (m *Mux) Subscribe(groupID domain.GroupID, buffer int) (<-chan domain.StreamedMessage, func()) {
	if buffer <= 0 {
		buffer = m.config.SubscriberBuffer
	}
	ch := make(chan domain.StreamedMessage, buffer)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		close(ch)
		return ch, func() {}
	}

	fanout, ok := m.groups[groupID]
	if !ok {
		// lru.New only fails on a non-positive size, which the config
		// normalization above rules out.
		seen, _ := lru.New[domain.MessageID, struct{}](m.config.DedupWindow)
		fanout = &groupFanout{
			seen: seen,
			subs: make(map[uint64]chan domain.StreamedMessage),
		}
		m.groups[groupID] = fanout
	}

	id := m.nextID
	m.nextID++
	fanout.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if fanout, ok := m.groups[groupID]; ok {
				if sub, ok := fanout.subs[id]; ok {
					delete(fanout.subs, id)
					close(sub)
				}
				if len(fanout.subs) == 0 {
					delete(m.groups, groupID)
				}
			}
		})
	}

	return ch, cancel
}

// Run opens the upstream stream and pumps it until ctx is cancelled,
// reopening when the upstream ends or fails. A clean upstream end is a
// reconnect case like any other: only cancellation stops the fan-out.
func (m *Mux) Run(ctx context.Context) error {
	defer m.shutdown()

	// MaxElapsedTime is zeroed so the policy never gives up: it is created
	// once at start, and a transient failure hours into a healthy stream
	// must still reconnect.
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0

	for {
		err := m.pump(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Warn("Upstream message stream failed, reconnecting", zap.Error(err))
		} else {
			logger.Info("Upstream message stream ended, resubscribing")
			// The upstream was healthy enough to end cleanly; start the
			// next failure's backoff from the initial interval.
			policy.Reset()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(policy.NextBackOff()):
		}
	}
}

// pump drains one upstream subscription. EOF is a clean end, reported as
// nil; any other error is returned for Run to back off on.
func (m *Mux) pump(ctx context.Context) error {
	upstream, err := m.client.StreamAllMessages(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := upstream.Close(); err != nil {
			logger.Debug("Failed to close upstream stream", zap.Error(err))
		}
	}()

	for {
		msg, err := upstream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		m.dispatch(msg)
	}
}

// dispatch routes one message to the listeners of its conversation,
// dropping duplicates and never blocking on a full subscriber.
func (m *Mux) dispatch(msg *domain.StreamedMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fanout, ok := m.groups[msg.ConversationRef]
	if !ok {
		return
	}

	if _, dup := fanout.seen.Get(msg.ID); dup {
		return
	}
	fanout.seen.Add(msg.ID, struct{}{})

	for _, sub := range fanout.subs {
		select {
		case sub <- *msg:
		default:
			logger.Debug("Dropping message for slow subscriber",
				zap.String("groupID", string(msg.ConversationRef)),
				zap.String("messageID", string(msg.ID)))
		}
	}
}

// shutdown closes every subscriber channel and refuses new subscriptions.
func (m *Mux) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for _, fanout := range m.groups {
		for id, sub := range fanout.subs {
			delete(fanout.subs, id)
			close(sub)
		}
	}
	m.groups = make(map[domain.GroupID]*groupFanout)
}
