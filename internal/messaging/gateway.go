package messaging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gatherspace/chat-sync/internal/domain"
)

// GatewayConfig holds the location of the messaging gateway, the service
// that owns the protocol-level group encryption and key management.
type GatewayConfig struct {
	Endpoint string
	Env      string // forwarded so the gateway picks the right network
	Timeout  time.Duration
}

// DefaultGatewayTimeout bounds non-streaming gateway calls.
const DefaultGatewayTimeout = 30 * time.Second

// maxStreamLineBytes caps one ndjson line on the message stream. The
// bufio.Scanner default of 64 KiB is smaller than the gateway's own payload
// limit, and a single oversized message must not kill the whole stream.
const maxStreamLineBytes = 10 * 1024 * 1024

// Gateway implements Client against the messaging gateway's HTTP API.
// It also carries the gateway-owned group ref compare-and-swap, so one
// value serves both the client and ref updater seams.
type Gateway struct {
	endpoint string
	env      string
	http     *http.Client
	// stream requests must not inherit the call timeout
	streamHTTP *http.Client
}

// NewGateway creates a messaging client backed by the gateway service.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("messaging gateway endpoint is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultGatewayTimeout
	}

	return &Gateway{
		endpoint:   cfg.Endpoint,
		env:        cfg.Env,
		http:       &http.Client{Timeout: cfg.Timeout},
		streamHTTP: &http.Client{},
	}, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.endpoint+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.env != "" {
		req.Header.Set("X-Messaging-Env", g.env)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

func (g *Gateway) InboxIDByAddress(ctx context.Context, addr domain.Address) (domain.InboxID, error) {
	var result struct {
		InboxID string `json:"inbox_id"`
	}
	status, err := g.do(ctx, http.MethodGet, "/v1/inboxes?address="+url.QueryEscape(string(addr)), nil, &result)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusOK:
		return domain.InboxID(result.InboxID), nil
	case http.StatusNotFound:
		// No messaging identity yet. Normal outcome.
		return "", nil
	default:
		return "", fmt.Errorf("gateway returned status %d for inbox lookup", status)
	}
}

func (g *Gateway) GroupByID(ctx context.Context, id domain.GroupID) (Group, error) {
	status, err := g.do(ctx, http.MethodGet, "/v1/groups/"+url.PathEscape(string(id)), nil, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &gatewayGroup{client: g, id: id}, nil
	case http.StatusNotFound:
		return nil, domain.ErrGroupNotFound
	default:
		return nil, fmt.Errorf("gateway returned status %d for group lookup", status)
	}
}

func (g *Gateway) NewGroup(ctx context.Context, initial []domain.InboxID, opts GroupOptions) (Group, error) {
	req := struct {
		Name           string   `json:"name"`
		Description    string   `json:"description,omitempty"`
		InitialMembers []string `json:"initial_members,omitempty"`
	}{
		Name:        opts.Name,
		Description: opts.Description,
	}
	for _, inboxID := range initial {
		req.InitialMembers = append(req.InitialMembers, string(inboxID))
	}

	var result struct {
		ID string `json:"id"`
	}
	status, err := g.do(ctx, http.MethodPost, "/v1/groups", req, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d for group create", status)
	}

	return &gatewayGroup{client: g, id: domain.GroupID(result.ID)}, nil
}

func (g *Gateway) StreamAllMessages(ctx context.Context) (MessageStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/v1/messages/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "application/x-ndjson")
	if g.env != "" {
		req.Header.Set("X-Messaging-Env", g.env)
	}

	resp, err := g.streamHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open message stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("gateway returned status %d for message stream", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineBytes)

	return &gatewayStream{body: resp.Body, scanner: scanner}, nil
}

func (g *Gateway) Close() {
	g.http.CloseIdleConnections()
	g.streamHTTP.CloseIdleConnections()
}

// UpdateGroupRef performs the gateway-owned compare-and-swap of an event's
// group ref. Satisfies the lifecycle manager's GroupRefUpdater seam.
func (g *Gateway) UpdateGroupRef(ctx context.Context, eventID uint64, expect, next domain.GroupID) error {
	req := struct {
		Expect string `json:"expect"`
		Next   string `json:"next"`
	}{Expect: string(expect), Next: string(next)}

	status, err := g.do(ctx, http.MethodPut, fmt.Sprintf("/v1/events/%d/group-ref", eventID), req, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return domain.ErrRefConflict
	default:
		return fmt.Errorf("gateway returned status %d for group ref update", status)
	}
}

// gatewayGroup implements Group for a gateway-hosted conversation.
type gatewayGroup struct {
	client *Gateway
	id     domain.GroupID
}

func (gr *gatewayGroup) ID() domain.GroupID {
	return gr.id
}

func (gr *gatewayGroup) Members(ctx context.Context) ([]domain.InboxID, error) {
	var result struct {
		Members []string `json:"members"`
	}
	status, err := gr.client.do(ctx, http.MethodGet, "/v1/groups/"+url.PathEscape(string(gr.id))+"/members", nil, &result)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrGroupNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d for member list", status)
	}

	members := make([]domain.InboxID, 0, len(result.Members))
	for _, m := range result.Members {
		members = append(members, domain.InboxID(m))
	}
	return members, nil
}

func (gr *gatewayGroup) AddMembers(ctx context.Context, inboxIDs []domain.InboxID) error {
	req := struct {
		InboxIDs []string `json:"inbox_ids"`
	}{}
	for _, inboxID := range inboxIDs {
		req.InboxIDs = append(req.InboxIDs, string(inboxID))
	}

	status, err := gr.client.do(ctx, http.MethodPost, "/v1/groups/"+url.PathEscape(string(gr.id))+"/members", req, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return domain.ErrGroupNotFound
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("gateway returned status %d for member add", status)
	}
	return nil
}

func (gr *gatewayGroup) Send(ctx context.Context, content string) (domain.MessageID, error) {
	req := struct {
		Content string `json:"content"`
	}{Content: content}

	var result struct {
		ID string `json:"id"`
	}
	status, err := gr.client.do(ctx, http.MethodPost, "/v1/groups/"+url.PathEscape(string(gr.id))+"/messages", req, &result)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", domain.ErrGroupNotFound
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", fmt.Errorf("gateway returned status %d for send", status)
	}
	return domain.MessageID(result.ID), nil
}

// gatewayStream reads newline-delimited JSON messages from the gateway.
type gatewayStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func (s *gatewayStream) Next(ctx context.Context) (*domain.StreamedMessage, error) {
	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var wire struct {
			ID              string    `json:"id"`
			ConversationRef string    `json:"conversation_ref"`
			SenderInboxID   string    `json:"sender_inbox_id"`
			Content         string    `json:"content"`
			SentAt          time.Time `json:"sent_at"`
		}
		if err := json.Unmarshal(line, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode streamed message: %w", err)
		}

		return &domain.StreamedMessage{
			ID:              domain.MessageID(wire.ID),
			ConversationRef: domain.GroupID(wire.ConversationRef),
			SenderInboxID:   domain.InboxID(wire.SenderInboxID),
			Content:         wire.Content,
			SentAt:          wire.SentAt,
		}, nil
	}

	if err := s.scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("message stream failed: %w", err)
	}
	return nil, io.EOF
}

func (s *gatewayStream) Close() error {
	return s.body.Close()
}
