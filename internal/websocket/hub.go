package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"voiceform-be/internal/constant"
	"voiceform-be/internal/dto"
	"voiceform-be/internal/entity"
	"voiceform-be/internal/pkg/logger"
	"voiceform-be/internal/service"
	"voiceform-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Hub owns the set of connected gateway clients, keyed by the session they
// bound to, and forwards core events (completion, download-ready, lifecycle)
// to them. A session may have several clients (e.g. the voice agent bridge
// and the visual UI).
type Hub struct {
	// Bound clients map: FormId -> list of clients
	clients map[string][]*Client

	// Lock for safe map access
	mu sync.RWMutex

	sessions  service.ISessionService
	sync      service.ISyncService
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewHub(
	sessions service.ISessionService,
	syncSvc service.ISyncService,
	pubSub *gochannel.GoChannel,
	topicName string,
	log logger.ILogger,
) *Hub {
	return &Hub{
		clients:   make(map[string][]*Client),
		sessions:  sessions,
		sync:      syncSvc,
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

// Run subscribes the hub to the core event bus. Must be called once before
// serving connections.
func (h *Hub) Run(ctx context.Context) error {
	messages, err := h.pubSub.Subscribe(ctx, h.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			h.routeEvent(msg)
			msg.Ack()
		}
	}()
	return nil
}

func (h *Hub) bind(c *Client, formId string) error {
	if _, err := h.sessions.Get(formId); err != nil {
		return err
	}
	c.FormId = formId

	h.mu.Lock()
	h.clients[formId] = append(h.clients[formId], c)
	h.mu.Unlock()

	h.logger.Info("Hub", "Client bound", map[string]interface{}{"form_id": formId})
	return nil
}

func (h *Hub) unregister(c *Client) {
	if c.FormId == "" {
		return
	}
	h.mu.Lock()
	if clients, ok := h.clients[c.FormId]; ok {
		for i, other := range clients {
			if other == c {
				h.clients[c.FormId] = append(clients[:i], clients[i+1:]...)
				c.closed = true
				close(c.Send)
				break
			}
		}
		if len(h.clients[c.FormId]) == 0 {
			delete(h.clients, c.FormId)
		}
	}
	h.mu.Unlock()
}

// handleInbound processes one decoded client frame. Called from the
// connection's readPump, so frames from one connection are serialized.
func (h *Hub) handleInbound(c *Client, data []byte) {
	ctx := context.Background()

	msg, err := DecodeInbound(data)
	if err != nil {
		h.send(c, encode(newErrorMessage(errKindValidation, err.Error())))
		return
	}

	switch m := msg.(type) {
	case SetupMessage:
		h.handleSetup(c, m.FormId)

	case UpdateMessage:
		if c.FormId == "" {
			h.send(c, encode(newErrorMessage(errKindValidation, "setup required before update")))
			return
		}
		resp, err := h.sync.Sync(ctx, c.FormId, m.Updates, false)
		if err != nil {
			h.send(c, encode(newErrorMessage(errKindUnknownSession, "session expired or unknown")))
			return
		}
		h.send(c, encode(newAppliedMessage(resp)))

	case ConfirmMessage:
		if c.FormId == "" {
			h.send(c, encode(newErrorMessage(errKindValidation, "setup required before confirm")))
			return
		}
		if err := h.sessions.Confirm(ctx, c.FormId); err != nil {
			switch err {
			case entity.ErrSessionNotFound:
				h.send(c, encode(newErrorMessage(errKindUnknownSession, "session expired or unknown")))
			case entity.ErrFormIncomplete:
				h.send(c, encode(newErrorMessage(errKindValidation, "form not fully filled")))
			default:
				h.send(c, encode(newErrorMessage(errKindInternal, "confirmation failed")))
			}
		}
		// The download_ready notice arrives through the event bus.

	case QueryStateMessage:
		if c.FormId == "" {
			h.send(c, encode(newErrorMessage(errKindValidation, "setup required before query_state")))
			return
		}
		snap, err := h.sessions.Snapshot(c.FormId)
		if err != nil {
			h.send(c, encode(newErrorMessage(errKindUnknownSession, "session expired or unknown")))
			return
		}
		h.send(c, encode(StateSnapshotMessage{Type: "state_snapshot", Snapshot: snap}))
	}
}

func (h *Hub) handleSetup(c *Client, formId string) {
	if err := h.bind(c, formId); err != nil {
		h.send(c, encode(newErrorMessage(errKindUnknownSession, "session expired or unknown")))
		return
	}

	sess, err := h.sessions.Get(formId)
	if err != nil {
		h.send(c, encode(newErrorMessage(errKindUnknownSession, "session expired or unknown")))
		return
	}

	// Schema is immutable for the session's lifetime; safe to read unlocked.
	schema := sess.Schema
	fields := make([]dto.FieldInfo, 0, schema.Size())
	for _, name := range schema.FieldNames() {
		fields = append(fields, dto.FieldInfo{Name: name, Label: schema.Label(name)})
	}

	h.send(c, encode(SetupCompleteMessage{
		Type:        "setup_complete",
		FormId:      formId,
		Fields:      fields,
		CatalogHash: schema.CatalogHash(),
		Truncated:   schema.Truncated(),
		Tools:       toolDeclarations(),
		Instruction: fmt.Sprintf(constant.PDFFormInstructionTemplate, schema.Size()),
	}))
}

// send delivers one frame without blocking. The closed check and the channel
// send share the hub mutex with unregister's close, so a broadcast that
// snapshotted the client list before teardown drops the frame instead of
// sending on a closed channel.
func (h *Hub) send(c *Client, payload []byte) {
	full := false
	h.mu.RLock()
	if c.closed {
		h.mu.RUnlock()
		return
	}
	select {
	case c.Send <- payload:
	default:
		full = true
	}
	h.mu.RUnlock()

	if full {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
			"form_id": c.FormId,
		})
		h.unregister(c)
	}
}

func (h *Hub) broadcast(formId string, payload []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[formId]...)
	h.mu.RUnlock()

	for _, c := range clients {
		h.send(c, payload)
	}
}

type busEnvelope struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// routeEvent translates one core event into the outbound frames the bound
// clients expect.
func (h *Hub) routeEvent(msg *message.Message) {
	var env busEnvelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		h.logger.Warn("Hub", "Malformed event payload", map[string]interface{}{"error": err.Error()})
		return
	}
	formId, _ := env.Data["form_id"].(string)
	if formId == "" {
		return
	}

	switch env.Type {
	case events.TypeFormCompleted:
		h.broadcast(formId, encode(CompletionNoticeMessage{Type: "completion_notice", FormId: formId}))

	case events.TypeDownloadReady:
		h.broadcast(formId, encode(DownloadReadyMessage{Type: "download_ready", FormId: formId}))

	case events.TypeFieldsApplied:
		applied := make(map[string]string)
		if raw, ok := env.Data["applied"].(map[string]interface{}); ok {
			for k, v := range raw {
				if s, ok := v.(string); ok {
					applied[k] = s
				}
			}
		}
		remaining := 0
		if n, ok := env.Data["remaining"].(float64); ok {
			remaining = int(n)
		}
		h.broadcast(formId, encode(FieldsAppliedMessage{
			Type: "fields_applied", FormId: formId, Applied: applied, Remaining: remaining,
		}))

	case events.TypeSessionExpired, events.TypeSessionReset, events.TypeSessionClosed:
		h.broadcast(formId, encode(SessionClosedMessage{
			Type: "session_closed", FormId: formId, Reason: env.Type,
		}))
	}
}

func toolDeclarations() []dto.ToolDeclaration {
	return []dto.ToolDeclaration{
		{
			Name:        constant.ToolUpdateFields,
			Description: "Update one or more PDF form fields explicitly provided by the user.",
			Parameters: map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"updates": map[string]interface{}{
						"type":        "STRING",
						"description": "JSON string mapping fieldName -> value. Example: '{\"FirstName\": \"Alice\"}'",
					},
				},
			},
		},
		{
			Name:        constant.ToolGetFormState,
			Description: "Retrieve current PDF form progress, counts, and remaining sample. Call if unsure or after unknown_fields.",
			Parameters: map[string]interface{}{
				"type":       "OBJECT",
				"properties": map[string]interface{}{},
			},
		},
	}
}
