package websocket

import (
	"encoding/json"
	"errors"

	"voiceform-be/internal/dto"
)

// Inbound messages are decoded exactly once, here, into discriminated types.
// Unknown shapes fail fast instead of being poked at by key lookups.

var ErrUnknownMessage = errors.New("unknown message type")

type SetupMessage struct {
	FormId string
}

type UpdateMessage struct {
	Updates map[string]string
}

type ConfirmMessage struct{}

type QueryStateMessage struct{}

func DecodeInbound(data []byte) (interface{}, error) {
	var env struct {
		Type    string            `json:"type"`
		FormId  string            `json:"form_id"`
		Updates map[string]string `json:"updates"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case "setup":
		if env.FormId == "" {
			return nil, errors.New("setup requires form_id")
		}
		return SetupMessage{FormId: env.FormId}, nil
	case "update":
		if env.Updates == nil {
			return nil, errors.New("update requires updates")
		}
		return UpdateMessage{Updates: env.Updates}, nil
	case "confirm":
		return ConfirmMessage{}, nil
	case "query_state":
		return QueryStateMessage{}, nil
	default:
		return nil, ErrUnknownMessage
	}
}

// Outbound message shapes. Every frame carries a type tag the client
// switches on.

type SetupCompleteMessage struct {
	Type        string                `json:"type"`
	FormId      string                `json:"form_id"`
	Fields      []dto.FieldInfo       `json:"fields"`
	CatalogHash string                `json:"catalog_hash"`
	Truncated   bool                  `json:"truncated,omitempty"`
	Tools       []dto.ToolDeclaration `json:"tools"`
	Instruction string                `json:"instruction"`
}

type AppliedMessage struct {
	Type           string            `json:"type"`
	Updated        map[string]string `json:"updated"`
	Remaining      int               `json:"remaining"`
	IgnoredUnknown []string          `json:"ignored_unknown"`
	IgnoredEmpty   []string          `json:"ignored_empty"`
	Truncated      []string          `json:"truncated"`
	CatalogHash    string            `json:"catalog_hash"`
}

type StateSnapshotMessage struct {
	Type     string             `json:"type"`
	Snapshot *dto.StateSnapshot `json:"snapshot"`
}

type CompletionNoticeMessage struct {
	Type   string `json:"type"`
	FormId string `json:"form_id"`
}

type DownloadReadyMessage struct {
	Type   string `json:"type"`
	FormId string `json:"form_id"`
}

type FieldsAppliedMessage struct {
	Type      string            `json:"type"`
	FormId    string            `json:"form_id"`
	Applied   map[string]string `json:"applied"`
	Remaining int               `json:"remaining"`
}

type SessionClosedMessage struct {
	Type   string `json:"type"`
	FormId string `json:"form_id"`
	Reason string `json:"reason"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	errKindUnknownSession = "unknown_session"
	errKindValidation     = "validation_error"
	errKindInternal       = "internal_error"
)

func newErrorMessage(kind, message string) ErrorMessage {
	return ErrorMessage{Type: "error", Kind: kind, Message: message}
}

func newAppliedMessage(resp *dto.UpdateFieldsResponse) AppliedMessage {
	return AppliedMessage{
		Type:           "applied",
		Updated:        resp.Applied,
		Remaining:      resp.RemainingCount,
		IgnoredUnknown: resp.IgnoredUnknown,
		IgnoredEmpty:   resp.IgnoredEmpty,
		Truncated:      resp.Truncated,
		CatalogHash:    resp.CatalogHash,
	}
}

func encode(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}
