package websocket

import (
	"encoding/json"
	"testing"

	"voiceform-be/internal/dto"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    interface{}
		wantErr bool
	}{
		{
			name:    "setup",
			payload: `{"type":"setup","form_id":"abc"}`,
			want:    SetupMessage{FormId: "abc"},
		},
		{
			name:    "setup without form_id",
			payload: `{"type":"setup"}`,
			wantErr: true,
		},
		{
			name:    "update",
			payload: `{"type":"update","updates":{"A":"1"}}`,
			want:    UpdateMessage{Updates: map[string]string{"A": "1"}},
		},
		{
			name:    "update without updates",
			payload: `{"type":"update"}`,
			wantErr: true,
		},
		{
			name:    "confirm",
			payload: `{"type":"confirm"}`,
			want:    ConfirmMessage{},
		},
		{
			name:    "query_state",
			payload: `{"type":"query_state"}`,
			want:    QueryStateMessage{},
		},
		{
			name:    "unknown type",
			payload: `{"type":"bogus"}`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			payload: `setup please`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeInbound(%q) succeeded, want error", tt.payload)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeInbound error = %v", err)
			}

			switch want := tt.want.(type) {
			case SetupMessage:
				if got != want {
					t.Errorf("got %#v, want %#v", got, want)
				}
			case UpdateMessage:
				gotMsg, ok := got.(UpdateMessage)
				if !ok || gotMsg.Updates["A"] != want.Updates["A"] {
					t.Errorf("got %#v, want %#v", got, want)
				}
			default:
				if got != tt.want {
					t.Errorf("got %#v, want %#v", got, tt.want)
				}
			}
		})
	}
}

func TestAppliedMessageMirrorsResponse(t *testing.T) {
	resp := &dto.UpdateFieldsResponse{
		Applied:        map[string]string{"A": "1"},
		IgnoredUnknown: []string{"X"},
		IgnoredEmpty:   []string{"Y"},
		Truncated:      []string{"Z"},
		RemainingCount: 4,
		Complete:       false,
		CatalogHash:    "deadbeefdeadbeef",
	}

	data := encode(newAppliedMessage(resp))
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if decoded["type"] != "applied" {
		t.Errorf("type = %v, want applied", decoded["type"])
	}
	if decoded["remaining"] != float64(4) {
		t.Errorf("remaining = %v, want 4", decoded["remaining"])
	}
	if decoded["catalog_hash"] != "deadbeefdeadbeef" {
		t.Errorf("catalog_hash = %v", decoded["catalog_hash"])
	}
}
