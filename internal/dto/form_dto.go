package dto

// FieldInfo is the public description of one form field.
type FieldInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type UploadFormResponse struct {
	FormId      string      `json:"form_id"`
	FieldCount  int         `json:"field_count"`
	Fields      []FieldInfo `json:"fields"`
	Truncated   bool        `json:"truncated,omitempty"`
	CatalogHash string      `json:"catalog_hash"`
}

// UpdateFieldsRequest is the batched update payload, used both by the
// websocket gateway and by the REST fallback submission.
type UpdateFieldsRequest struct {
	FormId  string            `json:"form_id" validate:"required"`
	Updates map[string]string `json:"updates" validate:"required"`
}

// UpdateFieldsResponse is the normalized outcome breakdown for one batch.
// Invalid field content never fails the call; it lands in one of the ignored
// buckets instead.
type UpdateFieldsResponse struct {
	Applied        map[string]string `json:"applied"`
	IgnoredUnknown []string          `json:"ignored_unknown"`
	IgnoredEmpty   []string          `json:"ignored_empty"`
	Truncated      []string          `json:"truncated"`
	RemainingCount int               `json:"remaining_count"`
	Complete       bool              `json:"complete"`
	CatalogHash    string            `json:"catalog_hash"`
}

// StatusResponse answers the polling surface.
type StatusResponse struct {
	Remaining []string `json:"remaining"`
	Complete  bool     `json:"complete"`
}

// ToolDeclaration is the function schema handed to the conversational agent
// at setup time.
type ToolDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// StateSnapshot is the full form view for query_state.
type StateSnapshot struct {
	FormId          string            `json:"form_id"`
	Fields          map[string]string `json:"fields"`
	Remaining       []string          `json:"remaining"`
	RemainingCount  int               `json:"remaining_count"`
	FilledCount     int               `json:"filled_count"`
	RemainingSample []string          `json:"remaining_sample"`
	Complete        bool              `json:"complete"`
	State           string            `json:"state"`
	CatalogHash     string            `json:"catalog_hash"`
}
