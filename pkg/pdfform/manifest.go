package pdfform

import (
	"bytes"
	"encoding/json"
)

// ManifestExtractor reads a JSON field manifest instead of a real PDF. It
// backs local development and tests, where the PDF toolchain is not wired in.
// The manifest is a JSON array of {"name": ..., "label": ...} objects.
type ManifestExtractor struct {
	// MaxFields truncates oversized manifests the same way the PDF
	// collaborator caps real extractions. Zero means no cap.
	MaxFields int
}

func (e *ManifestExtractor) Extract(data []byte, filename string) (*Extraction, error) {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		// A real PDF landed here; this extractor only understands manifests.
		return nil, ErrParseFailed
	}

	var fields []ExtractedField
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, ErrParseFailed
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	truncated := false
	if e.MaxFields > 0 && len(fields) > e.MaxFields {
		fields = fields[:e.MaxFields]
		truncated = true
	}
	return &Extraction{Fields: fields, Truncated: truncated}, nil
}

// ManifestFiller pairs with ManifestExtractor: it emits the collected values
// as a JSON document in place of filled PDF bytes.
type ManifestFiller struct{}

func (f *ManifestFiller) Fill(original []byte, values map[string]string) ([]byte, error) {
	return json.MarshalIndent(values, "", "  ")
}
