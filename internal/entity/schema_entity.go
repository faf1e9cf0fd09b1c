// FILE: internal/entity/schema_entity.go
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"voiceform-be/internal/constant"
)

// FormField describes one slot of an uploaded form. Name is the display name
// the agent and client address the field by; OriginalName is the raw AcroForm
// name retained for fill-back into the PDF.
type FormField struct {
	Name         string
	Label        string
	OriginalName string
}

// FieldSchema is the immutable description of a form's fields, built once at
// upload time. Duplicate original names are disambiguated with _2, _3, ...
// suffixes in first-occurrence order.
type FieldSchema struct {
	fields      []FormField
	index       map[string]int
	truncated   bool
	catalogHash string
}

// NewFieldSchema builds a schema from the extraction result. Fields beyond
// maxFields are dropped and the schema is flagged truncated.
func NewFieldSchema(extracted []FormField, maxFields int) (*FieldSchema, error) {
	if len(extracted) == 0 {
		return nil, ErrSchemaEmpty
	}
	if maxFields <= 0 {
		maxFields = constant.MaxFormFields
	}

	truncated := false
	if len(extracted) > maxFields {
		extracted = extracted[:maxFields]
		truncated = true
	}

	fields := make([]FormField, 0, len(extracted))
	index := make(map[string]int, len(extracted))
	seen := make(map[string]int, len(extracted))

	for _, f := range extracted {
		name := f.OriginalName
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		label := f.Label
		if label == "" {
			label = name
		}
		index[name] = len(fields)
		fields = append(fields, FormField{
			Name:         name,
			Label:        label,
			OriginalName: f.OriginalName,
		})
	}

	return &FieldSchema{
		fields:      fields,
		index:       index,
		truncated:   truncated,
		catalogHash: computeCatalogHash(fields),
	}, nil
}

// FieldNames returns the display names in original document order.
func (s *FieldSchema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Label returns the display label for a field, or "" if unknown.
func (s *FieldSchema) Label(name string) string {
	if i, ok := s.index[name]; ok {
		return s.fields[i].Label
	}
	return ""
}

// OriginalName maps a display name back to the raw AcroForm field name.
func (s *FieldSchema) OriginalName(name string) (string, bool) {
	if i, ok := s.index[name]; ok {
		return s.fields[i].OriginalName, true
	}
	return "", false
}

func (s *FieldSchema) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

func (s *FieldSchema) Size() int {
	return len(s.fields)
}

// Truncated reports whether the extraction exceeded the field cap.
func (s *FieldSchema) Truncated() bool {
	return s.truncated
}

// CatalogHash identifies this exact field set. Clients echo it so that a
// stale tool declaration against a re-uploaded form is detectable.
func (s *FieldSchema) CatalogHash() string {
	return s.catalogHash
}

func computeCatalogHash(fields []FormField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	sort.Strings(names)
	raw, _ := json.Marshal(names)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:constant.CatalogHashLength]
}
