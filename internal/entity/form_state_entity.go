// FILE: internal/entity/form_state_entity.go
package entity

import (
	"strings"
	"time"

	"voiceform-be/internal/constant"
)

type AppliedOutcome int

const (
	OutcomeApplied AppliedOutcome = iota
	OutcomeIgnoredUnknownField
	OutcomeIgnoredEmptyValue
	OutcomeTruncatedAndApplied
)

// FieldValue holds the current value for one field. Value stays nil until the
// first successful apply; Confirmed flips true on any validated write, whether
// it came from the agent or a manual edit.
type FieldValue struct {
	Value     *string
	Confirmed bool
}

// FormState is the per-session document of record. Its key set is frozen to
// the schema's field names at construction; no field is ever added or removed.
// FormState is not safe for concurrent use; the owning Session serializes
// access through its lock.
type FormState struct {
	schema         *FieldSchema
	fields         map[string]*FieldValue
	maxValueLength int
	CreatedAt      time.Time
	LastActivityAt time.Time
	completed      bool
}

func NewFormState(schema *FieldSchema, maxValueLength int) *FormState {
	if maxValueLength <= 0 {
		maxValueLength = constant.MaxFieldValueLength
	}
	now := time.Now()
	fields := make(map[string]*FieldValue, schema.Size())
	for _, name := range schema.FieldNames() {
		fields[name] = &FieldValue{}
	}
	return &FormState{
		schema:         schema,
		fields:         fields,
		maxValueLength: maxValueLength,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Apply validates and stores one field value. Rules, in order: unknown field
// names are ignored, values are trimmed and empty results ignored, values
// longer than the cap are truncated and flagged. Applying the same valid
// value twice yields the same stored state and the same outcome.
func (s *FormState) Apply(name, raw string) (AppliedOutcome, string) {
	fv, ok := s.fields[name]
	if !ok {
		return OutcomeIgnoredUnknownField, ""
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return OutcomeIgnoredEmptyValue, ""
	}

	// The cap counts characters, not bytes; a multibyte value must never be
	// cut mid-rune.
	outcome := OutcomeApplied
	if runes := []rune(value); len(runes) > s.maxValueLength {
		value = string(runes[:s.maxValueLength])
		outcome = OutcomeTruncatedAndApplied
	}

	fv.Value = &value
	fv.Confirmed = true

	// completed is monotonic: recomputed only after a successful apply, and
	// an apply can never empty a field again.
	if !s.completed {
		s.completed = s.allFilled()
	}
	return outcome, value
}

func (s *FormState) allFilled() bool {
	for _, fv := range s.fields {
		if fv.Value == nil {
			return false
		}
	}
	return true
}

func (s *FormState) Completed() bool {
	return s.completed
}

// Value returns the stored value for a field and whether it is filled.
func (s *FormState) Value(name string) (string, bool) {
	fv, ok := s.fields[name]
	if !ok || fv.Value == nil {
		return "", false
	}
	return *fv.Value, true
}

// Remaining lists unfilled fields in schema order.
func (s *FormState) Remaining() []string {
	remaining := make([]string, 0)
	for _, name := range s.schema.FieldNames() {
		if s.fields[name].Value == nil {
			remaining = append(remaining, name)
		}
	}
	return remaining
}

func (s *FormState) RemainingCount() int {
	return len(s.Remaining())
}

// Filled returns every non-empty field with its value, in schema order
// represented as a map for serialization.
func (s *FormState) Filled() map[string]string {
	filled := make(map[string]string)
	for name, fv := range s.fields {
		if fv.Value != nil {
			filled[name] = *fv.Value
		}
	}
	return filled
}

func (s *FormState) Touch() {
	s.LastActivityAt = time.Now()
}
