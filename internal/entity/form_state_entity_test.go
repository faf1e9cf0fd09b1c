package entity

import (
	"strings"
	"testing"
	"unicode/utf8"

	"voiceform-be/internal/constant"
)

func newTestState(t *testing.T, names ...string) *FormState {
	t.Helper()
	fields := make([]FormField, len(names))
	for i, n := range names {
		fields[i] = FormField{OriginalName: n}
	}
	schema, err := NewFieldSchema(fields, 0)
	if err != nil {
		t.Fatalf("NewFieldSchema error = %v", err)
	}
	return NewFormState(schema, 0)
}

func TestFormStateApply(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		raw         string
		wantOutcome AppliedOutcome
		wantFinal   string
	}{
		{
			name:        "plain value",
			field:       "FirstName",
			raw:         "Alice",
			wantOutcome: OutcomeApplied,
			wantFinal:   "Alice",
		},
		{
			name:        "surrounding whitespace is trimmed",
			field:       "FirstName",
			raw:         "  Alice  ",
			wantOutcome: OutcomeApplied,
			wantFinal:   "Alice",
		},
		{
			name:        "unknown field ignored",
			field:       "Nope",
			raw:         "value",
			wantOutcome: OutcomeIgnoredUnknownField,
		},
		{
			name:        "empty after trim ignored",
			field:       "FirstName",
			raw:         "   ",
			wantOutcome: OutcomeIgnoredEmptyValue,
		},
		{
			name:        "overlong value truncated",
			field:       "FirstName",
			raw:         strings.Repeat("x", constant.MaxFieldValueLength+50),
			wantOutcome: OutcomeTruncatedAndApplied,
			wantFinal:   strings.Repeat("x", constant.MaxFieldValueLength),
		},
		{
			name:        "overlong multibyte value truncated by characters",
			field:       "FirstName",
			raw:         strings.Repeat("é", constant.MaxFieldValueLength+1),
			wantOutcome: OutcomeTruncatedAndApplied,
			wantFinal:   strings.Repeat("é", constant.MaxFieldValueLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newTestState(t, "FirstName", "LastName")
			outcome, final := state.Apply(tt.field, tt.raw)
			if outcome != tt.wantOutcome {
				t.Fatalf("Apply outcome = %v, want %v", outcome, tt.wantOutcome)
			}
			if final != tt.wantFinal {
				t.Errorf("Apply final = %q, want %q", final, tt.wantFinal)
			}
		})
	}
}

func TestFormStateTruncationCountsRunes(t *testing.T) {
	state := newTestState(t, "A")

	_, final := state.Apply("A", strings.Repeat("é", constant.MaxFieldValueLength+1))
	if got := utf8.RuneCountInString(final); got != constant.MaxFieldValueLength {
		t.Errorf("stored rune count = %d, want exactly %d", got, constant.MaxFieldValueLength)
	}
	if !utf8.ValidString(final) {
		t.Error("truncation produced invalid UTF-8")
	}
}

func TestFormStateHonorsConfiguredValueCap(t *testing.T) {
	schema, err := NewFieldSchema([]FormField{{OriginalName: "A"}}, 0)
	if err != nil {
		t.Fatalf("NewFieldSchema error = %v", err)
	}
	state := NewFormState(schema, 5)

	outcome, final := state.Apply("A", "abcdefgh")
	if outcome != OutcomeTruncatedAndApplied {
		t.Fatalf("Apply outcome = %v, want %v", outcome, OutcomeTruncatedAndApplied)
	}
	if final != "abcde" {
		t.Errorf("Apply final = %q, want %q", final, "abcde")
	}
}

func TestFormStateApplyIsIdempotent(t *testing.T) {
	state := newTestState(t, "A", "B")

	o1, v1 := state.Apply("A", "same")
	o2, v2 := state.Apply("A", "same")
	if o1 != o2 || v1 != v2 {
		t.Errorf("re-apply diverged: (%v,%q) vs (%v,%q)", o1, v1, o2, v2)
	}
	if got, _ := state.Value("A"); got != "same" {
		t.Errorf("Value(A) = %q, want %q", got, "same")
	}
}

func TestFormStateInvalidApplyDoesNotClobber(t *testing.T) {
	state := newTestState(t, "A", "B")
	state.Apply("A", "kept")

	state.Apply("A", "   ")
	if got, ok := state.Value("A"); !ok || got != "kept" {
		t.Errorf("Value(A) after empty apply = %q, %v; want \"kept\", true", got, ok)
	}
}

func TestFormStateRemainingKeepsSchemaOrder(t *testing.T) {
	state := newTestState(t, "First", "Second", "Third")
	state.Apply("Second", "done")

	remaining := state.Remaining()
	if len(remaining) != 2 || remaining[0] != "First" || remaining[1] != "Third" {
		t.Errorf("Remaining = %v, want [First Third]", remaining)
	}
	if state.RemainingCount() != 2 {
		t.Errorf("RemainingCount = %d, want 2", state.RemainingCount())
	}
}

func TestFormStateCompletedIsMonotonic(t *testing.T) {
	state := newTestState(t, "A", "B")
	if state.Completed() {
		t.Fatal("fresh state reported complete")
	}

	state.Apply("A", "1")
	if state.Completed() {
		t.Fatal("state complete with one of two fields filled")
	}

	state.Apply("B", "2")
	if !state.Completed() {
		t.Fatal("state not complete with all fields filled")
	}

	// Later writes, valid or not, never un-complete the form.
	state.Apply("A", "changed")
	state.Apply("B", "   ")
	if !state.Completed() {
		t.Error("completed flag moved backward")
	}
}
