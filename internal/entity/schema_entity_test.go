package entity

import (
	"testing"
)

func field(name string) FormField {
	return FormField{OriginalName: name, Label: name + " label"}
}

func TestNewFieldSchema(t *testing.T) {
	tests := []struct {
		name          string
		extracted     []FormField
		maxFields     int
		wantErr       error
		wantNames     []string
		wantTruncated bool
	}{
		{
			name:      "empty extraction",
			extracted: nil,
			maxFields: 10,
			wantErr:   ErrSchemaEmpty,
		},
		{
			name:      "plain fields keep document order",
			extracted: []FormField{field("FirstName"), field("LastName"), field("Email")},
			maxFields: 10,
			wantNames: []string{"FirstName", "LastName", "Email"},
		},
		{
			name: "duplicate names get numeric suffixes",
			extracted: []FormField{
				field("Name"), field("Name"), field("Other"), field("Name"),
			},
			maxFields: 10,
			wantNames: []string{"Name", "Name_2", "Other", "Name_3"},
		},
		{
			name:          "over the cap is truncated and flagged",
			extracted:     []FormField{field("A"), field("B"), field("C"), field("D")},
			maxFields:     2,
			wantNames:     []string{"A", "B"},
			wantTruncated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := NewFieldSchema(tt.extracted, tt.maxFields)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("NewFieldSchema error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFieldSchema error = %v", err)
			}

			names := schema.FieldNames()
			if len(names) != len(tt.wantNames) {
				t.Fatalf("FieldNames = %v, want %v", names, tt.wantNames)
			}
			for i, want := range tt.wantNames {
				if names[i] != want {
					t.Errorf("FieldNames[%d] = %q, want %q", i, names[i], want)
				}
			}
			if schema.Truncated() != tt.wantTruncated {
				t.Errorf("Truncated = %v, want %v", schema.Truncated(), tt.wantTruncated)
			}
			if schema.Size() != len(tt.wantNames) {
				t.Errorf("Size = %d, want %d", schema.Size(), len(tt.wantNames))
			}
		})
	}
}

func TestFieldSchemaOriginalName(t *testing.T) {
	schema, err := NewFieldSchema([]FormField{field("Name"), field("Name")}, 10)
	if err != nil {
		t.Fatalf("NewFieldSchema error = %v", err)
	}

	original, ok := schema.OriginalName("Name_2")
	if !ok || original != "Name" {
		t.Errorf("OriginalName(Name_2) = %q, %v; want \"Name\", true", original, ok)
	}
	if _, ok := schema.OriginalName("Missing"); ok {
		t.Error("OriginalName(Missing) should not resolve")
	}
	if !schema.Contains("Name_2") {
		t.Error("Contains(Name_2) = false, want true")
	}
}

func TestFieldSchemaCatalogHash(t *testing.T) {
	a, _ := NewFieldSchema([]FormField{field("A"), field("B")}, 10)
	// Name order does not matter for identity, only the name set.
	b, _ := NewFieldSchema([]FormField{field("B"), field("A")}, 10)
	c, _ := NewFieldSchema([]FormField{field("A"), field("C")}, 10)

	if len(a.CatalogHash()) != 16 {
		t.Errorf("CatalogHash length = %d, want 16", len(a.CatalogHash()))
	}
	if a.CatalogHash() != b.CatalogHash() {
		t.Errorf("same field set hashed differently: %q vs %q", a.CatalogHash(), b.CatalogHash())
	}
	if a.CatalogHash() == c.CatalogHash() {
		t.Error("different field sets produced the same hash")
	}
}

func TestFieldSchemaEmptyLabelFallsBackToName(t *testing.T) {
	schema, err := NewFieldSchema([]FormField{{OriginalName: "Zip"}}, 10)
	if err != nil {
		t.Fatalf("NewFieldSchema error = %v", err)
	}
	if got := schema.Label("Zip"); got != "Zip" {
		t.Errorf("Label(Zip) = %q, want %q", got, "Zip")
	}
}
