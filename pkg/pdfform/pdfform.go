package pdfform

import "errors"

// This package is the boundary to the PDF collaborator. The core never looks
// inside PDF bytes itself; it hands them to a SchemaExtractor at upload time
// and to a Filler at download time.

var (
	ErrNotPDF      = errors.New("not a PDF file")
	ErrEncrypted   = errors.New("encrypted PDF not supported")
	ErrNotAcroForm = errors.New("PDF has no AcroForm")
	ErrNoFields    = errors.New("AcroForm present but no fields")
	ErrParseFailed = errors.New("failed to parse PDF")
)

// ExtractedField is one raw field as the extractor found it. Display-name
// disambiguation happens later, in the schema.
type ExtractedField struct {
	OriginalName string `json:"name"`
	Label        string `json:"label"`
}

// Extraction is the result of reading a document's form structure.
type Extraction struct {
	Fields    []ExtractedField
	Truncated bool
}

// SchemaExtractor reads the form structure out of an uploaded document.
type SchemaExtractor interface {
	Extract(data []byte, filename string) (*Extraction, error)
}

// Filler writes collected values back into the original document and returns
// the filled bytes for download.
type Filler interface {
	Fill(original []byte, values map[string]string) ([]byte, error)
}
