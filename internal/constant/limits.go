// FILE: internal/constant/limits.go
package constant

const (
	// MaxFormFields caps how many extracted fields a single form may carry.
	MaxFormFields = 300

	// MaxFieldValueLength is the hard cap on a stored field value. Longer
	// values are truncated, not rejected.
	MaxFieldValueLength = 500

	// MaxUploadSize limits uploaded PDF documents (bytes).
	MaxUploadSize = 5 * 1024 * 1024

	// RemainingSampleSize bounds the remaining-field sample in snapshots.
	RemainingSampleSize = 10

	// CatalogHashLength is the hex prefix length of the field catalog hash.
	CatalogHashLength = 16
)
