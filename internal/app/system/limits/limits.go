// internal/app/system/limits/limits.go
package limits

// Request body size limits.
const (
	// MaxJSONBody caps JSON request bodies.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxCSVUpload caps roster CSV uploads.
	MaxCSVUpload = 5 << 20 // 5 MB

	// MaxCSVRows is the most roster rows read from one upload.
	MaxCSVRows = 20000
)
