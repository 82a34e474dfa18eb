package driven

import "context"

// TabularExporter writes final records as a spreadsheet.
type TabularExporter interface {
	// Export writes rows to path. Only columns from the list that appear
	// in at least one row are written, in list order. Absent fields are
	// empty cells; list values are comma-joined.
	Export(ctx context.Context, path string, columns []string, rows []map[string]any) error

	// Remove deletes a previous output. Returns false if none existed.
	Remove(path string) (bool, error)
}

// Viewer opens a file in the system's default application.
type Viewer interface {
	Open(ctx context.Context, path string) error
}
