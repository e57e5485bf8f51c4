package importer

// ImportRequest carries one batch of already-tabular attendance rows.
// HeaderOverrides maps canonical field names to source columns when the
// automatic header resolution is wrong or incomplete. ManualMatches maps
// raw staff names to staff IDs for names the matcher could not resolve.
type ImportRequest struct {
	SessionID       string            `json:"session_id"`
	Headers         []string          `json:"headers" binding:"required,min=1"`
	Rows            []map[string]any  `json:"rows" binding:"required,min=1"`
	HeaderOverrides map[string]string `json:"header_overrides"`
	ManualMatches   map[string]string `json:"manual_matches"`
}

// HeaderPreviewRequest asks how a header row would be resolved without
// importing anything.
type HeaderPreviewRequest struct {
	Headers []string `json:"headers" binding:"required,min=1"`
}

type HeaderPreviewResponse struct {
	Signature string            `json:"signature"`
	Resolved  map[string]string `json:"resolved"`
	Missing   []string          `json:"missing,omitempty"`
}

type ImportResponse struct {
	SessionID string      `json:"session_id"`
	Imported  int         `json:"imported"`
	Skipped   int         `json:"skipped"`
	Rejected  []Rejection `json:"rejected,omitempty"`
	Errors    []string    `json:"errors,omitempty"`
	TotalRows int         `json:"total_rows"`
}

func headerMapToResponse(hm HeaderMap) map[string]string {
	out := make(map[string]string, len(hm))
	for field, col := range hm {
		out[string(field)] = col
	}
	return out
}

func fieldNames(fields []Field) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
