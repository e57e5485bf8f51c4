package events

const (
	TopicImports        = "attendance.imports"
	TypeImportCompleted = "attendance.import.completed"
	AggregateImport     = "import_session"
)

type ImportCompleted struct {
	SessionID string   `json:"session_id"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Rejected  int      `json:"rejected"`
	Errors    []string `json:"errors,omitempty"`
}
