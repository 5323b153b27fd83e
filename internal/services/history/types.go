package history

// Task statuses recorded for a submission
const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

// TaskTypeImport is the only task type this app records
const TaskTypeImport = "import"

// DefaultLimit is used when List is called without a positive limit
const DefaultLimit = 10

// Entry represents one submission in the history view
type Entry struct {
	TaskID      string   `json:"task_id"`
	TriggeredBy string   `json:"triggered_by"` // "manual" or "schedule"
	APIName     string   `json:"api_name"`
	APIURL      string   `json:"api_url"`
	Format      string   `json:"format"`
	JobID       string   `json:"job_id,omitempty"`
	ImportLogID string   `json:"import_log_id,omitempty"`
	Status      string   `json:"status"`     // "submitted" or "failed"
	StartedAt   string   `json:"started_at"` // ISO 8601 timestamp
	Summary     string   `json:"summary"`
	Messages    []string `json:"messages"`
}
