package dashboard

// Record statuses the dashboard reasons about. The backend may report others.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusUnknown   = "unknown"
)

// MaxCachedRecords caps the persisted importLogs list
const MaxCachedRecords = 10

// ImportRecord is the canonical shape of one import run shown in the history table
type ImportRecord struct {
	ID        string `json:"id"`
	APIName   string `json:"apiName"`
	APIURL    string `json:"apiUrl"`
	Type      string `json:"type"`   // "json" or "xml"
	Status    string `json:"status"` // "pending", "completed", or whatever the backend reports
	JobsFound int    `json:"jobsFound"`
	CreatedAt string `json:"createdAt"` // ISO 8601 timestamp
}

// StatsSnapshot holds the aggregate job counters
type StatsSnapshot struct {
	TotalJobs     int `json:"totalJobs"`
	PendingJobs   int `json:"pendingJobs"`
	CompletedJobs int `json:"completedJobs"`
	FailedJobs    int `json:"failedJobs"`
}

// State is what the dashboard renders
type State struct {
	Records []ImportRecord `json:"importLogs"`
	Stats   *StatsSnapshot `json:"stats"`
	Loading bool           `json:"isLoading"`
	Error   string         `json:"error,omitempty"`
}

// TriggerImportRequest represents the "Start New Import" form
type TriggerImportRequest struct {
	APIName     string `json:"apiName" validate:"required"`
	APIURL      string `json:"apiUrl" validate:"required,url"`
	Type        string `json:"type" validate:"required,oneof=json xml"`
	TriggeredBy string `json:"triggeredBy,omitempty" validate:"omitempty,oneof=manual schedule"`
}

// TriggerImportResult is returned after the backend accepted an import
type TriggerImportResult struct {
	SubmissionID string       `json:"submissionId"` // key of the scheduled re-checks
	JobID        string       `json:"jobId"`        // backend job id or "Unknown"
	Record       ImportRecord `json:"record"`
	Message      string       `json:"message"`
}

// Notification is a user-facing message (the desktop shell shows it as a dialog)
type Notification struct {
	Level   string `json:"level"` // "info" or "error"
	Title   string `json:"title"`
	Message string `json:"message"`
}

// cachedRecord is the persisted form of a locally submitted import.
// It uses the backend's raw field names so it flows through the same normalization.
type cachedRecord struct {
	ID        string      `json:"id"`
	APIName   string      `json:"apiName"`
	APIURL    string      `json:"apiUrl"`
	Type      string      `json:"type"`
	Status    string      `json:"status"`
	Stats     cachedStats `json:"stats"`
	CreatedAt string      `json:"createdAt"`
}

type cachedStats struct {
	NewJobs int `json:"newJobs"`
}
