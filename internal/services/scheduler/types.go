package scheduler

// JobListResponse represents a scheduled import in list responses
type JobListResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	APIName   string  `json:"api_name"`
	APIURL    string  `json:"api_url"`
	Format    string  `json:"format"`
	Cron      string  `json:"cron"`
	Timezone  string  `json:"timezone"`
	Enabled   bool    `json:"enabled"`
	LastRunAt *string `json:"last_run_at"` // ISO 8601 format
	NextRun   *string `json:"next_run"`    // ISO 8601 format
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// UpsertJobRequest represents a request to create or update a scheduled import.
// Jobs are matched by Name.
type UpsertJobRequest struct {
	Name     string `json:"name"`
	APIName  string `json:"api_name"`
	APIURL   string `json:"api_url"`
	Format   string `json:"format"` // "json" or "xml"
	Cron     string `json:"cron"`   // 5 or 6 fields
	Timezone string `json:"timezone"`
	Enabled  bool   `json:"enabled"`
}
