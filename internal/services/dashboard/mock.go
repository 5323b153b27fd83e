package dashboard

import (
	"github.com/tidwall/gjson"
)

// mockImportLogs is shown when the backend does not answer
const mockImportLogs = `[
  {
    "id": 1,
    "apiName": "Indeed Jobs API",
    "apiUrl": "https://api.indeed.com/jobs",
    "type": "json",
    "status": "completed",
    "stats": { "newJobs": 150 },
    "createdAt": "2025-01-13T10:30:00Z"
  },
  {
    "id": 2,
    "apiName": "LinkedIn Jobs API",
    "apiUrl": "https://api.linkedin.com/jobs",
    "type": "xml",
    "status": "pending",
    "stats": { "newJobs": 0 },
    "createdAt": "2025-01-13T11:00:00Z"
  }
]`

func mockRecords() []gjson.Result {
	return gjson.Parse(mockImportLogs).Array()
}

// mockStats carries fixed counters; pending comes from the locally cached records
func mockStats(cachedPending int) StatsSnapshot {
	return StatsSnapshot{
		TotalJobs:     1250,
		PendingJobs:   cachedPending,
		CompletedJobs: 1180,
		FailedJobs:    25,
	}
}
