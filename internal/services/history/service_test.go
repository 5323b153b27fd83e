package history

import (
	"errors"
	"testing"
	"time"

	"jobprompter-desktop/internal/database"
	"jobprompter-desktop/internal/models"
	"jobprompter-desktop/internal/services/dashboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	return NewService(db)
}

func TestRecordSubmission(t *testing.T) {
	req := dashboard.TriggerImportRequest{APIName: "Indeed Jobs", APIURL: "https://api.indeed.com/jobs", Type: "json", TriggeredBy: "manual"}

	t.Run("Should store a successful submission under its submission id", func(t *testing.T) {
		s := newTestService(t)
		result := &dashboard.TriggerImportResult{
			SubmissionID: "4d1f0b9e-2f7a-4a51-9c51-2b1e0f0c9a11",
			JobID:        "bull-9",
			Record:       dashboard.ImportRecord{ID: "42"},
			Message:      "Import started successfully! Job ID: bull-9",
		}

		s.RecordSubmission(req, result, nil)

		var task models.TaskProgress
		require.NoError(t, s.db.First(&task, "id = ?", result.SubmissionID).Error)
		assert.Equal(t, TaskTypeImport, task.TaskType)
		assert.Equal(t, StatusSubmitted, task.Status)
		assert.Equal(t, "bull-9", task.JobID)
		assert.Equal(t, "42", task.ImportLogID)
		assert.Equal(t, "json", task.Format)
	})

	t.Run("Should store a failed submission with the error message", func(t *testing.T) {
		s := newTestService(t)

		s.RecordSubmission(req, nil, errors.New("failed to trigger import: 500 Internal Server Error"))

		entries, err := s.List(0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, StatusFailed, entries[0].Status)
		assert.NotEmpty(t, entries[0].TaskID)
		assert.Equal(t, "Failed to start import: failed to trigger import: 500 Internal Server Error", entries[0].Summary)
	})

	t.Run("Should default the trigger source to manual", func(t *testing.T) {
		s := newTestService(t)
		scheduled := req
		scheduled.TriggeredBy = ""

		s.RecordSubmission(scheduled, &dashboard.TriggerImportResult{SubmissionID: "sub-1", JobID: "Unknown"}, nil)

		entries, err := s.List(5)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "manual", entries[0].TriggeredBy)
	})
}

func TestList(t *testing.T) {
	t.Run("Should return newest first and honour the limit", func(t *testing.T) {
		s := newTestService(t)
		for _, name := range []string{"first", "second", "third"} {
			s.RecordSubmission(
				dashboard.TriggerImportRequest{APIName: name, APIURL: "https://a.example", Type: "xml", TriggeredBy: "schedule"},
				&dashboard.TriggerImportResult{SubmissionID: name, JobID: "job-" + name, Message: "ok"},
				nil,
			)
			time.Sleep(5 * time.Millisecond)
		}

		entries, err := s.List(2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "third", entries[0].APIName)
		assert.Equal(t, "second", entries[1].APIName)
		assert.Equal(t, "Submitted (job job-third)", entries[0].Summary)
		assert.Equal(t, "schedule", entries[0].TriggeredBy)
		assert.Equal(t, []string{"ok"}, entries[0].Messages)
	})

	t.Run("Should ignore other task types", func(t *testing.T) {
		s := newTestService(t)
		require.NoError(t, s.db.Create(&models.TaskProgress{TaskType: "cleanup", Status: "done"}).Error)

		entries, err := s.List(10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		task     models.TaskProgress
		expected string
	}{
		{"Should name the job", models.TaskProgress{Status: StatusSubmitted, JobID: "7"}, "Submitted (job 7)"},
		{"Should fall back for failures without messages", models.TaskProgress{Status: StatusFailed}, "Failed"},
		{"Should show the last failure message", models.TaskProgress{Status: StatusFailed, Messages: `["a","b"]`}, "b"},
		{"Should echo unknown statuses", models.TaskProgress{Status: "starting"}, "starting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, summarize(&tt.task))
		})
	}
}
