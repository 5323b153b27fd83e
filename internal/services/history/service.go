package history

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"jobprompter-desktop/internal/models"
	"jobprompter-desktop/internal/services/dashboard"

	"gorm.io/gorm"
)

// Service records import submissions in the task_progress table
type Service struct {
	db *gorm.DB
}

// NewService creates a new history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordSubmission stores one submission attempt. Failures are logged, not returned,
// so a broken history table never blocks an import.
func (s *Service) RecordSubmission(req dashboard.TriggerImportRequest, result *dashboard.TriggerImportResult, submitErr error) {
	task := models.TaskProgress{
		TaskType:    TaskTypeImport,
		TriggeredBy: req.TriggeredBy,
		APIName:     req.APIName,
		APIURL:      req.APIURL,
		Format:      req.Type,
	}
	if task.TriggeredBy == "" {
		task.TriggeredBy = "manual"
	}

	if submitErr != nil {
		task.Status = StatusFailed
		task.Messages = marshalMessages([]string{"Failed to start import: " + submitErr.Error()})
	} else if result != nil {
		task.ID = result.SubmissionID
		task.Status = StatusSubmitted
		task.JobID = result.JobID
		task.ImportLogID = result.Record.ID
		task.Messages = marshalMessages([]string{result.Message})
	}

	if err := s.db.Create(&task).Error; err != nil {
		log.Printf("WARNING: Failed to record import history for %s: %v", req.APIName, err)
	}
}

// List retrieves the most recent submissions, newest first
func (s *Service) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var tasks []models.TaskProgress
	if err := s.db.Where("task_type = ?", TaskTypeImport).
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list import history: %w", err)
	}

	entries := make([]Entry, 0, len(tasks))
	for _, task := range tasks {
		entries = append(entries, Entry{
			TaskID:      task.ID,
			TriggeredBy: task.TriggeredBy,
			APIName:     task.APIName,
			APIURL:      task.APIURL,
			Format:      task.Format,
			JobID:       task.JobID,
			ImportLogID: task.ImportLogID,
			Status:      task.Status,
			StartedAt:   task.CreatedAt.Format(time.RFC3339),
			Summary:     summarize(&task),
			Messages:    unmarshalMessages(task.Messages),
		})
	}
	return entries, nil
}

// summarize creates a brief description of the submission result
func summarize(task *models.TaskProgress) string {
	switch task.Status {
	case StatusSubmitted:
		return fmt.Sprintf("Submitted (job %s)", task.JobID)
	case StatusFailed:
		messages := unmarshalMessages(task.Messages)
		if len(messages) > 0 {
			return messages[len(messages)-1]
		}
		return "Failed"
	default:
		return task.Status
	}
}

func marshalMessages(messages []string) string {
	data, _ := json.Marshal(messages)
	return string(data)
}

func unmarshalMessages(messagesJSON string) []string {
	if messagesJSON == "" {
		return []string{}
	}
	var messages []string
	if err := json.Unmarshal([]byte(messagesJSON), &messages); err != nil {
		return []string{}
	}
	return messages
}
