package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // timezone database for hosts without one

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"jobprompter-desktop/internal/models"
	"jobprompter-desktop/internal/services/dashboard"
)

// TriggeredBySchedule marks imports started by this scheduler
const TriggeredBySchedule = "schedule"

// cronParser accepts the 6-field expressions stored in the database, plus CRON_TZ prefixes
var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Importer starts one import; the dashboard service satisfies it
type Importer interface {
	TriggerImport(ctx context.Context, req dashboard.TriggerImportRequest) (*dashboard.TriggerImportResult, error)
}

// Service handles scheduled import management and execution
type Service struct {
	db       *gorm.DB
	ctx      context.Context
	cron     *cron.Cron
	jobs     map[string]cron.EntryID // jobID -> cron entry ID
	jobsMu   sync.RWMutex
	importer Importer
}

// NewService creates a new scheduler service
func NewService(db *gorm.DB, ctx context.Context, importer Importer) *Service {
	// Create cron scheduler with seconds support
	c := cron.New(cron.WithSeconds())

	return &Service{
		db:       db,
		ctx:      ctx,
		cron:     c,
		jobs:     make(map[string]cron.EntryID),
		importer: importer,
	}
}

// Start initializes the scheduler and loads enabled jobs from database
func (s *Service) Start() error {
	log.Println("Starting scheduler...")

	if err := s.db.AutoMigrate(&models.ScheduledImport{}); err != nil {
		return fmt.Errorf("failed to migrate scheduled_imports table: %w", err)
	}

	s.cron.Start()
	log.Println("Cron scheduler started")

	var jobs []models.ScheduledImport
	if err := s.db.Where("enabled = ?", true).Find(&jobs).Error; err != nil {
		return fmt.Errorf("failed to load scheduled imports: %w", err)
	}

	for i := range jobs {
		job := &jobs[i]
		if err := s.scheduleJob(job); err != nil {
			log.Printf("WARNING: Failed to schedule import %s (%s): %v", job.Name, job.ID, err)
		} else {
			log.Printf("Scheduled import: %s (%s) with cron: %s", job.Name, job.ID, job.Cron)
		}
	}

	log.Printf("Scheduler started with %d enabled imports", len(jobs))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running imports to return
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		log.Println("Scheduler stopped")
	}
}

// ListJobs retrieves all scheduled imports
func (s *Service) ListJobs() ([]JobListResponse, error) {
	var jobs []models.ScheduledImport
	if err := s.db.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	responses := make([]JobListResponse, len(jobs))
	for i := range jobs {
		responses[i] = toJobListResponse(&jobs[i])
	}

	return responses, nil
}

// UpsertJob creates or updates a scheduled import
func (s *Service) UpsertJob(req UpsertJobRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Cron) == "" {
		return "", fmt.Errorf("name and cron are required")
	}
	req.Name = strings.TrimSpace(req.Name)

	// Same rules as a manual submission
	target := dashboard.TriggerImportRequest{APIName: req.APIName, APIURL: req.APIURL, Type: req.Format}
	if err := dashboard.ValidateTriggerImportRequest(&target); err != nil {
		return "", err
	}

	normalizedCron, err := normalizeCron(req.Cron)
	if err != nil {
		return "", err
	}

	timezone := strings.TrimSpace(req.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	var job models.ScheduledImport
	result := s.db.Where("name = ?", req.Name).First(&job)
	isNew := errors.Is(result.Error, gorm.ErrRecordNotFound)
	if result.Error != nil && !isNew {
		return "", fmt.Errorf("failed to query job: %w", result.Error)
	}
	if isNew {
		job = models.ScheduledImport{Name: req.Name}
	}

	job.APIName = target.APIName
	job.APIURL = target.APIURL
	job.Format = target.Type
	job.Cron = normalizedCron
	job.Timezone = timezone
	job.Enabled = req.Enabled

	schedule, err := cronParser.Parse(cronSpec(&job))
	if err != nil {
		return "", fmt.Errorf("failed to parse cron for next run: %w", err)
	}
	nextRun := schedule.Next(time.Now())
	job.NextRunAt = &nextRun

	if isNew {
		// gorm skips false on create when the column has a default and then
		// reads the default back into job.Enabled
		enabled := job.Enabled
		if err := s.db.Create(&job).Error; err != nil {
			return "", fmt.Errorf("failed to create job: %w", err)
		}
		if !enabled {
			if err := s.db.Model(&job).Update("enabled", false).Error; err != nil {
				return "", fmt.Errorf("failed to create job: %w", err)
			}
		}
	} else {
		if err := s.db.Save(&job).Error; err != nil {
			return "", fmt.Errorf("failed to update job: %w", err)
		}
	}

	if err := s.rescheduleJob(job.ID); err != nil {
		return "", fmt.Errorf("failed to reschedule job: %w", err)
	}

	return job.ID, nil
}

// DeleteJob removes a scheduled import
func (s *Service) DeleteJob(jobID string) error {
	s.unscheduleJob(jobID)

	if err := s.db.Delete(&models.ScheduledImport{}, "id = ?", jobID).Error; err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	return nil
}

// scheduleJob adds a job to the cron scheduler, replacing any previous entry
func (s *Service) scheduleJob(job *models.ScheduledImport) error {
	s.unscheduleJob(job.ID)
	if !job.Enabled {
		return nil
	}

	jobID := job.ID
	entryID, err := s.cron.AddFunc(cronSpec(job), func() {
		s.executeJob(jobID)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.jobsMu.Lock()
	s.jobs[jobID] = entryID
	s.jobsMu.Unlock()

	return nil
}

func (s *Service) unscheduleJob(jobID string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if entryID, exists := s.jobs[jobID]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, jobID)
	}
}

// rescheduleJob reloads a job from database and reschedules it
func (s *Service) rescheduleJob(jobID string) error {
	var job models.ScheduledImport
	if err := s.db.First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.unscheduleJob(jobID)
			return nil
		}
		return fmt.Errorf("failed to load job: %w", err)
	}

	return s.scheduleJob(&job)
}

// executeJob runs a scheduled import
func (s *Service) executeJob(jobID string) {
	log.Printf("Executing scheduled import: %s", jobID)

	var job models.ScheduledImport
	if err := s.db.First(&job, "id = ?", jobID).Error; err != nil {
		log.Printf("ERROR: Failed to load job %s: %v", jobID, err)
		return
	}

	now := time.Now()
	job.LastRunAt = &now

	schedule, err := cronParser.Parse(cronSpec(&job))
	if err != nil {
		log.Printf("WARNING: Failed to parse cron for next run: %v", err)
	} else {
		nextRun := schedule.Next(now)
		job.NextRunAt = &nextRun
	}

	if err := s.db.Save(&job).Error; err != nil {
		log.Printf("WARNING: Failed to update job run times: %v", err)
	}

	result, err := s.importer.TriggerImport(s.ctx, dashboard.TriggerImportRequest{
		APIName:     job.APIName,
		APIURL:      job.APIURL,
		Type:        job.Format,
		TriggeredBy: TriggeredBySchedule,
	})
	if err != nil {
		log.Printf("ERROR: Scheduled import %s failed: %v", job.Name, err)
		return
	}

	log.Printf("Completed scheduled import: %s (job %s)", job.Name, result.JobID)
}

// cronSpec applies the job timezone to its stored expression
func cronSpec(job *models.ScheduledImport) string {
	if job.Timezone == "" || job.Timezone == "UTC" {
		return "CRON_TZ=UTC " + job.Cron
	}
	return fmt.Sprintf("CRON_TZ=%s %s", job.Timezone, job.Cron)
}

// normalizeCron converts 5-field cron to 6-field format by prepending seconds
// 5-field: "minute hour day month dow" (standard cron)
// 6-field: "second minute hour day month dow" (robfig/cron with WithSeconds)
func normalizeCron(cronExpr string) (string, error) {
	cronExpr = strings.TrimSpace(cronExpr)

	fields := strings.Fields(cronExpr)
	if len(fields) == 6 {
		if _, err := cronParser.Parse(cronExpr); err != nil {
			return "", fmt.Errorf("invalid 6-field cron expression: %w", err)
		}
		return cronExpr, nil
	}

	if len(fields) == 5 {
		if _, err := cron.ParseStandard(cronExpr); err != nil {
			return "", fmt.Errorf("invalid 5-field cron expression: %w", err)
		}
		// Prepend seconds (0 = run at 0 seconds of the minute)
		return "0 " + cronExpr, nil
	}

	return "", fmt.Errorf("invalid cron expression: expected 5 or 6 fields, got %d", len(fields))
}

func toJobListResponse(job *models.ScheduledImport) JobListResponse {
	resp := JobListResponse{
		ID:        job.ID,
		Name:      job.Name,
		APIName:   job.APIName,
		APIURL:    job.APIURL,
		Format:    job.Format,
		Cron:      job.Cron,
		Timezone:  job.Timezone,
		Enabled:   job.Enabled,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	}

	if job.LastRunAt != nil {
		lastRun := job.LastRunAt.Format(time.RFC3339)
		resp.LastRunAt = &lastRun
	}

	if job.NextRunAt != nil {
		nextRun := job.NextRunAt.Format(time.RFC3339)
		resp.NextRun = &nextRun
	}

	return resp
}
