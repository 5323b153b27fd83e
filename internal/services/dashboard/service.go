package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"jobprompter-desktop/internal/api"
	"jobprompter-desktop/internal/services/recheck"
	"jobprompter-desktop/internal/store"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// StoredStatsMaxAge is how long a locally persisted stats snapshot may win over the backend
const StoredStatsMaxAge = 30 * time.Second

// User-facing messages
const (
	LoadFailedMessage    = "Failed to load data"
	TriggerFailedMessage = "Failed to trigger import"
)

var (
	// ErrLoadFailed is returned by Refresh when the backend could not be read at all
	ErrLoadFailed = errors.New("failed to load data")
	// ErrTriggerFailed is returned when the backend rejected an import request
	ErrTriggerFailed = errors.New("failed to trigger import")
)

// Backend is the part of the API client the dashboard needs
type Backend interface {
	ListImportLogs(ctx context.Context) (*resty.Response, error)
	GetJobStats(ctx context.Context) (*resty.Response, error)
	TriggerImport(ctx context.Context, req api.TriggerImportRequest) (*resty.Response, error)
}

// Rechecker runs fn a few times after a submission; scheduling the same key again replaces it
type Rechecker interface {
	Schedule(key string, fn func())
}

// Recorder keeps a local history of submissions
type Recorder interface {
	RecordSubmission(req TriggerImportRequest, result *TriggerImportResult, submitErr error)
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRechecker overrides the default 2s/5s/10s re-check scheduler
func WithRechecker(r Rechecker) Option {
	return func(s *Service) { s.rechecker = r }
}

// WithNotifier receives user-facing notifications
func WithNotifier(fn func(Notification)) Option {
	return func(s *Service) { s.notify = fn }
}

// WithOnUpdate is called with the new state after every refresh, failed or not, and every submission
func WithOnUpdate(fn func(State)) Option {
	return func(s *Service) { s.onUpdate = fn }
}

// WithRecorder records every submission attempt
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// Service reconciles backend data with locally cached state for the dashboard
type Service struct {
	backend   Backend
	store     store.Store
	rechecker Rechecker
	recorder  Recorder
	now       func() time.Time
	notify    func(Notification)
	onUpdate  func(State)

	mu    sync.RWMutex
	state State

	// serializes writes of the persisted importLogs list and stats snapshot; taken before mu
	cacheMu sync.Mutex
}

// NewService creates a new dashboard service
func NewService(backend Backend, kv store.Store, opts ...Option) *Service {
	s := &Service{
		backend:  backend,
		store:    kv,
		now:      time.Now,
		notify:   func(Notification) {},
		onUpdate: func(State) {},
		state:    State{Records: []ImportRecord{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rechecker == nil {
		s.rechecker = recheck.New(recheck.DefaultDelays...)
	}
	return s
}

// State returns a copy of the current dashboard state
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() State {
	out := s.state
	out.Records = append([]ImportRecord(nil), s.state.Records...)
	if s.state.Stats != nil {
		stats := *s.state.Stats
		out.Stats = &stats
	}
	return out
}

// Refresh fetches logs and stats, merges cached state and updates the visible state.
// On failure the error flag is set and the previous records and stats stay visible.
func (s *Service) Refresh(ctx context.Context) (State, error) {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()

	records, stats, err := s.reconcile(ctx)

	s.mu.Lock()
	s.state.Loading = false
	if err != nil {
		s.state.Error = LoadFailedMessage
		out := s.snapshotLocked()
		s.mu.Unlock()
		log.Printf("ERROR: Dashboard refresh failed: %v", err)
		s.onUpdate(out)
		return out, err
	}
	s.state.Records = records
	s.state.Stats = &stats
	out := s.snapshotLocked()
	s.mu.Unlock()

	s.onUpdate(out)
	return out, nil
}

// reconcile produces the (records, stats) pair to display
func (s *Service) reconcile(ctx context.Context) ([]ImportRecord, StatsSnapshot, error) {
	logsResp, statsResp, err := s.fetchLogsAndStats(ctx)
	if err != nil {
		return nil, StatsSnapshot{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	cached, err := s.loadCachedRecords()
	if err != nil {
		return nil, StatsSnapshot{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var raws []gjson.Result
	var stats StatsSnapshot

	if !logsResp.IsSuccess() || !statsResp.IsSuccess() {
		log.Printf("WARNING: API not responding (logs: %d, stats: %d), using fallback mock data",
			logsResp.StatusCode(), statsResp.StatusCode())

		raws = append(append([]gjson.Result{}, cached...), mockRecords()...)
		stats = mockStats(countRawPending(cached))
	} else {
		logsBody, statsBody := logsResp.Body(), statsResp.Body()
		if !gjson.ValidBytes(logsBody) || !gjson.ValidBytes(statsBody) {
			return nil, StatsSnapshot{}, fmt.Errorf("%w: malformed JSON response", ErrLoadFailed)
		}

		raws = gjson.GetBytes(logsBody, "data.importLogs").Array()
		overview := gjson.GetBytes(statsBody, "data.statistics.overview")
		stats = statsFromOverview(overview)

		if len(raws) == 0 && len(cached) > 0 {
			log.Printf("Merging %d cached import logs with empty backend response", len(cached))
			raws = cached

			if overview.Exists() {
				stats.PendingJobs = countRawPending(cached)
				stats.TotalJobs = max(stats.TotalJobs, len(cached))
			}
		}
	}

	now := s.now()
	records := normalizeRecords(raws, now)

	stored, ok, err := s.loadStoredStats(now)
	if err != nil {
		return nil, StatsSnapshot{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	if ok {
		if stored.fresh && stored.stats.PendingJobs >= countPending(records) && stored.stats.PendingJobs > stats.PendingJobs {
			log.Println("Using locally stored stats (recent manual import)")
			return records, stored.stats, nil
		}

		log.Println("Clearing outdated locally stored stats")
		if err := s.store.Delete(store.KeyCurrentStats, store.KeyCurrentStatsTimestamp); err != nil {
			log.Printf("WARNING: Failed to clear stored stats: %v", err)
		}
	}

	return records, stats, nil
}

// fetchLogsAndStats issues both backend calls together and waits for both
func (s *Service) fetchLogsAndStats(ctx context.Context) (*resty.Response, *resty.Response, error) {
	var logsResp, statsResp *resty.Response

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := s.backend.ListImportLogs(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch import logs: %w", err)
		}
		logsResp = resp
		return nil
	})
	g.Go(func() error {
		resp, err := s.backend.GetJobStats(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch job stats: %w", err)
		}
		statsResp = resp
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return logsResp, statsResp, nil
}

// loadCachedRecords returns the persisted importLogs entries, newest first
func (s *Service) loadCachedRecords() ([]gjson.Result, error) {
	raw, ok, err := s.store.Get(store.KeyImportLogs)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("cached %s is not valid JSON", store.KeyImportLogs)
	}
	return gjson.Parse(raw).Array(), nil
}

type storedStats struct {
	stats StatsSnapshot
	fresh bool
}

// loadStoredStats reads currentStats and its capture time; ok is false unless both exist
func (s *Service) loadStoredStats(now time.Time) (storedStats, bool, error) {
	rawStats, hasStats, err := s.store.Get(store.KeyCurrentStats)
	if err != nil {
		return storedStats{}, false, err
	}
	rawTS, hasTS, err := s.store.Get(store.KeyCurrentStatsTimestamp)
	if err != nil {
		return storedStats{}, false, err
	}
	if !hasStats || !hasTS || rawStats == "" || rawTS == "" {
		return storedStats{}, false, nil
	}

	var stats StatsSnapshot
	if err := json.Unmarshal([]byte(rawStats), &stats); err != nil {
		return storedStats{}, false, fmt.Errorf("cached %s is not valid JSON: %w", store.KeyCurrentStats, err)
	}

	// An unparsable timestamp is treated as stale
	capturedAt, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return storedStats{stats: stats}, true, nil
	}
	age := now.Sub(time.UnixMilli(capturedAt))

	return storedStats{stats: stats, fresh: age < StoredStatsMaxAge}, true, nil
}

// TriggerImport validates the form, posts it to the backend and optimistically
// records the new import locally. Re-checks are scheduled at the configured delays.
func (s *Service) TriggerImport(ctx context.Context, req TriggerImportRequest) (*TriggerImportResult, error) {
	if err := ValidateTriggerImportRequest(&req); err != nil {
		return nil, err
	}
	if req.TriggeredBy == "" {
		req.TriggeredBy = "manual"
	}

	s.setLoading(true)
	result, err := s.submit(ctx, req)
	s.setLoading(false)

	if s.recorder != nil {
		s.recorder.RecordSubmission(req, result, err)
	}

	if err != nil {
		log.Printf("ERROR: Import failed: %v", err)
		s.notify(Notification{
			Level:   "error",
			Title:   "Import failed",
			Message: "Failed to start import: " + TriggerFailedMessage,
		})
		return nil, err
	}

	log.Printf("Import triggered: job %s, import log %s", result.JobID, result.Record.ID)
	s.notify(Notification{Level: "info", Title: "Import started", Message: result.Message})

	s.rechecker.Schedule(result.SubmissionID, func() {
		if _, err := s.Refresh(context.Background()); err != nil {
			log.Printf("WARNING: Re-check after import %s failed: %v", result.JobID, err)
		}
	})

	s.onUpdate(s.State())
	return result, nil
}

func (s *Service) submit(ctx context.Context, req TriggerImportRequest) (*TriggerImportResult, error) {
	resp, err := s.backend.TriggerImport(ctx, api.TriggerImportRequest{
		APIName:     req.APIName,
		APIURL:      req.APIURL,
		Type:        req.Type,
		TriggeredBy: req.TriggeredBy,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTriggerFailed, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", ErrTriggerFailed, resp.Status())
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed JSON response", ErrTriggerFailed)
	}
	parsed := gjson.ParseBytes(body)

	now := s.now()
	jobID := firstString(parsed, jobIDChain, "Unknown")
	recordID := firstString(parsed, []extractor{field("data.importLogId")}, strconv.FormatInt(now.UnixMilli(), 10))

	record := ImportRecord{
		ID:        recordID,
		APIName:   req.APIName,
		APIURL:    req.APIURL,
		Type:      req.Type,
		Status:    StatusPending,
		JobsFound: 0,
		CreatedAt: now.UTC().Format(isoLayout),
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if err := s.cacheRecordLocked(record); err != nil {
		log.Printf("WARNING: Failed to cache import log locally: %v", err)
	}

	// stats are persisted under cacheMu too
	s.mu.Lock()
	s.state.Records = append([]ImportRecord{record}, s.state.Records...)
	var updated StatsSnapshot
	if s.state.Stats != nil {
		updated = *s.state.Stats
		updated.PendingJobs++
		updated.TotalJobs++
	} else {
		updated = StatsSnapshot{TotalJobs: 1, PendingJobs: 1}
	}
	s.state.Stats = &updated
	s.mu.Unlock()

	if err := s.persistStats(updated, now); err != nil {
		log.Printf("WARNING: Failed to persist stats locally: %v", err)
	}

	return &TriggerImportResult{
		SubmissionID: uuid.New().String(),
		JobID:        jobID,
		Record:       record,
		Message:      fmt.Sprintf("Import started successfully! Job ID: %s", jobID),
	}, nil
}

// cacheRecordLocked prepends record to the persisted importLogs list, keeping the newest entries.
// The caller holds cacheMu.
func (s *Service) cacheRecordLocked(record ImportRecord) error {
	entries := []json.RawMessage{}
	raw, ok, err := s.store.Get(store.KeyImportLogs)
	if err != nil {
		return err
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return fmt.Errorf("cached %s is not a JSON array: %w", store.KeyImportLogs, err)
		}
	}

	entry, err := json.Marshal(cachedRecord{
		ID:        record.ID,
		APIName:   record.APIName,
		APIURL:    record.APIURL,
		Type:      record.Type,
		Status:    record.Status,
		Stats:     cachedStats{NewJobs: record.JobsFound},
		CreatedAt: record.CreatedAt,
	})
	if err != nil {
		return err
	}

	entries = append([]json.RawMessage{entry}, entries...)
	if len(entries) > MaxCachedRecords {
		entries = entries[:MaxCachedRecords]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.store.Set(store.KeyImportLogs, string(data))
}

func (s *Service) persistStats(stats StatsSnapshot, capturedAt time.Time) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	if err := s.store.Set(store.KeyCurrentStats, string(data)); err != nil {
		return err
	}
	return s.store.Set(store.KeyCurrentStatsTimestamp, strconv.FormatInt(capturedAt.UnixMilli(), 10))
}

// ClearCache deletes every persisted key and refreshes from the backend once
func (s *Service) ClearCache(ctx context.Context) (State, error) {
	s.cacheMu.Lock()
	err := s.store.Delete(store.KeyImportLogs, store.KeyCurrentStats, store.KeyCurrentStatsTimestamp)
	s.cacheMu.Unlock()
	if err != nil {
		return s.State(), fmt.Errorf("failed to clear local data: %w", err)
	}

	log.Println("Local data cleared, refreshing from backend")
	return s.Refresh(ctx)
}

func (s *Service) setLoading(loading bool) {
	s.mu.Lock()
	s.state.Loading = loading
	s.mu.Unlock()
}
