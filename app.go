package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"jobprompter-desktop/internal/api"
	"jobprompter-desktop/internal/config"
	"jobprompter-desktop/internal/credentials"
	"jobprompter-desktop/internal/database"
	"jobprompter-desktop/internal/services/dashboard"
	"jobprompter-desktop/internal/services/history"
	"jobprompter-desktop/internal/services/poller"
	"jobprompter-desktop/internal/services/recheck"
	"jobprompter-desktop/internal/services/scheduler"
	"jobprompter-desktop/internal/store"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"gorm.io/gorm"
)

// Frontend event names
const (
	EventDashboardUpdated = "dashboard:updated"
	EventNotification     = "dashboard:notification"
	EventPollPrefix       = "poll:"
)

// livePollers maps a live-poll name to the constructor that starts it
var livePollers = map[string]func(*api.Client, func(interface{})) (*poller.Poller, error){
	"jobStats":   poller.PollJobStats,
	"importLogs": poller.PollImportLogs,
	"queueStats": poller.PollQueueStats,
}

// App struct - main application state
type App struct {
	ctx              context.Context
	db               *gorm.DB
	settings         config.Settings
	client           *api.Client
	rechecker        *recheck.Scheduler
	dashboardService *dashboard.Service
	historyService   *history.Service
	schedulerService *scheduler.Service

	pollersMu sync.Mutex
	pollers   map[string]*poller.Poller
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{
		pollers: make(map[string]*poller.Poller),
	}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	log.Println("Application starting up...")

	a.settings = config.Load()

	db, err := database.Init()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	a.db = db

	token := a.settings.APIToken
	if token == "" {
		token, err = credentials.LoadAPIToken()
		if err != nil {
			log.Printf("WARNING: Could not read API token from keychain: %v", err)
		}
	}

	a.client = api.NewClient(a.settings.APIBase, token)
	a.client.SetTimeout(a.settings.APITimeout)
	a.client.SetRetryCount(a.settings.APIRetryCount)
	log.Printf("Backend API: %s", a.client.BaseURL())

	a.rechecker = recheck.New(recheck.DefaultDelays...)
	a.historyService = history.NewService(db)

	a.dashboardService = dashboard.NewService(a.client, store.NewGormStore(db),
		dashboard.WithRechecker(a.rechecker),
		dashboard.WithRecorder(a.historyService),
		dashboard.WithNotifier(func(n dashboard.Notification) {
			runtime.EventsEmit(a.ctx, EventNotification, n)
		}),
		dashboard.WithOnUpdate(func(state dashboard.State) {
			runtime.EventsEmit(a.ctx, EventDashboardUpdated, state)
		}),
	)
	log.Println("Dashboard service initialized")

	a.schedulerService = scheduler.NewService(db, ctx, a.dashboardService)
	if err := a.schedulerService.Start(); err != nil {
		log.Printf("WARNING: Failed to start scheduler: %v", err)
	} else {
		log.Println("Scheduler service initialized and started")
	}

	// First load happens in the background; the frontend listens for dashboard:updated
	go func() {
		if _, err := a.dashboardService.Refresh(ctx); err != nil {
			log.Printf("WARNING: Initial dashboard load failed: %v", err)
		}
	}()

	log.Println("Startup complete")
}

// shutdown is called when the app is closing
func (a *App) shutdown(ctx context.Context) {
	log.Println("Application shutting down...")

	a.StopLivePolling("")

	// Running scheduled imports may still arm re-checks until the scheduler has stopped
	if a.schedulerService != nil {
		a.schedulerService.Stop()
	}

	if a.rechecker != nil {
		if n := a.rechecker.CancelAll(); n > 0 {
			log.Printf("Cancelled %d pending re-checks", n)
		}
	}

	if err := database.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Shutdown complete")
}

// ====================================================================================
// WAILS-BOUND METHODS - Exposed to Frontend
// ====================================================================================

// Dashboard Methods

// GetDashboard returns the current dashboard state without contacting the backend
func (a *App) GetDashboard() dashboard.State {
	return a.dashboardService.State()
}

// Refresh reloads import logs and stats from the backend
func (a *App) Refresh() (dashboard.State, error) {
	return a.dashboardService.Refresh(a.ctx)
}

// TriggerImport submits the "Start New Import" form and reports the outcome in a dialog
func (a *App) TriggerImport(req dashboard.TriggerImportRequest) (*dashboard.TriggerImportResult, error) {
	req.TriggeredBy = "manual"

	result, err := a.dashboardService.TriggerImport(a.ctx, req)
	if err != nil {
		message := err.Error()
		if errors.Is(err, dashboard.ErrTriggerFailed) {
			message = dashboard.TriggerFailedMessage
		}
		go a.showDialog(runtime.ErrorDialog, "Import failed", "Failed to start import: "+message)
		return nil, err
	}

	go a.showDialog(runtime.InfoDialog, "Import started", result.Message)
	return result, nil
}

// ClearCache deletes locally stored import data and reloads from the backend
func (a *App) ClearCache() (dashboard.State, error) {
	return a.dashboardService.ClearCache(a.ctx)
}

func (a *App) showDialog(dialogType runtime.DialogType, title, message string) {
	if _, err := runtime.MessageDialog(a.ctx, runtime.MessageDialogOptions{
		Type:    dialogType,
		Title:   title,
		Message: message,
	}); err != nil {
		log.Printf("WARNING: Failed to show dialog: %v", err)
	}
}

// Live Polling Methods

// ListLivePollers returns the names accepted by StartLivePolling
func (a *App) ListLivePollers() []string {
	names := make([]string, 0, len(livePollers))
	for name := range livePollers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartLivePolling forwards backend responses for name as "poll:<name>" events.
// Starting a poller that is already running does nothing.
func (a *App) StartLivePolling(name string) error {
	start, ok := livePollers[name]
	if !ok {
		return fmt.Errorf("unknown poller: %s", name)
	}

	a.pollersMu.Lock()
	defer a.pollersMu.Unlock()

	if p, exists := a.pollers[name]; exists && p.IsActive() {
		return nil
	}

	p, err := start(a.client, func(data interface{}) {
		runtime.EventsEmit(a.ctx, EventPollPrefix+name, data)
	})
	if err != nil {
		return fmt.Errorf("failed to start %s polling: %w", name, err)
	}
	a.pollers[name] = p
	return nil
}

// StopLivePolling stops the named poller; an empty name stops all of them
func (a *App) StopLivePolling(name string) {
	a.pollersMu.Lock()
	defer a.pollersMu.Unlock()

	for n, p := range a.pollers {
		if name == "" || n == name {
			p.Stop()
		}
	}
}

// Scheduled Import Methods

// ListScheduledImports retrieves all scheduled imports
func (a *App) ListScheduledImports() ([]scheduler.JobListResponse, error) {
	return a.schedulerService.ListJobs()
}

// UpsertScheduledImport creates or updates a scheduled import
func (a *App) UpsertScheduledImport(req scheduler.UpsertJobRequest) (string, error) {
	return a.schedulerService.UpsertJob(req)
}

// DeleteScheduledImport removes a scheduled import
func (a *App) DeleteScheduledImport(jobID string) error {
	return a.schedulerService.DeleteJob(jobID)
}

// History Methods

// ListImportHistory retrieves recent submissions made from this app
func (a *App) ListImportHistory(limit int) ([]history.Entry, error) {
	return a.historyService.List(limit)
}

// Settings Methods

// SetAPIToken stores the backend token in the OS keychain and applies it immediately.
// An empty token removes it.
func (a *App) SetAPIToken(token string) error {
	if err := credentials.StoreAPIToken(token); err != nil {
		return fmt.Errorf("failed to store API token: %w", err)
	}
	a.client.SetToken(token)
	return nil
}

// HasAPIToken reports whether a token is kept in the OS keychain
func (a *App) HasAPIToken() bool {
	return credentials.IsTokenStored()
}
