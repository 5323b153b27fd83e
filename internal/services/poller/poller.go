package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"jobprompter-desktop/internal/api"

	"github.com/go-resty/resty/v2"
)

// Default intervals of the convenience pollers
const (
	JobStatsInterval   = 2 * time.Second
	ImportLogsInterval = 3 * time.Second
	QueueStatsInterval = 2 * time.Second
)

// ErrInvalidInterval is returned by Start for a non-positive interval
var ErrInvalidInterval = errors.New("poll interval must be positive")

// Getter is the part of the API client the poller needs
type Getter interface {
	Get(ctx context.Context, endpoint string, params map[string]string) (*resty.Response, error)
}

// Config controls one polling run
type Config struct {
	Interval time.Duration
	// MaxRetries is accepted for compatibility with existing callers; failures never stop polling
	MaxRetries int
	OnSuccess  func(data interface{})
	OnError    func(err error)
}

// Poller GETs one URL on a fixed interval and hands the decoded JSON to a callback.
// Ticks are not coalesced: a slow request may still be running when the next one starts.
type Poller struct {
	client Getter

	mu     sync.Mutex
	active bool
	stop   chan struct{}
}

// New creates an idle poller
func New(client Getter) *Poller {
	return &Poller{client: client}
}

// Start begins polling url. The first request is made after one interval.
// Calling Start on an active poller does nothing.
func (p *Poller) Start(url string, cfg Config) error {
	if cfg.Interval <= 0 {
		return ErrInvalidInterval
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		log.Printf("Polling already started")
		return nil
	}

	p.active = true
	p.stop = make(chan struct{})
	log.Printf("Starting polling for: %s (every %v)", url, cfg.Interval)

	go p.run(url, cfg, p.stop)
	return nil
}

func (p *Poller) run(url string, cfg Config, stop <-chan struct{}) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			go p.tick(url, cfg)
		}
	}
}

func (p *Poller) tick(url string, cfg Config) {
	data, err := p.fetch(url)
	if err != nil {
		if cfg.OnError != nil {
			cfg.OnError(err)
		} else {
			log.Printf("ERROR: Polling error for %s: %v", url, err)
		}
		return
	}
	if cfg.OnSuccess != nil {
		cfg.OnSuccess(data)
	}
}

// fetch returns the decoded body whatever the status code; only transport and decode failures are errors
func (p *Poller) fetch(url string) (interface{}, error) {
	resp, err := p.client.Get(context.Background(), url, nil)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var data interface{}
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode(), err)
	}
	return data, nil
}

// Stop halts polling. Requests already in flight still deliver their callbacks.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}
	close(p.stop)
	p.stop = nil
	p.active = false
	log.Println("Polling stopped")
}

// IsActive reports whether the poller is running
func (p *Poller) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// PollJobStats polls the job statistics endpoint every 2s
func PollJobStats(client *api.Client, onUpdate func(interface{})) (*Poller, error) {
	return startConvenience(client, api.JobStatsEndpoint, JobStatsInterval, "Job stats", onUpdate)
}

// PollImportLogs polls the import history every 3s
func PollImportLogs(client *api.Client, onUpdate func(interface{})) (*Poller, error) {
	return startConvenience(client, api.ImportLogsEndpoint, ImportLogsInterval, "Import logs", onUpdate)
}

// PollQueueStats polls the queue statistics every 2s
func PollQueueStats(client *api.Client, onUpdate func(interface{})) (*Poller, error) {
	return startConvenience(client, api.QueueStatsEndpoint, QueueStatsInterval, "Queue stats", onUpdate)
}

func startConvenience(client *api.Client, endpoint string, interval time.Duration, label string, onUpdate func(interface{})) (*Poller, error) {
	p := New(client)
	err := p.Start(client.URL(endpoint), Config{
		Interval:  interval,
		OnSuccess: onUpdate,
		OnError: func(err error) {
			log.Printf("ERROR: %s polling error: %v", label, err)
		},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
