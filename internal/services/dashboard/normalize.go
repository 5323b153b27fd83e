package dashboard

import (
	"time"

	"github.com/tidwall/gjson"
)

// isoLayout matches the millisecond ISO 8601 timestamps the backend emits
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// extractor pulls one candidate value out of a raw backend record.
// ok is false when the candidate is absent or falsy so the next one is tried.
type extractor func(raw gjson.Result) (gjson.Result, bool)

// field reads a gjson path and skips missing, null, false, "" and 0 values
func field(path string) extractor {
	return func(raw gjson.Result) (gjson.Result, bool) {
		v := raw.Get(path)
		return v, truthy(v)
	}
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return v.Exists()
	}
}

// Fallback chains per canonical field, tried in order
var (
	idChain        = []extractor{field("_id"), field("id")}
	nameChain      = []extractor{field("fileName"), field("apiName"), field("source.name")}
	urlChain       = []extractor{field("source.url"), field("apiUrl"), field("endpoint")}
	typeChain      = []extractor{field("source.type"), field("type")}
	statusChain    = []extractor{field("status")}
	jobsFoundChain = []extractor{field("stats.newJobs"), field("stats.jobsProcessed"), field("jobsProcessed")}
	createdAtChain = []extractor{field("importTime"), field("createdAt")}

	jobIDChain = []extractor{field("data.jobId"), field("jobId"), field("id")}
)

func firstString(raw gjson.Result, chain []extractor, fallback string) string {
	for _, extract := range chain {
		if v, ok := extract(raw); ok {
			return v.String()
		}
	}
	return fallback
}

func firstInt(raw gjson.Result, chain []extractor, fallback int) int {
	for _, extract := range chain {
		if v, ok := extract(raw); ok {
			return int(v.Int())
		}
	}
	return fallback
}

// normalizeRecord maps a raw backend or cached record to ImportRecord
func normalizeRecord(raw gjson.Result, now time.Time) ImportRecord {
	return ImportRecord{
		ID:        firstString(raw, idChain, ""),
		APIName:   firstString(raw, nameChain, "Unknown API"),
		APIURL:    firstString(raw, urlChain, ""),
		Type:      firstString(raw, typeChain, "json"),
		Status:    firstString(raw, statusChain, StatusUnknown),
		JobsFound: firstInt(raw, jobsFoundChain, 0),
		CreatedAt: firstString(raw, createdAtChain, now.UTC().Format(isoLayout)),
	}
}

func normalizeRecords(raws []gjson.Result, now time.Time) []ImportRecord {
	records := make([]ImportRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, normalizeRecord(raw, now))
	}
	return records
}

// statsFromOverview reads data.statistics.overview; missing counters are 0
func statsFromOverview(overview gjson.Result) StatsSnapshot {
	return StatsSnapshot{
		TotalJobs:     int(overview.Get("totalJobs").Int()),
		PendingJobs:   int(overview.Get("pendingJobs").Int()),
		CompletedJobs: int(overview.Get("completedJobs").Int()),
		FailedJobs:    int(overview.Get("failedJobs").Int()),
	}
}

// countRawPending counts raw records whose status field is exactly "pending"
func countRawPending(raws []gjson.Result) int {
	n := 0
	for _, raw := range raws {
		if raw.Get("status").String() == StatusPending {
			n++
		}
	}
	return n
}

func countPending(records []ImportRecord) int {
	n := 0
	for _, r := range records {
		if r.Status == StatusPending {
			n++
		}
	}
	return n
}
