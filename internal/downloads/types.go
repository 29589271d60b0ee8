// Package downloads implements the download-package orchestration layer:
// it translates inbound requests into remote submissions and remote package
// records into the outbound progress model.
package downloads

import (
	"fmt"
	"net/url"
	"strings"
)

// Status is the bridge's closed taxonomy for package and link states. The
// remote vocabulary is open-ended; anything unrecognized normalizes to
// StatusFailed.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusRunning  Status = "running"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// Link is a single URL within a package, with its own progress. Ordering
// within a package is insertion order from the originating request.
type Link struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	URL         string  `json:"url"`
	Status      Status  `json:"status"`
	BytesTotal  int64   `json:"bytes_total"`
	BytesLoaded int64   `json:"bytes_loaded"`
	Progress    float64 `json:"progress_percentage"`
}

// Package is a transient view of a remote download package. Packages are
// fetched fresh on every list; the bridge stores nothing between requests.
type Package struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Category            string  `json:"category,omitempty"`
	Status              Status  `json:"status"`
	Progress            float64 `json:"progress_percentage"`
	BytesTotal          int64   `json:"bytes_total"`
	BytesLoaded         int64   `json:"bytes_loaded"`
	Eta                 int64   `json:"eta"`
	Speed               int64   `json:"speed"`
	FormattedSize       string  `json:"formatted_size"`
	FormattedDownloaded string  `json:"formatted_downloaded"`
	FormattedSpeed      string  `json:"formatted_speed"`
	Links               []Link  `json:"links,omitempty"`
}

// DownloadRequest is the inbound add-download payload.
type DownloadRequest struct {
	Name      string   `json:"name"`
	Links     []string `json:"links"`
	Category  string   `json:"category,omitempty"`
	AutoStart bool     `json:"auto_start,omitempty"`
}

// Validate checks the request shape. It runs before any remote call.
func (r *DownloadRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewInvalidInput("name must not be empty")
	}
	if len(r.Links) == 0 {
		return NewInvalidInput("at least one link is required")
	}
	for _, link := range r.Links {
		u, err := url.Parse(link)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return NewInvalidInput(fmt.Sprintf("not a valid absolute URL: %s", link))
		}
	}
	return nil
}

// BulkFailure is a single failed id within a bulk start/pause operation.
type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult reports a best-effort bulk operation: ids that were applied
// and ids that failed, with per-id reasons. A partially failed bulk call is
// not an error at the top level.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// formatBytes renders a byte count in human-readable units.
func formatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}

	value := float64(n)
	units := []string{"B", "KB", "MB", "GB", "TB"}
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}

// formatSpeed renders a transfer rate.
func formatSpeed(n int64) string {
	if n <= 0 {
		return "0 B/s"
	}
	return formatBytes(n) + "/s"
}
