package downloads

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jdbridge/jdbridge/internal/remote"
)

// Translator converts between the bridge's model and the remote service's
// package/link records.
type Translator struct {
	basePath string
	logger   zerolog.Logger
}

// NewTranslator creates a translator. basePath is used to reconcile remote
// destination folders back into category names.
func NewTranslator(basePath string, logger zerolog.Logger) *Translator {
	return &Translator{
		basePath: basePath,
		logger:   logger.With().Str("component", "translator").Logger(),
	}
}

// BuildSubmission packs a validated request into the shape the remote
// service expects. Pure function, no I/O.
func (t *Translator) BuildSubmission(req DownloadRequest, destination string) remote.Submission {
	links := make([]string, len(req.Links))
	copy(links, req.Links)

	return remote.Submission{
		PackageName:       req.Name,
		Links:             links,
		DestinationFolder: destination,
		AutoStart:         req.AutoStart,
	}
}

// Normalize maps a remote package record into the bridge's Package model.
func (t *Translator) Normalize(rec remote.PackageRecord) Package {
	status := t.normalizeStatus(rec.UUID, rec.Status)

	links := make([]Link, 0, len(rec.Links))
	for _, lr := range rec.Links {
		links = append(links, Link{
			ID:          lr.UUID,
			Name:        lr.Name,
			URL:         lr.URL,
			Status:      t.normalizeStatus(lr.UUID, lr.Status),
			BytesTotal:  lr.BytesTotal,
			BytesLoaded: lr.BytesLoaded,
			Progress:    progressPercentage(lr.BytesLoaded, lr.BytesTotal),
		})
	}

	return Package{
		ID:                  rec.UUID,
		Name:                rec.Name,
		Category:            t.categoryOf(rec.SaveTo),
		Status:              status,
		Progress:            progressPercentage(rec.BytesLoaded, rec.BytesTotal),
		BytesTotal:          rec.BytesTotal,
		BytesLoaded:         rec.BytesLoaded,
		Eta:                 rec.Eta,
		Speed:               rec.Speed,
		FormattedSize:       formatBytes(rec.BytesTotal),
		FormattedDownloaded: formatBytes(rec.BytesLoaded),
		FormattedSpeed:      formatSpeed(rec.Speed),
		Links:               links,
	}
}

// NormalizeAll maps a slice of records, preserving remote-reported order.
func (t *Translator) NormalizeAll(recs []remote.PackageRecord) []Package {
	packages := make([]Package, 0, len(recs))
	for _, rec := range recs {
		packages = append(packages, t.Normalize(rec))
	}
	return packages
}

// normalizeStatus maps the remote status vocabulary into the closed local
// taxonomy. Unknown values map to StatusFailed so downstream consumers
// never see an unrecognized state.
func (t *Translator) normalizeStatus(id, remoteStatus string) Status {
	switch remoteStatus {
	case "pending", "queued":
		return StatusWaiting
	case "downloading", "extracting":
		return StatusRunning
	case "paused":
		return StatusPaused
	case "finished":
		return StatusFinished
	case "failed":
		return StatusFailed
	default:
		t.logger.Warn().Str("id", id).Str("status", remoteStatus).Msg("unknown remote status, treating as failed")
		return StatusFailed
	}
}

// categoryOf derives the category name from a remote destination folder,
// when the folder sits directly under the configured base path.
func (t *Translator) categoryOf(saveTo string) string {
	if saveTo == "" || t.basePath == "" {
		return ""
	}
	if filepath.Dir(filepath.Clean(saveTo)) != filepath.Clean(t.basePath) {
		return ""
	}
	return filepath.Base(filepath.Clean(saveTo))
}

// progressPercentage computes completion with a guarded divisor: an unknown
// total reports 0%, never NaN.
func progressPercentage(loaded, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(loaded) / float64(total) * 100
}
