package downloads

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jdbridge/jdbridge/internal/category"
	"github.com/jdbridge/jdbridge/internal/remote"
	"github.com/jdbridge/jdbridge/internal/session"
)

// Service orchestrates download-package operations against the remote
// service. It holds no state of its own between requests; the only shared
// mutable resource is the session handle owned by the session manager.
type Service struct {
	sessions   *session.Manager
	resolver   *category.Resolver
	translator *Translator
	logger     zerolog.Logger
}

// NewService creates the download orchestration service.
func NewService(sessions *session.Manager, resolver *category.Resolver, translator *Translator, logger zerolog.Logger) *Service {
	return &Service{
		sessions:   sessions,
		resolver:   resolver,
		translator: translator,
		logger:     logger.With().Str("component", "downloads").Logger(),
	}
}

// AddDownload validates the request, resolves its category, and submits the
// package to the remote linkgrabber. Validation failures never reach the
// remote service.
func (s *Service) AddDownload(ctx context.Context, req DownloadRequest) ([]string, error) {
	req.Name = trimmedName(req.Name)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cat, err := s.resolver.Resolve(req.Category)
	if err != nil {
		return nil, classifyCategoryErr(err)
	}

	device, err := s.sessions.EnsureConnected()
	if err != nil {
		return nil, NewNotConnected()
	}

	sub := s.translator.BuildSubmission(req, cat.Directory)
	ids, err := device.AddLinks(ctx, sub)
	if err != nil {
		return nil, classifyRemoteErr("add links", err)
	}

	s.logger.Info().
		Str("package", req.Name).
		Str("category", cat.Name).
		Int("links", len(req.Links)).
		Bool("autoStart", req.AutoStart).
		Msg("added download package")

	return ids, nil
}

// ListDownloads fetches and normalizes all packages in the download list,
// preserving remote-reported order. Each call re-fetches; nothing is
// cached.
func (s *Service) ListDownloads(ctx context.Context) ([]Package, error) {
	device, err := s.sessions.EnsureConnected()
	if err != nil {
		return nil, NewNotConnected()
	}

	recs, err := device.QueryDownloads(ctx)
	if err != nil {
		return nil, classifyRemoteErr("query packages", err)
	}

	return s.translator.NormalizeAll(recs), nil
}

// ListLinkgrabber fetches packages staged in the linkgrabber. Read-only;
// no mutation.
func (s *Service) ListLinkgrabber(ctx context.Context) ([]Package, error) {
	device, err := s.sessions.EnsureConnected()
	if err != nil {
		return nil, NewNotConnected()
	}

	recs, err := device.QueryLinkgrabber(ctx)
	if err != nil {
		return nil, classifyRemoteErr("query linkgrabber", err)
	}

	return s.translator.NormalizeAll(recs), nil
}

// StartDownloads resumes the named packages, or all known packages when ids
// is empty. Unknown ids fail individually; the valid subset is still
// applied.
func (s *Service) StartDownloads(ctx context.Context, ids []string) (BulkResult, error) {
	return s.bulkControl(ctx, ids, true)
}

// PauseDownloads pauses the named packages, or all known packages when ids
// is empty. Same best-effort semantics as StartDownloads.
func (s *Service) PauseDownloads(ctx context.Context, ids []string) (BulkResult, error) {
	return s.bulkControl(ctx, ids, false)
}

func (s *Service) bulkControl(ctx context.Context, ids []string, start bool) (BulkResult, error) {
	operation := "pause packages"
	if start {
		operation = "start packages"
	}

	device, err := s.sessions.EnsureConnected()
	if err != nil {
		return BulkResult{}, NewNotConnected()
	}

	result := BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}

	// Empty id set means all currently known packages.
	if len(ids) == 0 {
		recs, err := device.QueryDownloads(ctx)
		if err != nil {
			return BulkResult{}, classifyRemoteErr(operation, err)
		}
		if err := s.apply(ctx, device, nil, start); err != nil {
			return BulkResult{}, classifyRemoteErr(operation, err)
		}
		for _, rec := range recs {
			result.Succeeded = append(result.Succeeded, rec.UUID)
		}
		s.logger.Info().Int("count", len(result.Succeeded)).Str("operation", operation).Msg("applied to all packages")
		return result, nil
	}

	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		ok, err := device.PackageExists(ctx, id)
		if err != nil {
			return BulkResult{}, classifyRemoteErr(operation, err)
		}
		if !ok {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: "unknown package id"})
			continue
		}
		valid = append(valid, id)
	}

	if len(valid) > 0 {
		if err := s.apply(ctx, device, valid, start); err != nil {
			return BulkResult{}, classifyRemoteErr(operation, err)
		}
		result.Succeeded = append(result.Succeeded, valid...)
	}

	s.logger.Info().
		Str("operation", operation).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("bulk package control applied")

	return result, nil
}

func (s *Service) apply(ctx context.Context, device remote.Device, ids []string, start bool) error {
	if start {
		return device.StartPackages(ctx, ids)
	}
	return device.PausePackages(ctx, ids)
}

// classifyCategoryErr maps resolver errors into the orchestration taxonomy.
func classifyCategoryErr(err error) error {
	var invalid *category.InvalidCategoryError
	if errors.As(err, &invalid) {
		return NewInvalidCategory(err)
	}
	var dirErr *category.DirectoryError
	if errors.As(err, &dirErr) {
		return NewDirectoryError(err)
	}
	return NewDirectoryError(err)
}

// classifyRemoteErr maps device errors into the orchestration taxonomy.
func classifyRemoteErr(operation string, err error) error {
	switch {
	case errors.Is(err, remote.ErrAuthFailed), errors.Is(err, remote.ErrDeviceNotFound):
		return NewAuthError(err)
	case errors.Is(err, remote.ErrNotConnected):
		return NewNotConnected()
	default:
		return NewRemoteError(operation, err)
	}
}
