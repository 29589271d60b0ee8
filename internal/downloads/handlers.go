package downloads

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for download-package operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new downloads handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers download routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Add)
	g.GET("", h.List)
	g.POST("/start", h.Start)
	g.POST("/pause", h.Pause)
}

// RegisterLinkgrabberRoutes registers the linkgrabber listing route.
func (h *Handlers) RegisterLinkgrabberRoutes(g *echo.Group) {
	g.GET("", h.ListLinkgrabber)
}

// errorPayload is the stable error shape exposed to clients. Only the kind
// and a human-readable message cross the boundary; causes stay in the logs.
type errorPayload struct {
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

type controlRequest struct {
	PackageIDs []string `json:"package_ids"`
}

// Add submits a new download package.
// POST /api/v1/downloads
func (h *Handlers) Add(c echo.Context) error {
	var req DownloadRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, NewInvalidInput("malformed request body"))
	}

	ids, err := h.service.AddDownload(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"package_ids": ids,
	})
}

// List returns all packages in the download list.
// GET /api/v1/downloads
func (h *Handlers) List(c echo.Context) error {
	pkgs, err := h.service.ListDownloads(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count":    len(pkgs),
		"packages": pkgs,
	})
}

// ListLinkgrabber returns packages staged in the linkgrabber.
// GET /api/v1/linkgrabber
func (h *Handlers) ListLinkgrabber(c echo.Context) error {
	pkgs, err := h.service.ListLinkgrabber(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count":    len(pkgs),
		"packages": pkgs,
	})
}

// Start resumes the named packages, or all packages when no ids are given.
// POST /api/v1/downloads/start
func (h *Handlers) Start(c echo.Context) error {
	return h.control(c, h.service.StartDownloads)
}

// Pause pauses the named packages, or all packages when no ids are given.
// POST /api/v1/downloads/pause
func (h *Handlers) Pause(c echo.Context) error {
	return h.control(c, h.service.PauseDownloads)
}

func (h *Handlers) control(c echo.Context, op func(ctx context.Context, ids []string) (BulkResult, error)) error {
	var req controlRequest
	// An empty body means "all packages"; only a present-but-broken body is
	// rejected.
	if err := c.Bind(&req); err != nil {
		return respondError(c, NewInvalidInput("malformed request body"))
	}

	result, err := op(c.Request().Context(), req.PackageIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// respondError maps orchestration error kinds onto HTTP statuses and writes
// the stable error payload.
func respondError(c echo.Context, err error) error {
	kind := KindOf(err)
	message := "internal error"

	var e *Error
	if errors.As(err, &e) {
		message = e.Message
	} else {
		kind = KindRemoteError
	}

	return c.JSON(statusFor(kind), errorPayload{ErrorKind: kind, Message: message})
}

func statusFor(kind string) int {
	switch kind {
	case KindInvalidInput, KindInvalidCategory:
		return http.StatusBadRequest
	case KindNotConnected:
		return http.StatusServiceUnavailable
	case KindAuthError, KindRemoteError:
		return http.StatusBadGateway
	case KindDirectoryError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
