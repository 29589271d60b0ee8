package health

// SessionStatus reports whether the remote session is currently connected.
type SessionStatus interface {
	Connected() bool
}

// Report is the health endpoint response.
type Report struct {
	Status           string `json:"status"` // "ok" or "degraded"
	Connected        bool   `json:"connected"`
	BasePathWritable bool   `json:"base_path_writable"`
	Detail           string `json:"detail,omitempty"`
}

// Service evaluates the bridge's readiness.
type Service struct {
	sessions SessionStatus
	basePath string
}

// NewService creates a health service checking the given session and base path.
func NewService(sessions SessionStatus, basePath string) *Service {
	return &Service{
		sessions: sessions,
		basePath: basePath,
	}
}

// Check builds the current health report. The bridge is "ok" only when the
// session is connected and the base path is writable.
func (s *Service) Check() Report {
	report := Report{
		Status:    "ok",
		Connected: s.sessions.Connected(),
	}

	ok, detail := checkBasePath(s.basePath)
	report.BasePathWritable = ok
	if !ok {
		report.Detail = detail
	}

	if !report.Connected || !report.BasePathWritable {
		report.Status = "degraded"
	}
	return report
}
