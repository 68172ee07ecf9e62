package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Report values.  The wording is part of the public response.
const (
	statusRunning        = "✅ Running"
	statusAvailable      = "✅ Available"
	statusWorking        = "✅ Connected & Working"
	statusNotInitialized = "⚠️  Available but not initialized"
	statusProbeErrPrefix = "⚠️  Connected but Error: "
	statusSet            = "✅ Set"
	statusNotSet         = "❌ Not Set"
	connConnected        = "Connected"
	connNotConnected     = "Not Connected"

	maxReportedCollections = 10
	maxReportedErrorRunes  = 50
)

// Prober answers the questions of the diagnostic report.
// *repository.DiagnosticsRepo implements it.
type Prober interface {
	Configured() bool
	Collections(ctx context.Context) ([]string, error)
}

// DiagnosticsHandler serves GET /test.  URLSet and NameSet record whether
// DATABASE_URL and DATABASE_NAME were present at startup.
type DiagnosticsHandler struct {
	Probe   Prober
	URLSet  bool
	NameSet bool
	Timeout time.Duration
}

// DiagnosticReport is the body of GET /test.
type DiagnosticReport struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Test reports backend and database status.  It always answers 200: a
// failing probe only changes the report text.
func (h *DiagnosticsHandler) Test(c echo.Context) error {
	return c.JSON(http.StatusOK, h.report(c.Request().Context()))
}

func (h *DiagnosticsHandler) report(ctx context.Context) DiagnosticReport {
	r := DiagnosticReport{
		Backend:          statusRunning,
		Database:         statusNotInitialized,
		DatabaseURL:      setOrNot(h.URLSet),
		DatabaseName:     setOrNot(h.NameSet),
		ConnectionStatus: connNotConnected,
		Collections:      []string{},
	}
	if h.Probe == nil || !h.Probe.Configured() {
		return r
	}
	r.Database = statusAvailable
	r.ConnectionStatus = connConnected

	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	names, err := h.Probe.Collections(ctx)
	if err != nil {
		r.Database = statusProbeErrPrefix + truncate(err.Error(), maxReportedErrorRunes)
		return r
	}
	if len(names) > maxReportedCollections {
		names = names[:maxReportedCollections]
	}
	if names != nil {
		r.Collections = names
	}
	r.Database = statusWorking
	return r
}

func setOrNot(set bool) string {
	if set {
		return statusSet
	}
	return statusNotSet
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
