// Package handlers implements the monitoring HTTP endpoints.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/dittodrive/pkg/drive/service"
)

// Drive is the part of the drive service the readiness check needs.
type Drive interface {
	Stats(ctx context.Context, username string) (*service.Stats, error)
}

// storeChecker is implemented by drives that can reach their snapshot
// store on demand.
type storeChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness: Is the process running?
//   - Readiness: Does the drive answer requests?
type HealthHandler struct {
	drive    Drive
	rootUser string
}

// NewHealthHandler creates a health handler checking drive as rootUser.
// drive may be nil, in which case readiness reports unhealthy.
func NewHealthHandler(drive Drive, rootUser string) *HealthHandler {
	return &HealthHandler{drive: drive, rootUser: rootUser}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "dittodrive",
	}))
}

// Readiness handles GET /health/ready. It runs a stats request against the
// drive and, when the drive supports it, checks the snapshot store; a
// closed service, a failing principal lookup or an unreachable store
// makes it 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.drive == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("drive not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	stats, err := h.drive.Stats(ctx, h.rootUser)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}
	if checker, ok := h.drive.(storeChecker); ok {
		if err := checker.HealthCheck(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
			return
		}
	}

	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"filesystem_id": stats.FileSystemID.String(),
		"entries":       stats.Entries,
		"latency":       time.Since(start).String(),
	}))
}
