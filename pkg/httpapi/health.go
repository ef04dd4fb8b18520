package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dalildz/dalil/pkg/logger"
)

const probeTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (a *API) live(*http.Request) Response {
	return JSON(http.StatusOK, healthResponse{Status: "alive"})
}

func (a *API) ready(r *http.Request) Response {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := healthResponse{Status: "ready", Checks: make(map[string]string, len(a.probes))}
	status := http.StatusOK
	for name, probe := range a.probes {
		if err := probe(ctx); err != nil {
			a.log.ErrorContext(ctx, "readiness check failed", logger.Component("httpapi"), slog.String("probe", name), logger.Error(err))
			resp.Checks[name] = "failed"
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	return JSON(status, resp)
}
