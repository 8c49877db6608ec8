package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/courtside/courtside-data/internal/api/respond"
)

// TriggerIngest runs the full pipeline synchronously for one provider.
// @Summary Trigger ingestion
// @Description Runs roster, season averages, recent games, box scores and trailing-window stages for one provider. Requires the shared ingest token. mode=mini forces the degraded path (page-one roster, no season averages) regardless of tier.
// @Tags admin
// @Produce json
// @Param provider query string false "Provider name (default bdl)" Enums(bdl, nbastats)
// @Param season query int false "Season year (defaults to configured season)"
// @Param mode query string false "Ingestion mode" Enums(mini)
// @Success 200 {object} ingest.Result
// @Failure 401 {object} respond.ErrorResponse
// @Failure 424 {object} respond.ErrorResponse
// @Failure 429 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /api/v1/admin/ingest [post]
func (h *Handler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	name := r.URL.Query().Get("provider")
	if name == "" {
		name = "bdl"
	}
	runner, ok := h.runners[name]
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PROVIDER",
			"Unknown provider "+strconv.Quote(name))
		return
	}

	season := h.season(r)
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	result, err := runner.Run(r.Context(), season, mode)
	if err != nil {
		respond.WriteUpstreamError(w, err)
		return
	}

	// The tables changed under every cached response.
	h.cache.Invalidate()
	respond.WriteJSONObject(w, http.StatusOK, result)
}

// authorized enforces the shared-secret gate on mutating endpoints. The
// token is accepted either as X-Ingest-Token or a bearer Authorization.
// Writes the error response itself and returns false on rejection.
func (h *Handler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if h.cfg.IngestToken == "" {
		respond.WriteError(w, http.StatusServiceUnavailable, "INGEST_DISABLED",
			"Ingestion endpoint is disabled: no INGEST_TOKEN configured")
		return false
	}

	token := r.Header.Get("X-Ingest-Token")
	if token == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if token != h.cfg.IngestToken {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing ingest token")
		return false
	}
	return true
}
