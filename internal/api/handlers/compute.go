package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/luraaya/factengine/internal/domain"
	"github.com/luraaya/factengine/internal/service"
	"github.com/luraaya/factengine/internal/timeline"
	"go.uber.org/zap"
)

type ComputeHandler struct {
	svc    *service.ContractService
	logger *zap.Logger
}

func NewComputeHandler(svc *service.ContractService, logger *zap.Logger) *ComputeHandler {
	return &ComputeHandler{svc: svc, logger: logger}
}

// Compute handles POST /v1/compute.
func (h *ComputeHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req domain.ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body")
		return
	}
	if msg := validateComputeRequest(req); msg != "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, msg)
		return
	}

	contract, err := h.svc.Compute(r.Context(), req)
	if err != nil {
		if timeline.Code(err) == "" {
			h.logger.Error("compute failed", zap.Error(err))
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contract)
}

type resolveRequest struct {
	BirthDate string  `json:"birth_date"`
	BirthTime *string `json:"birth_time"`
	TZIANA    string  `json:"tz_iana"`
}

// Resolve handles POST /v1/resolve: the civil time pipeline alone, without
// ephemeris work. A null or empty birth_time yields the day interval.
func (h *ComputeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body")
		return
	}

	date, err := timeline.ParseDate(req.BirthDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.BirthTime == nil || *req.BirthTime == "" {
		interval, err := timeline.ResolveInterval(date, req.TZIANA)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, interval)
		return
	}

	instant, err := timeline.ResolveInstant(date, *req.BirthTime, req.TZIANA)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, instant)
}

// validateComputeRequest checks shape only. Date, time, and timezone
// semantics belong to the time pipeline and fail there with their own codes.
func validateComputeRequest(req domain.ComputeRequest) string {
	if strings.TrimSpace(req.BirthDate) == "" {
		return "birth_date is required"
	}
	if req.Language != "" && !domain.ValidLanguage(req.Language) {
		return fmt.Sprintf("unsupported language %q", req.Language)
	}
	if req.PlanTier != "" && !domain.ValidPlanTier(req.PlanTier) {
		return fmt.Sprintf("unsupported plan_tier %q", req.PlanTier)
	}

	p := req.BirthPlace
	if (p.Lat == nil) != (p.Lon == nil) {
		return "birth_place.lat and birth_place.lon must be given together"
	}
	if p.HasCoordinates() {
		if *p.Lat < -90 || *p.Lat > 90 {
			return "birth_place.lat must be within [-90, 90]"
		}
		if *p.Lon < -180 || *p.Lon > 180 {
			return "birth_place.lon must be within [-180, 180]"
		}
	}
	return ""
}
