package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/luraaya/factengine/internal/domain"
	"github.com/luraaya/factengine/internal/service"
	"go.uber.org/zap"
)

type PlaceHandler struct {
	svc    *service.PlaceService
	logger *zap.Logger
}

func NewPlaceHandler(svc *service.PlaceService, logger *zap.Logger) *PlaceHandler {
	return &PlaceHandler{svc: svc, logger: logger}
}

func (h *PlaceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlaceNotFound) {
			writeError(w, http.StatusNotFound, codePlaceNotFound, "place not found")
			return
		}
		h.logger.Error("get place failed", zap.String("place_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to get place")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	places, err := h.svc.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list places failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to list places")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"places": places})
}

type upsertPlaceRequest struct {
	Name        string  `json:"name"`
	CountryCode string  `json:"country_code"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	TZIANA      string  `json:"tz_iana"`
}

func (h *PlaceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req upsertPlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body")
		return
	}

	p := &domain.Place{
		PlaceID:     id,
		Name:        req.Name,
		CountryCode: req.CountryCode,
		Lat:         req.Lat,
		Lon:         req.Lon,
		TZIANA:      req.TZIANA,
	}
	if err := h.svc.Save(r.Context(), p); err != nil {
		if errors.Is(err, service.ErrInvalidPlace) {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		h.logger.Error("save place failed", zap.String("place_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to save place")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrPlaceNotFound) {
			writeError(w, http.StatusNotFound, codePlaceNotFound, "place not found")
			return
		}
		h.logger.Error("delete place failed", zap.String("place_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to delete place")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
