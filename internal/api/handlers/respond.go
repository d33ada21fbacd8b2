package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/luraaya/factengine/internal/domain"
	"github.com/luraaya/factengine/internal/service"
	"github.com/luraaya/factengine/internal/timeline"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codePlaceNotFound  = "PLACE_NOT_FOUND"
	codeInternal       = "INTERNAL"
)

type errorResponse struct {
	Errors []domain.ContractError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Errors: []domain.ContractError{{Code: code, Message: msg}},
	})
}

// writeServiceError maps service and time pipeline errors onto status codes.
// Time pipeline failures are the caller's input, so they are 422 and carry
// the pipeline's own code.
func writeServiceError(w http.ResponseWriter, err error) {
	if code := timeline.Code(err); code != "" {
		writeError(w, http.StatusUnprocessableEntity, code, err.Error())
		return
	}
	switch {
	case errors.Is(err, service.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, codePlaceNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
