package handlers

import (
	"net/http"

	"github.com/Dosada05/sport-events/services"
)

type SportHandler struct {
	sportService services.SportService
}

func NewSportHandler(ss services.SportService) *SportHandler {
	return &SportHandler{
		sportService: ss,
	}
}

func (h *SportHandler) ListSports(w http.ResponseWriter, r *http.Request) {
	sports, err := h.sportService.ListSports(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"sports": sports}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
