package handlers

import (
	"net/http"

	"github.com/Dosada05/sport-events/services"
)

type PreferenceHandler struct {
	preferenceService services.PreferenceService
}

func NewPreferenceHandler(ps services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: ps}
}

func (h *PreferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	prefs, err := h.preferenceService.List(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preferences": prefs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PreferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input services.PreferenceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pref, err := h.preferenceService.Create(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"preference": pref}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	prefID, err := getIDFromURL(r, "preferenceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pref, err := h.preferenceService.Get(r.Context(), userID, prefID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preference": pref}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	prefID, err := getIDFromURL(r, "preferenceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePreferenceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pref, err := h.preferenceService.Update(r.Context(), userID, prefID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preference": pref}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PreferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	prefID, err := getIDFromURL(r, "preferenceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.preferenceService.Delete(r.Context(), userID, prefID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkReplace заменяет весь набор предпочтений пользователя.
func (h *PreferenceHandler) BulkReplace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input services.BulkPreferencesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	prefs, err := h.preferenceService.ReplaceAll(r.Context(), userID, input.Preferences)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preferences": prefs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
