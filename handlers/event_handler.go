package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Dosada05/sport-events/middleware"
	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/services"
)

const maxPageSize = 100

type EventHandler struct {
	eventService          services.EventService
	recommendationService services.RecommendationService
}

func NewEventHandler(es services.EventService, rs services.RecommendationService) *EventHandler {
	return &EventHandler{
		eventService:          es,
		recommendationService: rs,
	}
}

// ListEvents godoc
// @Summary Список публичных событий
// @Tags events
// @Produce json
// @Param sport_type query int false "ID вида спорта"
// @Param status query string false "upcoming|ongoing|completed|cancelled"
// @Param difficulty query string false "easy|medium|hard"
// @Param is_free query bool false "Только бесплатные"
// @Param creator query int false "ID создателя"
// @Param search query string false "Поиск по названию, описанию и месту"
// @Param start_date_from query string false "RFC3339"
// @Param start_date_to query string false "RFC3339"
// @Param ordering query string false "start_date_time|created_at|max_participants, '-' для убывания"
// @Param user_lat query number false "Широта пользователя"
// @Param user_lng query number false "Долгота пользователя"
// @Param radius query number false "Радиус в км (по умолчанию 10)"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неверный фильтр"
// @Router /events [get]
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	input, err := parseListEventsQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	events, err := h.eventService.ListEvents(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events, "count": len(events)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func parseListEventsQuery(r *http.Request) (services.ListEventsInput, error) {
	qs := r.URL.Query()
	var input services.ListEventsInput
	var err error
	f := &input.Filter

	if f.SportID, err = queryInt(qs, "sport_type"); err != nil {
		return input, err
	}
	if f.CreatorID, err = queryInt(qs, "creator"); err != nil {
		return input, err
	}
	if f.IsFree, err = queryBool(qs, "is_free"); err != nil {
		return input, err
	}
	if f.StartFrom, err = queryTime(qs, "start_date_from"); err != nil {
		return input, err
	}
	if f.StartTo, err = queryTime(qs, "start_date_to"); err != nil {
		return input, err
	}

	if s := qs.Get("status"); s != "" {
		status := models.EventStatus(s)
		switch status {
		case models.EventStatusUpcoming, models.EventStatusOngoing, models.EventStatusCompleted, models.EventStatusCancelled:
			f.Status = &status
		default:
			return input, fmt.Errorf("invalid status %q", s)
		}
	}
	if s := qs.Get("difficulty"); s != "" {
		difficulty := models.Difficulty(s)
		switch difficulty {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			f.Difficulty = &difficulty
		default:
			return input, fmt.Errorf("invalid difficulty %q", s)
		}
	}
	f.Search = qs.Get("search")
	f.Ordering = qs.Get("ordering")

	limit, err := queryInt(qs, "limit")
	if err != nil {
		return input, err
	}
	if limit != nil {
		if *limit < 1 || *limit > maxPageSize {
			return input, fmt.Errorf("limit must be between 1 and %d", maxPageSize)
		}
		f.Limit = *limit
	}
	offset, err := queryInt(qs, "offset")
	if err != nil {
		return input, err
	}
	if offset != nil {
		if *offset < 0 {
			return input, errors.New("offset must not be negative")
		}
		f.Offset = *offset
	}

	if input.UserLat, err = queryFloat(qs, "user_lat"); err != nil {
		return input, err
	}
	if input.UserLng, err = queryFloat(qs, "user_lng"); err != nil {
		return input, err
	}
	if input.UserLat != nil && (*input.UserLat < -90 || *input.UserLat > 90) {
		return input, errors.New("user_lat must be between -90 and 90")
	}
	if input.UserLng != nil && (*input.UserLng < -180 || *input.UserLng > 180) {
		return input, errors.New("user_lng must be between -180 and 180")
	}
	radius, err := queryFloat(qs, "radius")
	if err != nil {
		return input, err
	}
	if radius != nil {
		if *radius <= 0 {
			return input, errors.New("radius must be positive")
		}
		input.RadiusKm = *radius
	}

	return input, nil
}

// CreateEvent godoc
// @Summary Создать событие
// @Tags events
// @Accept json
// @Produce json
// @Param input body services.CreateEventInput true "Событие"
// @Success 201 {object} models.EventView
// @Failure 400 {object} map[string]string "Нарушены правила события"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Аутентификация здесь необязательна: без нее статус участия не заполняется.
	var viewerID *int
	if id, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		viewerID = &id
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID, viewerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), eventID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteEvent отменяет событие; запись остается со статусом cancelled.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.eventService.CancelEvent(r.Context(), eventID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	events, err := h.eventService.ListMyEvents(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) MyParticipations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	events, err := h.eventService.ListMyParticipations(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Recommended godoc
// @Summary Рекомендованные события для текущего пользователя
// @Tags events
// @Produce json
// @Param limit query int false "Максимум результатов (по умолчанию из конфигурации)"
// @Success 200 {object} map[string]interface{} "events: [{event, recommendation_score, distance}]"
// @Security BearerAuth
// @Router /events/recommended [get]
func (h *EventHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r.URL.Query(), "limit")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	n := 0
	if limit != nil {
		if *limit < 1 {
			badRequestResponse(w, r, errors.New("limit must be positive"))
			return
		}
		n = *limit
	}

	items, err := h.recommendationService.Recommend(r.Context(), userID, n)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": items, "count": len(items)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

