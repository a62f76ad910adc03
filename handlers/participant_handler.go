package handlers

import (
	"net/http"

	"github.com/Dosada05/sport-events/services"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
}

func NewParticipantHandler(ps services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: ps,
	}
}

// JoinEvent godoc
// @Summary Подать заявку на участие в событии
// @Tags participants
// @Description Без обязательного одобрения заявка сразу подтверждается.
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param input body services.JoinEventInput false "Сообщение организатору"
// @Success 201 {object} map[string]interface{} "Заявка создана"
// @Failure 400 {object} map[string]string "Событие прошло или закрыто для заявок"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Failure 409 {object} map[string]string "Уже подана заявка / мест нет"
// @Security BearerAuth
// @Router /events/{eventID}/join [post]
func (h *ParticipantHandler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input services.JoinEventInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	participant, err := h.participantService.JoinEvent(r.Context(), userID, eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveEvent godoc
// @Summary Отменить свое участие
// @Tags participants
// @Param eventID path int true "Event ID"
// @Success 204 "Участие отменено"
// @Failure 400 {object} map[string]string "Не участник / участие уже завершено"
// @Security BearerAuth
// @Router /events/{eventID}/leave [post]
func (h *ParticipantHandler) LeaveEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.participantService.LeaveEvent(r.Context(), userID, eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListParticipants godoc
// @Summary Список участников события
// @Tags participants
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Security BearerAuth
// @Router /events/{eventID}/participants [get]
func (h *ParticipantHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participantService.ListParticipants(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateParticipantStatus godoc
// @Summary Обновить статус участника (одобрить/отклонить/исключить)
// @Tags participants
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param participantID path int true "Participant ID"
// @Param input body services.UpdateParticipantStatusInput true "Новый статус"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Недопустимый переход статуса"
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 404 {object} map[string]string "Событие или участник не найдены"
// @Security BearerAuth
// @Router /events/{eventID}/participants/{participantID} [patch]
func (h *ParticipantHandler) UpdateParticipantStatus(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input services.UpdateParticipantStatusInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.UpdateParticipantStatus(r.Context(), userID, eventID, participantID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) RateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input services.RateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.RateEvent(r.Context(), userID, eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
