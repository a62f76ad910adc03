package handlers

import (
	"net/http"

	"github.com/Dosada05/sport-events/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.notificationService.List(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notifications": items}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	n, err := h.notificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"unread_count": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	n, err := h.notificationService.MarkAllRead(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"marked": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	notificationID, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), userID, notificationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
