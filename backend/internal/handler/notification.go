package handler

import (
	"net/http"

	"github.com/itchan-dev/agenda/shared/api"
	"github.com/itchan-dev/agenda/shared/utils"
)

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	onlyUnread, err := queryBool(r, "unread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	list, err := h.notification.List(r.Context(), caller.Id, onlyUnread)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NotificationsResponse{Notifications: nonNil(list)})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.notification.MarkRead(r.Context(), urlParam(r, "id"), caller.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
