package handler

import (
	"net/http"

	"github.com/itchan-dev/agenda/shared/api"
	"github.com/itchan-dev/agenda/shared/domain"
	"github.com/itchan-dev/agenda/shared/utils"
)

// GetDay lists the activities of ?date= (default today). Supervisors may pass ?user_id=,
// and without it they see every user's day.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	activities, hours, err := h.activity.Day(r.Context(), caller, date, queryUser(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.DayResponse{Date: date, Activities: nonNil(activities), SentHours: hours})
}

func (h *Handler) GetRange(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	from, err := queryDate(r, "from")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	userId := caller.Id
	if u := queryUser(r); u != nil {
		userId = *u
	}

	totals, err := h.activity.Range(r.Context(), caller, userId, from, to)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	totals.Activities = nonNil(totals.Activities)
	utils.WriteJSON(w, http.StatusOK, totals)
}

// CreateActivity accepts a JSON body or a multipart form with the body in the "json"
// field and files under "attachments".
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}

	var (
		body  api.CreateActivityRequest
		files []domain.PendingFile
		err   error
	)
	if isMultipart(r) {
		body, files, err = parseMultipartRequest[api.CreateActivityRequest](w, r, h)
		if err != nil {
			writeUploadError(w, err)
			return
		}
	} else if err = utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	activity, results, err := h.activity.Create(r.Context(), caller, body.UserId, domain.ActivityCreationData{
		Date:        body.Date,
		Start:       *body.Start,
		End:         *body.End,
		ProjectId:   body.ProjectId,
		Description: body.Description,
	}, files)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.CreateActivityResponse{Activity: activity, Attachments: results})
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	activity, err := h.activity.Get(r.Context(), caller, urlParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, activity)
}

func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	var body api.UpdateActivityRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	activity, err := h.activity.Update(r.Context(), caller, urlParam(r, "id"), domain.ActivityPatch{
		Date:         body.Date,
		Start:        body.Start,
		End:          body.End,
		ProjectId:    body.ProjectId,
		ClearProject: body.ClearProject,
		Description:  body.Description,
		State:        body.State,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, activity)
}

func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.activity.Delete(r.Context(), caller, urlParam(r, "id")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	activity, err := h.activity.Toggle(r.Context(), caller, urlParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, activity)
}

func (h *Handler) SendAgenda(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var userId domain.UserId
	if u := queryUser(r); u != nil {
		userId = *u
	}

	activities, err := h.activity.SendAgenda(r.Context(), caller, userId, date)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.SendAgendaResponse{Message: "Agenda sent", Activities: nonNil(activities)})
}

func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var userId domain.UserId
	if u := queryUser(r); u != nil {
		userId = *u
	}

	hours, err := h.activity.Hours(r.Context(), caller, userId, date)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.HoursResponse{Date: date, Hours: hours})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
