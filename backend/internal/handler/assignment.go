package handler

import (
	"net/http"

	"github.com/itchan-dev/agenda/shared/api"
	"github.com/itchan-dev/agenda/shared/domain"
	"github.com/itchan-dev/agenda/shared/utils"
)

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	var body api.CreateAssignmentRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	task, err := h.assignment.Create(r.Context(), caller, domain.AssignmentCreationData{
		StaffId:     body.StaffId,
		ProjectId:   body.ProjectId,
		Description: body.Description,
		AssignedOn:  body.AssignedOn,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, task)
}

// ListAssignments filters by ?state= and, for supervisors, ?staff_id=.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	var filter domain.AssignmentFilter
	if raw := r.URL.Query().Get("state"); raw != "" {
		state := domain.AssignmentState(raw)
		filter.State = &state
	}
	if raw := r.URL.Query().Get("staff_id"); raw != "" {
		filter.StaffId = &raw
	}

	tasks, err := h.assignment.List(r.Context(), caller, filter)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.AssignmentsResponse{Assignments: nonNil(tasks)})
}

func (h *Handler) UpdateAssignmentState(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	var body api.UpdateAssignmentStateRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	task, err := h.assignment.UpdateState(r.Context(), caller, urlParam(r, "id"), body.State)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}
