package handler

import (
	"net/http"

	"github.com/itchan-dev/agenda/shared/api"
	"github.com/itchan-dev/agenda/shared/domain"
	"github.com/itchan-dev/agenda/shared/utils"
)

// ListProjects honours ?include_inactive= for supervisors only.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	includeInactive, err := queryBool(r, "include_inactive")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	projects, err := h.project.List(r.Context(), caller, includeInactive)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ProjectsResponse{Projects: nonNil(projects)})
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	project, err := h.project.Get(r.Context(), caller, urlParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, project)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	var body api.CreateProjectRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	project, err := h.project.Create(r.Context(), caller, domain.ProjectCreationData{
		Name:          body.Name,
		Description:   body.Description,
		State:         body.State,
		StartDate:     body.StartDate,
		EndDate:       body.EndDate,
		ResponsibleId: body.ResponsibleId,
		SupervisorId:  body.SupervisorId,
		Budget:        body.Budget,
		ExternalRexId: body.ExternalRexId,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, project)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	var body api.UpdateProjectRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	project, err := h.project.Update(r.Context(), caller, urlParam(r, "id"), domain.ProjectPatch{
		Name:          body.Name,
		Description:   body.Description,
		State:         body.State,
		StartDate:     body.StartDate,
		EndDate:       body.EndDate,
		ResponsibleId: body.ResponsibleId,
		Budget:        body.Budget,
		ExternalRexId: body.ExternalRexId,
		Active:        body.Active,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, project)
}

// DeleteProject deactivates the project; its activities keep their reference.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.project.Delete(r.Context(), caller, urlParam(r, "id")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProjectActivities filters by ?date= only when it is given.
func (h *Handler) GetProjectActivities(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	var date *domain.Date
	if r.URL.Query().Get("date") != "" {
		d, err := queryDate(r, "date")
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		date = &d
	}

	activities, err := h.project.Activities(r.Context(), caller, urlParam(r, "id"), date)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ProjectActivitiesResponse{Activities: nonNil(activities)})
}

func (h *Handler) GetProjectSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	summary, err := h.project.Summary(r.Context(), caller, urlParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}
