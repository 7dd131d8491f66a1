package handler

import (
	"net/http"
	"time"

	"github.com/itchan-dev/agenda/shared/api"
	"github.com/itchan-dev/agenda/shared/domain"
	"github.com/itchan-dev/agenda/shared/utils"
)

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}
	stats, err := h.stats.Dashboard(r.Context(), time.Now())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) GetWeekdays(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	days, err := h.stats.Weekdays(r.Context(), caller, domain.Today())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.WeekdaysResponse{Days: days})
}

func (h *Handler) GetRecent(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	recent, err := h.stats.Recent(r.Context(), caller)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.RecentResponse{Activities: nonNil(recent)})
}

// GetProjectDistribution serves the activity count per active project.
func (h *Handler) GetProjectDistribution(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	counts, err := h.stats.Projects(r.Context(), caller)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ProjectDistributionResponse{Projects: nonNil(counts)})
}

// ListStaff lists every funcionario, or with ?mine=true only those reporting to the caller.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	onlyMine, err := queryBool(r, "mine")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	staff, err := h.staff.List(r.Context(), caller, onlyMine)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.StaffResponse{Staff: staff})
}
