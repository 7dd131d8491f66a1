package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/itchan-dev/agenda/backend/internal/setup"
	mw "github.com/itchan-dev/agenda/shared/middleware"
	"github.com/itchan-dev/agenda/shared/middleware/metrics"
)

// New builds the chi router with every API route.
// A limiter passed to Use is shared by all routes of that group.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureCookies, mw.APIContentSecurityPolicy))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Route("/auth", func(auth chi.Router) {
			auth.Post("/register/funcionario", h.RegisterStaff)
			auth.Post("/register/supervisor", h.RegisterSupervisor)
			auth.Post("/logout", h.Logout)
			// login is limited per client IP to slow down password guessing
			auth.With(mw.RateLimit(deps.LoginLimiter, mw.GetIP)).Post("/login", h.Login)
		})

		v1.Group(func(loggedIn chi.Router) {
			loggedIn.Use(authMw.NeedAuth())
			loggedIn.Use(mw.RateLimit(deps.UserLimiter, mw.GetUserIDFromContext))

			loggedIn.Get("/me", h.Me)
			loggedIn.Patch("/me", h.UpdateMe)
			loggedIn.Post("/me/password", h.ChangePassword)

			loggedIn.Get("/activities", h.GetDay)
			loggedIn.Get("/activities/range", h.GetRange)
			loggedIn.Post("/activities", h.CreateActivity)
			loggedIn.Get("/activities/{id}", h.GetActivity)
			loggedIn.Patch("/activities/{id}", h.UpdateActivity)
			loggedIn.Delete("/activities/{id}", h.DeleteActivity)
			loggedIn.Post("/activities/{id}/toggle", h.ToggleActivity)
			loggedIn.Get("/activities/{id}/documents", h.ListDocuments)
			loggedIn.Post("/activities/{id}/documents", h.UploadDocuments)

			loggedIn.Post("/agenda/send", h.SendAgenda)
			loggedIn.Get("/agenda/hours", h.GetHours)

			loggedIn.Get("/documents/{id}/download", h.DownloadDocument)
			loggedIn.Delete("/documents/{id}", h.DeleteDocument)

			loggedIn.Get("/projects", h.ListProjects)
			loggedIn.Get("/projects/{id}", h.GetProject)
			loggedIn.Get("/projects/{id}/activities", h.GetProjectActivities)
			loggedIn.Get("/projects/{id}/summary", h.GetProjectSummary)

			loggedIn.Get("/assignments", h.ListAssignments)
			loggedIn.Patch("/assignments/{id}/state", h.UpdateAssignmentState)

			loggedIn.Get("/stats/dashboard", h.GetDashboard)
			loggedIn.Get("/stats/weekdays", h.GetWeekdays)
			loggedIn.Get("/stats/recent", h.GetRecent)
			loggedIn.Get("/stats/projects", h.GetProjectDistribution)

			loggedIn.Get("/notifications", h.ListNotifications)
			loggedIn.Post("/notifications/{id}/read", h.MarkNotificationRead)
		})

		v1.Group(func(supervisor chi.Router) {
			supervisor.Use(authMw.SupervisorOnly())
			supervisor.Use(mw.RateLimit(deps.UserLimiter, mw.GetUserIDFromContext))

			supervisor.Post("/projects", h.CreateProject)
			supervisor.Patch("/projects/{id}", h.UpdateProject)
			supervisor.Delete("/projects/{id}", h.DeleteProject)
			supervisor.Post("/assignments", h.CreateAssignment)
			supervisor.Get("/staff", h.ListStaff)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return r
}
