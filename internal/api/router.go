package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API. When uploadsDir is set, uploaded solution images
// are served from it under /uploads.
func NewRouter(apiHandler *APIHandler, uploadsDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Group(func(r chi.Router) {
			r.Use(apiHandler.IdentityMiddleware)

			r.Get("/me", apiHandler.MeHandler)
			r.Post("/session", apiHandler.CreateSessionHandler)
			r.Delete("/session", apiHandler.DeleteSessionHandler)

			r.Get("/questions/daily", apiHandler.DailyQuestionHandler)
			r.Get("/questions/{questionID}/latest-result", apiHandler.LatestResultHandler)

			r.Post("/submissions", apiHandler.SubmitHandler)

			r.Get("/history", apiHandler.HistoryHandler)
			r.Get("/history/{resultID}", apiHandler.ResultHandler)
			r.Get("/grading-result", apiHandler.GradingResultHandler)
		})
	})

	if uploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}

	return r
}
