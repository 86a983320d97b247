package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(
	r chi.Router,
	h *AnalysisHandler,
	uploadsPerMinute int,
) {
	r.Group(func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		pr.Get("/", h.Page)
		pr.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("pong"))
		})

		// --- результаты ---
		pr.Get("/outputs/{name}", h.Audio)
		pr.Get("/download/{name}", h.Download)

		// --- загрузка ---
		pr.Group(func(up chi.Router) {
			if uploadsPerMinute > 0 {
				up.Use(httprate.LimitByIP(uploadsPerMinute, time.Minute))
			}
			up.Post("/analyze", h.Analyze)
			up.Post("/api/analyze", h.AnalyzeJSON)
		})
	})
}
