package router

import (
	"net/http"
	"time"

	"fabric-digital-system/app/controller"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Controllers struct {
	Fabric *controller.FabricController
	QR     *controller.QRController
	Public *controller.PublicController
	Label  *controller.LabelController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// NewRouter builds the HTTP routes
func NewRouter(controllers *Controllers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Label rendering starts a browser, so the budget covers it
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/ping", pingHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Fabric records
		r.Get("/fabrics", controllers.Fabric.ListFabrics)
		r.Post("/fabrics", controllers.Fabric.CreateFabric)
		r.Get("/fabrics/{code}", controllers.Fabric.GetFabric)
		r.Get("/submissions/{code}", controllers.Fabric.GetHistory)

		// QR codes
		r.Get("/qr/{code}", controllers.QR.GetQRCode)
		r.Post("/scan", controllers.QR.Scan)

		// Printable labels
		r.Get("/labels/{code}", controllers.Label.GetLabel)
	})

	// Read-only access through the published export
	r.Get("/public/fabrics", controllers.Public.ListFabrics)
	r.Get("/public/fabrics/{code}", controllers.Public.GetFabric)

	return r
}
