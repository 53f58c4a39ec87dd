/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/workplaces/*     Workplace registration
  /api/contracts/*      Contracts, their shifts and salaries
  /api/shifts/*         Shift lifecycle and corrections
  /api/corrections/*    Correction approval workflow
  /api/payments/*       Settlement lifecycle
  /api/salaries/*       Payment lookup by salary
  /api/holidays/*       Public holiday calendar
  /api/admin/*          Manual batch triggers
  /healthz              Liveness probe

SECURITY NOTE:
  No authentication middleware. The engine expects an upstream gateway
  to authenticate callers; actor identity arrives in request bodies.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Workplace routes
		r.Route("/workplaces", func(r chi.Router) {
			r.Post("/", h.CreateWorkplace)
			r.Get("/{id}", h.GetWorkplace)
		})

		// Contract routes
		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", h.CreateContract)
			r.Get("/{id}", h.GetContract)
			r.Patch("/{id}", h.AmendContract)
			r.Post("/{id}/terminate", h.TerminateContract)

			r.Get("/{id}/shifts", h.ListShifts)
			r.Post("/{id}/shifts", h.AddShift)
			r.Post("/{id}/shifts/generate", h.GenerateShifts)

			r.Post("/{id}/salary", h.ComputeSalary)
			r.Get("/{id}/salary", h.GetSalary)
		})

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Post("/{id}/complete", h.CompleteShift)
			r.Delete("/{id}", h.RemoveShift)
			r.Post("/{id}/corrections", h.ProposeCorrection)
			r.Get("/{id}/corrections", h.ListCorrections)
		})

		// Correction approval routes
		r.Route("/corrections", func(r chi.Router) {
			r.Post("/{id}/approve", h.ApproveCorrection)
			r.Post("/{id}/reject", h.RejectCorrection)
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/{id}", h.GetPayment)
			r.Post("/{id}/complete", h.CompletePayment)
			r.Post("/{id}/fail", h.FailPayment)
		})
		r.Get("/salaries/{id}/payment", h.GetPaymentForSalary)

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/refresh", h.RefreshHolidays)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/horizon", h.TriggerHorizon)
			r.Post("/sweep", h.TriggerSweep)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
