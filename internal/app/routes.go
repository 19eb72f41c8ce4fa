package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware("ticket-booking-api", otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)

	r.Get("/healthcheck", app.GetHealth)
	r.Get("/showtimes/{showtimeId}/seats", app.GetAvailableSeatsHandler)

	// Stripe signs the raw body, so the webhook must not pass through the
	// session middleware.
	r.Post("/webhook", app.PaymentWebhookHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(app.requireAuthentication)

		r.Post("/payments/intents", app.InitiatePaymentHandler)

		r.Post("/tickets", app.CreateBookingHandler)
		r.Post("/tickets/confirm", app.ConfirmBookingHandler)

		r.Route("/users/me/tickets", func(r chi.Router) {
			r.Get("/", app.ListTicketsHandler)
			r.Get("/{ticketId}", app.GetTicketHandler)
			r.Post("/{ticketId}/cancel", app.CancelTicketHandler)
		})
	})

	return r
}
