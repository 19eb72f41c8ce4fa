package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/metinatakli/ticket-booking-engine/api"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	"github.com/metinatakli/ticket-booking-engine/internal/service"
)

const (
	maxWebhookBodyBytes    = 65_536
	webhookSignatureHeader = "Stripe-Signature"
)

func (app *Application) InitiatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var input api.InitiatePaymentRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	result, err := app.paymentService.InitiatePayment(r.Context(), service.InitiatePaymentInput{
		UserID:     app.contextGetUserId(r),
		TicketID:   input.TicketId,
		ShowtimeID: input.ShowtimeId,
		SeatID:     input.SeatId,
	})
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.PaymentIntentResponse{
		PaymentIntentId: result.PaymentIntentID,
		ClientSecret:    result.ClientSecret,
		Amount:          result.Amount,
		Currency:        result.Currency,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// PaymentWebhookHandler answers 200 for every acknowledged event. A bad
// signature gets 401 and anything else 500, so the provider redelivers.
func (app *Application) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			app.badRequestResponse(w, r, fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit))
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	received, err := app.paymentService.ProcessWebhook(r.Context(), payload, r.Header.Get(webhookSignatureHeader))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			logger.Warn("webhook rejected", "error", err)
			app.errorResponse(w, r, http.StatusUnauthorized, domain.ErrInvalidSignature.Message)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.WebhookResponse{Received: received}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
