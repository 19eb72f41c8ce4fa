package app

import (
	"net/http"

	"github.com/metinatakli/ticket-booking-engine/api"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	"github.com/metinatakli/ticket-booking-engine/internal/service"
)

func (app *Application) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CreateBookingRequest

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

	ticket, err := app.bookingService.CreateBooking(r.Context(), service.CreateBookingInput{
		UserID:     app.contextGetUserId(r),
		ShowtimeID: input.ShowtimeId,
		SeatID:     input.SeatId,
		HolderName: input.HolderName,
	})
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeTicket(w, r, http.StatusCreated, ticket)
}

func (app *Application) ConfirmBookingHandler(w http.ResponseWriter, r *http.Request) {
	var input api.ConfirmBookingRequest

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

	ticket, err := app.bookingService.ConfirmBooking(r.Context(), service.ConfirmBookingInput{
		PaymentIntentID: input.PaymentIntentId,
		UserID:          app.contextGetUserId(r),
		ShowtimeID:      input.ShowtimeId,
		SeatID:          input.SeatId,
		HolderName:      input.HolderName,
	})
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeTicket(w, r, http.StatusCreated, ticket)
}

func (app *Application) ListTicketsHandler(w http.ResponseWriter, r *http.Request) {
	tickets, err := app.bookingService.ListTickets(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.TicketListResponse{
		Tickets: make([]api.Ticket, len(tickets)),
	}

	for i := range tickets {
		resp.Tickets[i] = toApiTicket(&tickets[i])
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketID, err := app.readIDParam(r, "ticketId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ticket, err := app.bookingService.GetTicket(r.Context(), app.contextGetUserId(r), ticketID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeTicket(w, r, http.StatusOK, ticket)
}

func (app *Application) CancelTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketID, err := app.readIDParam(r, "ticketId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ticket, err := app.bookingService.CancelTicket(r.Context(), app.contextGetUserId(r), ticketID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeTicket(w, r, http.StatusOK, ticket)
}

func (app *Application) writeTicket(w http.ResponseWriter, r *http.Request, status int, ticket *domain.Ticket) {
	resp := api.TicketResponse{
		Ticket: toApiTicket(ticket),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiTicket(ticket *domain.Ticket) api.Ticket {
	return api.Ticket{
		Id:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		ShowtimeId:   ticket.ShowtimeID,
		SeatId:       ticket.SeatID,
		HolderName:   ticket.HolderName,
		Price:        ticket.Price,
		Status:       api.TicketStatus(ticket.Status),
		CreatedAt:    ticket.CreatedAt,
	}
}
