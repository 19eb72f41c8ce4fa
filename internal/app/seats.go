package app

import (
	"net/http"

	"github.com/metinatakli/ticket-booking-engine/api"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

func (app *Application) GetAvailableSeatsHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	seats, err := app.seatService.GetAvailableSeats(r.Context(), showtimeID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.SeatAvailabilityResponse{
		ShowtimeId: showtimeID,
		Seats:      toApiSeats(seats),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiSeats(seats []domain.SeatAvailability) []api.SeatAvailability {
	result := make([]api.SeatAvailability, len(seats))

	for i, seat := range seats {
		result[i] = api.SeatAvailability{
			SeatId:      seat.SeatID,
			Label:       seat.Label,
			IsAvailable: seat.IsAvailable,
		}
	}

	return result
}
