package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/ticket-booking-engine/api"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	appvalidator "github.com/metinatakli/ticket-booking-engine/internal/validator"
)

const (
	ErrInternalServer   = "The server encountered a problem and could not process your request"
	ErrNotFound         = "The requested resource not found"
	ErrUnauthorized     = "You must be authenticated to access this resource"
	ErrFailedValidation = "One or more fields have invalid values"
	ErrMethodNotAllowed = "The method is not supported for this resource"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.contextGetLogger(r).Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorized)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:   ErrFailedValidation,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	for _, fieldErr := range validationErrs {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		})
	}

	err = app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// domainErrorResponse maps an error returned by the services to a status code
// by its kind. Unclassified errors are logged and reported as 500.
func (app *Application) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var status int

	switch domain.KindOf(err) {
	case domain.ErrNotFound:
		status = http.StatusNotFound
	case domain.ErrInvalidState:
		status = http.StatusUnprocessableEntity
	case domain.ErrConflict:
		status = http.StatusConflict
	case domain.ErrUnauthorized:
		status = http.StatusUnauthorized
	case domain.ErrUnavailable:
		app.logError(r, err)
		status = http.StatusServiceUnavailable
	case domain.ErrInvalidInput:
		status = http.StatusBadRequest
	default:
		app.serverErrorResponse(w, r, err)
		return
	}

	app.errorResponse(w, r, status, publicMessage(err))
}

// publicMessage returns the message of the outermost *domain.Error in err's
// chain, so wrapped driver details never reach the client.
func publicMessage(err error) string {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	kind := domain.KindOf(err)
	if kind == nil {
		return ErrInternalServer
	}

	return fmt.Sprint(kind)
}
