package handlers

import (
	"errors"
	"net/http"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/platform"
)

// UserMessage maps an error to the text shown in the page banner.
func UserMessage(err error) string {
	var apiErr *platform.APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, platform.ErrNoSession):
		return "Your session has ended. Please sign in again."
	case errors.Is(err, models.ErrForbidden):
		return "You do not have permission to do that."
	case errors.Is(err, models.ErrNotFound):
		return "The requested record no longer exists."
	case errors.Is(err, models.ErrConflict):
		return "A record with these details already exists."
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrInvalidRole):
		return err.Error()
	case errors.Is(err, models.ErrVendorName):
		return models.ErrVendorName.Error()
	case errors.Is(err, models.ErrBusinessName):
		return models.ErrBusinessName.Error()
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return "Something went wrong. Please try again."
	}
}

// StatusFor maps an error to the HTTP status of the re-rendered page.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrBadRequest),
		errors.Is(err, models.ErrVendorName), errors.Is(err, models.ErrBusinessName), errors.Is(err, models.ErrInvalidRole):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
