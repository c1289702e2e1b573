package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/platform"
)

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "You do not have permission to do that.", UserMessage(fmt.Errorf("load: %w", models.ErrForbidden)))
	assert.Equal(t, "User already registered", UserMessage(&platform.APIError{Status: 422, Message: "User already registered"}))
	assert.Equal(t, "validation failed: vendor business name is required for vendors",
		UserMessage(fmt.Errorf("%w: %w", models.ErrValidation, models.ErrVendorName)))
	assert.Equal(t, models.ErrBusinessName.Error(), UserMessage(fmt.Errorf("save: %w", models.ErrBusinessName)))
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(errors.New("dial tcp: refused")))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, StatusFor(fmt.Errorf("x: %w", models.ErrForbidden)))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(models.ErrValidation))
	assert.Equal(t, http.StatusConflict, StatusFor(models.ErrConflict))
	assert.Equal(t, http.StatusBadGateway, StatusFor(errors.New("boom")))
}
