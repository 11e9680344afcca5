package controller

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehub/coursehub/internal/apperror"
)

func TestErrorResponseStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperror.ErrNotFound, fiber.StatusNotFound},
		{apperror.ErrSubscriptionNotFound, fiber.StatusNotFound},
		{apperror.ErrTitleUnavailable, fiber.StatusConflict},
		{apperror.ErrOptimisticConcurrency, fiber.StatusConflict},
		{apperror.ErrInvalidVote, fiber.StatusBadRequest},
		{apperror.ErrImageInvalid, fiber.StatusBadRequest},
		{apperror.ErrUnknownUser, fiber.StatusForbidden},
		{apperror.ErrSendFailure, fiber.StatusBadGateway},
		{apperror.ErrPaymentGateway, fiber.StatusBadGateway},
		{apperror.ErrInvalidInput, fiber.StatusUnprocessableEntity},
		{errors.New("some internal failure"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return ErrorResponse(c, fmt.Errorf("handler: %w", tc.err))
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
