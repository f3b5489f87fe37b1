package errors

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMapToHTTPStatus(t *testing.T) {
	cases := []struct {
		err      error
		expected int
	}{
		{ErrEmptyContent, fiber.StatusBadRequest},
		{ErrInvalidCommand, fiber.StatusBadRequest},
		{fmt.Errorf("%w: content too long", ErrInvalidCommand), fiber.StatusBadRequest},
		{ErrForbidden, fiber.StatusForbidden},
		{ErrRoomNotFound, fiber.StatusNotFound},
		{ErrUnknownUser, fiber.StatusNotFound},
		{ErrUserAlreadyExists, fiber.StatusConflict},
		{fmt.Errorf("disk on fire"), fiber.StatusInternalServerError},
	}

	for _, c := range cases {
		require.Equal(t, c.expected, MapToHTTPStatus(c.err), "for error %v", c.err)
	}
}
