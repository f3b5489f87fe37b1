package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrEmptyContent rejects a send whose content is blank. Nothing is persisted.
	ErrEmptyContent = fmt.Errorf("message content is empty")
	// ErrForbidden rejects an operation on a room the caller does not belong to.
	ErrForbidden = fmt.Errorf("caller is not a participant of the room")
	// ErrRoomNotFound is returned when an explicit room id resolves to nothing.
	ErrRoomNotFound = fmt.Errorf("room not found")
	// ErrUnknownUser is returned when the user directory has no record of a recipient.
	ErrUnknownUser = fmt.Errorf("unknown user")
	// ErrInvalidCommand covers malformed requests caught by struct validation.
	ErrInvalidCommand = fmt.Errorf("invalid command")

	ErrUserAlreadyExists = fmt.Errorf("user already exists")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
)

// MapToHTTPStatus translates the domain taxonomy at the transport boundary.
// A send that reached persistence never surfaces a delivery failure here,
// those are redirected to the sender's error channel by the fanout worker.
func MapToHTTPStatus(err error) int {
	switch {
	case stderrors.Is(err, ErrEmptyContent), stderrors.Is(err, ErrInvalidCommand):
		return fiber.StatusBadRequest
	case stderrors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case stderrors.Is(err, ErrRoomNotFound), stderrors.Is(err, ErrUnknownUser):
		return fiber.StatusNotFound
	case stderrors.Is(err, ErrUserAlreadyExists):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
