package errors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// MapToHTTPError converts a domain error into the fiber error carried back
// to the dashboard. Internal store errors are mapped to a fixed message so
// their details never reach the wire; the cause stays in the server logs.
func MapToHTTPError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrStoreUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, ErrStoreUnavailable.Error())
	case errors.Is(err, ErrRoomNotFound):
		return fiber.NewError(fiber.StatusNotFound, ErrRoomNotFound.Error())
	case errors.Is(err, ErrRoomFull), errors.Is(err, ErrAdminsOnly):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrGroupNeedsName):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidToken):
		return fiber.NewError(fiber.StatusUnauthorized, ErrInvalidToken.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
