package rest

import (
	"time"

	apperrors "chat-pulse/errors"
	"chat-pulse/stats"

	"github.com/gofiber/fiber/v2"
)

type VolumeHandler struct {
	service stats.IVolumeService
}

// InitRestVolume mounts the dashboard stats route. The call is a POST with
// an empty body, mirroring the dashboard widget's wire contract.
func InitRestVolume(app fiber.Router, service stats.IVolumeService) VolumeHandler {
	handler := VolumeHandler{service: service}

	app.Post("/message/get_message_volume_stats/", RequireAntiForgery(), handler.GetMessageVolumeStats)

	return handler
}

// GetMessageVolumeStats returns the hourly message counts for the trailing
// 24-hour window as an ordered label->count object. The key order is the
// chart's category axis, preserved by VolumeReport's marshaller.
func (h VolumeHandler) GetMessageVolumeStats(c *fiber.Ctx) error {
	report, err := h.service.ComputeVolumeReport(c.UserContext(), time.Now())
	if err != nil {
		return apperrors.MapToHTTPError(err)
	}

	return c.JSON(fiber.Map{"data": report})
}
