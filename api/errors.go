package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/repomem/pkg/archive"
	"github.com/papercomputeco/repomem/pkg/recall"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an ingestion or recall error to its HTTP status.
func statusFor(err error) int {
	var downloadErr *archive.DownloadError
	switch {
	case errors.Is(err, archive.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.As(err, &downloadErr),
		errors.Is(err, archive.ErrNetwork),
		errors.Is(err, archive.ErrCorruptArchive),
		errors.Is(err, recall.ErrGeneration):
		return fiber.StatusBadGateway
	case errors.Is(err, recall.ErrRecall):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
