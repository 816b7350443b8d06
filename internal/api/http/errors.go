package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/krishimitra-sync/internal/common"
	"github.com/i474232898/krishimitra-sync/internal/domain"
)

const panicked = "panicked"

// ErrorHandler renders every failure as a dismissible error payload. A
// recovered panic gets a reset hint instead, sending the app back to its
// start route.
func ErrorHandler(logger logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if p, _ := c.Locals(panicked).(bool); p {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"message": "Something went wrong",
				"recovery": fiber.Map{
					"action": "reset",
					"route":  "/",
				},
			})
		}

		code, msg := classify(err)
		fields := logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": code,
		}
		if code >= fiber.StatusInternalServerError {
			common.LogError(logger, "request failed", err, fields)
		} else {
			logger.WithFields(fields).WithError(err).Debug("request rejected")
		}

		return c.Status(code).JSON(fiber.Map{
			"error":       true,
			"message":     msg,
			"dismissible": true,
		})
	}
}

// Recover turns handler panics into the reset payload rendered by
// ErrorHandler.
func Recover(logger logrus.FieldLogger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			c.Locals(panicked, true)
			logger.WithFields(logrus.Fields{
				"path":  c.Path(),
				"panic": e,
			}).Error("handler panicked")
		},
	})
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, domain.UserMessage(err)
	case errors.Is(err, domain.ErrNotOnboarded):
		return fiber.StatusConflict, domain.UserMessage(err)
	case errors.Is(err, domain.ErrRejected):
		return fiber.StatusUnprocessableEntity, domain.UserMessage(err)
	case errors.Is(err, domain.ErrPartialData):
		return fiber.StatusBadGateway, domain.UserMessage(err)
	case errors.Is(err, domain.ErrUnavailable):
		return fiber.StatusServiceUnavailable, domain.UserMessage(err)
	}
	return fiber.StatusInternalServerError, "Something went wrong"
}
