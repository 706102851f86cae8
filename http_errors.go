package users

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// NewJSONErrorHandler returns a router.ErrorHandler that maps rich errors to
// HTTP statuses and a flat {"error": message} body. Internal failures get a
// generic message so storage details never leak to clients.
func NewJSONErrorHandler(logger Logger) router.ErrorHandler {
	if logger == nil {
		logger = defaultLogger().GetLogger("users.http")
	}

	return func(ctx router.Context, err error) error {
		status, message := httpStatusAndMessage(err)

		if status >= 500 {
			logger.Error("request failed", "status", status, "error", err)
			message = "internal server error"
		} else {
			logger.Info("request rejected", "status", status, "error", err)
		}

		return ctx.JSON(status, map[string]string{"error": message})
	}
}

func httpStatusAndMessage(err error) (int, string) {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return router.StatusInternalServerError, err.Error()
	}

	if rich.Code > 0 {
		return int(rich.Code), rich.Message
	}

	switch rich.Category {
	case errors.CategoryAuth:
		return router.StatusUnauthorized, rich.Message
	case errors.CategoryAuthz:
		return router.StatusForbidden, rich.Message
	case errors.CategoryNotFound:
		return router.StatusNotFound, rich.Message
	case errors.CategoryValidation, errors.CategoryBadInput:
		return router.StatusBadRequest, rich.Message
	case errors.CategoryConflict:
		return router.StatusBadRequest, rich.Message
	default:
		return router.StatusInternalServerError, rich.Message
	}
}
