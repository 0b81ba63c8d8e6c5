package handlers

import (
	"errors"
	"net/http"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServiceError translates service errors into HTTP responses. Sentinels
// decide the status; AppError codes are honored when no sentinel matches.
func handleServiceError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, services.ErrInvalidAccountGroup),
		errors.Is(err, services.ErrInvalidAccountCode),
		errors.Is(err, services.ErrParentAccountNotFound),
		errors.Is(err, services.ErrInvalidScopeType),
		errors.Is(err, services.ErrScopeIDRequired),
		errors.Is(err, services.ErrInvalidMovementType),
		errors.Is(err, services.ErrNonPositiveAmount),
		errors.Is(err, services.ErrHeaderAccountMovement),
		errors.Is(err, services.ErrSelfTransfer),
		errors.Is(err, services.ErrInvalidInitMode),
		errors.Is(err, apperrors.ErrInsufficientFunds):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, services.ErrAccountHasChildren),
		errors.Is(err, services.ErrAccountHasMovements):
		status = http.StatusConflict
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 600 {
			status = appErr.Code
		}
	}

	if status >= 500 {
		logger.Error("Request failed", "error", err)
		c.JSON(status, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
