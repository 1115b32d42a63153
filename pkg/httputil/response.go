package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pinewood/booking-api/pkg/errors"
)

// Response is the envelope every endpoint returns: either data on
// success or a coded error, never both.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is the user-facing error body. Code is the application error
// code, not the HTTP status.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError writes an error response. AppErrors anywhere in the
// chain carry their own status mapping and user-facing message; anything
// else collapses to a generic 500 so internal detail never leaks.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	code := int(errors.ErrInternal)

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		status = appErr.HTTPStatus()
		message = appErr.Message
		code = int(appErr.Code)
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}
