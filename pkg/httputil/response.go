package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/followups/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondWithSuccess sends a success response with an optional flash message.
func RespondWithSuccess(c *gin.Context, status int, message string, data interface{}) {
	resp := NewSuccessResponse(data)
	resp.Message = message
	c.JSON(status, resp)
}

// RespondWithError sends an error response. AppErrors keep their status and
// message; anything else is reported as a generic 500 so driver details never
// reach the client.
func RespondWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}

	resp := NewErrorResponse(appErr.Message)
	resp.Errors = appErr.Fields
	c.AbortWithStatusJSON(appErr.StatusCode(), resp)
}
