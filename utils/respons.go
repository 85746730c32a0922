package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError writes err as a failed JSONResponse. Errors that carry a user-facing Message()
// are shown without their internal prefix.
func RespondError(c *gin.Context, code int, err error) {
	msg := err.Error()
	var m interface{ Message() string }
	if errors.As(err, &m) {
		msg = m.Message()
	}
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: msg,
		Data:    nil,
	})
}
