package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, Envelope{
		Service:    serviceName,
		Status:     status,
		StatusCode: code,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Errors:     errors,
	})
}
